package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lumos/config"
	"lumos/database"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
)

// HasMaterialAccess reports whether the user may open a material: it is free,
// or the user completed a payment for the material or for its course.
func HasMaterialAccess(db *gorm.DB, userID uint, material *models.Material) bool {
	if material.IsFree {
		return true
	}
	var count int64
	db.Model(&payment.Payment{}).
		Where("user_id = ? AND status = ? AND (material_id = ? OR course_id = ?)",
			userID, payment.StatusCompleted, material.ID, material.CourseID).
		Count(&count)
	return count > 0
}

// loadEnrolledMaterial finds a material of the given type in a course the caller is enrolled in
func loadEnrolledMaterial(c *fiber.Ctx, materialType string) (*models.Material, error) {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("id").(uint)
	db := database.Database.Db

	var material models.Material
	if err := db.Preload("Course").
		Where("id = ? AND material_type = ?", materialID, materialType).
		First(&material).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	var count int64
	db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND is_active = ?", userID, material.CourseID, true).
		Count(&count)
	if count == 0 {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
	}
	return &material, nil
}

func materialView(material *models.Material, hasAccess bool) fiber.Map {
	view := fiber.Map{
		"material":   material,
		"course":     fiber.Map{"id": material.Course.ID, "title": material.Course.Title, "slug": material.Course.Slug},
		"has_access": hasAccess,
		"file_url":   nil,
	}
	if hasAccess {
		view["file_url"] = material.FileURL
	}
	return view
}

// PdfViewer returns a PDF material. Without access only a preview page count is given.
func PdfViewer(c *fiber.Ctx) error {
	material, err := loadEnrolledMaterial(c, models.MaterialTypePDF)
	if material == nil {
		return err
	}

	hasAccess := HasMaterialAccess(database.Database.Db, c.Locals("userId").(uint), material)
	view := materialView(material, hasAccess)
	view["free_pages"] = nil
	if !hasAccess {
		view["free_pages"] = config.AppConfig.FreePDFPages
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material fetched successfully!", view)
}

// VideoPlayer returns a video material. The first episode is always open.
func VideoPlayer(c *fiber.Ctx) error {
	material, err := loadEnrolledMaterial(c, models.MaterialTypeVideo)
	if material == nil {
		return err
	}

	hasAccess := material.IsFirstEpisode() || HasMaterialAccess(database.Database.Db, c.Locals("userId").(uint), material)
	view := materialView(material, hasAccess)
	view["is_first_episode"] = material.IsFirstEpisode()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Material fetched successfully!", view)
}
