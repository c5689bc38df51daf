package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/utils"
	courseValidator "lumos/validators/course"
)

func AdminCreateCategory(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCategory").(*courseValidator.CreateCategoryRequest)
	db := database.Database.Db

	if err := db.Where("name = ?", reqData.Name).First(&models.Category{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Category already exists!", nil)
	}

	slug, err := utils.UniqueSlug(db, &models.Category{}, reqData.Name)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create category!", nil)
	}

	category := models.Category{Name: reqData.Name, Slug: slug, Description: reqData.Description}
	if err := db.Create(&category).Error; err != nil {
		logger.Error(err, "creating category failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create category!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", category)
}

// AdminCreateCourse creates an unpublished course owned by the caller
func AdminCreateCourse(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	db := database.Database.Db

	if err := db.First(&models.Category{}, reqData.CategoryID).Error; err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"category_id": "Category not found!"})
	}

	slug, err := utils.UniqueSlug(db, &models.Course{}, reqData.Title)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	course := models.Course{
		Title:         reqData.Title,
		Slug:          slug,
		Description:   reqData.Description,
		InstructorID:  user.ID,
		CategoryID:    reqData.CategoryID,
		ThumbnailURL:  reqData.ThumbnailURL,
		Price:         reqData.Price,
		Difficulty:    reqData.Difficulty,
		DurationHours: reqData.DurationHours,
		IsFeatured:    reqData.IsFeatured,
	}
	if err := db.Create(&course).Error; err != nil {
		logger.Error(err, "creating course failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// loadManagedCourse loads the course in c.Locals("id"). Teachers may only manage their own.
func loadManagedCourse(c *fiber.Ctx) (*models.Course, error) {
	user := middleware.CurrentUser(c)

	var course models.Course
	if err := database.Database.Db.First(&course, c.Locals("id").(uint)).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !user.IsAdmin() && user.Role != models.RoleContentManager && course.InstructorID != user.ID {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only manage your own courses!", nil)
	}
	return &course, nil
}

func AdminUpdateCourse(c *fiber.Ctx) error {
	course, err := loadManagedCourse(c)
	if course == nil {
		return err
	}
	reqData := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	db := database.Database.Db

	if err := db.First(&models.Category{}, reqData.CategoryID).Error; err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{"category_id": "Category not found!"})
	}

	if reqData.Title != course.Title {
		slug, err := utils.UniqueSlug(db, &models.Course{}, reqData.Title)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
		course.Slug = slug
	}
	course.Title = reqData.Title
	course.Description = reqData.Description
	course.CategoryID = reqData.CategoryID
	course.ThumbnailURL = reqData.ThumbnailURL
	course.Price = reqData.Price
	course.Difficulty = reqData.Difficulty
	course.DurationHours = reqData.DurationHours
	course.IsFeatured = reqData.IsFeatured

	if err := db.Model(course).
		Select("title", "slug", "description", "category_id", "thumbnail_url", "price", "difficulty", "duration_hours", "is_featured").
		Updates(course).Error; err != nil {
		logger.Error(err, "updating course failed", map[string]interface{}{"course_id": course.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminTogglePublish flips the published flag of a course
func AdminTogglePublish(c *fiber.Ctx) error {
	course, err := loadManagedCourse(c)
	if course == nil {
		return err
	}

	course.IsPublished = !course.IsPublished
	if err := database.Database.Db.Model(course).Update("is_published", course.IsPublished).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	message := "Course unpublished successfully!"
	if course.IsPublished {
		message = "Course published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

func AdminCreateMaterial(c *fiber.Ctx) error {
	course, err := loadManagedCourse(c)
	if course == nil {
		return err
	}
	reqData := c.Locals("validatedMaterial").(*courseValidator.MaterialRequest)
	db := database.Database.Db

	order := reqData.Order
	if order == 0 {
		var last struct{ Max uint }
		db.Model(&models.Material{}).Where("course_id = ?", course.ID).Select("COALESCE(MAX(sort_order), 0) AS max").Scan(&last)
		order = last.Max + 1
	}

	material := models.Material{
		CourseID:        course.ID,
		Title:           reqData.Title,
		MaterialType:    reqData.MaterialType,
		FileURL:         reqData.FileURL,
		Description:     reqData.Description,
		Order:           order,
		IsFree:          reqData.IsFree,
		Price:           reqData.Price,
		DurationMinutes: reqData.DurationMinutes,
	}
	if err := db.Create(&material).Error; err != nil {
		logger.Error(err, "creating material failed", map[string]interface{}{"course_id": course.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create material!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Material created successfully!", material)
}
