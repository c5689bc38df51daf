package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lumos/database"
	"lumos/middleware"
	"lumos/models"
)

// GetUserCertificates lists the certificates earned by the caller
func GetUserCertificates(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)

	var certificates []models.Certificate
	err := database.Database.Db.
		Joins("JOIN enrollments ON enrollments.id = certificates.enrollment_id").
		Where("enrollments.student_id = ?", userID).
		Preload("Enrollment.Course").
		Order("certificates.issued_at desc").
		Find(&certificates).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// VerifyCertificate is public: anyone holding an id can check it
func VerifyCertificate(c *fiber.Ctx) error {
	var cert models.Certificate
	err := database.Database.Db.
		Preload("Enrollment.Student").
		Preload("Enrollment.Course").
		Where("certificate_id = ?", c.Params("certificateId")).
		First(&cert).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", fiber.Map{"is_valid": false})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate verified.", fiber.Map{
		"certificate_id": cert.CertificateID,
		"is_valid":       cert.IsValid,
		"issued_at":      cert.IssuedAt,
		"student_name":   cert.Enrollment.Student.FullName(),
		"course_title":   cert.Enrollment.Course.Title,
	})
}
