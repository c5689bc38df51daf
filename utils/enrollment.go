package utils

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lumos/models"
)

// GetOrCreateEnrollment returns the student's enrollment in a course, creating
// it when missing and reactivating it when it was deactivated. created reports
// whether a new row was inserted.
func GetOrCreateEnrollment(tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, bool, error) {
	var enrollment models.Enrollment
	err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error
	if err == nil {
		if !enrollment.IsActive {
			if err := tx.Model(&enrollment).Update("is_active", true).Error; err != nil {
				return nil, false, errors.Wrap(err, "reactivate enrollment")
			}
		}
		return &enrollment, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(err, "load enrollment")
	}

	enrollment = models.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		IsActive:  true,
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		return nil, false, errors.Wrap(err, "create enrollment")
	}
	return &enrollment, true, nil
}

// RecalculateProgress recomputes the completion percentage of an enrollment
// from its completed progress rows. Reaching 100 stamps completed_at once.
func RecalculateProgress(tx *gorm.DB, enrollment *models.Enrollment) error {
	var total, completed int64
	if err := tx.Model(&models.Material{}).Where("course_id = ?", enrollment.CourseID).Count(&total).Error; err != nil {
		return errors.Wrap(err, "count materials")
	}
	if err := tx.Model(&models.Progress{}).
		Joins("JOIN materials ON materials.id = progress.material_id AND materials.deleted_at IS NULL").
		Where("progress.enrollment_id = ? AND progress.is_completed = ?", enrollment.ID, true).
		Count(&completed).Error; err != nil {
		return errors.Wrap(err, "count completed materials")
	}

	updates := map[string]interface{}{
		"progress_percentage": models.ProgressPercentage(completed, total),
	}
	enrollment.ProgressPercentage = models.ProgressPercentage(completed, total)
	if enrollment.ProgressPercentage == 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
		updates["completed_at"] = now
	}
	return errors.Wrap(tx.Model(enrollment).Updates(updates).Error, "save progress")
}

// IssueCertificate returns the certificate of a completed enrollment, issuing
// it on first call. issued reports whether a new certificate was created.
func IssueCertificate(tx *gorm.DB, enrollment *models.Enrollment) (*models.Certificate, bool, error) {
	if enrollment.CompletedAt == nil {
		return nil, false, errors.New("enrollment is not completed")
	}

	var cert models.Certificate
	err := tx.Where("enrollment_id = ?", enrollment.ID).First(&cert).Error
	if err == nil {
		return &cert, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, errors.Wrap(err, "load certificate")
	}

	cert = models.Certificate{
		EnrollmentID:  enrollment.ID,
		CertificateID: models.NewCertificateID(),
		IssuedAt:      time.Now(),
		IsValid:       true,
	}
	if err := tx.Create(&cert).Error; err != nil {
		return nil, false, errors.Wrap(err, "create certificate")
	}
	return &cert, true, nil
}
