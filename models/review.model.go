package models

import "gorm.io/gorm"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	gorm.Model
	CourseID   uint   `gorm:"not null;uniqueIndex:idx_review_course_student" json:"course_id"`
	StudentID  uint   `gorm:"not null;uniqueIndex:idx_review_course_student" json:"student_id"`
	Rating     int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string `gorm:"type:text" json:"comment"`
	IsApproved bool   `gorm:"default:false" json:"is_approved"`

	Student Author `gorm:"foreignKey:StudentID" json:"student"`
	Course  Course `gorm:"foreignKey:CourseID" json:"-"`
}

// IsValidRating reports whether r is a 1-5 star rating.
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
