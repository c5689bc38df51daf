package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment links a student to a course and tracks overall progress
type Enrollment struct {
	gorm.Model
	StudentID          uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	CourseID           uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_student_course"`
	EnrolledAt         time.Time  `json:"enrolled_at" gorm:"autoCreateTime"`
	IsActive           bool       `json:"is_active" gorm:"default:true"`
	ProgressPercentage uint       `json:"progress_percentage" gorm:"default:0"`
	CompletedAt        *time.Time `json:"completed_at"`

	Student User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// Progress tracks completion of one material inside an enrollment
type Progress struct {
	gorm.Model
	EnrollmentID     uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_progress_enrollment_material"`
	MaterialID       uint       `json:"material_id" gorm:"not null;uniqueIndex:idx_progress_enrollment_material"`
	IsCompleted      bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt      *time.Time `json:"completed_at"`
	TimeSpentMinutes uint       `json:"time_spent_minutes" gorm:"default:0"`

	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Material   Material   `gorm:"foreignKey:MaterialID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Progress) TableName() string {
	return "progress"
}

// ProgressPercentage is the whole-number share of completed materials, rounded down.
func ProgressPercentage(completed, total int64) uint {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return uint(completed * 100 / total)
}
