package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent        = "student"
	RoleTeacher        = "teacher"
	RoleContentManager = "content_manager"
	RoleAdmin          = "admin"
)

// ValidRoles lists every role a user can hold.
var ValidRoles = []string{RoleStudent, RoleTeacher, RoleContentManager, RoleAdmin}

type User struct {
	gorm.Model
	Username          string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email             string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName         string     `gorm:"size:150;default:''" json:"first_name"`
	LastName          string     `gorm:"size:150;default:''" json:"last_name"`
	Password          string     `gorm:"not null" json:"-"`
	Role              string     `gorm:"size:20;default:'student'" json:"role"`
	IsSuperuser       bool       `gorm:"default:false" json:"is_superuser"`
	IsTeacherApproved bool       `gorm:"default:false" json:"is_teacher_approved"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`
	ProfilePicture    string     `gorm:"default:''" json:"profile_picture"`
	Bio               string     `gorm:"type:text" json:"bio"`
	PhoneNumber       string     `gorm:"size:20;default:''" json:"phone_number"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	LastLogin         *time.Time `json:"last_login"`

	Profile *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// UserProfile holds learning preferences, one row per user.
type UserProfile struct {
	gorm.Model
	UserID               uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	LearningGoals        string `gorm:"type:text" json:"learning_goals"`
	PreferredSubjects    string `gorm:"size:500;default:''" json:"preferred_subjects"`
	Timezone             string `gorm:"size:50;default:'UTC'" json:"timezone"`
	NotificationsEnabled bool   `gorm:"default:true" json:"notifications_enabled"`
	EmailNotifications   bool   `gorm:"default:true" json:"email_notifications"`
}

// Author is the public view of a user, used wherever a user is shown to
// anonymous visitors (course instructors, review authors).
type Author struct {
	ID             uint           `json:"id"`
	Username       string         `json:"username"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ProfilePicture string         `json:"profile_picture"`
	DeletedAt      gorm.DeletedAt `json:"-"`
}

func (Author) TableName() string {
	return "users"
}

// FullName falls back to the username when no name is set.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// IsTeacher reports whether the user is an approved teacher.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher && u.IsTeacherApproved
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

// CanManageCourses covers approved teachers, content managers and admins.
func (u User) CanManageCourses() bool {
	return u.IsTeacher() || u.Role == RoleContentManager || u.IsAdmin()
}

// IsValidRole checks a role string against ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
