package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

const (
	MaterialTypePDF   = "pdf"
	MaterialTypeVideo = "video"
	MaterialTypeEbook = "ebook"
)

// Category groups courses in the catalog
type Category struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

// Course represents a learning course
type Course struct {
	gorm.Model
	Title         string          `gorm:"size:200;not null" json:"title"`
	Slug          string          `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	InstructorID  uint            `gorm:"index;not null" json:"instructor_id"`
	CategoryID    uint            `gorm:"index;not null" json:"category_id"`
	ThumbnailURL  string          `gorm:"default:''" json:"thumbnail_url"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
	Difficulty    string          `gorm:"size:20;not null" json:"difficulty"`
	DurationHours uint            `gorm:"default:0" json:"duration_hours"`
	IsPublished   bool            `gorm:"default:false" json:"is_published"`
	IsFeatured    bool            `gorm:"default:false" json:"is_featured"`

	Instructor Author     `gorm:"foreignKey:InstructorID" json:"instructor"`
	Category   Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Materials  []Material `gorm:"foreignKey:CourseID" json:"materials,omitempty"`
}

// IsFree reports whether the course can be enrolled in without a purchase.
func (c Course) IsFree() bool {
	return !c.Price.IsPositive()
}

// Material is a gated content unit of a course
type Material struct {
	gorm.Model
	CourseID        uint            `gorm:"index;not null" json:"course_id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	MaterialType    string          `gorm:"size:10;not null" json:"material_type"`
	FileURL         string          `gorm:"not null" json:"-"`
	Description     string          `gorm:"type:text" json:"description"`
	Order           uint            `gorm:"column:sort_order;default:0" json:"order"`
	IsFree          bool            `gorm:"default:false" json:"is_free"`
	Price           decimal.Decimal `gorm:"type:decimal(8,2);default:0" json:"price"`
	DurationMinutes *uint           `json:"duration_minutes"`

	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

// IsFirstEpisode is true for the opening video of a course, which is never gated.
func (m Material) IsFirstEpisode() bool {
	return m.MaterialType == MaterialTypeVideo && m.Order == 1
}

// IsValidDifficulty checks a difficulty label.
func IsValidDifficulty(d string) bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

// IsValidMaterialType checks a material type label.
func IsValidMaterialType(t string) bool {
	return t == MaterialTypePDF || t == MaterialTypeVideo || t == MaterialTypeEbook
}
