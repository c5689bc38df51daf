package main

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"lumos/models"
	"lumos/utils"
)

type catalogFile struct {
	Categories []categorySeed `yaml:"categories"`
	Courses    []courseSeed   `yaml:"courses"`
}

type categorySeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type courseSeed struct {
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	Category      string         `yaml:"category"`
	Instructor    string         `yaml:"instructor"` // email
	Price         string         `yaml:"price"`
	Difficulty    string         `yaml:"difficulty"`
	DurationHours uint           `yaml:"duration_hours"`
	Published     bool           `yaml:"published"`
	Featured      bool           `yaml:"featured"`
	Materials     []materialSeed `yaml:"materials"`
}

type materialSeed struct {
	Title    string `yaml:"title"`
	Type     string `yaml:"type"`
	FileURL  string `yaml:"file_url"`
	Order    uint   `yaml:"order"`
	Free     bool   `yaml:"free"`
	Price    string `yaml:"price"`
	Duration *uint  `yaml:"duration_minutes"`
}

type seedResult struct {
	categoriesCreated, categoriesUpdated int
	coursesCreated, coursesUpdated       int
	materialsCreated, materialsUpdated   int
}

func parsePrice(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, errors.Errorf("negative price %s", s)
	}
	return price, nil
}

// seedCatalog upserts categories by name, courses by title and materials by title within
// their course. Everything is written in one transaction.
func seedCatalog(db *gorm.DB, r io.Reader) (seedResult, error) {
	var res seedResult
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return res, errors.Wrap(err, "decoding catalog")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, c := range file.Categories {
			if err := seedCategory(tx, c, &res); err != nil {
				return errors.Wrapf(err, "category %q", c.Name)
			}
		}
		for _, c := range file.Courses {
			if err := seedCourse(tx, c, &res); err != nil {
				return errors.Wrapf(err, "course %q", c.Title)
			}
		}
		return nil
	})
	return res, err
}

func seedCategory(tx *gorm.DB, seed categorySeed, res *seedResult) error {
	if strings.TrimSpace(seed.Name) == "" {
		return errors.New("name is required")
	}
	var existing models.Category
	err := tx.Where("name = ?", seed.Name).First(&existing).Error
	if err == nil {
		res.categoriesUpdated++
		return tx.Model(&existing).Update("description", seed.Description).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	slug, err := utils.UniqueSlug(tx, &models.Category{}, seed.Name)
	if err != nil {
		return err
	}
	res.categoriesCreated++
	return tx.Create(&models.Category{Name: seed.Name, Slug: slug, Description: seed.Description}).Error
}

func seedCourse(tx *gorm.DB, seed courseSeed, res *seedResult) error {
	if !models.IsValidDifficulty(seed.Difficulty) {
		return errors.Errorf("invalid difficulty %q", seed.Difficulty)
	}
	price, err := parsePrice(seed.Price)
	if err != nil {
		return err
	}

	var category models.Category
	if err := tx.Where("name = ?", seed.Category).First(&category).Error; err != nil {
		return errors.Wrapf(err, "category %q", seed.Category)
	}
	var instructor models.User
	if err := tx.Where("email = ?", strings.ToLower(seed.Instructor)).First(&instructor).Error; err != nil {
		return errors.Wrapf(err, "instructor %q", seed.Instructor)
	}

	fields := models.Course{
		Title:         seed.Title,
		Description:   seed.Description,
		InstructorID:  instructor.ID,
		CategoryID:    category.ID,
		Price:         price,
		Difficulty:    seed.Difficulty,
		DurationHours: seed.DurationHours,
		IsPublished:   seed.Published,
		IsFeatured:    seed.Featured,
	}

	var course models.Course
	err = tx.Where("title = ?", seed.Title).First(&course).Error
	switch {
	case err == nil:
		fields.ID = course.ID
		if err := tx.Model(&course).
			Select("description", "instructor_id", "category_id", "price", "difficulty", "duration_hours", "is_published", "is_featured").
			Updates(&fields).Error; err != nil {
			return err
		}
		res.coursesUpdated++
	case errors.Is(err, gorm.ErrRecordNotFound):
		if fields.Slug, err = utils.UniqueSlug(tx, &models.Course{}, seed.Title); err != nil {
			return err
		}
		if err := tx.Create(&fields).Error; err != nil {
			return err
		}
		course = fields
		res.coursesCreated++
	default:
		return err
	}

	for _, m := range seed.Materials {
		if err := seedMaterial(tx, &course, m, res); err != nil {
			return errors.Wrapf(err, "material %q", m.Title)
		}
	}
	return nil
}

func seedMaterial(tx *gorm.DB, course *models.Course, seed materialSeed, res *seedResult) error {
	if !models.IsValidMaterialType(seed.Type) {
		return errors.Errorf("invalid material type %q", seed.Type)
	}
	price, err := parsePrice(seed.Price)
	if err != nil {
		return err
	}

	fields := models.Material{
		CourseID:        course.ID,
		Title:           seed.Title,
		MaterialType:    seed.Type,
		FileURL:         seed.FileURL,
		Order:           seed.Order,
		IsFree:          seed.Free,
		Price:           price,
		DurationMinutes: seed.Duration,
	}

	var material models.Material
	err = tx.Where("course_id = ? AND title = ?", course.ID, seed.Title).First(&material).Error
	switch {
	case err == nil:
		fields.ID = material.ID
		res.materialsUpdated++
		return tx.Model(&material).
			Select("material_type", "file_url", "sort_order", "is_free", "price", "duration_minutes").
			Updates(&fields).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		res.materialsCreated++
		return tx.Create(&fields).Error
	}
	return err
}
