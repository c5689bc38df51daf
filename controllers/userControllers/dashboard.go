package userController

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
)

// Dashboard shows a role specific overview for the caller
func Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	db := database.Database.Db

	var data fiber.Map
	var err error
	switch {
	case user.IsTeacher():
		data, err = teacherDashboard(db, user)
	case user.Role == models.RoleStudent, user.Role == models.RoleTeacher:
		data, err = studentDashboard(db, user)
	default:
		data, err = summaryDashboard(db)
	}
	if err != nil {
		logger.Error(err, "building dashboard failed", map[string]interface{}{"user_id": user.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load dashboard!", nil)
	}

	data["role"] = user.Role
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", data)
}

func studentDashboard(db *gorm.DB, user *models.User) (fiber.Map, error) {
	var enrollments []models.Enrollment
	if err := db.Preload("Course").
		Where("student_id = ? AND is_active = ?", user.ID, true).
		Order("enrolled_at desc").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	var payments []payment.Payment
	if err := db.Preload("Course").Preload("Material.Course").
		Where("user_id = ?", user.ID).
		Order("created_at desc").Limit(5).
		Find(&payments).Error; err != nil {
		return nil, err
	}

	recent := make([]fiber.Map, 0, len(payments))
	for _, p := range payments {
		recent = append(recent, fiber.Map{
			"id":         p.ID,
			"item_name":  p.ItemName(),
			"amount":     p.Amount,
			"currency":   p.Currency,
			"status":     p.Status,
			"created_at": p.CreatedAt,
		})
	}

	return fiber.Map{
		"enrollments":     enrollments,
		"recent_payments": recent,
	}, nil
}

// ownRevenue matches completed payments for a teacher's courses or their materials
func ownRevenue(db *gorm.DB, teacherID uint) *gorm.DB {
	ownCourses := db.Model(&models.Course{}).Select("id").Where("instructor_id = ?", teacherID)
	ownMaterials := db.Model(&models.Material{}).Select("id").Where("course_id IN (?)", ownCourses)
	return db.Model(&payment.Payment{}).
		Where("status = ?", payment.StatusCompleted).
		Where(db.Where("course_id IN (?)", ownCourses).Or("material_id IN (?)", ownMaterials))
}

func teacherDashboard(db *gorm.DB, user *models.User) (fiber.Map, error) {
	var courses []models.Course
	if err := db.Where("instructor_id = ?", user.ID).Order("created_at desc").Find(&courses).Error; err != nil {
		return nil, err
	}

	var totalEnrollments int64
	if err := db.Model(&models.Enrollment{}).
		Where("course_id IN (?)", db.Model(&models.Course{}).Select("id").Where("instructor_id = ?", user.ID)).
		Count(&totalEnrollments).Error; err != nil {
		return nil, err
	}

	totalRevenue, err := payment.SumAmount(ownRevenue(db, user.ID))
	if err != nil {
		return nil, err
	}
	monthRevenue, err := payment.SumAmount(ownRevenue(db, user.ID).Where("completed_at >= ?", now.BeginningOfMonth()))
	if err != nil {
		return nil, err
	}

	return fiber.Map{
		"courses":           courses,
		"total_enrollments": totalEnrollments,
		"total_revenue":     totalRevenue,
		"monthly_revenue":   monthRevenue,
	}, nil
}

func summaryDashboard(db *gorm.DB) (fiber.Map, error) {
	var users, courses, enrollments, pendingReviews int64
	for _, q := range []struct {
		model interface{}
		where string
		arg   bool
		out   *int64
	}{
		{&models.User{}, "", false, &users},
		{&models.Course{}, "", false, &courses},
		{&models.Enrollment{}, "is_active = ?", true, &enrollments},
		{&models.Review{}, "is_approved = ?", false, &pendingReviews},
	} {
		tx := db.Model(q.model)
		if q.where != "" {
			tx = tx.Where(q.where, q.arg)
		}
		if err := tx.Count(q.out).Error; err != nil {
			return nil, err
		}
	}
	return fiber.Map{
		"total_users":       users,
		"total_courses":     courses,
		"total_enrollments": enrollments,
		"pending_reviews":   pendingReviews,
	}, nil
}

// Home is the public landing data
func Home(c *fiber.Ctx) error {
	db := database.Database.Db

	var featured []models.Course
	db.Preload("Instructor").Preload("Category").
		Where("is_published = ?", true).
		Order("created_at desc").Limit(6).
		Find(&featured)

	var totalCourses, totalStudents int64
	db.Model(&models.Course{}).Where("is_published = ?", true).Count(&totalCourses)
	db.Model(&models.Enrollment{}).Distinct("student_id").Count(&totalStudents)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Home fetched successfully!", fiber.Map{
		"featured_courses": featured,
		"total_courses":    totalCourses,
		"total_students":   totalStudents,
	})
}
