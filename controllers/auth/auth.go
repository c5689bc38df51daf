package authController

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lumos/config"
	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/utils"
	authValidator "lumos/validators/auth"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}
	if err := db.Where("username = ?", reqData.Username).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already taken!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.Error(err, "hashing password failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Username:  reqData.Username,
		Email:     reqData.Email,
		FirstName: reqData.FirstName,
		LastName:  reqData.LastName,
		Password:  string(hashedPassword),
		Role:      reqData.Role,
		IsActive:  true,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		profile := models.UserProfile{UserID: newUser.ID, Timezone: "UTC", NotificationsEnabled: true, EmailNotifications: true}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		newUser.Profile = &profile
		return nil
	})
	if err != nil {
		logger.Error(err, "saving user failed", map[string]interface{}{"email": newUser.Email})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.FullName())

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	db := database.Database.Db.Where("is_active = ?", true)
	var result *gorm.DB
	if reqData.Email != "" {
		result = db.Where("email = ?", reqData.Email).First(&user)
	} else {
		result = db.Where("username = ?", reqData.Username).First(&user)
	}
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()
	if err := database.Database.Db.Model(&user).Update("last_login", now).Error; err != nil {
		logger.Warn("saving last login for user %d failed: %v", user.ID, err)
	}

	ip := c.IP()
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	device := c.Get(fiber.HeaderUserAgent)
	if len(device) > 255 {
		device = device[:255]
	}
	record := models.LoginRecord{UserID: user.ID, IPAddress: ip, Device: device, LoggedAt: now}
	if err := database.Database.Db.Create(&record).Error; err != nil {
		logger.Warn("saving login record for user %d failed: %v", user.ID, err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Username, user.Role, user.Email)
	if err != nil {
		logger.Error(err, "generating token failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  user,
	})
}
