package authValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"lumos/middleware"
	"lumos/models"
	"lumos/validators/shared"
)

type SignupRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Role      string `json:"role" validate:"omitempty,oneof=student teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SignupRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedSignup"); !ok {
			return err
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		if reqData.Role == "" {
			reqData.Role = models.RoleStudent
		}
		return c.Next()
	}
}

// Login validator middleware
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LoginRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedLogin"); !ok {
			return err
		}

		if reqData.Email == "" && strings.TrimSpace(reqData.Username) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"credentials": "Either email or username is required!",
			})
		}
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		return c.Next()
	}
}
