package userValidator

import (
	"github.com/gofiber/fiber/v2"

	"lumos/validators/shared"
)

// UpdateProfileRequest carries both account fields and learning preferences.
// Pointer fields are left untouched when absent from the body.
type UpdateProfileRequest struct {
	FirstName            *string `json:"first_name" validate:"omitempty,max=150"`
	LastName             *string `json:"last_name" validate:"omitempty,max=150"`
	Bio                  *string `json:"bio" validate:"omitempty,max=2000"`
	PhoneNumber          *string `json:"phone_number" validate:"omitempty,max=20"`
	DateOfBirth          *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	LearningGoals        *string `json:"learning_goals"`
	PreferredSubjects    *string `json:"preferred_subjects" validate:"omitempty,max=500"`
	Timezone             *string `json:"timezone" validate:"omitempty,timezone"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	EmailNotifications   *bool   `json:"email_notifications"`
}

func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedProfile"); !ok {
			return err
		}
		return c.Next()
	}
}
