package userValidator

import (
	"strings"

	"github.com/manasaistanly/campus-approval-system/middleware"

	"github.com/gofiber/fiber/v2"
)

// UpdateRole validates an admin changing a user's role or placement.
func UpdateRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			UserID     uint    `json:"userId"`
			Role       string  `json:"role"`
			Department *string `json:"department"`
			Section    *string `json:"section"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.UserID == 0 {
			errors["userId"] = "User ID is required!"
		}

		validRoles := map[string]bool{
			"STUDENT": true, "TUTOR": true, "HOD": true,
			"PRINCIPAL": true, "OFFICE": true, "ADMIN": true,
		}
		reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))
		if !validRoles[reqData.Role] {
			errors["role"] = "Invalid role! Allowed: STUDENT, TUTOR, HOD, PRINCIPAL, OFFICE, ADMIN"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRoleUpdate", reqData)
		return c.Next()
	}
}
