package userController

import (
	"log"

	"github.com/manasaistanly/campus-approval-system/database"
	"github.com/manasaistanly/campus-approval-system/middleware"
	"github.com/manasaistanly/campus-approval-system/models"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the logged-in user's own record.
func GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

// AdminListUsers lists every account for the admin dashboard.
func AdminListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.Database.Db.
		Select("id", "email", "full_name", "role", "department", "section", "register_number", "year", "is_email_verified").
		Where("is_deleted = ?", false).
		Order("email ASC").
		Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", users)
}

// AdminUpdateRole promotes or reassigns a user. Department and section are
// what scope a tutor's visibility, so they can be set in the same call.
func AdminUpdateRole(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRoleUpdate").(*struct {
		UserID     uint    `json:"userId"`
		Role       string  `json:"role"`
		Department *string `json:"department"`
		Section    *string `json:"section"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", reqData.UserID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	user.Role = reqData.Role
	if reqData.Department != nil {
		user.Department = *reqData.Department
	}
	if reqData.Section != nil {
		user.Section = *reqData.Section
	}

	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("Error updating user role: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}

	user.Password = ""

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", user)
}
