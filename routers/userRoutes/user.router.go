package userRoutes

import (
	userControllers "github.com/manasaistanly/campus-approval-system/controllers/userControllers"
	"github.com/manasaistanly/campus-approval-system/middleware"
	userValidators "github.com/manasaistanly/campus-approval-system/validators/user"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware)

	userGroup.Get("/profile", userControllers.GetProfile)
	userGroup.Get("/admin/list", middleware.RequireRoles("ADMIN"), userControllers.AdminListUsers)
	userGroup.Patch("/admin/role", middleware.RequireRoles("ADMIN"), userValidators.UpdateRole(), userControllers.AdminUpdateRole)
}
