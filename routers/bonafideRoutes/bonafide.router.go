package bonafideRoutes

import (
	bonafideControllers "github.com/manasaistanly/campus-approval-system/controllers/bonafide"
	"github.com/manasaistanly/campus-approval-system/middleware"
	bonafideValidators "github.com/manasaistanly/campus-approval-system/validators/bonafide"

	"github.com/gofiber/fiber/v2"
)

func SetupBonafideRoutes(app *fiber.App) {
	bonafide := app.Group("/bonafide", middleware.JWTMiddleware)

	bonafide.Post("/",
		middleware.RequireRoles("STUDENT"),
		bonafideValidators.CreateRequest(),
		bonafideControllers.CreateRequest)
	bonafide.Get("/reasons", bonafideControllers.ListPurposes)
	bonafide.Get("/", bonafideControllers.ListRequests)
	bonafide.Get("/pending",
		middleware.RequireRoles("TUTOR", "HOD", "PRINCIPAL", "OFFICE"),
		bonafideControllers.ListPending)
	bonafide.Patch("/:id/approve",
		middleware.RequireRoles("TUTOR", "HOD", "PRINCIPAL", "OFFICE"),
		bonafideControllers.Approve)
	bonafide.Patch("/:id/reject",
		middleware.RequireRoles("TUTOR", "HOD", "PRINCIPAL", "OFFICE"),
		bonafideValidators.Reject(),
		bonafideControllers.Reject)
	bonafide.Post("/:id/fees",
		middleware.RequireRoles("OFFICE"),
		bonafideValidators.SubmitFees(),
		bonafideControllers.SubmitFees)
	bonafide.Get("/:id/download", bonafideControllers.Download)
}
