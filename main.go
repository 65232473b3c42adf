package main

import (
	"log"

	"github.com/manasaistanly/campus-approval-system/config"
	bonafideControllers "github.com/manasaistanly/campus-approval-system/controllers/bonafide"
	"github.com/manasaistanly/campus-approval-system/database"
	"github.com/manasaistanly/campus-approval-system/repository"
	authRoutes "github.com/manasaistanly/campus-approval-system/routers/authRoutes"
	bonafideRoutes "github.com/manasaistanly/campus-approval-system/routers/bonafideRoutes"
	userRoutes "github.com/manasaistanly/campus-approval-system/routers/userRoutes"
	"github.com/manasaistanly/campus-approval-system/services"
	"github.com/manasaistanly/campus-approval-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	repo := repository.NewBonafideRepo(database.Database.Db)
	bonafideControllers.Service = services.NewBonafideService(
		repo,
		utils.NewEmailNotifier(),
		utils.NewCertificateRenderer(),
	)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve uploaded documents
	app.Static("/uploads", config.AppConfig.UploadDir)

	authRoutes.SetupAuthRoutes(app)
	bonafideRoutes.SetupBonafideRoutes(app)
	userRoutes.SetupUserRoutes(app)

	utils.StartReminderScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
