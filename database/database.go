package database

import (
	"fmt"
	"log"
	"os"

	"github.com/manasaistanly/campus-approval-system/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	runMigrations(db)
	seedReasons(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.OTP{},
		&models.BonafideReason{},
		&models.BonafideRequest{},
		&models.ApprovalLog{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}

// seedReasons inserts the default certificate purposes if missing.
func seedReasons(db *gorm.DB) {
	reasons := []models.BonafideReason{
		{Reason: "Internship", Category: "Academic"},
		{Reason: "Industrial Visit", Category: "Academic"},
		{Reason: "Project Work", Category: "Academic"},
		{Reason: "Visa Application", Category: "Travel"},
		{Reason: "Passport Application", Category: "Travel"},
		{Reason: "Bus Pass", Category: "Transport"},
		{Reason: "Education Loan", Category: "Financial"},
		{Reason: "Scholarship Application", Category: "Financial"},
		{Reason: "Bank Account Opening", Category: "Financial"},
	}

	for _, r := range reasons {
		var existing models.BonafideReason
		if err := db.Where("reason = ?", r.Reason).Attrs(models.BonafideReason{Category: r.Category, IsActive: true}).FirstOrCreate(&existing, models.BonafideReason{Reason: r.Reason}).Error; err != nil {
			log.Printf("Error seeding reason %q: %v", r.Reason, err)
		}
	}
}
