package main

import (
	"flag"
	"log"

	"go-scanify-pos/internal/model"
	"go-scanify-pos/pkg/database"
	"go-scanify-pos/pkg/jwt"

	"github.com/joho/godotenv"
)

// Seeds one staff member and prints a signed token for it, so a fresh
// install can drive the scan/bill flow before the auth service is wired.
func main() {
	name := flag.String("name", "Demo Staff", "staff display name")
	email := flag.String("email", "staff@example.com", "staff email (unique)")
	password := flag.String("password", "staff123", "initial password")
	phone := flag.String("phone", "", "phone number")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.Staff{})

	// 3. Create staff (skip if the email already exists)
	var existing model.Staff
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("Staff %s already exists (id %s)", *email, existing.ID)
	}

	staff := &model.Staff{
		Name:        *name,
		Email:       *email,
		PhoneNumber: *phone,
		IsActive:    true,
	}
	if err := staff.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(staff).Error; err != nil {
		log.Fatalf("Failed to create staff: %v", err)
	}

	token, err := jwt.GenerateToken(staff.ID, staff.Email, staff.Name)
	if err != nil {
		log.Fatalf("Staff created (%s) but token generation failed: %v", staff.ID, err)
	}

	log.Printf("Staff created: %s <%s> (id %s)", staff.Name, staff.Email, staff.ID)
	log.Printf("Bearer token (24h): %s", token)
}
