package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"stayfinder-server/models"
	"stayfinder-server/storage"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Initialize database
	storage.InitializeDB()

	email := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	if name == "" {
		name = "Admin"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error hashing password: %v", err)
	}

	var existing models.User
	query := storage.DB.Where("email = ?", email).Limit(1).Find(&existing)
	if query.Error != nil {
		log.Fatalf("Error looking up user: %v", query.Error)
	}

	if query.RowsAffected > 0 {
		existing.Role = "super_admin"
		existing.Password = string(hashed)
		if err := storage.DB.Save(&existing).Error; err != nil {
			log.Fatalf("Error promoting user: %v", err)
		}
		fmt.Printf("Existing user %s promoted to super_admin\n", email)
		return
	}

	admin := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     "super_admin",
	}
	if err := storage.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Error creating admin user: %v", err)
	}

	fmt.Printf("Admin user %s created successfully\n", email)
}
