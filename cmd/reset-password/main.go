package main

import (
	"flag"
	"log"

	"go-pos-backend/internal/model"
	"go-pos-backend/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Emergency password reset for a locked-out account. Run from a trusted
// shell only; it bypasses the old-password check.
func main() {
	email := flag.String("email", "admin@example.com", "account email")
	password := flag.String("password", "admin123", "new password")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	db := database.ConnectDB()

	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("User %s not found in database: %v", *email, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", *email)
}
