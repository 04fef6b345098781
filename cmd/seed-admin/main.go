// seed-admin creates or updates the bootstrap administrator account.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//   ADMIN_EMAIL=admin@example.com ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/models"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail = "admin@example.com"
	defaultAdminName  = "Administrator"
)

func main() {
	ctx := context.Background()
	db := config.ConnectDatabaseWithRetry()

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = defaultAdminEmail
	}
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = defaultAdminName
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	models.MigrateTable(db)

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Name:            name,
			Email:           email,
			Password:        string(hashed),
			Role:            models.UserRoleAdmin,
			IsEmailVerified: true,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: email=%q\n", email)
		return
	}

	// Update existing user: ensure password and admin role.
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(map[string]any{
		"password":             string(hashed),
		"name":                 name,
		"role":                 models.UserRoleAdmin,
		"is_email_verified":    true,
		"must_change_password": false,
		"password_expires_at":  nil,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user: email=%q\n", email)
}
