package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID                       int        `gorm:"primary_key" json:"id"`
	Name                     string     `gorm:"size:100;not null" json:"name"`
	Email                    string     `gorm:"size:100;not null;unique" json:"email"`
	Password                 string     `gorm:"size:255;not null" json:"-"`
	Role                     UserRole   `gorm:"size:30;not null;default:viewer" json:"role"`
	ProfilePictureUrl        string     `json:"profilePictureUrl"`
	IsEmailVerified          bool       `gorm:"not null;default:false" json:"isEmailVerified"`
	EmailVerificationToken   string     `gorm:"size:64;index" json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`
	PasswordResetToken       string     `gorm:"size:64;index" json:"-"`
	PasswordResetExpires     *time.Time `json:"-"`
	MustChangePassword       bool       `gorm:"not null;default:false" json:"mustChangePassword"`
	PasswordExpiresAt        *time.Time `json:"-"`
	CreatedAt                time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

const minPasswordLength = 6

func appBaseURL() string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	return strings.TrimRight(base, "/")
}

type NewRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUser self-registers a viewer account and mails a 24h verification
// link. Only the sha256 digest of the link token is stored.
func RegisterUser(ctx context.Context, db *gorm.DB, mailer *config.Mailer, input *NewRegistration) error {
	if input == nil || input.Name == "" || input.Email == "" || input.Password == "" {
		return utils.NewValidationError("Please provide name, email, and password.")
	}
	if len(input.Password) < minPasswordLength {
		return utils.NewValidationError("Password must be at least 6 characters.")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.NewConflictError("A user with that email already exists.")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return err
	}
	verificationToken, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	verificationExpires := time.Now().Add(24 * time.Hour)

	user := User{
		Name:                     input.Name,
		Email:                    input.Email,
		Password:                 string(hashed),
		Role:                     UserRoleViewer,
		IsEmailVerified:          false,
		EmailVerificationToken:   utils.HashToken(verificationToken),
		EmailVerificationExpires: &verificationExpires,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}

	verifyUrl := fmt.Sprintf("%s/verify-email/%s", appBaseURL(), verificationToken)
	message := "Welcome to the Financial Manager Platform!\n\n" +
		"Please verify your email by clicking the link below. This link is valid for 24 hours.\n\n" + verifyUrl
	return mailer.Send(user.Email, "Verify your email - Financial Manager Platform", message)
}

type LoginInfo struct {
	Token              string `json:"token"`
	MustChangePassword bool   `json:"mustChangePassword,omitempty"`
}

// Login verifies credentials and issues a signed bearer token. Unverified
// accounts and expired temporary passwords are turned away before a token
// is minted.
func Login(ctx context.Context, db *gorm.DB, email string, password string) (*LoginInfo, error) {
	if email == "" || password == "" {
		return nil, utils.NewValidationError("Please provide email and password.")
	}

	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewAuthenticationError("Invalid credentials.")
		}
		return nil, err
	}
	if !user.IsEmailVerified {
		return nil, utils.NewAuthorizationError("Please verify your email before logging in.")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, utils.NewAuthenticationError("Invalid credentials.")
		}
		return nil, err
	}
	if user.MustChangePassword && user.PasswordExpiresAt != nil && user.PasswordExpiresAt.Before(time.Now()) {
		return nil, utils.NewAuthorizationError("Your temporary password has expired. Please use the Forgot Password link to set a new password.")
	}

	token, err := utils.JwtGenerate(user.ID, user.Name, string(user.Role), user.MustChangePassword)
	if err != nil {
		return nil, err
	}
	return &LoginInfo{Token: token, MustChangePassword: user.MustChangePassword}, nil
}

// VerifyEmail activates the account behind a verification link.
func VerifyEmail(ctx context.Context, db *gorm.DB, token string) error {
	var user User
	err := db.WithContext(ctx).
		Where("email_verification_token = ? AND email_verification_expires > ?", utils.HashToken(token), time.Now()).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError("Verification token is invalid or has expired.")
		}
		return err
	}

	return db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"is_email_verified":          true,
		"email_verification_token":   "",
		"email_verification_expires": nil,
	}).Error
}

// ForgotPassword issues a 15-minute reset link. It reports success even for
// unknown addresses so the endpoint cannot be used to enumerate accounts.
func ForgotPassword(ctx context.Context, db *gorm.DB, mailer *config.Mailer, email string) error {
	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := utils.RandomToken(32)
	if err != nil {
		return err
	}
	resetExpires := time.Now().Add(15 * time.Minute)
	err = db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_reset_token":   utils.HashToken(resetToken),
		"password_reset_expires": resetExpires,
	}).Error
	if err != nil {
		return err
	}

	resetUrl := fmt.Sprintf("%s/reset-password/%s", appBaseURL(), resetToken)
	message := "You requested a password reset. Please click the following link to set a new password. " +
		"This link is valid for 15 minutes.\n\n" + resetUrl
	return mailer.Send(user.Email, "Password Reset Request - Financial Manager Platform", message)
}

// ResetPassword consumes a reset link and sets a fresh password, clearing
// any pending temporary-password constraint.
func ResetPassword(ctx context.Context, db *gorm.DB, token string, password string) error {
	if len(password) < minPasswordLength {
		return utils.NewValidationError("Password is required and must be at least 6 characters.")
	}

	var user User
	err := db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", utils.HashToken(token), time.Now()).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewValidationError("Token is invalid or has expired")
		}
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password":               string(hashed),
		"password_reset_token":   "",
		"password_reset_expires": nil,
		"must_change_password":   false,
		"password_expires_at":    nil,
	}).Error
}

// ChangePassword lets a logged-in user rotate their own password.
func ChangePassword(ctx context.Context, db *gorm.DB, userId int, currentPassword string, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return utils.NewValidationError("Current and new password are required.")
	}
	if len(newPassword) < minPasswordLength {
		return utils.NewValidationError("New password must be at least 6 characters.")
	}

	var user User
	if err := db.WithContext(ctx).Where("id = ?", userId).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("User not found.")
		}
		return err
	}
	if err := utils.ComparePassword(user.Password, currentPassword); err != nil {
		return utils.NewAuthenticationError("Current password is incorrect.")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password":             string(hashed),
		"must_change_password": false,
		"password_expires_at":  nil,
	}).Error
}

type NewUser struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// CreateUser is the admin path: the account is pre-verified and receives a
// temporary password by mail that must be changed within 24 hours.
func CreateUser(ctx context.Context, db *gorm.DB, mailer *config.Mailer, input *NewUser) (*User, error) {
	if input == nil || input.Name == "" || input.Email == "" || !input.Role.Valid() {
		return nil, utils.NewValidationError("Please provide valid name, email, and role.")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewConflictError("User with this email already exists.")
	}

	tempPassword, err := utils.RandomToken(4)
	if err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}
	passwordExpires := time.Now().Add(24 * time.Hour)

	user := User{
		Name:               input.Name,
		Email:              input.Email,
		Role:               input.Role,
		Password:           string(hashed),
		IsEmailVerified:    true,
		MustChangePassword: true,
		PasswordExpiresAt:  &passwordExpires,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	message := "Welcome to the Financial Manager Platform!\n\n" +
		"An account has been created for you by an administrator.\n\n" +
		"Your login details:\nEmail: " + user.Email + "\nTemporary Password: " + tempPassword + "\n\n" +
		"Please log in and set a new password immediately."
	if err := mailer.Send(user.Email, "Welcome! Your Account has been Created", message); err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUsers(ctx context.Context, db *gorm.DB) ([]*User, error) {
	var results []*User
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func GetUser(ctx context.Context, db *gorm.DB, id int) (*User, error) {
	var user User
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("User not found")
		}
		return nil, err
	}
	return &user, nil
}

type UserUpdate struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// UpdateUser patches name/email/role; blank fields keep their value.
func UpdateUser(ctx context.Context, db *gorm.DB, id int, input *UserUpdate) (*User, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Role != "" {
		if !input.Role.Valid() {
			return nil, utils.NewValidationError("Please provide valid name, email, and role.")
		}
		user.Role = input.Role
	}

	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func DeleteUser(ctx context.Context, db *gorm.DB, id int) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.NewNotFoundError("User not found")
	}
	return nil
}

// UpdateProfile is the self-service edit: name, email and optionally a new
// profile picture URL.
func UpdateProfile(ctx context.Context, db *gorm.DB, userId int, name string, email string, pictureUrl string) (*User, error) {
	user, err := GetUser(ctx, db, userId)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if pictureUrl != "" {
		user.ProfilePictureUrl = pictureUrl
	}

	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
