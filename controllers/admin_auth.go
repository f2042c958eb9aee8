package controllers

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminLoginRequest represents the admin login request
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin handles HQ administrator authentication
func AdminLogin(c *gin.Context) {
	utils.LogInfo("AdminLogin called")
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	var admin models.Admin
	if err := config.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		utils.LogError("Admin not found for email: %s: %v", req.Email, err)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	if !admin.IsActive {
		utils.LogError("Inactive admin account attempted login: %s", admin.Email)
		utils.Forbidden(c, "Admin account is inactive")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		utils.LogError("Invalid password for admin: %s", admin.Email)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	admin.LastLogin = time.Now()
	if err := config.DB.Save(&admin).Error; err != nil {
		utils.LogError("Failed to update last login for admin: %s: %v", admin.Email, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": admin.ID,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		utils.LogError("JWT secret not configured")
		utils.InternalServerError(c, "JWT secret not configured", nil)
		return
	}

	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		utils.LogError("Failed to sign JWT token for admin: %s: %v", admin.Email, err)
		utils.InternalServerError(c, "Failed to generate token", err.Error())
		return
	}

	utils.LogInfo("Admin login successful: %s", admin.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": tokenString,
		"admin": gin.H{
			"id":        admin.ID,
			"email":     admin.Email,
			"firstName": admin.FirstName,
			"lastName":  admin.LastName,
		},
	})
}

// CreateSampleAdmin seeds a default HQ admin account when none exists
func CreateSampleAdmin() error {
	var count int64
	if err := config.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_INITIAL_PASSWORD")
	if password == "" {
		password = "changeme123"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Admin{
		Email:     "admin@cruiselink.io",
		Password:  string(hashed),
		FirstName: "HQ",
		LastName:  "Admin",
		IsActive:  true,
	}
	if err := config.DB.Create(&admin).Error; err != nil {
		return err
	}
	utils.LogInfo("Seeded default admin account: %s", admin.Email)
	return nil
}
