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

// AffiliateLoginRequest represents the affiliate login request
type AffiliateLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AffiliateLogin authenticates a branch manager or sales agent
func AffiliateLogin(c *gin.Context) {
	utils.LogInfo("AffiliateLogin called")
	var req AffiliateLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	var profile models.AffiliateProfile
	if err := config.DB.Where("email = ?", req.Email).First(&profile).Error; err != nil {
		utils.LogError("Profile not found for email: %s: %v", req.Email, err)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	if profile.Status != models.ProfileStatusActive {
		utils.LogError("Non-active profile attempted login: %s (%s)", profile.Email, profile.Status)
		utils.Forbidden(c, "Profile is not active")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		utils.LogError("Invalid password for profile: %s", profile.Email)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	profile.LastLoginAt = time.Now()
	if err := config.DB.Save(&profile).Error; err != nil {
		utils.LogError("Failed to update last login for profile: %s: %v", profile.Email, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"profile_id": profile.ID,
		"exp":        time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		utils.LogError("Failed to sign JWT token for profile: %s: %v", profile.Email, err)
		utils.InternalServerError(c, "Failed to generate token", err.Error())
		return
	}

	utils.LogInfo("Affiliate login successful: %s", profile.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": tokenString,
		"profile": gin.H{
			"id":             profile.ID,
			"name":           profile.Name,
			"email":          profile.Email,
			"type":           profile.Type,
			"affiliate_code": profile.AffiliateCode,
		},
	})
}
