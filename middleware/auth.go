package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
)

func parseToken(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.LogError("Missing Authorization header")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
		c.Abort()
		return nil, false
	}

	tokenString := strings.Replace(authHeader, "Bearer ", "", 1)
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		utils.LogError("Invalid token: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
		c.Abort()
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		utils.LogError("Invalid token claims")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		c.Abort()
		return nil, false
	}
	return claims, true
}

// AffiliateAuthMiddleware authenticates a branch manager or sales agent
// and sets "profile" in the context.
func AffiliateAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c)
		if !ok {
			return
		}

		profileClaim, ok := claims["profile_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please login for access"})
			c.Abort()
			return
		}
		profileID := uint(profileClaim)
		utils.LogDebug("Authenticating profile ID: %d", profileID)

		var profile models.AffiliateProfile
		if err := config.DB.First(&profile, profileID).Error; err != nil {
			utils.LogError("Profile not found: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found"})
			c.Abort()
			return
		}

		if profile.Status != models.ProfileStatusActive {
			utils.LogError("Inactive profile attempted access: %d", profileID)
			c.JSON(http.StatusForbidden, gin.H{"error": "Profile is not active"})
			c.Abort()
			return
		}

		c.Set("profile", profile)
		c.Next()
	}
}

// ManagerMiddleware requires the authenticated profile to be a branch
// manager.
func ManagerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, exists := c.Get("profile")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile not found in context"})
			c.Abort()
			return
		}

		profileModel, ok := profile.(models.AffiliateProfile)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid profile type"})
			c.Abort()
			return
		}

		if profileModel.Type != models.ProfileTypeBranchManager {
			utils.LogError("Non-manager profile attempted manager access: %d", profileModel.ID)
			c.JSON(http.StatusForbidden, gin.H{"error": "Branch manager access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminAuthMiddleware authenticates an HQ administrator and sets "admin"
// in the context.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c)
		if !ok {
			return
		}

		adminClaim, ok := claims["admin_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		adminID := uint(adminClaim)

		var admin models.Admin
		if err := config.DB.First(&admin, adminID).Error; err != nil {
			utils.LogError("Admin not found: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Admin not found"})
			c.Abort()
			return
		}

		if !admin.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin account is inactive"})
			c.Abort()
			return
		}

		c.Set("admin", admin)
		c.Next()
	}
}
