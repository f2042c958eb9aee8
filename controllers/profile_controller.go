package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"golang.org/x/crypto/bcrypt"
)

// ApplyProfileRequest is an onboarding application for the network
type ApplyProfileRequest struct {
	Type          string `json:"type" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Phone         string `json:"phone"`
	BankName      string `json:"bank_name"`
	BankAccountNo string `json:"bank_account_no"`
	BankHolder    string `json:"bank_holder"`
}

// ApplyProfile registers an onboarding application in PENDING status
func ApplyProfile(c *gin.Context) {
	utils.LogInfo("ApplyProfile called")
	var req ApplyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid application request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	profileType := models.ProfileType(strings.ToUpper(req.Type))
	if profileType != models.ProfileTypeBranchManager && profileType != models.ProfileTypeSalesAgent {
		utils.BadRequest(c, "Type must be BRANCH_MANAGER or SALES_AGENT", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalServerError(c, "Failed to process password", nil)
		return
	}

	profile := models.AffiliateProfile{
		Type:          profileType,
		Status:        models.ProfileStatusPending,
		Name:          req.Name,
		Email:         req.Email,
		Password:      string(hashed),
		Phone:         req.Phone,
		BankName:      req.BankName,
		BankAccountNo: req.BankAccountNo,
		BankHolder:    req.BankHolder,
	}
	if err := config.DB.Create(&profile).Error; err != nil {
		utils.LogError("Failed to create profile application: %v", err)
		utils.Conflict(c, "A profile with this email may already exist", nil)
		return
	}

	utils.LogInfo("Profile application %d created for %s", profile.ID, profile.Email)
	utils.Created(c, "Application submitted", gin.H{
		"id":     profile.ID,
		"type":   profile.Type,
		"status": profile.Status,
	})
}

// ApproveProfile activates a PENDING application and issues its unique
// affiliate code
func ApproveProfile(c *gin.Context) {
	utils.LogInfo("ApproveProfile called")
	profileID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid profile ID", nil)
		return
	}

	var profile models.AffiliateProfile
	if err := config.DB.First(&profile, profileID).Error; err != nil {
		utils.NotFound(c, "Profile not found")
		return
	}

	if profile.Status != models.ProfileStatusPending {
		utils.Conflict(c, "Only pending applications can be approved", gin.H{"status": profile.Status})
		return
	}

	now := time.Now()
	profile.Status = models.ProfileStatusActive
	profile.ApprovedAt = &now
	profile.AffiliateCode = strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])

	if err := config.DB.Save(&profile).Error; err != nil {
		utils.LogError("Failed to approve profile %d: %v", profile.ID, err)
		utils.InternalServerError(c, "Failed to approve profile", nil)
		return
	}

	utils.LogInfo("Profile %d approved with code %s", profile.ID, profile.AffiliateCode)
	utils.Success(c, "Profile approved", gin.H{
		"id":             profile.ID,
		"status":         profile.Status,
		"affiliate_code": profile.AffiliateCode,
	})
}

// TerminateProfile flips an ACTIVE profile to INACTIVE on contract
// termination. Profiles are never deleted while sales history references
// them; any ACTIVE agent relations are disconnected.
func TerminateProfile(c *gin.Context) {
	utils.LogInfo("TerminateProfile called")
	profileID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid profile ID", nil)
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to begin transaction", nil)
		return
	}

	var profile models.AffiliateProfile
	if err := tx.First(&profile, profileID).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Profile not found")
		return
	}

	if profile.Status != models.ProfileStatusActive {
		tx.Rollback()
		utils.Conflict(c, "Only active profiles can be terminated", gin.H{"status": profile.Status})
		return
	}

	now := time.Now()
	profile.Status = models.ProfileStatusInactive
	profile.TerminatedAt = &now
	if err := tx.Save(&profile).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to terminate profile", nil)
		return
	}

	// Disconnect any live relations on either side of the hierarchy.
	if err := tx.Model(&models.AffiliateRelation{}).
		Where("(manager_id = ? OR agent_id = ?) AND status = ?", profile.ID, profile.ID, models.RelationStatusActive).
		Updates(map[string]interface{}{
			"status":          models.RelationStatusDisconnected,
			"disconnected_at": now,
		}).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to disconnect relations", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to save changes", nil)
		return
	}

	utils.LogInfo("Profile %d terminated", profile.ID)
	utils.Success(c, "Profile terminated", gin.H{
		"id":     profile.ID,
		"status": profile.Status,
	})
}

// GetProfile returns one profile with its hierarchy context
func GetProfile(c *gin.Context) {
	profileID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid profile ID", nil)
		return
	}

	profile, err := store.Profiles().GetProfile(uint(profileID))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	response := gin.H{
		"id":             profile.ID,
		"type":           profile.Type,
		"status":         profile.Status,
		"name":           profile.Name,
		"email":          profile.Email,
		"affiliate_code": profile.AffiliateCode,
		"created_at":     profile.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	switch profile.Type {
	case models.ProfileTypeSalesAgent:
		manager, err := store.Profiles().GetActiveManager(profile.ID)
		if err == nil && manager != nil {
			response["manager"] = gin.H{"id": manager.ID, "name": manager.Name}
		}
	case models.ProfileTypeBranchManager:
		agents, err := store.Profiles().GetActiveAgents(profile.ID)
		if err == nil {
			list := make([]gin.H, 0, len(agents))
			for _, agent := range agents {
				list = append(list, gin.H{"id": agent.ID, "name": agent.Name})
			}
			response["agents"] = list
		}
	}

	utils.Success(c, "Profile found", response)
}

// GetMyProfile returns the authenticated affiliate's own profile
func GetMyProfile(c *gin.Context) {
	profileVal, exists := c.Get("profile")
	if !exists {
		utils.Unauthorized(c, "Profile not found in context")
		return
	}
	me := profileVal.(models.AffiliateProfile)

	response := gin.H{
		"id":             me.ID,
		"type":           me.Type,
		"status":         me.Status,
		"name":           me.Name,
		"email":          me.Email,
		"phone":          me.Phone,
		"affiliate_code": me.AffiliateCode,
		"bank_name":      me.BankName,
		"created_at":     me.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if me.Type == models.ProfileTypeSalesAgent {
		manager, err := store.Profiles().GetActiveManager(me.ID)
		if err == nil && manager != nil {
			response["manager"] = gin.H{"id": manager.ID, "name": manager.Name}
		}
	}

	utils.Success(c, "Profile found", response)
}

// ListProfiles returns profiles with pagination
func ListProfiles(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c)

	query := config.DB.Model(&models.AffiliateProfile{})
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", strings.ToUpper(t))
	}
	if s := c.Query("status"); s != "" {
		query = query.Where("status = ?", strings.ToUpper(s))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count profiles", nil)
		return
	}

	var profiles []models.AffiliateProfile
	if err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch profiles", nil)
		return
	}

	utils.SuccessWithPagination(c, "Profiles fetched", profiles, total, page, limit)
}
