package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/services"
	"github.com/harborline/CruiseLink/utils"
)

// CreateLeadRequest captures a new customer lead
type CreateLeadRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	GroupID       *uint  `json:"group_id"`
	OwnerID       *uint  `json:"owner_id"`
}

// CreateLead records a captured customer. When owner_id is present the
// lead is assigned immediately; otherwise it sits with HQ until assigned.
func CreateLead(c *gin.Context) {
	utils.LogInfo("CreateLead called")
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	lead := models.AffiliateLead{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Status:        models.LeadStatusNew,
		GroupID:       req.GroupID,
	}
	if err := config.DB.Create(&lead).Error; err != nil {
		utils.LogError("Failed to create lead: %v", err)
		utils.InternalServerError(c, "Failed to create lead", nil)
		return
	}

	if req.OwnerID != nil {
		actor := actorFromContext(c)
		assigned, err := ownership.Assign(lead.ID, *req.OwnerID, actor)
		if err != nil {
			utils.LogError("Lead %d created but assignment failed: %v", lead.ID, err)
			utils.HandleError(c, err)
			return
		}
		lead = *assigned
	}

	utils.LogInfo("Lead %d created", lead.ID)
	utils.Created(c, "Lead created", lead)
}

// AssignLead sets the ownership pointer of an unowned lead
func AssignLead(c *gin.Context) {
	utils.LogInfo("AssignLead called")
	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var req struct {
		ToProfileID uint `json:"to_profile_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	lead, err := ownership.Assign(uint(leadID), req.ToProfileID, actorFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, "Lead assigned", lead)
}

// GetLead returns one lead with its transfer history
func GetLead(c *gin.Context) {
	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var lead models.AffiliateLead
	if err := config.DB.Preload("TransferEvents").First(&lead, leadID).Error; err != nil {
		utils.NotFound(c, "Lead not found")
		return
	}

	utils.Success(c, "Lead found", lead)
}

// ListLeads returns leads with pagination, optionally filtered by owner
func ListLeads(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c)

	query := config.DB.Model(&models.AffiliateLead{})
	if ownerID := c.Query("owner_id"); ownerID != "" {
		query = query.Where("manager_id = ? OR agent_id = ?", ownerID, ownerID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count leads", nil)
		return
	}

	var leads []models.AffiliateLead
	if err := query.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&leads).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch leads", nil)
		return
	}

	utils.SuccessWithPagination(c, "Leads fetched", leads, total, page, limit)
}

// actorFromContext derives the acting identity set by the auth
// middleware: an HQ admin or an affiliate profile.
func actorFromContext(c *gin.Context) services.Actor {
	if admin, exists := c.Get("admin"); exists {
		if adminModel, ok := admin.(models.Admin); ok {
			return services.HQActor(adminModel.ID)
		}
	}
	if profile, exists := c.Get("profile"); exists {
		if profileModel, ok := profile.(models.AffiliateProfile); ok {
			return services.ProfileActor(profileModel.ID)
		}
	}
	return services.Actor{}
}
