package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
)

// AttachAgentRequest links an agent to a manager
type AttachAgentRequest struct {
	ManagerID uint `json:"manager_id" binding:"required"`
	AgentID   uint `json:"agent_id" binding:"required"`
}

// AttachAgent creates an ACTIVE manager-agent relation. An agent may have
// at most one ACTIVE relation; reattachment requires detaching first.
func AttachAgent(c *gin.Context) {
	utils.LogInfo("AttachAgent called")
	var req AttachAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to begin transaction", nil)
		return
	}

	var manager models.AffiliateProfile
	if err := tx.First(&manager, req.ManagerID).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Manager not found")
		return
	}
	if manager.Type != models.ProfileTypeBranchManager || manager.Status != models.ProfileStatusActive {
		tx.Rollback()
		utils.BadRequest(c, "Manager must be an active branch manager", nil)
		return
	}

	var agent models.AffiliateProfile
	if err := tx.First(&agent, req.AgentID).Error; err != nil {
		tx.Rollback()
		utils.NotFound(c, "Agent not found")
		return
	}
	if agent.Type != models.ProfileTypeSalesAgent || agent.Status != models.ProfileStatusActive {
		tx.Rollback()
		utils.BadRequest(c, "Agent must be an active sales agent", nil)
		return
	}

	// Enforce the single-ACTIVE-relation invariant before creating.
	var activeCount int64
	if err := tx.Model(&models.AffiliateRelation{}).
		Where("agent_id = ? AND status = ?", agent.ID, models.RelationStatusActive).
		Count(&activeCount).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to check existing relations", nil)
		return
	}
	if activeCount > 0 {
		tx.Rollback()
		utils.Conflict(c, "Agent already has an active manager", nil)
		return
	}

	relation := models.AffiliateRelation{
		ManagerID:   manager.ID,
		AgentID:     agent.ID,
		Status:      models.RelationStatusActive,
		ConnectedAt: time.Now(),
	}
	if err := tx.Create(&relation).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to create relation", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to save changes", nil)
		return
	}

	utils.LogInfo("Agent %d attached to manager %d", agent.ID, manager.ID)
	utils.Created(c, "Agent attached", gin.H{
		"relation_id":  relation.ID,
		"manager_id":   relation.ManagerID,
		"agent_id":     relation.AgentID,
		"connected_at": relation.ConnectedAt.Format("2006-01-02 15:04:05"),
	})
}

// DetachAgent flips the agent's ACTIVE relation to DISCONNECTED. History
// is preserved; the row is stamped, never deleted.
func DetachAgent(c *gin.Context) {
	utils.LogInfo("DetachAgent called")
	agentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid agent ID", nil)
		return
	}

	var relation models.AffiliateRelation
	if err := config.DB.
		Where("agent_id = ? AND status = ?", agentID, models.RelationStatusActive).
		First(&relation).Error; err != nil {
		utils.NotFound(c, "Agent has no active manager relation")
		return
	}

	now := time.Now()
	relation.Status = models.RelationStatusDisconnected
	relation.DisconnectedAt = &now
	if err := config.DB.Save(&relation).Error; err != nil {
		utils.LogError("Failed to detach agent %d: %v", agentID, err)
		utils.InternalServerError(c, "Failed to detach agent", nil)
		return
	}

	utils.LogInfo("Agent %d detached from manager %d", relation.AgentID, relation.ManagerID)
	utils.Success(c, "Agent detached", gin.H{
		"relation_id":     relation.ID,
		"manager_id":      relation.ManagerID,
		"agent_id":        relation.AgentID,
		"disconnected_at": now.Format("2006-01-02 15:04:05"),
	})
}

// ListRelationHistory returns all relation rows for an agent, newest
// first, including disconnected ones
func ListRelationHistory(c *gin.Context) {
	agentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid agent ID", nil)
		return
	}

	var relations []models.AffiliateRelation
	if err := config.DB.
		Where("agent_id = ?", agentID).
		Order("connected_at DESC").
		Find(&relations).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch relation history", nil)
		return
	}

	utils.Success(c, "Relation history fetched", gin.H{"relations": relations})
}
