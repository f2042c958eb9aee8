package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/utils"
)

// RecallLead moves ownership of one lead up a hierarchy level. An HQ
// admin recalls to the unowned state; a branch manager recalls one of
// their own agents' leads to themself.
func RecallLead(c *gin.Context) {
	utils.LogInfo("RecallLead called")
	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	actor := actorFromContext(c)
	if actor.AdminID == nil && actor.ProfileID == nil {
		utils.Unauthorized(c, "No acting identity in context")
		return
	}

	lead, err := ownership.Recall(uint(leadID), actor)
	if err != nil {
		utils.LogError("Recall of lead %d failed: %v", leadID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Lead %d recalled", leadID)
	utils.Success(c, "Lead recalled", lead)
}

// RecallLeadsRequest is a batch recall of several leads
type RecallLeadsRequest struct {
	LeadIDs []uint `json:"lead_ids" binding:"required,min=1"`
}

// RecallLeads processes each lead independently and reports partial
// success; one bad lead never fails the whole batch.
func RecallLeads(c *gin.Context) {
	utils.LogInfo("RecallLeads called")
	var req RecallLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	actor := actorFromContext(c)
	if actor.AdminID == nil && actor.ProfileID == nil {
		utils.Unauthorized(c, "No acting identity in context")
		return
	}

	result := ownership.RecallBatch(req.LeadIDs, actor)

	utils.LogInfo("Batch recall finished: %d of %d succeeded", result.SuccessCount, len(req.LeadIDs))
	utils.Success(c, "Batch recall finished", result)
}
