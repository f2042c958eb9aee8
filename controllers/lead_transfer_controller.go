package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
)

// TransferLeadRequest moves a lead within a manager's team
type TransferLeadRequest struct {
	FromProfileID uint `json:"from_profile_id" binding:"required"`
	ToProfileID   uint `json:"to_profile_id" binding:"required"`
}

// TransferLead reassigns a lead between members of the acting manager's
// team. The manager must currently manage both endpoints.
func TransferLead(c *gin.Context) {
	utils.LogInfo("TransferLead called")

	profile, exists := c.Get("profile")
	if !exists {
		utils.Unauthorized(c, "Profile not found in context")
		return
	}
	actorProfile, ok := profile.(models.AffiliateProfile)
	if !ok {
		utils.InternalServerError(c, "Invalid profile type", nil)
		return
	}

	leadID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lead ID", nil)
		return
	}

	var req TransferLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	lead, err := ownership.Transfer(uint(leadID), req.FromProfileID, req.ToProfileID, actorProfile.ID)
	if err != nil {
		utils.LogError("Transfer of lead %d failed: %v", leadID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Lead %d transferred from %d to %d by manager %d", leadID, req.FromProfileID, req.ToProfileID, actorProfile.ID)
	utils.Success(c, "Lead transferred", lead)
}
