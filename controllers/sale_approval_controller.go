package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/utils"
)

// ApproveSale moves a sale under review to APPROVED. The approver must
// differ from the submitter; HQ admins and reviewing managers both pass
// through here.
func ApproveSale(c *gin.Context) {
	utils.LogInfo("ApproveSale called")
	saleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid sale ID", nil)
		return
	}

	actor := actorFromContext(c)
	if actor.AdminID == nil && actor.ProfileID == nil {
		utils.Unauthorized(c, "No acting identity in context")
		return
	}

	sale, err := workflow.Approve(uint(saleID), actor)
	if err != nil {
		utils.LogError("Approval of sale %d failed: %v", saleID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Sale %d approved", sale.ID)
	utils.Success(c, "Sale approved", saleResponse(sale))
}

// RejectSaleRequest carries the mandatory rejection reason
type RejectSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectSale rejects a sale under review. Commission fields are zeroed
// but the record is retained for audit.
func RejectSale(c *gin.Context) {
	utils.LogInfo("RejectSale called")
	saleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid sale ID", nil)
		return
	}

	var req RejectSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Rejection reason is required", err.Error())
		return
	}

	actor := actorFromContext(c)
	if actor.AdminID == nil && actor.ProfileID == nil {
		utils.Unauthorized(c, "No acting identity in context")
		return
	}

	sale, err := workflow.Reject(uint(saleID), actor, req.Reason)
	if err != nil {
		utils.LogError("Rejection of sale %d failed: %v", saleID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Sale %d rejected: %s", sale.ID, req.Reason)
	utils.Success(c, "Sale rejected", saleResponse(sale))
}

// ConfirmSale finalizes an APPROVED sale for settlement. Confirming an
// already-confirmed sale is a no-op that returns the same terminal state.
func ConfirmSale(c *gin.Context) {
	utils.LogInfo("ConfirmSale called")
	saleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid sale ID", nil)
		return
	}

	sale, err := workflow.Confirm(uint(saleID))
	if err != nil {
		utils.LogError("Confirmation of sale %d failed: %v", saleID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Sale %d confirmed", sale.ID)
	utils.Success(c, "Sale confirmed", saleResponse(sale))
}
