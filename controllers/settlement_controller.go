package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
)

// RunSettlementRequest aggregates one profile's confirmed sales for a
// calendar month
type RunSettlementRequest struct {
	ProfileID uint   `json:"profile_id" binding:"required"`
	Period    string `json:"period" binding:"required"`
}

// RunSettlement produces (or recomputes) the DRAFT payslip for a profile
// and period
func RunSettlement(c *gin.Context) {
	utils.LogInfo("RunSettlement called")
	var req RunSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	payslip, err := settlement.Run(req.ProfileID, req.Period, actorFromContext(c))
	if err != nil {
		utils.LogError("Settlement run for profile %d period %s failed: %v", req.ProfileID, req.Period, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Settlement run for profile %d period %s produced payslip %d", req.ProfileID, req.Period, payslip.ID)
	utils.Success(c, "Settlement run complete", payslipResponse(payslip))
}

// RunSettlementAllRequest settles every active profile for a period
type RunSettlementAllRequest struct {
	Period string `json:"period" binding:"required"`
}

// RunSettlementAll runs settlement for all ACTIVE profiles. Profiles are
// settled independently; per-profile failures are reported, not fatal.
func RunSettlementAll(c *gin.Context) {
	utils.LogInfo("RunSettlementAll called")
	var req RunSettlementAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	var profiles []models.AffiliateProfile
	if err := config.DB.Where("status = ?", models.ProfileStatusActive).Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch profiles", nil)
		return
	}

	profileIDs := make([]uint, 0, len(profiles))
	for _, profile := range profiles {
		profileIDs = append(profileIDs, profile.ID)
	}

	results := settlement.RunMany(profileIDs, req.Period, actorFromContext(c))

	failed := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
		}
	}
	utils.LogInfo("Period settlement %s finished: %d profiles, %d failed", req.Period, len(results), failed)
	utils.Success(c, "Period settlement finished", gin.H{
		"period":  req.Period,
		"total":   len(results),
		"failed":  failed,
		"results": results,
	})
}

// ApproveSettlement moves a DRAFT payslip to APPROVED
func ApproveSettlement(c *gin.Context) {
	utils.LogInfo("ApproveSettlement called")
	payslipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid payslip ID", nil)
		return
	}

	admin, exists := c.Get("admin")
	if !exists {
		utils.Unauthorized(c, "Admin not found in context")
		return
	}
	adminModel, ok := admin.(models.Admin)
	if !ok {
		utils.InternalServerError(c, "Invalid admin type", nil)
		return
	}

	payslip, err := settlement.Approve(uint(payslipID), adminModel.ID)
	if err != nil {
		utils.LogError("Approval of payslip %d failed: %v", payslipID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Payslip %d approved by admin %d", payslip.ID, adminModel.ID)
	utils.Success(c, "Payslip approved", payslipResponse(payslip))
}

// GetPayslip returns one payslip
func GetPayslip(c *gin.Context) {
	payslipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid payslip ID", nil)
		return
	}

	payslip, err := store.Payslips().GetPayslip(uint(payslipID))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, "Payslip found", payslipResponse(payslip))
}

// ListPayslips returns payslips for a period with pagination
func ListPayslips(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c)

	query := config.DB.Model(&models.AffiliatePayslip{})
	if period := c.Query("period"); period != "" {
		query = query.Where("period = ?", period)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if profileID := c.Query("profile_id"); profileID != "" {
		query = query.Where("profile_id = ?", profileID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count payslips", nil)
		return
	}

	var payslips []models.AffiliatePayslip
	if err := query.Order("period DESC, profile_id ASC").Offset((page - 1) * limit).Limit(limit).Find(&payslips).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch payslips", nil)
		return
	}

	responses := make([]gin.H, 0, len(payslips))
	for i := range payslips {
		responses = append(responses, payslipResponse(&payslips[i]))
	}

	utils.SuccessWithPagination(c, "Payslips fetched", responses, total, page, limit)
}

func payslipResponse(payslip *models.AffiliatePayslip) gin.H {
	return gin.H{
		"id":                payslip.ID,
		"profile_id":        payslip.ProfileID,
		"period":            payslip.Period,
		"status":            payslip.Status,
		"sale_count":        payslip.SaleCount,
		"total_sales":       payslip.TotalSales.String(),
		"total_commission":  payslip.TotalCommission.String(),
		"total_withholding": payslip.TotalWithholding.String(),
		"net_payment":       payslip.NetPayment.String(),
		"needs_review":      payslip.NeedsReview,
	}
}
