package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/services"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

// SubmitSaleRequest records a purchase confirmation for a lead
type SubmitSaleRequest struct {
	LeadID       uint            `json:"lead_id" binding:"required"`
	ProductCode  string          `json:"product_code" binding:"required"`
	CabinType    string          `json:"cabin_type" binding:"required"`
	FareCategory string          `json:"fare_category" binding:"required"`
	FareLabel    *string         `json:"fare_label"`
	SaleAmount   decimal.Decimal `json:"sale_amount" binding:"required"`
	CostAmount   decimal.Decimal `json:"cost_amount"`
	SaleDate     *time.Time      `json:"sale_date"`
}

// SubmitSale records a sale in PENDING with commission computed and
// locked, then moves it into review (or through the configured manager
// auto-approval exception).
func SubmitSale(c *gin.Context) {
	utils.LogInfo("SubmitSale called")

	profile, exists := c.Get("profile")
	if !exists {
		utils.Unauthorized(c, "Profile not found in context")
		return
	}
	submitter, ok := profile.(models.AffiliateProfile)
	if !ok {
		utils.InternalServerError(c, "Invalid profile type", nil)
		return
	}

	var req SubmitSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	input := services.SubmitSaleInput{
		LeadID:       req.LeadID,
		SubmitterID:  submitter.ID,
		ProductCode:  req.ProductCode,
		CabinType:    req.CabinType,
		FareCategory: req.FareCategory,
		FareLabel:    req.FareLabel,
		SaleAmount:   req.SaleAmount,
		CostAmount:   req.CostAmount,
	}
	if req.SaleDate != nil {
		input.SaleDate = *req.SaleDate
	}

	sale, err := workflow.Submit(input)
	if err != nil {
		utils.LogError("Sale submission failed for lead %d: %v", req.LeadID, err)
		utils.HandleError(c, err)
		return
	}
	utils.LogDebug("Sale %d recorded as PENDING, requesting approval", sale.ID)

	sale, err = workflow.RequestApproval(sale.ID, services.ProfileActor(submitter.ID))
	if err != nil {
		utils.LogError("Approval request for sale %d failed: %v", sale.ID, err)
		utils.HandleError(c, err)
		return
	}

	if sale.TierMissing {
		utils.LogError("Sale %d recorded with zero commission: tier missing", sale.ID)
	}

	utils.LogInfo("Sale %d submitted with status %s", sale.ID, sale.Status)
	utils.Created(c, "Sale submitted", saleResponse(sale))
}

// GetSale returns one sale
func GetSale(c *gin.Context) {
	saleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid sale ID", nil)
		return
	}

	var sale models.AffiliateSale
	if err := config.DB.First(&sale, saleID).Error; err != nil {
		utils.NotFound(c, "Sale not found")
		return
	}

	utils.Success(c, "Sale found", saleResponse(&sale))
}

// ListSales returns sales with pagination
func ListSales(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c)

	query := config.DB.Model(&models.AffiliateSale{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if profileID := c.Query("profile_id"); profileID != "" {
		query = query.Where("manager_id = ? OR agent_id = ?", profileID, profileID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count sales", nil)
		return
	}

	var sales []models.AffiliateSale
	if err := query.Order("sale_date DESC").Offset((page - 1) * limit).Limit(limit).Find(&sales).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch sales", nil)
		return
	}

	responses := make([]gin.H, 0, len(sales))
	for i := range sales {
		responses = append(responses, saleResponse(&sales[i]))
	}

	utils.SuccessWithPagination(c, "Sales fetched", responses, total, page, limit)
}

func saleResponse(sale *models.AffiliateSale) gin.H {
	return gin.H{
		"id":                  sale.ID,
		"lead_id":             sale.LeadID,
		"manager_id":          sale.ManagerID,
		"agent_id":            sale.AgentID,
		"status":              sale.Status,
		"auto_approved":       sale.AutoApproved,
		"tier_missing":        sale.TierMissing,
		"product_code":        sale.ProductCode,
		"cabin_type":          sale.CabinType,
		"fare_category":       sale.FareCategory,
		"sale_date":           sale.SaleDate.Format("2006-01-02"),
		"sale_amount":         sale.SaleAmount.String(),
		"cost_amount":         sale.CostAmount.String(),
		"net_revenue":         sale.NetRevenue.String(),
		"hq_commission":       sale.HQCommission.String(),
		"branch_commission":   sale.BranchCommission.String(),
		"sales_commission":    sale.SalesCommission.String(),
		"override_commission": sale.OverrideCommission.String(),
	}
}
