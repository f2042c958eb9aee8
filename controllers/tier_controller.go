package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

// TierRequest creates or updates a commission tier
type TierRequest struct {
	ProductCode  string  `json:"product_code" binding:"required"`
	CabinType    string  `json:"cabin_type" binding:"required"`
	FareCategory string  `json:"fare_category" binding:"required"`
	FareLabel    *string `json:"fare_label"`

	SaleAmount decimal.Decimal `json:"sale_amount" binding:"required"`
	CostAmount decimal.Decimal `json:"cost_amount"`

	HasShareOverride bool            `json:"has_share_override"`
	HQShare          decimal.Decimal `json:"hq_share"`
	BranchShare      decimal.Decimal `json:"branch_share"`
	SalesShare       decimal.Decimal `json:"sales_share"`
}

// CreateTier adds a commission tier for a product/cabin/fare combination
func CreateTier(c *gin.Context) {
	utils.LogInfo("CreateTier called")
	var req TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	tier := models.AffiliateCommissionTier{
		ProductCode:      req.ProductCode,
		CabinType:        req.CabinType,
		FareCategory:     req.FareCategory,
		FareLabel:        req.FareLabel,
		SaleAmount:       req.SaleAmount,
		CostAmount:       req.CostAmount,
		HasShareOverride: req.HasShareOverride,
		HQShare:          req.HQShare,
		BranchShare:      req.BranchShare,
		SalesShare:       req.SalesShare,
	}
	if err := config.DB.Create(&tier).Error; err != nil {
		utils.LogError("Failed to create tier: %v", err)
		utils.Conflict(c, "A tier for this combination may already exist", nil)
		return
	}

	utils.LogInfo("Tier %d created for %s/%s/%s", tier.ID, tier.ProductCode, tier.CabinType, tier.FareCategory)
	utils.Created(c, "Tier created", tier)
}

// UpdateTier replaces a tier's amounts and share override
func UpdateTier(c *gin.Context) {
	utils.LogInfo("UpdateTier called")
	tierID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid tier ID", nil)
		return
	}

	var tier models.AffiliateCommissionTier
	if err := config.DB.First(&tier, tierID).Error; err != nil {
		utils.NotFound(c, "Tier not found")
		return
	}

	var req TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	tier.ProductCode = req.ProductCode
	tier.CabinType = req.CabinType
	tier.FareCategory = req.FareCategory
	tier.FareLabel = req.FareLabel
	tier.SaleAmount = req.SaleAmount
	tier.CostAmount = req.CostAmount
	tier.HasShareOverride = req.HasShareOverride
	tier.HQShare = req.HQShare
	tier.BranchShare = req.BranchShare
	tier.SalesShare = req.SalesShare

	if err := config.DB.Save(&tier).Error; err != nil {
		utils.LogError("Failed to update tier %d: %v", tier.ID, err)
		utils.InternalServerError(c, "Failed to update tier", nil)
		return
	}

	utils.Success(c, "Tier updated", tier)
}

// DeleteTier removes a tier. Future sales for the combination fall back
// to the zero-commission fail-open path until a replacement is created.
func DeleteTier(c *gin.Context) {
	utils.LogInfo("DeleteTier called")
	tierID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid tier ID", nil)
		return
	}

	if err := config.DB.Delete(&models.AffiliateCommissionTier{}, tierID).Error; err != nil {
		utils.LogError("Failed to delete tier %d: %v", tierID, err)
		utils.InternalServerError(c, "Failed to delete tier", nil)
		return
	}

	utils.Success(c, "Tier deleted", gin.H{"id": tierID})
}

// ListTiers returns tiers with pagination
func ListTiers(c *gin.Context) {
	page, limit := utils.GetPaginationParams(c)

	query := config.DB.Model(&models.AffiliateCommissionTier{})
	if product := c.Query("product_code"); product != "" {
		query = query.Where("product_code = ?", product)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count tiers", nil)
		return
	}

	var tiers []models.AffiliateCommissionTier
	if err := query.Order("product_code ASC, cabin_type ASC").Offset((page - 1) * limit).Limit(limit).Find(&tiers).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch tiers", nil)
		return
	}

	utils.SuccessWithPagination(c, "Tiers fetched", tiers, total, page, limit)
}
