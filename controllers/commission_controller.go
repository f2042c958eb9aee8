package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/services"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

// ComputeCommissionRequest previews the split for a fare and amounts
type ComputeCommissionRequest struct {
	ProductCode  string          `json:"product_code" binding:"required"`
	CabinType    string          `json:"cabin_type" binding:"required"`
	FareCategory string          `json:"fare_category" binding:"required"`
	FareLabel    *string         `json:"fare_label"`
	SaleAmount   decimal.Decimal `json:"sale_amount" binding:"required"`
	CostAmount   decimal.Decimal `json:"cost_amount"`
}

// ComputeCommission resolves a product/cabin/fare combination into its
// three-way split without recording anything. The tier_missing flag in
// the result marks the zero-commission fail-open case.
func ComputeCommission(c *gin.Context) {
	utils.LogInfo("ComputeCommission called")
	var req ComputeCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	result, err := resolver.Resolve(services.CommissionInput{
		ProductCode:  req.ProductCode,
		CabinType:    req.CabinType,
		FareCategory: req.FareCategory,
		FareLabel:    req.FareLabel,
		SaleAmount:   req.SaleAmount,
		CostAmount:   req.CostAmount,
	})
	if err != nil {
		utils.LogError("Commission resolution failed: %v", err)
		utils.HandleError(c, err)
		return
	}

	utils.Success(c, "Commission resolved", result)
}
