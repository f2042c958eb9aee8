package controllers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

type profileAggregate struct {
	ProfileID           uint   `json:"profile_id"`
	LeadCount           int64  `json:"lead_count"`
	SaleCount           int64  `json:"sale_count"`
	ConfirmedSaleCount  int64  `json:"confirmed_sale_count"`
	ConfirmedSaleAmount string `json:"confirmed_sale_amount"`
	ConfirmedCommission string `json:"confirmed_commission"`
}

// GetDashboard returns the authenticated profile's aggregate counters.
// Served from the TTL cache; every state-mutating operation invalidates
// the profile's entry, so a hit is at worst TTL-stale.
func GetDashboard(c *gin.Context) {
	utils.LogInfo("GetDashboard called")

	profile, exists := c.Get("profile")
	if !exists {
		utils.Unauthorized(c, "Profile not found in context")
		return
	}
	profileModel, ok := profile.(models.AffiliateProfile)
	if !ok {
		utils.InternalServerError(c, "Invalid profile type", nil)
		return
	}

	if payload, hit := aggregateCache.GetAggregate(profileModel.ID); hit {
		utils.LogDebug("Dashboard cache hit for profile %d", profileModel.ID)
		var aggregate profileAggregate
		if err := json.Unmarshal(payload, &aggregate); err == nil {
			utils.Success(c, "Dashboard fetched", aggregate)
			return
		}
		utils.LogError("Corrupt dashboard cache entry for profile %d, recomputing", profileModel.ID)
	}

	aggregate, err := computeAggregate(&profileModel)
	if err != nil {
		utils.LogError("Failed to compute dashboard for profile %d: %v", profileModel.ID, err)
		utils.InternalServerError(c, "Failed to compute dashboard", nil)
		return
	}

	if payload, err := json.Marshal(aggregate); err == nil {
		aggregateCache.SetAggregate(profileModel.ID, payload)
	}

	utils.Success(c, "Dashboard fetched", aggregate)
}

func computeAggregate(profile *models.AffiliateProfile) (*profileAggregate, error) {
	aggregate := &profileAggregate{ProfileID: profile.ID}

	if err := config.DB.Model(&models.AffiliateLead{}).
		Where("manager_id = ? OR agent_id = ?", profile.ID, profile.ID).
		Count(&aggregate.LeadCount).Error; err != nil {
		return nil, err
	}

	if err := config.DB.Model(&models.AffiliateSale{}).
		Where("manager_id = ? OR agent_id = ?", profile.ID, profile.ID).
		Count(&aggregate.SaleCount).Error; err != nil {
		return nil, err
	}

	var sales []models.AffiliateSale
	if err := config.DB.
		Where("status = ?", models.SaleStatusConfirmed).
		Where("manager_id = ? OR agent_id = ?", profile.ID, profile.ID).
		Find(&sales).Error; err != nil {
		return nil, err
	}

	amount := decimal.Zero
	commission := decimal.Zero
	for _, sale := range sales {
		amount = amount.Add(sale.SaleAmount)
		switch profile.Type {
		case models.ProfileTypeBranchManager:
			if sale.ManagerID != nil && *sale.ManagerID == profile.ID {
				commission = commission.Add(sale.BranchCommission).Add(sale.OverrideCommission)
			}
		case models.ProfileTypeSalesAgent:
			if sale.AgentID != nil && *sale.AgentID == profile.ID {
				commission = commission.Add(sale.SalesCommission).Add(sale.OverrideCommission)
			}
		}
	}

	aggregate.ConfirmedSaleCount = int64(len(sales))
	aggregate.ConfirmedSaleAmount = amount.String()
	aggregate.ConfirmedCommission = commission.String()
	return aggregate, nil
}
