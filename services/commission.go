package services

import (
	"fmt"

	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

// CommissionRates holds the default split applied when a tier carries no
// pre-computed shares. The agent share is the remainder after the HQ and
// branch cuts, so the three shares always sum to net revenue exactly.
type CommissionRates struct {
	HQRate     decimal.Decimal
	BranchRate decimal.Decimal
}

// DefaultCommissionRates are the standing HQ 30% / branch 40% split.
func DefaultCommissionRates() CommissionRates {
	return CommissionRates{
		HQRate:     decimal.NewFromFloat(0.30),
		BranchRate: decimal.NewFromFloat(0.40),
	}
}

// CommissionInput identifies the sold fare and its amounts.
type CommissionInput struct {
	ProductCode  string
	CabinType    string
	FareCategory string
	FareLabel    *string
	SaleAmount   decimal.Decimal
	CostAmount   decimal.Decimal
}

// CommissionResult is the resolved three-way split. TierMissing marks the
// fail-open case: no tier matched, every share is zero and an admin alert
// went out, but the sale itself is not blocked. Callers must surface the
// warning rather than silently treating it as a zero split.
type CommissionResult struct {
	NetRevenue  decimal.Decimal `json:"net_revenue"`
	HQShare     decimal.Decimal `json:"hq_share"`
	BranchShare decimal.Decimal `json:"branch_share"`
	SalesShare  decimal.Decimal `json:"sales_share"`
	TierID      *uint           `json:"tier_id,omitempty"`
	TierMissing bool            `json:"tier_missing"`
}

// CommissionResolver resolves a product/cabin/fare combination into a
// commission split.
type CommissionResolver struct {
	tiers    TierStore
	notifier AdminNotifier
	rates    CommissionRates
}

// NewCommissionResolver builds a resolver over the given tier store.
func NewCommissionResolver(tiers TierStore, notifier AdminNotifier, rates CommissionRates) *CommissionResolver {
	return &CommissionResolver{tiers: tiers, notifier: notifier, rates: rates}
}

// Resolve looks up the tier for the input and computes the split.
//
// Missing tier is deliberately fail-open: sales must never be lost to a
// pricing-data gap, so the result is all-zero with TierMissing set and an
// admin alert raised. Invariant for every return value, the zero case
// included: HQShare + BranchShare + SalesShare == NetRevenue.
func (r *CommissionResolver) Resolve(input CommissionInput) (CommissionResult, error) {
	netRevenue := input.SaleAmount.Sub(input.CostAmount)

	tier, err := r.tiers.FindTier(input.ProductCode, input.CabinType, input.FareCategory, input.FareLabel)
	if err != nil {
		return CommissionResult{}, utils.WrapError(err, "commission tier lookup failed")
	}

	if tier == nil {
		utils.LogError("Commission tier missing for product=%s cabin=%s fare=%s", input.ProductCode, input.CabinType, input.FareCategory)
		r.notifyTierMissing(input)
		return CommissionResult{
			NetRevenue:  decimal.Zero,
			HQShare:     decimal.Zero,
			BranchShare: decimal.Zero,
			SalesShare:  decimal.Zero,
			TierMissing: true,
		}, nil
	}

	tierID := tier.ID
	if tier.HasShareOverride {
		// Tier-level pre-computed shares take precedence over the rates.
		return CommissionResult{
			NetRevenue:  tier.HQShare.Add(tier.BranchShare).Add(tier.SalesShare),
			HQShare:     tier.HQShare,
			BranchShare: tier.BranchShare,
			SalesShare:  tier.SalesShare,
			TierID:      &tierID,
		}, nil
	}

	// Floor the HQ and branch cuts; the selling agent absorbs the rounding
	// remainder so the shares sum to net revenue exactly.
	hqShare := netRevenue.Mul(r.rates.HQRate).Floor()
	branchShare := netRevenue.Mul(r.rates.BranchRate).Floor()
	salesShare := netRevenue.Sub(hqShare).Sub(branchShare)

	return CommissionResult{
		NetRevenue:  netRevenue,
		HQShare:     hqShare,
		BranchShare: branchShare,
		SalesShare:  salesShare,
		TierID:      &tierID,
	}, nil
}

func (r *CommissionResolver) notifyTierMissing(input CommissionInput) {
	if r.notifier == nil {
		return
	}
	label := ""
	if input.FareLabel != nil {
		label = *input.FareLabel
	}
	r.notifier.Notify(
		"Commission tier missing",
		fmt.Sprintf("No commission tier found for product %s / cabin %s / fare %s %s. The sale proceeded with zero commission.",
			input.ProductCode, input.CabinType, input.FareCategory, label),
	)
}

// TierFor exposes the underlying tier metadata for a sold fare, used by
// the pricing preview endpoint.
func (r *CommissionResolver) TierFor(input CommissionInput) (*models.AffiliateCommissionTier, error) {
	return r.tiers.FindTier(input.ProductCode, input.CabinType, input.FareCategory, input.FareLabel)
}
