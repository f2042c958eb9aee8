package services

import (
	"testing"

	"github.com/harborline/CruiseLink/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(store *memStore, notifier *fakeNotifier) *CommissionResolver {
	return NewCommissionResolver(store, notifier, DefaultCommissionRates())
}

func TestResolve_DefaultSplit(t *testing.T) {
	store := newMemStore()
	store.addTier(models.AffiliateCommissionTier{
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "ADULT",
	})
	resolver := newTestResolver(store, &fakeNotifier{})

	result, err := resolver.Resolve(CommissionInput{
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "ADULT",
		SaleAmount:   decimal.NewFromInt(1000000),
		CostAmount:   decimal.NewFromInt(400000),
	})
	require.NoError(t, err)

	assert.Equal(t, "600000", result.NetRevenue.String())
	assert.Equal(t, "180000", result.HQShare.String())
	assert.Equal(t, "240000", result.BranchShare.String())
	assert.Equal(t, "180000", result.SalesShare.String())
	assert.False(t, result.TierMissing)
	require.NotNil(t, result.TierID)
}

func TestResolve_AgentAbsorbsRoundingRemainder(t *testing.T) {
	store := newMemStore()
	store.addTier(models.AffiliateCommissionTier{
		ProductCode:  "AEGEAN7",
		CabinType:    "INSIDE",
		FareCategory: "ADULT",
	})
	resolver := newTestResolver(store, &fakeNotifier{})

	// Net revenue 100001: neither cut divides evenly, the floored
	// remainders land on the sales share.
	result, err := resolver.Resolve(CommissionInput{
		ProductCode:  "AEGEAN7",
		CabinType:    "INSIDE",
		FareCategory: "ADULT",
		SaleAmount:   decimal.NewFromInt(100001),
		CostAmount:   decimal.Zero,
	})
	require.NoError(t, err)

	assert.Equal(t, "30000", result.HQShare.String())
	assert.Equal(t, "40000", result.BranchShare.String())
	assert.Equal(t, "30001", result.SalesShare.String())
	sum := result.HQShare.Add(result.BranchShare).Add(result.SalesShare)
	assert.True(t, sum.Equal(result.NetRevenue), "shares must sum to net revenue")
}

func TestResolve_TierMissingFailsOpen(t *testing.T) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	resolver := newTestResolver(store, notifier)

	result, err := resolver.Resolve(CommissionInput{
		ProductCode:  "UNKNOWN",
		CabinType:    "SUITE",
		FareCategory: "ADULT",
		SaleAmount:   decimal.NewFromInt(1000000),
		CostAmount:   decimal.NewFromInt(400000),
	})
	require.NoError(t, err, "missing tier must not block the sale")

	assert.True(t, result.TierMissing)
	assert.Nil(t, result.TierID)
	assert.True(t, result.NetRevenue.IsZero())
	assert.True(t, result.HQShare.IsZero())
	assert.True(t, result.BranchShare.IsZero())
	assert.True(t, result.SalesShare.IsZero())
	sum := result.HQShare.Add(result.BranchShare).Add(result.SalesShare)
	assert.True(t, sum.Equal(result.NetRevenue), "zero case keeps the sum identity")
	require.Len(t, notifier.subjects, 1)
	assert.Equal(t, "Commission tier missing", notifier.subjects[0])
}

func TestResolve_ShareOverrideTakesPrecedence(t *testing.T) {
	store := newMemStore()
	store.addTier(models.AffiliateCommissionTier{
		ProductCode:      "FJORD10",
		CabinType:        "SUITE",
		FareCategory:     "ADULT",
		HasShareOverride: true,
		HQShare:          decimal.NewFromInt(100000),
		BranchShare:      decimal.NewFromInt(150000),
		SalesShare:       decimal.NewFromInt(50000),
	})
	resolver := newTestResolver(store, &fakeNotifier{})

	result, err := resolver.Resolve(CommissionInput{
		ProductCode:  "FJORD10",
		CabinType:    "SUITE",
		FareCategory: "ADULT",
		SaleAmount:   decimal.NewFromInt(900000),
		CostAmount:   decimal.NewFromInt(500000),
	})
	require.NoError(t, err)

	assert.Equal(t, "100000", result.HQShare.String())
	assert.Equal(t, "150000", result.BranchShare.String())
	assert.Equal(t, "50000", result.SalesShare.String())
	assert.Equal(t, "300000", result.NetRevenue.String())
}

func TestResolve_FareLabelDistinguishesTiers(t *testing.T) {
	store := newMemStore()
	promo := "EARLYBIRD"
	store.addTier(models.AffiliateCommissionTier{
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "PROMO",
		FareLabel:    &promo,
	})
	resolver := newTestResolver(store, &fakeNotifier{})

	labeled, err := resolver.Resolve(CommissionInput{
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "PROMO",
		FareLabel:    &promo,
		SaleAmount:   decimal.NewFromInt(500000),
		CostAmount:   decimal.NewFromInt(300000),
	})
	require.NoError(t, err)
	assert.False(t, labeled.TierMissing)

	unlabeled, err := resolver.Resolve(CommissionInput{
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "PROMO",
		SaleAmount:   decimal.NewFromInt(500000),
		CostAmount:   decimal.NewFromInt(300000),
	})
	require.NoError(t, err)
	assert.True(t, unlabeled.TierMissing, "label-less lookup must not match a labeled tier")
}
