package services

import (
	"testing"
	"time"

	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkflow(store *memStore, notifier *fakeNotifier, autoApprove bool) *SaleWorkflow {
	resolver := NewCommissionResolver(store, notifier, DefaultCommissionRates())
	return NewSaleWorkflow(store, resolver, &fakeCache{}, WorkflowConfig{
		AutoApproveManagerOwnedSales: autoApprove,
	})
}

func standardTier(store *memStore) {
	store.addTier(models.AffiliateCommissionTier{
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "ADULT",
	})
}

func submitInput(leadID, submitterID uint) SubmitSaleInput {
	return SubmitSaleInput{
		LeadID:       leadID,
		SubmitterID:  submitterID,
		ProductCode:  "AEGEAN7",
		CabinType:    "BALCONY",
		FareCategory: "ADULT",
		SaleAmount:   decimal.NewFromInt(1000000),
		CostAmount:   decimal.NewFromInt(400000),
		SaleDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubmit_AgentSaleBooksThreeWaySplit(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)

	assert.Equal(t, models.SaleStatusPending, sale.Status)
	assert.Equal(t, "600000", sale.NetRevenue.String())
	assert.Equal(t, "180000", sale.HQCommission.String())
	assert.Equal(t, "240000", sale.BranchCommission.String())
	assert.Equal(t, "180000", sale.SalesCommission.String())
	assert.True(t, sale.OverrideCommission.IsZero())
	require.NotNil(t, sale.AgentID)
	assert.Equal(t, agent.ID, *sale.AgentID)
	require.NotNil(t, sale.ManagerID)
	assert.Equal(t, manager.ID, *sale.ManagerID)
	assert.Equal(t, 1, store.auditCount(models.InteractionSaleSubmitted))
}

func TestSubmit_MissingTierProceedsWithZeroCommission(t *testing.T) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, notifier, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err, "pricing gap must not block the sale")

	assert.True(t, sale.TierMissing)
	assert.True(t, sale.HQCommission.IsZero())
	assert.True(t, sale.BranchCommission.IsZero())
	assert.True(t, sale.SalesCommission.IsZero())
	assert.Equal(t, "600000", sale.NetRevenue.String())
	require.Len(t, notifier.subjects, 1)

	// The zero-commission sale still walks the full state machine.
	_, err = workflow.RequestApproval(sale.ID, ProfileActor(agent.ID))
	require.NoError(t, err)
	_, err = workflow.Approve(sale.ID, ProfileActor(manager.ID))
	require.NoError(t, err)
	sale, err = workflow.Confirm(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusConfirmed, sale.Status)
	assert.True(t, sale.TierMissing)
}

func TestSubmit_UnattachedAgentBranchShareStaysWithHQ(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)

	assert.Nil(t, sale.ManagerID)
	assert.Equal(t, "420000", sale.HQCommission.String())
	assert.True(t, sale.BranchCommission.IsZero())
	assert.Equal(t, "180000", sale.SalesCommission.String())
}

func TestSubmit_ManagerOwnedLeadBooksOverride(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	lead := store.addLead(&manager.ID, nil)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, manager.ID))
	require.NoError(t, err)

	require.NotNil(t, sale.ManagerID)
	assert.Equal(t, manager.ID, *sale.ManagerID)
	assert.Nil(t, sale.AgentID)
	assert.Equal(t, "240000", sale.BranchCommission.String())
	assert.Equal(t, "180000", sale.OverrideCommission.String())
	assert.True(t, sale.SalesCommission.IsZero())
}

func TestSubmit_SaleBelowCostRejected(t *testing.T) {
	store := newMemStore()
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	input := submitInput(1, 1)
	input.SaleAmount = decimal.NewFromInt(300000)
	_, err := workflow.Submit(input)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestSubmit_UnownedLeadRejected(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	lead := store.addLead(nil, nil)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	_, err := workflow.Submit(submitInput(lead.ID, 1))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestRequestApproval_MovesToReview(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)

	sale, err = workflow.RequestApproval(sale.ID, ProfileActor(agent.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusPendingApproval, sale.Status)
	assert.False(t, sale.AutoApproved)
}

func TestRequestApproval_ManagerOwnedAutoApproves(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	lead := store.addLead(&manager.ID, nil)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, manager.ID))
	require.NoError(t, err)

	sale, err = workflow.RequestApproval(sale.ID, ProfileActor(manager.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusApproved, sale.Status)
	assert.True(t, sale.AutoApproved)
	require.NotNil(t, sale.ApprovedAt)
	assert.Equal(t, 1, store.auditCount(models.InteractionSaleAutoApproved))
}

func TestRequestApproval_AutoApprovalDisabledByConfig(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	lead := store.addLead(&manager.ID, nil)
	workflow := newTestWorkflow(store, &fakeNotifier{}, false)

	sale, err := workflow.Submit(submitInput(lead.ID, manager.ID))
	require.NoError(t, err)

	sale, err = workflow.RequestApproval(sale.ID, ProfileActor(manager.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusPendingApproval, sale.Status)
	assert.False(t, sale.AutoApproved)
}

func TestApprove_SubmitterCannotApproveOwnSale(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)
	_, err = workflow.RequestApproval(sale.ID, ProfileActor(agent.ID))
	require.NoError(t, err)

	_, err = workflow.Approve(sale.ID, ProfileActor(agent.ID))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindPermission))
}

func TestApprove_FromReview(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)
	_, err = workflow.RequestApproval(sale.ID, ProfileActor(agent.ID))
	require.NoError(t, err)

	sale, err = workflow.Approve(sale.ID, ProfileActor(manager.ID))
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusApproved, sale.Status)
	require.NotNil(t, sale.ApproverID)
	assert.Equal(t, manager.ID, *sale.ApproverID)
}

func TestReject_ZeroesCommissionAndKeepsRecord(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)
	_, err = workflow.RequestApproval(sale.ID, ProfileActor(agent.ID))
	require.NoError(t, err)

	_, err = workflow.Reject(sale.ID, ProfileActor(manager.ID), "")
	require.Error(t, err, "rejection without a reason must fail")
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	sale, err = workflow.Reject(sale.ID, ProfileActor(manager.ID), "duplicate booking")
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusRejected, sale.Status)
	assert.Equal(t, "duplicate booking", sale.RejectReason)
	assert.True(t, sale.HQCommission.IsZero())
	assert.True(t, sale.BranchCommission.IsZero())
	assert.True(t, sale.SalesCommission.IsZero())
	assert.True(t, sale.OverrideCommission.IsZero())

	stored, err := store.GetSale(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusRejected, stored.Status)
}

func TestConfirm_IsIdempotent(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	lead := store.addLead(&manager.ID, nil)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, manager.ID))
	require.NoError(t, err)
	_, err = workflow.RequestApproval(sale.ID, ProfileActor(manager.ID))
	require.NoError(t, err)

	sale, err = workflow.Confirm(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusConfirmed, sale.Status)
	firstConfirmedAt := sale.ConfirmedAt

	again, err := workflow.Confirm(sale.ID)
	require.NoError(t, err, "duplicate confirmation must be a no-op")
	assert.Equal(t, models.SaleStatusConfirmed, again.Status)
	assert.Equal(t, firstConfirmedAt, again.ConfirmedAt)
	assert.Equal(t, 1, store.auditCount(models.InteractionSaleConfirmed))
}

func TestConfirm_OnlyFromApproved(t *testing.T) {
	store := newMemStore()
	standardTier(store)
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	workflow := newTestWorkflow(store, &fakeNotifier{}, true)

	sale, err := workflow.Submit(submitInput(lead.ID, agent.ID))
	require.NoError(t, err)

	_, err = workflow.Confirm(sale.ID)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindState))
}
