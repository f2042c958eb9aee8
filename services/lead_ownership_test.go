package services

import (
	"testing"

	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign_SetsOwnerAndLogsEvent(t *testing.T) {
	store := newMemStore()
	cache := &fakeCache{}
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	lead := store.addLead(nil, nil)
	service := NewLeadOwnershipService(store, cache)

	updated, err := service.Assign(lead.ID, agent.ID, HQActor(1))
	require.NoError(t, err)

	require.NotNil(t, updated.AgentID)
	assert.Equal(t, agent.ID, *updated.AgentID)
	assert.Nil(t, updated.ManagerID)

	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.Equal(t, models.TransferActionAssign, event.Action)
	assert.Equal(t, models.OwnerTierHQ, event.FromTier)
	assert.Equal(t, models.OwnerTierAgent, event.ToTier)
	assert.NotEmpty(t, event.CorrelationID)
	assert.Equal(t, 1, store.auditCount(models.InteractionLeadAssigned))
	assert.Contains(t, cache.invalidated, agent.ID)
}

func TestAssign_OwnedLeadConflicts(t *testing.T) {
	store := newMemStore()
	firstOwner := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	other := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	lead := store.addLead(nil, &firstOwner.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	_, err := service.Assign(lead.ID, other.ID, HQActor(1))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
	assert.Empty(t, store.events)
}

func TestAssign_InactiveProfileRejected(t *testing.T) {
	store := newMemStore()
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusPending)
	lead := store.addLead(nil, nil)
	service := NewLeadOwnershipService(store, &fakeCache{})

	_, err := service.Assign(lead.ID, agent.ID, HQActor(1))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestTransfer_WithinTeam(t *testing.T) {
	store := newMemStore()
	cache := &fakeCache{}
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agentA := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	agentB := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agentA.ID, manager.ID)
	store.attach(agentB.ID, manager.ID)
	lead := store.addLead(nil, &agentA.ID)
	service := NewLeadOwnershipService(store, cache)

	updated, err := service.Transfer(lead.ID, agentA.ID, agentB.ID, manager.ID)
	require.NoError(t, err)

	require.NotNil(t, updated.AgentID)
	assert.Equal(t, agentB.ID, *updated.AgentID)
	assert.Nil(t, updated.ManagerID)

	require.Len(t, store.events, 1)
	assert.Equal(t, models.TransferActionTransfer, store.events[0].Action)
	assert.Contains(t, cache.invalidated, agentA.ID)
	assert.Contains(t, cache.invalidated, agentB.ID)
}

func TestTransfer_ManagerMayBeEndpoint(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	updated, err := service.Transfer(lead.ID, agent.ID, manager.ID, manager.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ManagerID)
	assert.Equal(t, manager.ID, *updated.ManagerID)
	assert.Nil(t, updated.AgentID)
}

func TestTransfer_OutsideTeamForbidden(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	otherManager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	foreignAgent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	store.attach(foreignAgent.ID, otherManager.ID)
	lead := store.addLead(nil, &agent.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	_, err := service.Transfer(lead.ID, agent.ID, foreignAgent.ID, manager.ID)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindPermission))
}

func TestTransfer_StaleOwnerConflicts(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agentA := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	agentB := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agentA.ID, manager.ID)
	store.attach(agentB.ID, manager.ID)
	lead := store.addLead(nil, &agentB.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	// Caller believes agentA owns the lead but ownership moved.
	_, err := service.Transfer(lead.ID, agentA.ID, manager.ID, manager.ID)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConflict))
}

func TestRecall_HQMakesLeadUnowned(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	lead := store.addLead(&manager.ID, nil)
	service := NewLeadOwnershipService(store, &fakeCache{})

	updated, err := service.Recall(lead.ID, HQActor(1))
	require.NoError(t, err)

	assert.Nil(t, updated.ManagerID)
	assert.Nil(t, updated.AgentID)
	require.Len(t, store.events, 1)
	assert.Equal(t, models.OwnerTierHQ, store.events[0].ToTier)
	assert.Equal(t, 1, store.auditCount(models.InteractionLeadRecalled))
}

func TestRecall_ManagerTakesOverFromOwnAgent(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agent.ID, manager.ID)
	lead := store.addLead(nil, &agent.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	updated, err := service.Recall(lead.ID, ProfileActor(manager.ID))
	require.NoError(t, err)

	require.NotNil(t, updated.ManagerID)
	assert.Equal(t, manager.ID, *updated.ManagerID)
	assert.Nil(t, updated.AgentID)
	require.Len(t, store.events, 1)
	assert.Equal(t, models.OwnerTierAgent, store.events[0].FromTier)
	assert.Equal(t, models.OwnerTierManager, store.events[0].ToTier)
}

func TestRecall_ManagerCannotRecallForeignAgent(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	otherManager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	foreignAgent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(foreignAgent.ID, otherManager.ID)
	lead := store.addLead(nil, &foreignAgent.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	_, err := service.Recall(lead.ID, ProfileActor(manager.ID))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindPermission))
}

func TestRecall_ManagerCannotRecallFromManager(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	otherManager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	lead := store.addLead(&otherManager.ID, nil)
	service := NewLeadOwnershipService(store, &fakeCache{})

	_, err := service.Recall(lead.ID, ProfileActor(manager.ID))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindPermission))
}

func TestRecall_AgentActorForbidden(t *testing.T) {
	store := newMemStore()
	agent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	otherAgent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	lead := store.addLead(nil, &otherAgent.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	_, err := service.Recall(lead.ID, ProfileActor(agent.ID))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindPermission))
}

func TestRecallBatch_PartialSuccess(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	leadA := store.addLead(&manager.ID, nil)
	unowned := store.addLead(nil, nil)
	leadC := store.addLead(&manager.ID, nil)
	service := NewLeadOwnershipService(store, &fakeCache{})

	result := service.RecallBatch([]uint{leadA.ID, unowned.ID, leadC.ID}, HQActor(1))

	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, unowned.ID, result.Errors[0].LeadID)
	assert.Equal(t, utils.KindState, result.Errors[0].Kind)

	// The bad lead in the middle must not roll back the others.
	recalled, err := store.GetLead(leadC.ID)
	require.NoError(t, err)
	assert.Nil(t, recalled.ManagerID)
	assert.Nil(t, recalled.AgentID)
}

func TestRecallBatch_ForeignLeadReportedNotFatal(t *testing.T) {
	store := newMemStore()
	manager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	otherManager := store.addProfile(models.ProfileTypeBranchManager, models.ProfileStatusActive)
	agentA := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	agentB := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	foreignAgent := store.addProfile(models.ProfileTypeSalesAgent, models.ProfileStatusActive)
	store.attach(agentA.ID, manager.ID)
	store.attach(agentB.ID, manager.ID)
	store.attach(foreignAgent.ID, otherManager.ID)
	leadA := store.addLead(nil, &agentA.ID)
	foreignLead := store.addLead(nil, &foreignAgent.ID)
	leadB := store.addLead(nil, &agentB.ID)
	service := NewLeadOwnershipService(store, &fakeCache{})

	result := service.RecallBatch([]uint{leadA.ID, foreignLead.ID, leadB.ID}, ProfileActor(manager.ID))

	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, foreignLead.ID, result.Errors[0].LeadID)
	assert.Equal(t, utils.KindPermission, result.Errors[0].Kind)

	untouched, err := store.GetLead(foreignLead.ID)
	require.NoError(t, err)
	require.NotNil(t, untouched.AgentID)
	assert.Equal(t, foreignAgent.ID, *untouched.AgentID)
}
