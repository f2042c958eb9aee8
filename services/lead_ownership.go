package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
)

// LeadOwnershipService assigns, transfers and recalls lead ownership
// between hierarchy levels. Outside of initial assignment, transfer and
// recall are the only mutators of the ownership pointer, and every change
// lands in the append-only transfer event log.
type LeadOwnershipService struct {
	store Store
	cache AggregateCache
}

// NewLeadOwnershipService builds the ownership service.
func NewLeadOwnershipService(store Store, cache AggregateCache) *LeadOwnershipService {
	return &LeadOwnershipService{store: store, cache: cache}
}

// BatchRecallError describes one failed lead in a batch recall.
type BatchRecallError struct {
	LeadID  uint            `json:"lead_id"`
	Kind    utils.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// BatchRecallResult is the partial-success report of a batch recall.
type BatchRecallResult struct {
	SuccessCount int                `json:"success_count"`
	Errors       []BatchRecallError `json:"errors"`
}

// Assign sets the ownership pointer of an unowned lead. A lead that
// already points at a profile fails with a conflict so the caller can
// re-read and retry; a racing assignment cannot silently win.
func (s *LeadOwnershipService) Assign(leadID, toProfileID uint, actor Actor) (*models.AffiliateLead, error) {
	var result *models.AffiliateLead
	err := s.store.Transaction(func(tx Store) error {
		lead, err := tx.Leads().GetLead(leadID)
		if err != nil {
			return err
		}
		if lead.OwnerProfileID() != nil {
			return utils.ConflictErr("Lead is already owned", nil)
		}

		target, err := tx.Profiles().GetProfile(toProfileID)
		if err != nil {
			return err
		}
		if target.Status != models.ProfileStatusActive {
			return utils.ValidationErr("Cannot assign a lead to an inactive profile", nil)
		}

		toTier := setOwner(lead, target)
		if err := tx.Leads().SaveLead(lead); err != nil {
			return err
		}

		correlationID := uuid.New().String()
		event := &models.LeadTransferEvent{
			LeadID:        lead.ID,
			Action:        models.TransferActionAssign,
			FromTier:      models.OwnerTierHQ,
			ToProfileID:   &target.ID,
			ToTier:        toTier,
			ActorAdminID:  actor.AdminID,
			ActorID:       actor.ProfileID,
			CorrelationID: correlationID,
		}
		if err := tx.Leads().AppendTransferEvent(event); err != nil {
			return err
		}
		if err := tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionLeadAssigned,
			ProfileID:     &target.ID,
			LeadID:        &lead.ID,
			ActorAdminID:  actor.AdminID,
			ActorID:       actor.ProfileID,
			Detail:        fmt.Sprintf("lead assigned to profile %d", target.ID),
			CorrelationID: correlationID,
		}); err != nil {
			return err
		}

		result = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateProfile(toProfileID)
	return result, nil
}

// Transfer moves a lead between members of one manager's team. The actor
// must be the current manager of both the source and the destination
// (the manager themself counts as a valid endpoint). The lead's creation
// date and long-lived metadata are untouched.
func (s *LeadOwnershipService) Transfer(leadID, fromProfileID, toProfileID, actorProfileID uint) (*models.AffiliateLead, error) {
	var result *models.AffiliateLead
	err := s.store.Transaction(func(tx Store) error {
		lead, err := tx.Leads().GetLead(leadID)
		if err != nil {
			return err
		}

		owner := lead.OwnerProfileID()
		if owner == nil || *owner != fromProfileID {
			return utils.ConflictErr("Lead ownership changed, re-read and retry", nil)
		}

		actor, err := tx.Profiles().GetProfile(actorProfileID)
		if err != nil {
			return err
		}
		if actor.Type != models.ProfileTypeBranchManager {
			return utils.PermissionErr("Only a branch manager may transfer leads", nil)
		}
		if err := s.requireManaged(tx, actor, fromProfileID); err != nil {
			return err
		}
		if err := s.requireManaged(tx, actor, toProfileID); err != nil {
			return err
		}

		from, err := tx.Profiles().GetProfile(fromProfileID)
		if err != nil {
			return err
		}
		target, err := tx.Profiles().GetProfile(toProfileID)
		if err != nil {
			return err
		}
		if target.Status != models.ProfileStatusActive {
			return utils.ValidationErr("Cannot transfer a lead to an inactive profile", nil)
		}

		fromTier := tierOf(from)
		toTier := setOwner(lead, target)
		if err := tx.Leads().SaveLead(lead); err != nil {
			return err
		}

		correlationID := uuid.New().String()
		if err := tx.Leads().AppendTransferEvent(&models.LeadTransferEvent{
			LeadID:        lead.ID,
			Action:        models.TransferActionTransfer,
			FromProfileID: &from.ID,
			FromTier:      fromTier,
			ToProfileID:   &target.ID,
			ToTier:        toTier,
			ActorID:       &actor.ID,
			CorrelationID: correlationID,
		}); err != nil {
			return err
		}
		if err := tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionLeadTransferred,
			ProfileID:     &target.ID,
			LeadID:        &lead.ID,
			ActorID:       &actor.ID,
			Detail:        fmt.Sprintf("lead transferred from profile %d to profile %d", from.ID, target.ID),
			CorrelationID: correlationID,
		}); err != nil {
			return err
		}

		result = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateProfile(fromProfileID)
	s.cache.InvalidateProfile(toProfileID)
	return result, nil
}

// Recall moves lead ownership one hierarchy level up. An HQ actor recalls
// from a manager or agent straight to the unowned state; a branch manager
// recalls only from one of their own ACTIVE agents, and only to themself.
func (s *LeadOwnershipService) Recall(leadID uint, actor Actor) (*models.AffiliateLead, error) {
	var result *models.AffiliateLead
	var invalidate []uint
	err := s.store.Transaction(func(tx Store) error {
		lead, err := tx.Leads().GetLead(leadID)
		if err != nil {
			return err
		}

		ownerID := lead.OwnerProfileID()
		if ownerID == nil {
			return utils.StateErr("Lead is not owned by anyone", nil)
		}
		owner, err := tx.Profiles().GetProfile(*ownerID)
		if err != nil {
			return err
		}
		fromTier := tierOf(owner)

		var toProfileID *uint
		var toTier models.OwnerTier

		if actor.IsHQ() {
			// HQ recalls straight to the unowned state.
			lead.ManagerID = nil
			lead.AgentID = nil
			toTier = models.OwnerTierHQ
		} else {
			manager, err := tx.Profiles().GetProfile(*actor.ProfileID)
			if err != nil {
				return err
			}
			if manager.Type != models.ProfileTypeBranchManager {
				return utils.PermissionErr("Only a branch manager or HQ may recall leads", nil)
			}
			if owner.Type != models.ProfileTypeSalesAgent {
				return utils.PermissionErr("A branch manager may only recall from an agent", nil)
			}
			ownerManager, err := tx.Profiles().GetActiveManager(owner.ID)
			if err != nil {
				return err
			}
			if ownerManager == nil || ownerManager.ID != manager.ID {
				return utils.PermissionErr("Lead is not owned by one of your agents", nil)
			}
			lead.AgentID = nil
			lead.ManagerID = &manager.ID
			toProfileID = &manager.ID
			toTier = models.OwnerTierManager
			invalidate = append(invalidate, manager.ID)
		}

		if err := tx.Leads().SaveLead(lead); err != nil {
			return err
		}

		correlationID := uuid.New().String()
		if err := tx.Leads().AppendTransferEvent(&models.LeadTransferEvent{
			LeadID:        lead.ID,
			Action:        models.TransferActionRecall,
			FromProfileID: &owner.ID,
			FromTier:      fromTier,
			ToProfileID:   toProfileID,
			ToTier:        toTier,
			ActorAdminID:  actor.AdminID,
			ActorID:       actor.ProfileID,
			CorrelationID: correlationID,
		}); err != nil {
			return err
		}
		if err := tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionLeadRecalled,
			ProfileID:     &owner.ID,
			LeadID:        &lead.ID,
			ActorAdminID:  actor.AdminID,
			ActorID:       actor.ProfileID,
			Detail:        fmt.Sprintf("lead recalled from profile %d (%s)", owner.ID, fromTier),
			CorrelationID: correlationID,
		}); err != nil {
			return err
		}

		invalidate = append(invalidate, owner.ID)
		result = lead
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, profileID := range invalidate {
		s.cache.InvalidateProfile(profileID)
	}
	return result, nil
}

// RecallBatch recalls each lead independently, one transaction per lead,
// and reports partial success. A bad lead in the middle of the batch does
// not roll back the ones already processed.
func (s *LeadOwnershipService) RecallBatch(leadIDs []uint, actor Actor) BatchRecallResult {
	result := BatchRecallResult{Errors: []BatchRecallError{}}
	for _, leadID := range leadIDs {
		if _, err := s.Recall(leadID, actor); err != nil {
			entry := BatchRecallError{LeadID: leadID, Kind: utils.KindInternal, Message: err.Error()}
			if appErr := utils.GetAppError(err); appErr != nil {
				entry.Kind = appErr.Kind
				entry.Message = appErr.Message
			}
			result.Errors = append(result.Errors, entry)
			continue
		}
		result.SuccessCount++
	}
	return result
}

// requireManaged verifies the endpoint is either the manager themself or
// one of their ACTIVE agents.
func (s *LeadOwnershipService) requireManaged(tx Store, manager *models.AffiliateProfile, endpointID uint) error {
	if endpointID == manager.ID {
		return nil
	}
	endpointManager, err := tx.Profiles().GetActiveManager(endpointID)
	if err != nil {
		return err
	}
	if endpointManager == nil || endpointManager.ID != manager.ID {
		return utils.PermissionErr(fmt.Sprintf("Profile %d is not in your team", endpointID), nil)
	}
	return nil
}

// setOwner points the lead at the profile's tier and returns that tier.
// Exactly one of the two pointers is ever set.
func setOwner(lead *models.AffiliateLead, target *models.AffiliateProfile) models.OwnerTier {
	if target.Type == models.ProfileTypeBranchManager {
		lead.ManagerID = &target.ID
		lead.AgentID = nil
		return models.OwnerTierManager
	}
	lead.AgentID = &target.ID
	lead.ManagerID = nil
	return models.OwnerTierAgent
}

func tierOf(profile *models.AffiliateProfile) models.OwnerTier {
	if profile.Type == models.ProfileTypeBranchManager {
		return models.OwnerTierManager
	}
	return models.OwnerTierAgent
}
