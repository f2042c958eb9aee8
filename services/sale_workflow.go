package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

// WorkflowConfig carries the business toggles of the sale workflow.
//
// AutoApproveManagerOwnedSales is the standing exception where a manager
// submitting a sale for a lead they solely own skips review. Carried as
// configuration pending product-owner confirmation, not as a hardcoded
// rule.
type WorkflowConfig struct {
	AutoApproveManagerOwnedSales bool
}

// SubmitSaleInput describes a purchase confirmation for a lead.
type SubmitSaleInput struct {
	LeadID       uint
	SubmitterID  uint
	ProductCode  string
	CabinType    string
	FareCategory string
	FareLabel    *string
	SaleAmount   decimal.Decimal
	CostAmount   decimal.Decimal
	SaleDate     time.Time
}

// SaleWorkflow drives a sale through the approval state machine:
// PENDING -> PENDING_APPROVAL -> {APPROVED, REJECTED}; APPROVED -> CONFIRMED.
// Commission amounts are computed once at submission and locked; they are
// never silently recomputed after that.
type SaleWorkflow struct {
	store    Store
	resolver *CommissionResolver
	cache    AggregateCache
	config   WorkflowConfig
}

// NewSaleWorkflow builds the workflow.
func NewSaleWorkflow(store Store, resolver *CommissionResolver, cache AggregateCache, config WorkflowConfig) *SaleWorkflow {
	return &SaleWorkflow{store: store, resolver: resolver, cache: cache, config: config}
}

// Submit records a sale in PENDING with its commission computed and
// locked. Attribution snapshots the lead's owner (and the owning agent's
// active manager) at this moment; later lead reassignment never moves it.
func (w *SaleWorkflow) Submit(input SubmitSaleInput) (*models.AffiliateSale, error) {
	if input.SaleAmount.LessThan(input.CostAmount) {
		return nil, utils.ValidationErr("Sale amount cannot be below cost amount", nil)
	}

	var sale *models.AffiliateSale
	var affected []uint
	err := w.store.Transaction(func(tx Store) error {
		lead, err := tx.Leads().GetLead(input.LeadID)
		if err != nil {
			return err
		}
		ownerID := lead.OwnerProfileID()
		if ownerID == nil {
			return utils.ValidationErr("Lead has no owner to attribute the sale to", nil)
		}
		owner, err := tx.Profiles().GetProfile(*ownerID)
		if err != nil {
			return err
		}

		result, err := w.resolver.Resolve(CommissionInput{
			ProductCode:  input.ProductCode,
			CabinType:    input.CabinType,
			FareCategory: input.FareCategory,
			FareLabel:    input.FareLabel,
			SaleAmount:   input.SaleAmount,
			CostAmount:   input.CostAmount,
		})
		if err != nil {
			return err
		}

		saleDate := input.SaleDate
		if saleDate.IsZero() {
			saleDate = time.Now()
		}

		sale = &models.AffiliateSale{
			LeadID:       lead.ID,
			SubmitterID:  input.SubmitterID,
			ProductCode:  input.ProductCode,
			CabinType:    input.CabinType,
			FareCategory: input.FareCategory,
			FareLabel:    input.FareLabel,
			SaleDate:     saleDate,
			Status:       models.SaleStatusPending,
			TierMissing:  result.TierMissing,
			SaleAmount:   input.SaleAmount,
			CostAmount:   input.CostAmount,
			NetRevenue:   input.SaleAmount.Sub(input.CostAmount),
			HQCommission: result.HQShare,
		}

		if owner.Type == models.ProfileTypeSalesAgent {
			sale.AgentID = &owner.ID
			sale.SalesCommission = result.SalesShare
			sale.OverrideCommission = decimal.Zero
			manager, err := tx.Profiles().GetActiveManager(owner.ID)
			if err != nil {
				return err
			}
			if manager != nil {
				sale.ManagerID = &manager.ID
				sale.BranchCommission = result.BranchShare
				affected = append(affected, manager.ID)
			} else {
				// Unattached agent: the branch cut has no recipient and
				// stays with HQ.
				sale.BranchCommission = decimal.Zero
				sale.HQCommission = result.HQShare.Add(result.BranchShare)
			}
		} else {
			// Manager-owned lead: the manager takes the branch cut and the
			// selling share lands as their override.
			sale.ManagerID = &owner.ID
			sale.BranchCommission = result.BranchShare
			sale.SalesCommission = decimal.Zero
			sale.OverrideCommission = result.SalesShare
		}
		affected = append(affected, owner.ID)

		if err := tx.Sales().CreateSale(sale); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionSaleSubmitted,
			ProfileID:     &owner.ID,
			LeadID:        &lead.ID,
			SaleID:        &sale.ID,
			ActorID:       &input.SubmitterID,
			Detail:        fmt.Sprintf("sale submitted for lead %d, amount %s", lead.ID, input.SaleAmount.String()),
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	for _, profileID := range affected {
		w.cache.InvalidateProfile(profileID)
	}
	return sale, nil
}

// RequestApproval moves a PENDING sale into review. The configured
// auto-approval exception (manager submitting for a lead they solely own)
// skips straight to APPROVED and is logged as such.
func (w *SaleWorkflow) RequestApproval(saleID uint, actor Actor) (*models.AffiliateSale, error) {
	var sale *models.AffiliateSale
	err := w.store.Transaction(func(tx Store) error {
		var err error
		sale, err = tx.Sales().GetSale(saleID)
		if err != nil {
			return err
		}
		if sale.Status != models.SaleStatusPending {
			return utils.StateErr(fmt.Sprintf("Sale is %s, approval can only be requested from PENDING", sale.Status), nil)
		}

		if w.autoApprovalApplies(sale) {
			now := time.Now()
			sale.Status = models.SaleStatusApproved
			sale.AutoApproved = true
			sale.ApprovedAt = &now
			if err := tx.Sales().SaveSale(sale); err != nil {
				return err
			}
			return tx.Audit().AppendInteraction(&models.AuditInteraction{
				Type:          models.InteractionSaleAutoApproved,
				ProfileID:     sale.ManagerID,
				SaleID:        &sale.ID,
				ActorID:       actor.ProfileID,
				ActorAdminID:  actor.AdminID,
				Detail:        "auto-approved: manager-owned lead exception",
				CorrelationID: uuid.New().String(),
			})
		}

		sale.Status = models.SaleStatusPendingApproval
		if err := tx.Sales().SaveSale(sale); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionSaleSubmitted,
			SaleID:        &sale.ID,
			ActorID:       actor.ProfileID,
			ActorAdminID:  actor.AdminID,
			Detail:        "sale moved to review",
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	w.invalidateFor(sale)
	return sale, nil
}

// Approve moves a PENDING_APPROVAL sale to APPROVED. The approver must
// not be the profile that submitted the sale.
func (w *SaleWorkflow) Approve(saleID uint, approver Actor) (*models.AffiliateSale, error) {
	var sale *models.AffiliateSale
	err := w.store.Transaction(func(tx Store) error {
		var err error
		sale, err = tx.Sales().GetSale(saleID)
		if err != nil {
			return err
		}
		if sale.Status != models.SaleStatusPendingApproval {
			return utils.StateErr(fmt.Sprintf("Sale is %s, only PENDING_APPROVAL sales can be approved", sale.Status), nil)
		}
		if approver.ProfileID != nil && *approver.ProfileID == sale.SubmitterID {
			return utils.PermissionErr("Approver must differ from the submitter", nil)
		}

		now := time.Now()
		sale.Status = models.SaleStatusApproved
		sale.ApproverID = approver.ProfileID
		if approver.AdminID != nil {
			sale.ApproverID = approver.AdminID
		}
		sale.ApprovedAt = &now
		if err := tx.Sales().SaveSale(sale); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionSaleApproved,
			ProfileID:     sale.ManagerID,
			SaleID:        &sale.ID,
			ActorID:       approver.ProfileID,
			ActorAdminID:  approver.AdminID,
			Detail:        "sale approved",
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	w.invalidateFor(sale)
	return sale, nil
}

// Reject moves a sale under review to REJECTED. A reason is required;
// commission fields are zeroed but the record stays for audit.
func (w *SaleWorkflow) Reject(saleID uint, approver Actor, reason string) (*models.AffiliateSale, error) {
	if reason == "" {
		return nil, utils.ValidationErr("Rejection requires a reason", nil)
	}

	var sale *models.AffiliateSale
	err := w.store.Transaction(func(tx Store) error {
		var err error
		sale, err = tx.Sales().GetSale(saleID)
		if err != nil {
			return err
		}
		if sale.Status != models.SaleStatusPendingApproval && sale.Status != models.SaleStatusPending {
			return utils.StateErr(fmt.Sprintf("Sale is %s and can no longer be rejected", sale.Status), nil)
		}

		sale.Status = models.SaleStatusRejected
		sale.RejectReason = reason
		sale.HQCommission = decimal.Zero
		sale.BranchCommission = decimal.Zero
		sale.SalesCommission = decimal.Zero
		sale.OverrideCommission = decimal.Zero
		if err := tx.Sales().SaveSale(sale); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionSaleRejected,
			ProfileID:     sale.ManagerID,
			SaleID:        &sale.ID,
			ActorID:       approver.ProfileID,
			ActorAdminID:  approver.AdminID,
			Detail:        fmt.Sprintf("sale rejected: %s", reason),
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	w.invalidateFor(sale)
	return sale, nil
}

// Confirm finalizes an APPROVED sale for settlement. Confirming an
// already-CONFIRMED sale is an idempotent no-op so downstream settlement
// can never double-count.
func (w *SaleWorkflow) Confirm(saleID uint) (*models.AffiliateSale, error) {
	var sale *models.AffiliateSale
	alreadyConfirmed := false
	err := w.store.Transaction(func(tx Store) error {
		var err error
		sale, err = tx.Sales().GetSale(saleID)
		if err != nil {
			return err
		}
		if sale.Status == models.SaleStatusConfirmed {
			alreadyConfirmed = true
			return nil
		}
		if sale.Status != models.SaleStatusApproved {
			return utils.StateErr(fmt.Sprintf("Sale is %s, only APPROVED sales can be confirmed", sale.Status), nil)
		}

		now := time.Now()
		sale.Status = models.SaleStatusConfirmed
		sale.ConfirmedAt = &now
		if err := tx.Sales().SaveSale(sale); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionSaleConfirmed,
			ProfileID:     sale.ManagerID,
			SaleID:        &sale.ID,
			Detail:        "sale confirmed for settlement",
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	if alreadyConfirmed {
		utils.LogDebug("Sale %d already confirmed, duplicate confirmation ignored", saleID)
		return sale, nil
	}
	w.invalidateFor(sale)
	return sale, nil
}

func (w *SaleWorkflow) autoApprovalApplies(sale *models.AffiliateSale) bool {
	if !w.config.AutoApproveManagerOwnedSales {
		return false
	}
	// Manager submitting a sale for a lead they solely own.
	return sale.AgentID == nil && sale.ManagerID != nil && sale.SubmitterID == *sale.ManagerID
}

func (w *SaleWorkflow) invalidateFor(sale *models.AffiliateSale) {
	if sale == nil {
		return
	}
	if sale.ManagerID != nil {
		w.cache.InvalidateProfile(*sale.ManagerID)
	}
	if sale.AgentID != nil {
		w.cache.InvalidateProfile(*sale.AgentID)
	}
}
