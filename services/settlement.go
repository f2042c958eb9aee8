package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
)

// ErrLockBusy is returned by a SettlementLocker when another run holds
// the (profile, period) key.
var ErrLockBusy = errors.New("settlement lock busy")

// DefaultWithholdingRate is the flat 3.3% tax withheld from gross
// commission.
var DefaultWithholdingRate = decimal.NewFromFloat(0.033)

// SettlementEngine aggregates confirmed sales into monthly payslips.
type SettlementEngine struct {
	store           Store
	locker          SettlementLocker
	withholdingRate decimal.Decimal
}

// NewSettlementEngine builds the engine.
func NewSettlementEngine(store Store, locker SettlementLocker, withholdingRate decimal.Decimal) *SettlementEngine {
	return &SettlementEngine{store: store, locker: locker, withholdingRate: withholdingRate}
}

// PeriodBounds converts a "YYYY-MM" period into its [start, end) window.
func PeriodBounds(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, utils.ValidationErr("Period must be formatted YYYY-MM", err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// Run aggregates one profile's CONFIRMED sales for the period into a
// DRAFT payslip. Re-running before the payslip is SENT recomputes the
// totals from scratch; a SENT payslip is read-only and the run is
// rejected. An advisory lock keyed by (profile, period) stops a run from
// racing itself.
func (e *SettlementEngine) Run(profileID uint, period string, actor Actor) (*models.AffiliatePayslip, error) {
	from, to, err := PeriodBounds(period)
	if err != nil {
		return nil, err
	}

	release, err := e.locker.Lock(fmt.Sprintf("settlement:%d:%s", profileID, period))
	if err != nil {
		if errors.Is(err, ErrLockBusy) {
			return nil, utils.RetryableErr("Settlement already running for this profile and period", err)
		}
		return nil, utils.WrapError(err, "settlement lock failed")
	}
	defer release()

	var payslip *models.AffiliatePayslip
	err = e.store.Transaction(func(tx Store) error {
		profile, err := tx.Profiles().GetProfile(profileID)
		if err != nil {
			return err
		}

		existing, err := tx.Payslips().FindPayslip(profileID, period)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == models.PayslipStatusSent {
			return utils.StateErr("Payslip has been sent and is read-only", nil)
		}

		sales, err := tx.Sales().ListConfirmedSales(profileID, from, to)
		if err != nil {
			return err
		}

		totalSales := decimal.Zero
		totalCommission := decimal.Zero
		for _, sale := range sales {
			totalSales = totalSales.Add(sale.SaleAmount)
			totalCommission = totalCommission.Add(profileShare(profile, &sale))
		}
		totalWithholding := totalCommission.Mul(e.withholdingRate).Floor()
		netPayment := totalCommission.Sub(totalWithholding)

		if existing != nil {
			payslip = existing
		} else {
			payslip = &models.AffiliatePayslip{ProfileID: profileID, Period: period}
		}
		payslip.Status = models.PayslipStatusDraft
		payslip.SaleCount = len(sales)
		payslip.TotalSales = totalSales
		payslip.TotalCommission = totalCommission
		payslip.TotalWithholding = totalWithholding
		payslip.NetPayment = netPayment
		payslip.ApprovedBy = nil
		payslip.ApprovedAt = nil

		// Missing bank details never block the payslip; they flag it for
		// manual follow-up.
		payslip.BankName = nilIfEmpty(profile.BankName)
		payslip.BankAccountNo = nilIfEmpty(profile.BankAccountNo)
		payslip.NeedsReview = payslip.BankName == nil || payslip.BankAccountNo == nil
		if payslip.NeedsReview {
			utils.LogError("Payslip for profile %d period %s flagged: missing bank details", profileID, period)
		}

		if err := tx.Payslips().SavePayslip(payslip); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionSettlementRun,
			ProfileID:     &profileID,
			PayslipID:     &payslip.ID,
			ActorAdminID:  actor.AdminID,
			ActorID:       actor.ProfileID,
			Detail:        fmt.Sprintf("settlement run for %s: %d sales, commission %s", period, len(sales), totalCommission.String()),
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return payslip, nil
}

// RunResult reports one profile's outcome in a period-wide run.
type RunResult struct {
	ProfileID uint   `json:"profile_id"`
	PayslipID uint   `json:"payslip_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RunMany settles each profile independently and reports per-profile
// outcomes; one failing profile never blocks the rest.
func (e *SettlementEngine) RunMany(profileIDs []uint, period string, actor Actor) []RunResult {
	results := make([]RunResult, 0, len(profileIDs))
	for _, profileID := range profileIDs {
		entry := RunResult{ProfileID: profileID}
		payslip, err := e.Run(profileID, period, actor)
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.PayslipID = payslip.ID
		}
		results = append(results, entry)
	}
	return results
}

// Approve moves a DRAFT payslip to APPROVED, after which it is immutable
// input to export and delivery.
func (e *SettlementEngine) Approve(payslipID uint, adminID uint) (*models.AffiliatePayslip, error) {
	var payslip *models.AffiliatePayslip
	err := e.store.Transaction(func(tx Store) error {
		var err error
		payslip, err = tx.Payslips().GetPayslip(payslipID)
		if err != nil {
			return err
		}
		if payslip.Status != models.PayslipStatusDraft {
			return utils.StateErr(fmt.Sprintf("Payslip is %s, only DRAFT payslips can be approved", payslip.Status), nil)
		}

		now := time.Now()
		payslip.Status = models.PayslipStatusApproved
		payslip.ApprovedBy = &adminID
		payslip.ApprovedAt = &now
		if err := tx.Payslips().SavePayslip(payslip); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionPayslipApproved,
			ProfileID:     &payslip.ProfileID,
			PayslipID:     &payslip.ID,
			ActorAdminID:  &adminID,
			Detail:        fmt.Sprintf("payslip %s approved", payslip.Period),
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return payslip, nil
}

// MarkSent records successful delivery of an APPROVED payslip. SENT is
// terminal; the engine treats the payslip as read-only from here on.
func (e *SettlementEngine) MarkSent(payslipID uint, adminID uint) (*models.AffiliatePayslip, error) {
	var payslip *models.AffiliatePayslip
	err := e.store.Transaction(func(tx Store) error {
		var err error
		payslip, err = tx.Payslips().GetPayslip(payslipID)
		if err != nil {
			return err
		}
		if payslip.Status != models.PayslipStatusApproved {
			return utils.StateErr(fmt.Sprintf("Payslip is %s, only APPROVED payslips can be marked sent", payslip.Status), nil)
		}

		now := time.Now()
		payslip.Status = models.PayslipStatusSent
		payslip.SentAt = &now
		if err := tx.Payslips().SavePayslip(payslip); err != nil {
			return err
		}
		return tx.Audit().AppendInteraction(&models.AuditInteraction{
			Type:          models.InteractionPayslipSent,
			ProfileID:     &payslip.ProfileID,
			PayslipID:     &payslip.ID,
			ActorAdminID:  &adminID,
			Detail:        fmt.Sprintf("payslip %s delivered", payslip.Period),
			CorrelationID: uuid.New().String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return payslip, nil
}

// profileShare picks the profile's own cut of a sale: the branch share
// for managers, the sales share for agents, plus any override booked to
// that profile.
func profileShare(profile *models.AffiliateProfile, sale *models.AffiliateSale) decimal.Decimal {
	share := decimal.Zero
	switch profile.Type {
	case models.ProfileTypeBranchManager:
		if sale.ManagerID != nil && *sale.ManagerID == profile.ID {
			share = share.Add(sale.BranchCommission).Add(sale.OverrideCommission)
		}
	case models.ProfileTypeSalesAgent:
		if sale.AgentID != nil && *sale.AgentID == profile.ID {
			share = share.Add(sale.SalesCommission).Add(sale.OverrideCommission)
		}
	}
	return share
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
