package services

import (
	"time"

	"github.com/harborline/CruiseLink/models"
)

// ProfileStore is the lookup boundary for affiliate profiles and their
// hierarchy relations. No business logic lives behind it, so the engine
// services can be unit-tested against an in-memory fake.
type ProfileStore interface {
	// GetProfile returns the profile or a not_found error.
	GetProfile(id uint) (*models.AffiliateProfile, error)
	// GetActiveManager returns the agent's ACTIVE manager, or nil when the
	// agent is currently unattached.
	GetActiveManager(agentID uint) (*models.AffiliateProfile, error)
	// GetActiveAgents returns the manager's currently attached agents.
	GetActiveAgents(managerID uint) ([]models.AffiliateProfile, error)
}

// LeadStore reads and mutates lead ownership. Get inside a transaction
// takes a row lock so check-then-set sequences cannot race.
type LeadStore interface {
	GetLead(id uint) (*models.AffiliateLead, error)
	SaveLead(lead *models.AffiliateLead) error
	AppendTransferEvent(event *models.LeadTransferEvent) error
}

// TierStore looks up commission tiers. FindTier returns (nil, nil) when
// no tier matches the key; the resolver treats that as the fail-open case.
type TierStore interface {
	FindTier(productCode, cabinType, fareCategory string, fareLabel *string) (*models.AffiliateCommissionTier, error)
}

// SaleStore persists sales and serves the settlement queries.
type SaleStore interface {
	CreateSale(sale *models.AffiliateSale) error
	GetSale(id uint) (*models.AffiliateSale, error)
	SaveSale(sale *models.AffiliateSale) error
	// ListConfirmedSales returns CONFIRMED sales with a sale date inside
	// [from, to) attributed to the profile as manager or agent.
	ListConfirmedSales(profileID uint, from, to time.Time) ([]models.AffiliateSale, error)
}

// PayslipStore persists payslips keyed by (profileID, period).
type PayslipStore interface {
	GetPayslip(id uint) (*models.AffiliatePayslip, error)
	FindPayslip(profileID uint, period string) (*models.AffiliatePayslip, error)
	SavePayslip(payslip *models.AffiliatePayslip) error
}

// AuditStore appends audit interactions. Append-only.
type AuditStore interface {
	AppendInteraction(interaction *models.AuditInteraction) error
}

// Store aggregates the persistence boundary. Transaction runs fn against
// a store bound to a single database transaction; returning an error
// rolls everything back.
type Store interface {
	Profiles() ProfileStore
	Leads() LeadStore
	Tiers() TierStore
	Sales() SaleStore
	Payslips() PayslipStore
	Audit() AuditStore
	Transaction(fn func(Store) error) error
}

// AdminNotifier delivers fire-and-forget alerts to administrators.
// Implementations swallow delivery failures; money-state correctness
// never depends on a notification going out.
type AdminNotifier interface {
	Notify(subject, body string)
}

// AggregateCache caches per-profile dashboard aggregates with TTL expiry.
// InvalidateProfile is the single invalidation entry point and is called
// exactly once per state-mutating operation per affected profile.
type AggregateCache interface {
	GetAggregate(profileID uint) ([]byte, bool)
	SetAggregate(profileID uint, payload []byte)
	InvalidateProfile(profileID uint)
}

// SettlementLocker serializes settlement runs for the same
// (profile, period). Lock returns a release func, or ErrLockBusy when a
// concurrent run holds the key.
type SettlementLocker interface {
	Lock(key string) (func(), error)
}

// Actor identifies who performed an operation: an HQ administrator or an
// affiliate profile. Exactly one of the two fields is set.
type Actor struct {
	AdminID   *uint
	ProfileID *uint
}

// IsHQ reports whether the actor is an HQ administrator.
func (a Actor) IsHQ() bool {
	return a.AdminID != nil
}

// HQActor builds an admin actor.
func HQActor(adminID uint) Actor {
	return Actor{AdminID: &adminID}
}

// ProfileActor builds an affiliate actor.
func ProfileActor(profileID uint) Actor {
	return Actor{ProfileID: &profileID}
}
