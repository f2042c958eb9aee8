package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleStatus is the sale approval state machine.
// PENDING -> PENDING_APPROVAL -> {APPROVED, REJECTED}; APPROVED -> CONFIRMED.
// REJECTED and CONFIRMED are terminal.
type SaleStatus string

const (
	SaleStatusPending         SaleStatus = "PENDING"
	SaleStatusPendingApproval SaleStatus = "PENDING_APPROVAL"
	SaleStatusApproved        SaleStatus = "APPROVED"
	SaleStatusRejected        SaleStatus = "REJECTED"
	SaleStatusConfirmed       SaleStatus = "CONFIRMED"
)

// AffiliateSale is one purchase event tied to a lead. ManagerID/AgentID
// snapshot the attribution at the time of sale and never follow later
// lead reassignment. Commission fields are write-once per transition and
// never recomputed after CONFIRMED.
type AffiliateSale struct {
	gorm.Model
	LeadID        uint              `gorm:"not null;index" json:"lead_id"`
	Lead          AffiliateLead     `gorm:"foreignKey:LeadID" json:"-"`
	ManagerID     *uint             `gorm:"index" json:"manager_id,omitempty"`
	Manager       *AffiliateProfile `gorm:"foreignKey:ManagerID" json:"-"`
	AgentID       *uint             `gorm:"index" json:"agent_id,omitempty"`
	Agent         *AffiliateProfile `gorm:"foreignKey:AgentID" json:"-"`
	SubmitterID   uint              `gorm:"not null" json:"submitter_id"`
	ProductCode   string            `gorm:"type:varchar(40);not null" json:"product_code"`
	CabinType     string            `gorm:"type:varchar(40);not null" json:"cabin_type"`
	FareCategory  string            `gorm:"type:varchar(40);not null" json:"fare_category"`
	FareLabel     *string           `gorm:"type:varchar(80)" json:"fare_label,omitempty"`
	SaleDate      time.Time         `gorm:"index" json:"sale_date"`
	Status        SaleStatus        `gorm:"type:varchar(20);not null;index" json:"status"`
	AutoApproved  bool              `gorm:"default:false" json:"auto_approved"`
	ApproverID    *uint             `json:"approver_id,omitempty"`
	ApprovedAt    *time.Time        `json:"approved_at,omitempty"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	RejectReason  string            `json:"reject_reason,omitempty"`
	TierMissing   bool              `gorm:"default:false" json:"tier_missing"`

	SaleAmount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sale_amount"`
	CostAmount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost_amount"`
	NetRevenue         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"net_revenue"`
	HQCommission       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"hq_commission"`
	BranchCommission   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"branch_commission"`
	SalesCommission    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sales_commission"`
	OverrideCommission decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"override_commission"`
}

// IsTerminal reports whether no further workflow transition is allowed.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusRejected || s == SaleStatusConfirmed
}
