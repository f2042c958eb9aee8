package models

import (
	"time"

	"gorm.io/gorm"
)

// LeadStatus values for an affiliate lead.
const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusQuoted    = "QUOTED"
	LeadStatusPurchased = "PURCHASED"
	LeadStatusClosed    = "CLOSED"
)

// AffiliateLead is a customer record owned by exactly one hierarchy member
// at a time. Exactly one of ManagerID / AgentID is set while owned; both
// nil means the lead sits with HQ (unowned). Leads are never deleted.
type AffiliateLead struct {
	gorm.Model
	CustomerName  string            `gorm:"not null" json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	CustomerEmail string            `json:"customer_email"`
	Status        string            `gorm:"type:varchar(20);not null;index;default:NEW" json:"status"`
	GroupID       *uint             `gorm:"index" json:"group_id,omitempty"`
	ManagerID     *uint             `gorm:"index" json:"manager_id,omitempty"`
	Manager       *AffiliateProfile `gorm:"foreignKey:ManagerID" json:"-"`
	AgentID       *uint             `gorm:"index" json:"agent_id,omitempty"`
	Agent         *AffiliateProfile `gorm:"foreignKey:AgentID" json:"-"`

	TransferEvents []LeadTransferEvent `gorm:"foreignKey:LeadID" json:"transfer_events,omitempty"`
}

// OwnerProfileID returns the profile currently holding the lead, or nil
// when the lead sits with HQ.
func (l *AffiliateLead) OwnerProfileID() *uint {
	if l.AgentID != nil {
		return l.AgentID
	}
	return l.ManagerID
}

// TransferAction values recorded in the lead transfer log.
type TransferAction string

const (
	TransferActionAssign   TransferAction = "ASSIGN"
	TransferActionTransfer TransferAction = "TRANSFER"
	TransferActionRecall   TransferAction = "RECALL"
)

// OwnerTier labels the hierarchy level an ownership event touched.
type OwnerTier string

const (
	OwnerTierHQ      OwnerTier = "HQ"
	OwnerTierManager OwnerTier = "BRANCH_MANAGER"
	OwnerTierAgent   OwnerTier = "SALES_AGENT"
)

// LeadTransferEvent is the append-only ownership history of a lead.
// Rows are only ever inserted, never updated or deleted.
type LeadTransferEvent struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	LeadID        uint           `gorm:"not null;index" json:"lead_id"`
	Action        TransferAction `gorm:"type:varchar(20);not null" json:"action"`
	FromProfileID *uint          `json:"from_profile_id,omitempty"`
	FromTier      OwnerTier      `gorm:"type:varchar(20);not null" json:"from_tier"`
	ToProfileID   *uint          `json:"to_profile_id,omitempty"`
	ToTier        OwnerTier      `gorm:"type:varchar(20);not null" json:"to_tier"`
	ActorAdminID  *uint          `json:"actor_admin_id,omitempty"`
	ActorID       *uint          `json:"actor_profile_id,omitempty"`
	CorrelationID string         `gorm:"type:varchar(64)" json:"correlation_id"`
	CreatedAt     time.Time      `json:"created_at"`
}
