package models

import "time"

// InteractionType values for the audit log.
const (
	InteractionSaleSubmitted    = "SALE_SUBMITTED"
	InteractionSaleApproved     = "SALE_APPROVED"
	InteractionSaleAutoApproved = "SALE_AUTO_APPROVED"
	InteractionSaleRejected     = "SALE_REJECTED"
	InteractionSaleConfirmed    = "SALE_CONFIRMED"
	InteractionLeadAssigned     = "LEAD_ASSIGNED"
	InteractionLeadTransferred  = "LEAD_TRANSFERRED"
	InteractionLeadRecalled     = "LEAD_RECALLED"
	InteractionSettlementRun    = "SETTLEMENT_RUN"
	InteractionPayslipApproved  = "PAYSLIP_APPROVED"
	InteractionPayslipSent      = "PAYSLIP_SENT"
)

// AuditInteraction is an append-only record written alongside every
// state-mutating operation. CorrelationID ties it to the transfer event
// or payslip the operation produced.
type AuditInteraction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Type          string    `gorm:"type:varchar(40);not null;index" json:"type"`
	ProfileID     *uint     `gorm:"index" json:"profile_id,omitempty"`
	LeadID        *uint     `gorm:"index" json:"lead_id,omitempty"`
	SaleID        *uint     `gorm:"index" json:"sale_id,omitempty"`
	PayslipID     *uint     `gorm:"index" json:"payslip_id,omitempty"`
	ActorAdminID  *uint     `json:"actor_admin_id,omitempty"`
	ActorID       *uint     `json:"actor_profile_id,omitempty"`
	Detail        string    `gorm:"type:text" json:"detail"`
	CorrelationID string    `gorm:"type:varchar(64)" json:"correlation_id"`
	CreatedAt     time.Time `json:"created_at"`
}
