package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayslipStatus lifecycle. A SENT payslip is immutable.
type PayslipStatus string

const (
	PayslipStatusDraft    PayslipStatus = "DRAFT"
	PayslipStatusApproved PayslipStatus = "APPROVED"
	PayslipStatusSent     PayslipStatus = "SENT"
)

// AffiliatePayslip aggregates one profile's confirmed sales over one
// settlement period (calendar month, stored as "YYYY-MM"). Keyed by
// (profile_id, period); the settlement engine upserts the DRAFT row and
// must never touch a SENT one.
type AffiliatePayslip struct {
	gorm.Model
	ProfileID uint             `gorm:"not null;uniqueIndex:idx_payslip_period" json:"profile_id"`
	Profile   AffiliateProfile `gorm:"foreignKey:ProfileID" json:"-"`
	Period    string           `gorm:"type:varchar(7);not null;uniqueIndex:idx_payslip_period" json:"period"`
	Status    PayslipStatus    `gorm:"type:varchar(20);not null;index;default:DRAFT" json:"status"`

	SaleCount        int             `json:"sale_count"`
	TotalSales       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_sales"`
	TotalCommission  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_commission"`
	TotalWithholding decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_withholding"`
	NetPayment       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"net_payment"`

	// Bank details snapshot at settlement time; nulls never block the
	// payslip, they flag it for manual follow-up.
	BankName      *string `json:"bank_name,omitempty"`
	BankAccountNo *string `json:"bank_account_no,omitempty"`
	NeedsReview   bool    `gorm:"default:false" json:"needs_review"`

	ApprovedBy *uint      `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}
