package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AffiliateCommissionTier defines the revenue split for one
// product/cabin/fare combination. Owned by pricing administration; the
// settlement engine only ever reads these rows.
//
// When HasShareOverride is set the three pre-computed share amounts are
// used as-is and take precedence over the default rate split.
type AffiliateCommissionTier struct {
	gorm.Model
	ProductCode  string  `gorm:"type:varchar(40);not null;uniqueIndex:idx_tier_key" json:"product_code"`
	CabinType    string  `gorm:"type:varchar(40);not null;uniqueIndex:idx_tier_key" json:"cabin_type"`
	FareCategory string  `gorm:"type:varchar(40);not null;uniqueIndex:idx_tier_key" json:"fare_category"`
	FareLabel    *string `gorm:"type:varchar(80);uniqueIndex:idx_tier_key" json:"fare_label,omitempty"`

	SaleAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"sale_amount"`
	CostAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cost_amount"`

	HasShareOverride bool            `gorm:"default:false" json:"has_share_override"`
	HQShare          decimal.Decimal `gorm:"type:decimal(15,2)" json:"hq_share"`
	BranchShare      decimal.Decimal `gorm:"type:decimal(15,2)" json:"branch_share"`
	SalesShare       decimal.Decimal `gorm:"type:decimal(15,2)" json:"sales_share"`
}
