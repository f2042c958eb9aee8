package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileType identifies the hierarchy tier of an affiliate.
type ProfileType string

const (
	ProfileTypeBranchManager ProfileType = "BRANCH_MANAGER"
	ProfileTypeSalesAgent    ProfileType = "SALES_AGENT"
)

// ProfileStatus lifecycle for an affiliate profile. Profiles are never
// physically deleted while sales history references them.
type ProfileStatus string

const (
	ProfileStatusPending  ProfileStatus = "PENDING"
	ProfileStatusActive   ProfileStatus = "ACTIVE"
	ProfileStatusInactive ProfileStatus = "INACTIVE"
)

// AffiliateProfile represents a branch manager or sales agent in the network
type AffiliateProfile struct {
	gorm.Model
	Type          ProfileType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status        ProfileStatus `gorm:"type:varchar(20);not null;index;default:PENDING" json:"status"`
	AffiliateCode string        `gorm:"type:varchar(32);uniqueIndex" json:"affiliate_code"`
	Name          string        `gorm:"not null" json:"name"`
	Email         string        `gorm:"uniqueIndex;not null" json:"email"`
	Password      string        `json:"-"`
	Phone         string        `json:"phone"`
	BankName      string        `json:"bank_name"`
	BankAccountNo string        `json:"bank_account_no"`
	BankHolder    string        `json:"bank_holder"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	TerminatedAt  *time.Time    `json:"terminated_at,omitempty"`
	LastLoginAt   time.Time     `json:"last_login_at"`
}

// RelationStatus for a manager-agent pair. Rows are flipped to
// DISCONNECTED on detachment, never deleted.
type RelationStatus string

const (
	RelationStatusActive       RelationStatus = "ACTIVE"
	RelationStatusDisconnected RelationStatus = "DISCONNECTED"
)

// AffiliateRelation links a sales agent to a branch manager. For a given
// agent at most one row may be ACTIVE at any time.
type AffiliateRelation struct {
	gorm.Model
	ManagerID      uint             `gorm:"not null;index" json:"manager_id"`
	Manager        AffiliateProfile `gorm:"foreignKey:ManagerID" json:"-"`
	AgentID        uint             `gorm:"not null;index" json:"agent_id"`
	Agent          AffiliateProfile `gorm:"foreignKey:AgentID" json:"-"`
	Status         RelationStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	ConnectedAt    time.Time        `json:"connected_at"`
	DisconnectedAt *time.Time       `json:"disconnected_at,omitempty"`
}

// Admin represents an HQ administrator
type Admin struct {
	gorm.Model
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	LastLogin time.Time `json:"last_login"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
}
