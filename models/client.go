package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is the canonical record for an external platform client. The external
// platform exposes clients per branch; the sync engine keeps exactly one row
// per external id, attributed to the branch with the most recent visit.
type Client struct {
	ID         uint   `gorm:"primary_key" json:"id"`
	ExternalId string `gorm:"uniqueIndex;size:128;not null" json:"external_id"`

	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Email     string `gorm:"size:255" json:"email"`
	Phone     string `gorm:"size:50" json:"phone"`

	VisitCount int        `json:"visit_count"`
	FirstVisit *time.Time `json:"first_visit"`
	LastVisit  *time.Time `json:"last_visit"`

	PreferredStylistId *int `gorm:"index" json:"preferred_stylist_id"`

	TotalSpend decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_spend"`
	VIP        bool            `gorm:"column:vip;default:false" json:"vip"`
	Notes      string          `gorm:"type:text" json:"notes"`

	// Resolved "home" location: the internal location matched to the branch
	// that showed the most recent visit. Nil when no branch name matched.
	LocationId *int   `gorm:"index" json:"location_id"`
	BranchId   string `gorm:"size:128" json:"branch_id"`
	BranchName string `gorm:"size:255" json:"branch_name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
