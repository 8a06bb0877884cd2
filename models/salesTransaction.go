package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesTransaction is one line item of an external purchase. The external API
// has no stable per-line id, so rows are keyed by (purchase id, item name);
// two same-named items in one purchase collide and the later one wins.
type SalesTransaction struct {
	ID         uint   `gorm:"primary_key" json:"id"`
	PurchaseId string `gorm:"uniqueIndex:idx_sales_purchase_item,priority:1;size:128;not null" json:"purchase_id"`
	ItemName   string `gorm:"uniqueIndex:idx_sales_purchase_item,priority:2;size:255;not null" json:"item_name"`

	// StylistId is nil when the external staff id has no internal mapping.
	// Unmapped rows are kept here but excluded from DailySalesSummary.
	StylistId       *int   `gorm:"index" json:"stylist_id"`
	ExternalStaffId string `gorm:"size:128" json:"external_staff_id"`

	BranchId   string `gorm:"size:128" json:"branch_id"`
	BranchName string `gorm:"size:255" json:"branch_name"`
	LocationId *int   `gorm:"index" json:"location_id"`

	TransactionDate time.Time `gorm:"index" json:"transaction_date"`
	TransactionTime string    `gorm:"size:10" json:"transaction_time"`

	ClientName  string `gorm:"size:255" json:"client_name"`
	ClientPhone string `gorm:"size:50" json:"client_phone"`

	ItemType     string `gorm:"size:20;not null" json:"item_type"` // service | product
	ItemCategory string `gorm:"size:255" json:"item_category"`

	Quantity    int             `gorm:"default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	Tax         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`

	PaymentMethod string `gorm:"size:50" json:"payment_method"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
