package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySalesSummary is a small, query-friendly aggregate table used by the
// dashboard's revenue cards.
//
// Grain: (user_id, location_id, summary_date). location_id is 0 when the
// originating branch matched no internal location.
//
// Invariant: total_revenue equals the sum of sales_transactions.total_amount
// over rows sharing the same (stylist, location, date) with a resolved
// stylist id. total_transactions counts purchases, not line items.
//
// NOTE: This table is derived data and can be rebuilt from sales_transactions
// (see cmd/backfill-daily-summary).
type DailySalesSummary struct {
	UserId      int       `gorm:"primaryKey" json:"user_id"`
	LocationId  int       `gorm:"primaryKey" json:"location_id"`
	SummaryDate time.Time `gorm:"primaryKey;index:idx_dss_date" json:"summary_date"`

	TotalServices     int             `json:"total_services"`
	TotalProducts     int             `json:"total_products"`
	ServiceRevenue    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"service_revenue"`
	ProductRevenue    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"product_revenue"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_revenue"`
	TotalTransactions int             `json:"total_transactions"`
	TotalDiscounts    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_discounts"`
	AverageTicket     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"average_ticket"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
