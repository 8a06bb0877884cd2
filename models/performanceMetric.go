package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceMetric holds one stylist's weekly figures from the external
// platform's staff-performance report. Keyed by (user, week start); the
// platform may revise a published report, so re-syncs overwrite.
type PerformanceMetric struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	UserId    int       `gorm:"uniqueIndex:idx_perf_user_week,priority:1;not null" json:"user_id"`
	WeekStart time.Time `gorm:"uniqueIndex:idx_perf_user_week,priority:2;not null" json:"week_start"`

	NewClients       int             `json:"new_clients"`
	RetentionRate    decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"retention_rate"`
	RetailSales      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"retail_sales"`
	ExtensionClients int             `json:"extension_clients"`
	TotalRevenue     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_revenue"`
	ServiceCount     int             `json:"service_count"`
	AverageTicket    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"average_ticket"`
	RebookingRate    decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"rebooking_rate"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
