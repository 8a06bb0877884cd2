package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment is a synchronized copy of an external platform appointment,
// keyed by its external id so re-syncs overwrite in place. Client name/phone
// are denormalized snapshots, not links to a Client row.
type Appointment struct {
	ID         uint   `gorm:"primary_key" json:"id"`
	ExternalId string `gorm:"uniqueIndex;size:128;not null" json:"external_id"`

	// StylistId is nil when the external staff id has no internal mapping;
	// the external id is retained either way.
	StylistId       *int   `gorm:"index" json:"stylist_id"`
	ExternalStaffId string `gorm:"size:128;index" json:"external_staff_id"`

	ClientName  string `gorm:"size:255" json:"client_name"`
	ClientPhone string `gorm:"size:50" json:"client_phone"`

	AppointmentDate time.Time `gorm:"index" json:"appointment_date"`
	StartTime       string    `gorm:"size:10" json:"start_time"`
	EndTime         string    `gorm:"size:10" json:"end_time"`

	ServiceName     string `gorm:"size:255" json:"service_name"`
	ServiceCategory string `gorm:"size:255" json:"service_category"`
	Status          string `gorm:"size:30;not null" json:"status"`

	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	Notes      string          `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
