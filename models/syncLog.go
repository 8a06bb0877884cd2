package models

import "time"

const (
	SyncTypeStaff        = "staff"
	SyncTypeAppointments = "appointments"
	SyncTypeClients      = "clients"
	SyncTypeReports      = "reports"
	SyncTypeSales        = "sales"
	SyncTypeAll          = "all"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncLog is the append-only audit trail of sub-synchronizer outcomes: one
// row per sub-synchronizer invocation, never updated or deleted.
type SyncLog struct {
	ID            uint      `gorm:"primary_key" json:"id"`
	SyncType      string    `gorm:"size:30;index;not null" json:"sync_type"`
	Status        string    `gorm:"size:20;not null" json:"status"`
	RecordsSynced int       `json:"records_synced"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message"`
	MetadataJSON  []byte    `gorm:"type:json" json:"metadata"`
	CompletedAt   time.Time `json:"completed_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
