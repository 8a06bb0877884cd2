package models

import "time"

const (
	IntegrationProviderPhorest = "phorest"
)

const (
	IntegrationStatusConnected    = "connected"
	IntegrationStatusDisconnected = "disconnected"
	IntegrationStatusError        = "error"
)

// PlatformConnection stores the external platform credentials for this salon.
// One row per provider.
type PlatformConnection struct {
	ID                uint       `gorm:"primary_key" json:"id"`
	Provider          string     `gorm:"uniqueIndex;size:50;not null" json:"provider"`
	Status            string     `gorm:"size:20;not null" json:"status"`
	BusinessId        string     `gorm:"size:128" json:"business_id"`
	AuthUsername      string     `gorm:"size:255" json:"auth_username"`
	AuthSecretRef     string     `gorm:"type:text" json:"auth_secret_ref"`
	LastSyncAt        *time.Time `json:"last_sync_at"`
	LastSuccessSyncAt *time.Time `json:"last_success_sync_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
