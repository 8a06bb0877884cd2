package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// StaffMapping links an external platform staff id to an internal user.
// Maintained by the admin UI; read-only from the sync engine's perspective.
// An external staff id maps to at most one internal user.
type StaffMapping struct {
	ID              uint      `gorm:"primary_key" json:"id"`
	ExternalStaffId string    `gorm:"uniqueIndex;size:128;not null" json:"external_staff_id"`
	UserId          int       `gorm:"index;not null" json:"user_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetStaffMappings loads the full external-staff-id -> user-id lookup.
func GetStaffMappings(ctx context.Context, db *gorm.DB) (map[string]int, error) {
	var mappings []StaffMapping
	if err := db.WithContext(ctx).Find(&mappings).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(mappings))
	for _, m := range mappings {
		out[m.ExternalStaffId] = m.UserId
	}
	return out, nil
}
