package models

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Location is this system's internal location entity. Branches on the external
// platform are matched to locations by display name (case-insensitive); there
// is no stored external-branch-to-location mapping.
type Location struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"size:500" json:"address"`
	Phone     string    `gorm:"size:50" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetLocationIdsByName returns a lower-cased name -> location id lookup.
func GetLocationIdsByName(ctx context.Context, db *gorm.DB) (map[string]int, error) {
	var locations []Location
	if err := db.WithContext(ctx).Find(&locations).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(locations))
	for _, loc := range locations {
		out[strings.ToLower(strings.TrimSpace(loc.Name))] = loc.ID
	}
	return out, nil
}
