package models

import "time"

// User is an internal staff member (stylist). Account management lives in the
// main dashboard backend; the sync service only reads user ids through
// StaffMapping and writes per-user rows keyed by them.
type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Role      string    `gorm:"size:50" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
