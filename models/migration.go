package models

import (
	"log"

	"github.com/arlohq/salon_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{}, &Location{}, &StaffMapping{},
		&Appointment{}, &Client{}, &PerformanceMetric{},
		&SalesTransaction{}, &DailySalesSummary{},
		&SyncLog{}, &PlatformConnection{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
