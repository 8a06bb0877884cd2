package phorestsync

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"github.com/arlohq/salon_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var performanceUpdateColumns = []string{
	"new_clients", "retention_rate", "retail_sales", "extension_clients",
	"total_revenue", "service_count", "average_ticket", "rebooking_rate",
	"updated_at",
}

// SyncPerformanceReports pulls the weekly per-staff performance report for the
// week starting at weekStart (week end is always six days later). Rows whose
// external staff id has no internal mapping are silently skipped; re-running
// for the same week overwrites prior figures, since the platform may revise a
// report after publication.
func SyncPerformanceReports(ctx context.Context, db *gorm.DB, client *Client, weekStart time.Time) (ReportSyncResult, error) {
	logger := config.GetLogger()

	mappings, err := models.GetStaffMappings(ctx, db)
	if err != nil {
		return ReportSyncResult{}, err
	}

	weekEnd := weekStart.AddDate(0, 0, 6)
	params := url.Values{}
	params.Set("from_date", utils.FormatDate(weekStart))
	params.Set("to_date", utils.FormatDate(weekEnd))

	items, err := client.GetList(ctx, "/report/staff-performance", params, "staffPerformanceRecords", "records")
	if err != nil {
		return ReportSyncResult{}, err
	}

	result := ReportSyncResult{WeekStart: utils.FormatDate(weekStart)}
	for _, raw := range items {
		var row phorestPerformanceRow
		if err := json.Unmarshal(raw, &row); err != nil {
			config.LogError(logger, "phorestsync", "SyncPerformanceReports", "invalid report payload", nil, err)
			continue
		}
		userId, ok := mappings[strings.TrimSpace(row.StaffId)]
		if !ok {
			result.Skipped++
			continue
		}

		metric := models.PerformanceMetric{
			UserId:           userId,
			WeekStart:        weekStart,
			NewClients:       intFromNumber(row.NewClients),
			RetentionRate:    decimalFromNumber(row.RetentionRate),
			RetailSales:      decimalFromNumber(row.RetailSales),
			ExtensionClients: intFromNumber(row.ExtensionClients),
			TotalRevenue:     decimalFromNumber(row.TotalRevenue),
			ServiceCount:     intFromNumber(row.ServiceCount),
			AverageTicket:    decimalFromNumber(row.AverageTicket),
			RebookingRate:    decimalFromNumber(row.RebookingRate),
		}

		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
			DoUpdates: clause.AssignmentColumns(performanceUpdateColumns),
		}).Create(&metric).Error
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncPerformanceReports", "metric upsert failed", row.StaffId, err)
			continue
		}
		result.Synced++
	}

	return result, nil
}
