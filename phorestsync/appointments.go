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

// appointmentStatusMap normalizes the external platform's status vocabulary.
// Keys are matched upper-cased.
var appointmentStatusMap = map[string]string{
	"BOOKED":      "confirmed",
	"CONFIRMED":   "confirmed",
	"CHECKED_IN":  "checked_in",
	"ARRIVED":     "checked_in",
	"IN_PROGRESS": "in_progress",
	"IN_SERVICE":  "in_progress",
	"COMPLETED":   "completed",
	"PAID":        "completed",
	"CANCELLED":   "cancelled",
	"CANCELED":    "cancelled",
	"NO_SHOW":     "no_show",
	"NOSHOW":      "no_show",
}

// NormalizeAppointmentStatus is total: unrecognized values pass through
// lower-cased instead of being dropped, and only an empty source status
// falls back to "unknown".
func NormalizeAppointmentStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "unknown"
	}
	if normalized, ok := appointmentStatusMap[strings.ToUpper(status)]; ok {
		return normalized
	}
	return strings.ToLower(status)
}

var appointmentUpdateColumns = []string{
	"stylist_id", "external_staff_id", "client_name", "client_phone",
	"appointment_date", "start_time", "end_time",
	"service_name", "service_category", "status", "total_price", "notes",
	"updated_at",
}

// SyncAppointments pulls appointments in [from, to] and upserts them keyed by
// external id. A per-row upsert failure is excluded from the synced count but
// does not abort the batch.
func SyncAppointments(ctx context.Context, db *gorm.DB, client *Client, from time.Time, to time.Time) (AppointmentSyncResult, error) {
	logger := config.GetLogger()

	mappings, err := models.GetStaffMappings(ctx, db)
	if err != nil {
		return AppointmentSyncResult{}, err
	}

	params := url.Values{}
	params.Set("from_date", utils.FormatDate(from))
	params.Set("to_date", utils.FormatDate(to))
	items, err := client.GetList(ctx, "/appointment", params, "appointments", "appointment")
	if err != nil {
		return AppointmentSyncResult{}, err
	}

	result := AppointmentSyncResult{Total: len(items)}
	for _, raw := range items {
		var appt phorestAppointment
		if err := json.Unmarshal(raw, &appt); err != nil {
			config.LogError(logger, "phorestsync", "SyncAppointments", "invalid appointment payload", nil, err)
			continue
		}
		extID := appt.ExternalId()
		if extID == "" {
			continue
		}

		var stylistId *int
		if userId, ok := mappings[strings.TrimSpace(appt.StaffId)]; ok {
			stylistId = &userId
		}

		row := models.Appointment{
			ExternalId:      extID,
			StylistId:       stylistId,
			ExternalStaffId: strings.TrimSpace(appt.StaffId),
			ClientName:      strings.TrimSpace(appt.ClientName),
			ClientPhone:     strings.TrimSpace(appt.ClientPhone),
			AppointmentDate: parseDateOr(appt.Date, from),
			StartTime:       strings.TrimSpace(appt.StartTime),
			EndTime:         strings.TrimSpace(appt.EndTime),
			ServiceName:     strings.TrimSpace(appt.ServiceName),
			ServiceCategory: strings.TrimSpace(appt.ServiceCategory),
			Status:          NormalizeAppointmentStatus(appt.RawStatus()),
			TotalPrice:      decimalFromNumber(appt.TotalPrice),
			Notes:           strings.TrimSpace(appt.Notes),
		}

		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(appointmentUpdateColumns),
		}).Create(&row).Error
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncAppointments", "appointment upsert failed", extID, err)
			continue
		}
		result.Synced++
	}

	return result, nil
}
