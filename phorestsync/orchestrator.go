package phorestsync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"github.com/arlohq/salon_backend/utils"
	"gorm.io/gorm"
)

// SyncWindow is the resolved date range pair for one run. Appointments look
// forward, sales look backward, so the two windows differ.
type SyncWindow struct {
	AppointmentFrom time.Time
	AppointmentTo   time.Time
	SalesFrom       time.Time
	SalesTo         time.Time
	WeekStart       time.Time
	Quick           bool
}

// ResolveWindow computes the run's date windows. Quick mode keeps the sales
// window to today only for a cheap frequent refresh; a full run backfills the
// trailing 30 days. Explicit date_from/date_to override both windows.
func ResolveWindow(req SyncRequest, now time.Time) (SyncWindow, error) {
	today := utils.DateOnly(now)
	window := SyncWindow{
		AppointmentFrom: today,
		AppointmentTo:   today.AddDate(0, 0, 7),
		SalesFrom:       today.AddDate(0, 0, -30),
		SalesTo:         today,
		WeekStart:       utils.StartOfWeek(now),
		Quick:           req.Quick,
	}
	if req.Quick {
		window.SalesFrom = today
	}

	if req.DateFrom != "" {
		from, err := utils.ParseDate(req.DateFrom)
		if err != nil {
			return SyncWindow{}, fmt.Errorf("invalid date_from: %w", err)
		}
		window.AppointmentFrom = from
		window.SalesFrom = from
		window.WeekStart = utils.StartOfWeek(from)
	}
	if req.DateTo != "" {
		to, err := utils.ParseDate(req.DateTo)
		if err != nil {
			return SyncWindow{}, fmt.Errorf("invalid date_to: %w", err)
		}
		window.AppointmentTo = to
		window.SalesTo = to
	}
	return window, nil
}

// RunSync dispatches the requested sync type (or all of them) with failure
// isolation: each sub-sync runs inside its own boundary, writes one SyncLog
// row for its terminal state, and a failure never prevents the remaining
// types from running. The combined result has one key per requested type,
// holding either the sub-sync's payload or an ErrorPayload.
func RunSync(ctx context.Context, db *gorm.DB, client *Client, req SyncRequest) (map[string]interface{}, error) {
	window, err := ResolveWindow(req, time.Now())
	if err != nil {
		return nil, err
	}

	syncType := req.SyncType
	if syncType == "" {
		syncType = models.SyncTypeAll
	}
	all := syncType == models.SyncTypeAll

	results := map[string]interface{}{}

	if all || syncType == models.SyncTypeStaff {
		results[models.SyncTypeStaff] = runOne(ctx, db, models.SyncTypeStaff, window, func() (interface{}, int, error) {
			res, err := SyncStaff(ctx, db, client)
			return res, res.Mapped + res.Unmapped, err
		})
	}
	if all || syncType == models.SyncTypeAppointments {
		results[models.SyncTypeAppointments] = runOne(ctx, db, models.SyncTypeAppointments, window, func() (interface{}, int, error) {
			res, err := SyncAppointments(ctx, db, client, window.AppointmentFrom, window.AppointmentTo)
			return res, res.Synced, err
		})
	}
	if all || syncType == models.SyncTypeClients {
		results[models.SyncTypeClients] = runOne(ctx, db, models.SyncTypeClients, window, func() (interface{}, int, error) {
			res, err := SyncClients(ctx, db, client)
			return res, res.Synced, err
		})
	}
	if all || syncType == models.SyncTypeReports {
		results[models.SyncTypeReports] = runOne(ctx, db, models.SyncTypeReports, window, func() (interface{}, int, error) {
			res, err := SyncPerformanceReports(ctx, db, client, window.WeekStart)
			return res, res.Synced, err
		})
	}
	if all || syncType == models.SyncTypeSales {
		results[models.SyncTypeSales] = runOne(ctx, db, models.SyncTypeSales, window, func() (interface{}, int, error) {
			res, err := SyncSales(ctx, db, client, window.SalesFrom, window.SalesTo)
			return res, res.Synced, err
		})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("unknown sync_type %q", req.SyncType)
	}
	return results, nil
}

// runOne is the failure boundary around a single sub-synchronizer: it turns
// both returned errors and panics into an ErrorPayload plus a "failed" log
// row, so one broken entity type never takes down the rest of the run.
func runOne(ctx context.Context, db *gorm.DB, syncType string, window SyncWindow, fn func() (interface{}, int, error)) (out interface{}) {
	logger := config.GetLogger()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			config.LogError(logger, "phorestsync", "runOne", "sub-sync panicked", syncType, err)
			writeSyncLog(ctx, db, syncType, models.SyncStatusFailed, 0, err, window)
			out = ErrorPayload{Error: err.Error()}
		}
	}()

	payload, records, err := fn()
	if err != nil {
		config.LogError(logger, "phorestsync", "runOne", "sub-sync failed", syncType, err)
		writeSyncLog(ctx, db, syncType, models.SyncStatusFailed, 0, err, window)
		return ErrorPayload{Error: err.Error()}
	}
	writeSyncLog(ctx, db, syncType, models.SyncStatusSuccess, records, nil, window)
	return payload
}

func writeSyncLog(ctx context.Context, db *gorm.DB, syncType string, status string, records int, runErr error, window SyncWindow) {
	triggeredBy, _ := utils.GetTriggeredByFromContext(ctx)
	metadata, _ := json.Marshal(map[string]interface{}{
		"quick":        window.Quick,
		"triggered_by": triggeredBy,
	})
	entry := models.SyncLog{
		SyncType:      syncType,
		Status:        status,
		RecordsSynced: records,
		MetadataJSON:  metadata,
		CompletedAt:   time.Now().UTC(),
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		config.LogError(config.GetLogger(), "phorestsync", "writeSyncLog", "sync log write failed", syncType, err)
	}
}
