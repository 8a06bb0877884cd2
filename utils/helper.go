package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/bsm/redislock"
)

// ErrSyncInProgress is returned when another process already holds the sync lock.
var ErrSyncInProgress = errors.New("another sync is already running")

// ObtainSyncLock takes a distributed lock so overlapping sync runs don't hammer
// the external API. The caller must Release the returned lock. When Redis is
// not initialized (or errors), the run proceeds without a lock: every write in
// the sync path is an idempotent upsert, so overlap is safe, just wasteful.
func ObtainSyncLock(ctx context.Context, name string, ttl time.Duration) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		logger.WithField("lock", name).Warn("redis lock not ready; proceeding without sync lock")
		return nil, nil
	}

	lock, err := locker.Obtain(ctx, "lock:"+name, ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrSyncInProgress
	} else if err != nil {
		logger.WithField("lock", name).Warn("error obtaining sync lock; proceeding without it: " + err.Error())
		return nil, nil
	}
	return lock, nil
}

// ReleaseSyncLock releases a lock obtained by ObtainSyncLock; nil locks are fine.
func ReleaseSyncLock(ctx context.Context, lock *redislock.Lock) {
	if lock == nil {
		return
	}
	_ = lock.Release(ctx)
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date string")
	}
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// StartOfWeek returns the Monday of the week containing t, at midnight UTC.
func StartOfWeek(t time.Time) time.Time {
	d := DateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
