package phorestsync

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type mergedClient struct {
	client     phorestClient
	branchId   string
	branchName string
	locationId *int
	lastVisit  *time.Time
}

var clientUpdateColumns = []string{
	"first_name", "last_name", "email", "phone",
	"visit_count", "first_visit", "last_visit",
	"preferred_stylist_id", "total_spend", "vip", "notes",
	"location_id", "branch_id", "branch_name",
	"updated_at",
}

// SyncClients pulls clients per branch and merges duplicates across branches
// by recency: the same external client id can show up under several branch
// scopes, and the branch with the most recent last-appointment timestamp
// becomes the client's resolved home branch/location. When no branch-scoped
// fetch yields any client at all, one global listing is used instead, with no
// location attribution.
func SyncClients(ctx context.Context, db *gorm.DB, client *Client) (ClientSyncResult, error) {
	logger := config.GetLogger()

	branches, err := fetchBranches(ctx, client)
	if err != nil {
		return ClientSyncResult{}, err
	}
	locations, err := models.GetLocationIdsByName(ctx, db)
	if err != nil {
		return ClientSyncResult{}, err
	}
	mappings, err := models.GetStaffMappings(ctx, db)
	if err != nil {
		return ClientSyncResult{}, err
	}

	params := url.Values{}
	params.Set("size", strconv.Itoa(clientPageSize()))

	merged := map[string]mergedClient{}
	anyFetched := false
	for _, branch := range branches {
		items, err := client.GetList(ctx, "/branch/"+branch.ExternalId()+"/client", params, "clients", "client")
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncClients", "client fetch failed for branch", branch.Name, err)
			continue
		}
		if len(items) > 0 {
			anyFetched = true
		}

		var locationId *int
		if id, ok := locations[strings.ToLower(strings.TrimSpace(branch.Name))]; ok {
			locationId = &id
		}

		for _, raw := range items {
			var pc phorestClient
			if err := json.Unmarshal(raw, &pc); err != nil {
				config.LogError(logger, "phorestsync", "SyncClients", "invalid client payload", branch.Name, err)
				continue
			}
			extID := pc.ExternalId()
			if extID == "" {
				continue
			}
			candidate := mergedClient{
				client:     pc,
				branchId:   branch.ExternalId(),
				branchName: branch.Name,
				locationId: locationId,
				lastVisit:  parseTimestamp(pc.LastAppointmentDate),
			}
			existing, seen := merged[extID]
			if !seen || moreRecent(candidate, existing) {
				merged[extID] = candidate
			}
		}
	}

	// Some deployments don't support branch-scoped client listings at all;
	// fall back once to the global endpoint.
	if !anyFetched {
		items, err := client.GetList(ctx, "/client", params, "clients", "client")
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncClients", "global client fetch failed", nil, err)
		} else {
			for _, raw := range items {
				var pc phorestClient
				if err := json.Unmarshal(raw, &pc); err != nil {
					continue
				}
				extID := pc.ExternalId()
				if extID == "" {
					continue
				}
				merged[extID] = mergedClient{client: pc, lastVisit: parseTimestamp(pc.LastAppointmentDate)}
			}
		}
	}

	result := ClientSyncResult{Total: len(merged)}
	for extID, record := range merged {
		var preferredStylistId *int
		if userId, ok := mappings[strings.TrimSpace(record.client.PreferredStaffId)]; ok {
			preferredStylistId = &userId
		}

		row := models.Client{
			ExternalId:         extID,
			FirstName:          strings.TrimSpace(record.client.FirstName),
			LastName:           strings.TrimSpace(record.client.LastName),
			Email:              strings.TrimSpace(record.client.Email),
			Phone:              record.client.PhoneNumber(),
			VisitCount:         intFromNumber(record.client.VisitCount),
			FirstVisit:         parseTimestamp(record.client.FirstVisitDate),
			LastVisit:          record.lastVisit,
			PreferredStylistId: preferredStylistId,
			TotalSpend:         decimalFromNumber(record.client.TotalSpend),
			VIP:                record.client.VIP,
			Notes:              strings.TrimSpace(record.client.Notes),
			LocationId:         record.locationId,
			BranchId:           record.branchId,
			BranchName:         record.branchName,
		}

		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(clientUpdateColumns),
		}).Create(&row).Error
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncClients", "client upsert failed", extID, err)
			continue
		}
		result.Synced++
	}

	return result, nil
}

// moreRecent decides whether a newly seen branch-scoped record should replace
// the one already merged for the same client id. Ties keep the existing
// record, and a record with no visit timestamp never displaces one that has
// one.
func moreRecent(candidate mergedClient, existing mergedClient) bool {
	if candidate.lastVisit == nil {
		return false
	}
	if existing.lastVisit == nil {
		return true
	}
	return candidate.lastVisit.After(*existing.lastVisit)
}

func clientPageSize() int {
	if v := strings.TrimSpace(os.Getenv("PHOREST_CLIENT_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 500
}
