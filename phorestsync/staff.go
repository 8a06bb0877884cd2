package phorestsync

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/arlohq/salon_backend/config"
	"github.com/arlohq/salon_backend/models"
	"gorm.io/gorm"
)

type externalStaffRecord struct {
	staff      phorestStaff
	branchId   string
	branchName string
}

// SyncStaff enumerates branches, pulls each branch's staff list, deduplicates
// the union by external staff id (a person may work at several branches) and
// diffs it against the staff mapping table. Nothing is persisted; the output
// is the unmapped-staff report used for manual mapping.
//
// A failed staff fetch for one branch is logged and skipped; a failed branch
// enumeration is fatal.
func SyncStaff(ctx context.Context, db *gorm.DB, client *Client) (StaffSyncResult, error) {
	logger := config.GetLogger()

	branches, err := fetchBranches(ctx, client)
	if err != nil {
		return StaffSyncResult{}, err
	}

	mappings, err := models.GetStaffMappings(ctx, db)
	if err != nil {
		return StaffSyncResult{}, err
	}

	unique := map[string]externalStaffRecord{}
	for _, branch := range branches {
		items, err := client.GetList(ctx, "/branch/"+branch.ExternalId()+"/staff", nil, "staffs", "staff")
		if err != nil {
			config.LogError(logger, "phorestsync", "SyncStaff", "staff fetch failed for branch", branch.Name, err)
			continue
		}
		for _, raw := range items {
			var staff phorestStaff
			if err := json.Unmarshal(raw, &staff); err != nil {
				config.LogError(logger, "phorestsync", "SyncStaff", "invalid staff payload", branch.Name, err)
				continue
			}
			extID := staff.ExternalId()
			if extID == "" {
				continue
			}
			// Last branch seen wins; only branch attribution differs.
			unique[extID] = externalStaffRecord{staff: staff, branchId: branch.ExternalId(), branchName: branch.Name}
		}
	}

	result := StaffSyncResult{TotalStaff: len(unique), UnmappedStaff: []UnmappedStaff{}}
	for extID, record := range unique {
		if _, ok := mappings[extID]; ok {
			result.Mapped++
			continue
		}
		result.UnmappedStaff = append(result.UnmappedStaff, UnmappedStaff{
			ExternalId: extID,
			Name:       record.staff.FullName(),
			Email:      record.staff.Email,
		})
	}
	result.Unmapped = len(result.UnmappedStaff)
	sort.Slice(result.UnmappedStaff, func(i, j int) bool {
		return result.UnmappedStaff[i].ExternalId < result.UnmappedStaff[j].ExternalId
	})

	return result, nil
}

func fetchBranches(ctx context.Context, client *Client) ([]phorestBranch, error) {
	items, err := client.GetList(ctx, "/branch", nil, "branches", "branch")
	if err != nil {
		return nil, err
	}
	branches := make([]phorestBranch, 0, len(items))
	for _, raw := range items {
		var branch phorestBranch
		if err := json.Unmarshal(raw, &branch); err != nil {
			continue
		}
		if branch.ExternalId() == "" {
			continue
		}
		branches = append(branches, branch)
	}
	return branches, nil
}
