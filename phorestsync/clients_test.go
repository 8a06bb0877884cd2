package phorestsync

import (
	"context"
	"testing"
	"time"

	"github.com/arlohq/salon_backend/models"
)

const clientC1AtA = `{"_embedded":{"clients":[
	{"clientId":"C1","firstName":"Mia","lastName":"Wong","mobile":"555-0111",
	 "visitCount":3,"totalSpend":240,"lastAppointmentDate":"2024-01-01T10:00:00Z"}]}}`

const clientC1AtB = `{"_embedded":{"clients":[
	{"clientId":"C1","firstName":"Mia","lastName":"Wong","mobile":"555-0111",
	 "visitCount":5,"totalSpend":410,"lastAppointmentDate":"2024-01-10T14:00:00Z",
	 "preferredStaffId":"s1","vip":true}]}}`

func recencyMergeFixture(t *testing.T, branchOrder string) (int, int) {
	t.Helper()
	db := freshDB()
	locA := seedLocation(t, db, "Downtown")
	locB := seedLocation(t, db, "Uptown")
	seedMappedStylist(t, db, "s1", "Ana")

	branches := `{"_embedded":{"branches":[
		{"branchId":"bA","name":"Downtown"},
		{"branchId":"bB","name":"Uptown"}]}}`
	if branchOrder == "b-first" {
		branches = `{"_embedded":{"branches":[
			{"branchId":"bB","name":"Uptown"},
			{"branchId":"bA","name":"Downtown"}]}}`
	}

	client, _ := newFakePhorest(t, map[string]string{
		"/branch":           branches,
		"/branch/bA/client": clientC1AtA,
		"/branch/bB/client": clientC1AtB,
	})

	result, err := SyncClients(context.Background(), db, client)
	if err != nil {
		t.Fatalf("SyncClients: %v", err)
	}
	if result.Total != 1 || result.Synced != 1 {
		t.Fatalf("result = %+v, want exactly one canonical client", result)
	}

	var row models.Client
	if err := db.Where("external_id = ?", "C1").First(&row).Error; err != nil {
		t.Fatalf("load C1: %v", err)
	}
	if row.LocationId == nil {
		t.Fatal("LocationId is nil, want Uptown's id")
	}
	_ = locA
	return *row.LocationId, locB
}

// The canonical record must resolve to the branch with the most recent
// last-visit timestamp regardless of branch processing order.
func TestSyncClientsRecencyMergeDeterminism(t *testing.T) {
	gotAFirst, wantB := recencyMergeFixture(t, "a-first")
	if gotAFirst != wantB {
		t.Errorf("a-first order: location = %d, want %d (Uptown)", gotAFirst, wantB)
	}
	gotBFirst, wantB2 := recencyMergeFixture(t, "b-first")
	if gotBFirst != wantB2 {
		t.Errorf("b-first order: location = %d, want %d (Uptown)", gotBFirst, wantB2)
	}
}

func TestSyncClientsWinningBranchFields(t *testing.T) {
	db := freshDB()
	seedLocation(t, db, "Uptown")
	userId := seedMappedStylist(t, db, "s1", "Ana")

	client, _ := newFakePhorest(t, map[string]string{
		"/branch": `{"_embedded":{"branches":[
			{"branchId":"bA","name":"Downtown"},
			{"branchId":"bB","name":"Uptown"}]}}`,
		"/branch/bA/client": clientC1AtA,
		"/branch/bB/client": clientC1AtB,
	})

	if _, err := SyncClients(context.Background(), db, client); err != nil {
		t.Fatalf("SyncClients: %v", err)
	}

	var row models.Client
	if err := db.Where("external_id = ?", "C1").First(&row).Error; err != nil {
		t.Fatalf("load C1: %v", err)
	}
	if row.BranchId != "bB" || row.BranchName != "Uptown" {
		t.Errorf("branch = %s/%s, want bB/Uptown", row.BranchId, row.BranchName)
	}
	if row.VisitCount != 5 {
		t.Errorf("visit count = %d, want 5 (winning branch's record)", row.VisitCount)
	}
	if !row.VIP {
		t.Error("vip flag lost in merge")
	}
	if row.PreferredStylistId == nil || *row.PreferredStylistId != userId {
		t.Errorf("preferred stylist = %v, want %d", row.PreferredStylistId, userId)
	}
	want := time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)
	if row.LastVisit == nil || !row.LastVisit.Equal(want) {
		t.Errorf("last visit = %v, want %v", row.LastVisit, want)
	}
}

func TestSyncClientsTimestamplessNeverWins(t *testing.T) {
	db := freshDB()
	seedLocation(t, db, "Downtown")

	client, _ := newFakePhorest(t, map[string]string{
		"/branch": `{"_embedded":{"branches":[
			{"branchId":"bA","name":"Downtown"},
			{"branchId":"bB","name":"Uptown"}]}}`,
		"/branch/bA/client": clientC1AtA,
		"/branch/bB/client": `{"_embedded":{"clients":[
			{"clientId":"C1","firstName":"Mia","lastName":"Wong"}]}}`,
	})

	if _, err := SyncClients(context.Background(), db, client); err != nil {
		t.Fatalf("SyncClients: %v", err)
	}

	var row models.Client
	if err := db.Where("external_id = ?", "C1").First(&row).Error; err != nil {
		t.Fatalf("load C1: %v", err)
	}
	if row.BranchId != "bA" {
		t.Errorf("branch = %s, want bA (record without a timestamp must not displace one with)", row.BranchId)
	}
}

func TestSyncClientsGlobalFallback(t *testing.T) {
	db := freshDB()

	// Branch-scoped listings exist but are all empty; the global endpoint has
	// the data, with no location attribution.
	client, _ := newFakePhorest(t, map[string]string{
		"/branch": `{"_embedded":{"branches":[
			{"branchId":"bA","name":"Downtown"}]}}`,
		"/branch/bA/client": `{"_embedded":{"clients":[]}}`,
		"/client": `{"_embedded":{"clients":[
			{"clientId":"C7","firstName":"Noa","lastName":"Berg","visitCount":1}]}}`,
	})

	result, err := SyncClients(context.Background(), db, client)
	if err != nil {
		t.Fatalf("SyncClients: %v", err)
	}
	if result.Synced != 1 {
		t.Fatalf("result = %+v, want 1 client via fallback", result)
	}

	var row models.Client
	if err := db.Where("external_id = ?", "C7").First(&row).Error; err != nil {
		t.Fatalf("load C7: %v", err)
	}
	if row.LocationId != nil || row.BranchId != "" {
		t.Errorf("fallback record must carry no location attribution, got location=%v branch=%q", row.LocationId, row.BranchId)
	}
}
