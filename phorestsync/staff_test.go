package phorestsync

import (
	"context"
	"testing"
)

func TestSyncStaffUnmappedReport(t *testing.T) {
	db := freshDB()
	seedMappedStylist(t, db, "s1", "Ana")

	client, _ := newFakePhorest(t, map[string]string{
		"/branch": `{"_embedded":{"branches":[
			{"branchId":"b1","name":"Downtown"},
			{"branchId":"b2","name":"Uptown"}]}}`,
		"/branch/b1/staff": `{"_embedded":{"staffs":[
			{"staffId":"s1","firstName":"Ana","lastName":"Lopez","email":"ana@example.com"},
			{"staffId":"s2","firstName":"Ben","lastName":"Kim","email":"ben@example.com"}]}}`,
		"/branch/b2/staff": `{"_embedded":{"staffs":[
			{"staffId":"s2","firstName":"Ben","lastName":"Kim","email":"ben@example.com"},
			{"staffId":"s3","firstName":"Cleo","lastName":"Ngo","email":"cleo@example.com"}]}}`,
	})

	result, err := SyncStaff(context.Background(), db, client)
	if err != nil {
		t.Fatalf("SyncStaff: %v", err)
	}

	if result.TotalStaff != 3 {
		t.Errorf("TotalStaff = %d, want 3", result.TotalStaff)
	}
	if result.Mapped != 1 {
		t.Errorf("Mapped = %d, want 1", result.Mapped)
	}
	if result.Unmapped != 2 {
		t.Errorf("Unmapped = %d, want 2", result.Unmapped)
	}

	// s2 works at both branches but must appear exactly once, and the output
	// is sorted by external id.
	if len(result.UnmappedStaff) != 2 {
		t.Fatalf("UnmappedStaff has %d entries, want 2", len(result.UnmappedStaff))
	}
	if result.UnmappedStaff[0].ExternalId != "s2" || result.UnmappedStaff[1].ExternalId != "s3" {
		t.Errorf("unexpected unmapped ids: %+v", result.UnmappedStaff)
	}
	if result.UnmappedStaff[0].Name != "Ben Kim" {
		t.Errorf("Name = %q, want %q", result.UnmappedStaff[0].Name, "Ben Kim")
	}
}

func TestSyncStaffBranchFailureIsolation(t *testing.T) {
	db := freshDB()

	// b1's staff endpoint is missing (404); b2 still contributes.
	client, _ := newFakePhorest(t, map[string]string{
		"/branch": `{"_embedded":{"branches":[
			{"branchId":"b1","name":"Downtown"},
			{"branchId":"b2","name":"Uptown"}]}}`,
		"/branch/b2/staff": `{"_embedded":{"staffs":[
			{"staffId":"s9","firstName":"Zoe","lastName":"Hart"}]}}`,
	})

	result, err := SyncStaff(context.Background(), db, client)
	if err != nil {
		t.Fatalf("SyncStaff: %v", err)
	}
	if result.TotalStaff != 1 || result.Unmapped != 1 {
		t.Errorf("result = %+v, want 1 staff from surviving branch", result)
	}
}

func TestSyncStaffBranchEnumerationFatal(t *testing.T) {
	db := freshDB()
	client, _ := newFakePhorest(t, map[string]string{})

	if _, err := SyncStaff(context.Background(), db, client); err == nil {
		t.Fatal("expected error when branch enumeration fails")
	}
}
