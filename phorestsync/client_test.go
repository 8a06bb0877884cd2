package phorestsync

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"apiuser", "global/apiuser"},
		{"  apiuser  ", "global/apiuser"},
		{"global/apiuser", "global/apiuser"},
		{"custom-ns/apiuser", "custom-ns/apiuser"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeUsername(tc.in); got != tc.want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "user", "pass"); err == nil {
		t.Error("expected error for empty business id")
	}
	if _, err := NewClient("biz", "", "pass"); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := NewClient("biz", "user", ""); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestExtractListEnvelopeShapes(t *testing.T) {
	embedded := []byte(`{"_embedded":{"staffs":[{"staffId":"s1"},{"staffId":"s2"}]}}`)
	if got := ExtractList(embedded, "staffs", "staff"); len(got) != 2 {
		t.Errorf("embedded shape: got %d records, want 2", len(got))
	}

	topLevel := []byte(`{"staff":[{"staffId":"s1"}]}`)
	if got := ExtractList(topLevel, "staffs", "staff"); len(got) != 1 {
		t.Errorf("top-level shape: got %d records, want 1", len(got))
	}

	bare := []byte(`[{"staffId":"s1"},{"staffId":"s2"},{"staffId":"s3"}]`)
	if got := ExtractList(bare, "staffs"); len(got) != 3 {
		t.Errorf("bare array shape: got %d records, want 3", len(got))
	}

	// The embedded key wins over a top-level key of the same name.
	both := []byte(`{"_embedded":{"staffs":[{"staffId":"s1"}]},"staffs":[{"staffId":"s1"},{"staffId":"s2"}]}`)
	if got := ExtractList(both, "staffs"); len(got) != 1 {
		t.Errorf("priority: got %d records, want 1 (embedded first)", len(got))
	}
}

func TestExtractListNeverErrors(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"_embedded":{}}`,
		`{"unrelated":"value"}`,
		`"just a string"`,
		`not even json`,
		``,
	} {
		got := ExtractList([]byte(body), "staffs", "staff")
		if got == nil {
			t.Errorf("ExtractList(%q) returned nil, want empty list", body)
		}
		if len(got) != 0 {
			t.Errorf("ExtractList(%q) = %d records, want 0", body, len(got))
		}
	}
}

func TestGetListSurfacesAPIError(t *testing.T) {
	client, _ := newFakePhorest(t, map[string]string{})

	_, err := client.GetList(context.Background(), "/branch", nil, "branches")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != 404 {
		t.Errorf("status = %d, want 404", apiErr.Status)
	}
}

func TestGetListParsesEmbedded(t *testing.T) {
	client, _ := newFakePhorest(t, map[string]string{
		"/branch": `{"_embedded":{"branches":[{"branchId":"b1","name":"Downtown"}]}}`,
	})

	items, err := client.GetList(context.Background(), "/branch", nil, "branches", "branch")
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d branches, want 1", len(items))
	}
}
