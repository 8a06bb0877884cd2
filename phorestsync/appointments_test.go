package phorestsync

import (
	"context"
	"testing"
	"time"

	"github.com/arlohq/salon_backend/models"
)

func TestNormalizeAppointmentStatusTotality(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BOOKED", "confirmed"},
		{"CONFIRMED", "confirmed"},
		{"CHECKED_IN", "checked_in"},
		{"ARRIVED", "checked_in"},
		{"IN_PROGRESS", "in_progress"},
		{"IN_SERVICE", "in_progress"},
		{"COMPLETED", "completed"},
		{"PAID", "completed"},
		{"CANCELLED", "cancelled"},
		{"CANCELED", "cancelled"},
		{"NO_SHOW", "no_show"},
		{"NOSHOW", "no_show"},
		{"booked", "confirmed"},
		{"  completed  ", "completed"},
		// Unrecognized values pass through lower-cased, never dropped.
		{"WAITLISTED", "waitlisted"},
		{"SomethingNew", "somethingnew"},
		{"", "unknown"},
		{"   ", "unknown"},
	}
	for _, tc := range cases {
		got := NormalizeAppointmentStatus(tc.in)
		if got != tc.want {
			t.Errorf("NormalizeAppointmentStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if got == "" {
			t.Errorf("NormalizeAppointmentStatus(%q) produced an empty status", tc.in)
		}
	}
}

func TestSyncAppointmentsUpsertIdempotence(t *testing.T) {
	db := freshDB()
	userId := seedMappedStylist(t, db, "s1", "Ana")

	client, _ := newFakePhorest(t, map[string]string{
		"/appointment": `{"_embedded":{"appointments":[
			{"appointmentId":"a1","staffId":"s1","clientName":"Pat Doe","clientPhone":"555-0100",
			 "date":"2026-08-28","startTime":"10:00","endTime":"11:00",
			 "serviceName":"Balayage","serviceCategory":"Color","status":"BOOKED","totalPrice":180.50},
			{"appointmentId":"a2","staffId":"s-unmapped","clientName":"Sam Roe",
			 "date":"2026-08-29","startTime":"12:00","endTime":"12:45",
			 "serviceName":"Cut","state":"PAID","totalPrice":60}]}}`,
	})

	from, _ := time.Parse("2006-01-02", "2026-08-28")
	to := from.AddDate(0, 0, 7)

	result, err := SyncAppointments(context.Background(), db, client, from, to)
	if err != nil {
		t.Fatalf("SyncAppointments: %v", err)
	}
	if result.Synced != 2 || result.Total != 2 {
		t.Fatalf("result = %+v, want 2/2", result)
	}

	// Second run over identical data must not change row counts.
	if _, err := SyncAppointments(context.Background(), db, client, from, to); err != nil {
		t.Fatalf("second SyncAppointments: %v", err)
	}
	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	if count != 2 {
		t.Errorf("appointment rows = %d, want 2 after re-sync", count)
	}

	var a1 models.Appointment
	if err := db.Where("external_id = ?", "a1").First(&a1).Error; err != nil {
		t.Fatalf("load a1: %v", err)
	}
	if a1.StylistId == nil || *a1.StylistId != userId {
		t.Errorf("a1 stylist id = %v, want %d", a1.StylistId, userId)
	}
	if a1.Status != "confirmed" {
		t.Errorf("a1 status = %q, want confirmed", a1.Status)
	}
	if !a1.TotalPrice.Equal(decimalFromString(t, "180.50")) {
		t.Errorf("a1 total price = %s, want 180.50", a1.TotalPrice)
	}

	// Unmapped staff: stylist id stays nil, external id is retained, and the
	// fallback "state" field still yields a normalized status.
	var a2 models.Appointment
	if err := db.Where("external_id = ?", "a2").First(&a2).Error; err != nil {
		t.Fatalf("load a2: %v", err)
	}
	if a2.StylistId != nil {
		t.Errorf("a2 stylist id = %v, want nil", a2.StylistId)
	}
	if a2.ExternalStaffId != "s-unmapped" {
		t.Errorf("a2 external staff id = %q", a2.ExternalStaffId)
	}
	if a2.Status != "completed" {
		t.Errorf("a2 status = %q, want completed", a2.Status)
	}
}

func TestSyncAppointmentsOverwritesOnResync(t *testing.T) {
	db := freshDB()

	client, _ := newFakePhorest(t, map[string]string{
		"/appointment": `{"_embedded":{"appointments":[
			{"appointmentId":"a1","date":"2026-08-28","status":"BOOKED","totalPrice":100}]}}`,
	})
	from, _ := time.Parse("2006-01-02", "2026-08-28")
	if _, err := SyncAppointments(context.Background(), db, client, from, from.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	client2, _ := newFakePhorest(t, map[string]string{
		"/appointment": `{"_embedded":{"appointments":[
			{"appointmentId":"a1","date":"2026-08-28","status":"CANCELLED","totalPrice":100}]}}`,
	})
	if _, err := SyncAppointments(context.Background(), db, client2, from, from.AddDate(0, 0, 7)); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	var a1 models.Appointment
	if err := db.Where("external_id = ?", "a1").First(&a1).Error; err != nil {
		t.Fatalf("load a1: %v", err)
	}
	if a1.Status != "cancelled" {
		t.Errorf("status after re-sync = %q, want cancelled", a1.Status)
	}
}
