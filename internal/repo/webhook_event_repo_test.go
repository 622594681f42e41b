package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordWebhookEvent_DuplicateAndExpiry(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	claimID := uint64(3)
	rec, err := RecordWebhookEvent(ctx, db, "razorpay", "evt_1", "payment_link.paid", &claimID, time.Hour)
	if err != nil || rec.ID == "" {
		t.Fatalf("RecordWebhookEvent: %v %+v", err, rec)
	}
	if _, err := RecordWebhookEvent(ctx, db, "razorpay", "evt_1", "payment_link.paid", nil, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := GetWebhookEvent(ctx, db, "razorpay", "evt_1", time.Now())
	if err != nil || got.ClaimID == nil || *got.ClaimID != 3 {
		t.Fatalf("GetWebhookEvent: %v %+v", err, got)
	}
	if _, err := GetWebhookEvent(ctx, db, "razorpay", "  ", time.Now()); err != ErrNotFound {
		t.Fatalf("blank event id should be ErrNotFound, got %v", err)
	}
	if _, err := GetWebhookEvent(ctx, db, "razorpay", "evt_1", time.Now().Add(2*time.Hour)); err != ErrNotFound {
		t.Fatalf("expired event should be ErrNotFound, got %v", err)
	}

	n, err := DeleteExpiredWebhookEvents(ctx, db, time.Now().Add(2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredWebhookEvents = %d, %v", n, err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"UNIQUE constraint failed: x.y", true},
		{"constraint failed: UNIQUE constraint failed", true},
		{"ERROR: duplicate key value violates unique", true},
		{"Error 1062: Duplicate entry 'a' for key 'b'", true},
		{"no such table", false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(errors.New(tc.msg)); got != tc.want {
			t.Fatalf("isUniqueViolation(%q) = %v; want %v", tc.msg, got, tc.want)
		}
	}
	if isUniqueViolation(nil) {
		t.Fatalf("nil is not a violation")
	}
}
