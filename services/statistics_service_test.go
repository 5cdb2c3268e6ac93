package services

import (
	"context"
	"testing"

	"github.com/concours-mef/api/model"
)

func TestFormatMonthLabel(t *testing.T) {
	cases := []struct {
		bucket string
		want   string
	}{
		{"01-2026", "Jan 2026"},
		{"02-2025", "Fév 2025"},
		{"04-2025", "Avr 2025"},
		{"05-2025", "Mai 2025"},
		{"08-2025", "Aoû 2025"},
		{"12-2024", "Déc 2024"},
		// Unparseable buckets come back unchanged
		{"13-2026", "13-2026"},
		{"2026", "2026"},
		{"", ""},
		{"ab-2026", "ab-2026"},
	}

	for _, tc := range cases {
		if got := FormatMonthLabel(tc.bucket); got != tc.want {
			t.Errorf("FormatMonthLabel(%q) = %q, want %q", tc.bucket, got, tc.want)
		}
	}
}

func TestAggregateEmptyDataset(t *testing.T) {
	db := setupTestDB(t)
	svc := NewStatisticsService(db, nil)
	ctx := context.Background()

	for _, groupBy := range []GroupBy{GroupByContest, GroupBySpecialty, GroupByCenter, GroupByMonth} {
		counts, err := svc.Aggregate(ctx, groupBy)
		if err != nil {
			t.Fatalf("aggregate by %s failed: %v", groupBy, err)
		}
		if counts == nil {
			t.Errorf("aggregate by %s returned nil instead of an empty map", groupBy)
		}
		if len(counts) != 0 {
			t.Errorf("aggregate by %s on empty dataset returned %d buckets", groupBy, len(counts))
		}
	}
}

func TestAggregateCountsByStatusAndAxis(t *testing.T) {
	db := setupTestDB(t)
	apps := NewApplicationService(db, &recordingMailer{})
	svc := NewStatisticsService(db, nil)
	ctx := context.Background()

	fixture := seedFixture(t, db, 10)

	first, err := apps.Submit(ctx, submitRequest(fixture, "ST111111"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := apps.Submit(ctx, submitRequest(fixture, "ST222222")); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := apps.Validate(ctx, first, fixture.reviewer.ID); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	counts, err := svc.Aggregate(ctx, GroupBySpecialty)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if counts[fixture.specialty.Label] != 2 {
		t.Errorf("expected 2 applications for %s, got %d", fixture.specialty.Label, counts[fixture.specialty.Label])
	}

	validated, err := svc.CountValidated(ctx)
	if err != nil {
		t.Fatalf("count validated failed: %v", err)
	}
	if validated != 1 {
		t.Errorf("expected 1 validated application, got %d", validated)
	}

	breakdown, err := svc.StatusBreakdownByCenter(ctx, fixture.center.ID)
	if err != nil {
		t.Fatalf("breakdown failed: %v", err)
	}
	if breakdown[string(model.StatusPending)] != 1 || breakdown[string(model.StatusValidated)] != 1 {
		t.Errorf("unexpected breakdown: %v", breakdown)
	}
}
