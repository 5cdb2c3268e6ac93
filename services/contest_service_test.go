package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidateContestDates(t *testing.T) {
	open := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	close := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	exam := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	if err := ValidateContestDates(open, close, exam); err != nil {
		t.Errorf("expected valid ordering to pass, got %v", err)
	}

	if err := ValidateContestDates(close, open, exam); !errors.Is(err, errCloseBeforeOpen) {
		t.Errorf("expected errCloseBeforeOpen, got %v", err)
	}

	if err := ValidateContestDates(open, close, close.AddDate(0, 0, -5)); !errors.Is(err, errExamBeforeClose) {
		t.Errorf("expected errExamBeforeClose, got %v", err)
	}
}

func TestContestCreateAndPublish(t *testing.T) {
	db := setupTestDB(t)
	svc := NewContestService(db)
	ctx := context.Background()

	fixture := seedFixture(t, db, 10)

	now := time.Now()
	contest, err := svc.Create(ctx, CreateContestRequest{
		Title:        "Concours des inspecteurs des finances",
		OpenDate:     now.AddDate(0, 1, 0),
		CloseDate:    now.AddDate(0, 2, 0),
		ExamDate:     now.AddDate(0, 3, 0),
		SeatCount:    50,
		SpecialtyIDs: []uint{fixture.specialty.ID},
		CenterIDs:    []uint{fixture.center.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if contest.Reference == "" {
		t.Fatal("expected a generated reference")
	}
	if contest.Published {
		t.Error("expected new contest to start unpublished")
	}

	// Unpublished contests never appear in the public open list
	open, err := svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open failed: %v", err)
	}
	for _, c := range open {
		if c.ID == contest.ID {
			t.Error("unpublished contest leaked into the open list")
		}
	}

	if err := svc.Publish(ctx, contest.ID); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	loaded, err := svc.GetByID(ctx, contest.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !loaded.Published {
		t.Error("expected contest to be published")
	}
}
