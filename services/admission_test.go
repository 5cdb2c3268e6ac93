package services

import (
	"errors"
	"testing"
	"time"

	"github.com/concours-mef/api/model"
)

func testContest(open, close time.Time, published bool) *model.Contest {
	return &model.Contest{
		Reference: "CONC-1700000000000-0001",
		Title:     "Test contest",
		OpenDate:  open,
		CloseDate: close,
		ExamDate:  close.AddDate(0, 1, 0),
		Published: published,
	}
}

func TestCheckEligibleOpenWindow(t *testing.T) {
	today := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	contest := testContest(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		true,
	)

	if err := CheckEligible(contest, today); err != nil {
		t.Errorf("expected contest to be open on %v, got %v", today, err)
	}
}

func TestCheckEligibleBoundaryDays(t *testing.T) {
	open := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	close := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	contest := testContest(open, close, true)

	// The opening and closing days are both inclusive
	if err := CheckEligible(contest, open.Add(5*time.Hour)); err != nil {
		t.Errorf("expected open date to be inclusive, got %v", err)
	}
	if err := CheckEligible(contest, close.Add(23*time.Hour)); err != nil {
		t.Errorf("expected close date to be inclusive, got %v", err)
	}
}

func TestCheckEligibleClosedWindow(t *testing.T) {
	contest := testContest(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		true,
	)

	before := time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)
	if err := CheckEligible(contest, before); !errors.Is(err, ErrContestNotOpen) {
		t.Errorf("expected ErrContestNotOpen before the window, got %v", err)
	}

	after := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := CheckEligible(contest, after); !errors.Is(err, ErrContestNotOpen) {
		t.Errorf("expected ErrContestNotOpen after the window, got %v", err)
	}
}

func TestCheckEligibleUnpublished(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	contest := testContest(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		false,
	)

	// An unpublished contest refuses submissions even inside its window
	if err := CheckEligible(contest, today); !errors.Is(err, ErrContestNotPublished) {
		t.Errorf("expected ErrContestNotPublished, got %v", err)
	}
}

func TestCheckCandidateAge(t *testing.T) {
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		birthDate *time.Time
		wantErr   bool
	}{
		{"missing birth date passes", nil, false},
		{"mid-range age", datePtr(1995, 6, 1), false},
		{"exactly minimum age", datePtr(2008, 6, 1), false},
		{"one day under minimum", datePtr(2008, 6, 2), true},
		{"exactly maximum age", datePtr(1986, 6, 1), false},
		{"over maximum", datePtr(1980, 1, 1), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckCandidateAge(tc.birthDate, today)
			if tc.wantErr && !errors.Is(err, ErrCandidateIneligible) {
				t.Errorf("expected ErrCandidateIneligible, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestDiplomaMatchesSpecialty(t *testing.T) {
	cases := []struct {
		diploma   string
		specialty string
		want      bool
	}{
		{"Master en Genie Logiciel", "Ingenierie Informatique", true},
		{"Licence en Droit Prive", "Ingenierie Informatique", false},
		{"Master en Comptabilite", "Finances Publiques", true},
		{"Master en Econometrie", "Statistique et Economie Appliquee", true},
		{"Licence en Droit Public", "Droit Public et Administration", true},
		{"Master en Biologie", "Audit et Controle de Gestion", false},
		// Unknown specialty accepts any non-empty diploma
		{"Master en Histoire", "Gestion Documentaire", true},
		{"", "Ingenierie Informatique", false},
	}

	for _, tc := range cases {
		if got := DiplomaMatchesSpecialty(tc.diploma, tc.specialty); got != tc.want {
			t.Errorf("DiplomaMatchesSpecialty(%q, %q) = %v, want %v", tc.diploma, tc.specialty, got, tc.want)
		}
	}
}
