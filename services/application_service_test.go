package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/concours-mef/api/model"
)

var applicationNumberPattern = regexp.MustCompile(`^CAND-\d{8}-[0-9A-F]{4}$`)

func TestGenerateApplicationNumberFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		number := GenerateApplicationNumber()
		if !applicationNumberPattern.MatchString(number) {
			t.Fatalf("unexpected application number format: %s", number)
		}
	}
}

// recordingMailer captures outbound notifications instead of sending them
type recordingMailer struct {
	mu            sync.Mutex
	confirmations []string
	validations   []string
	rejections    []string
}

func (m *recordingMailer) SendApplicationConfirmation(email, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, number)
	return nil
}

func (m *recordingMailer) SendValidationNotice(email, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations = append(m.validations, number)
	return nil
}

func (m *recordingMailer) SendRejectionNotice(email, number, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections = append(m.rejections, number)
	return nil
}

// setupTestDB connects to the integration database and resets the schema.
// Tests using it are skipped unless RUN_INTEGRATION_TESTS=true.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=concours_test port=5432 sslmode=disable TimeZone=UTC"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.City{},
		&model.Specialty{},
		&model.ExamCenter{},
		&model.Contest{},
		&model.Candidate{},
		&model.Application{},
		&model.Document{},
		&model.User{},
		&model.NotificationLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tables := []string{
		"notification_logs", "documents", "applications", "candidates",
		"contest_specialties", "contest_centers", "center_specialties",
		"contests", "exam_centers", "specialties", "cities", "users",
	}
	for _, table := range tables {
		if err := db.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}

	return db
}

type testFixture struct {
	contest   model.Contest
	specialty model.Specialty
	center    model.ExamCenter
	city      model.City
	reviewer  model.User
}

// seedFixture creates an open published contest with one specialty offering
// the given number of seats at one center
func seedFixture(t *testing.T, db *gorm.DB, seats int) testFixture {
	t.Helper()

	city := model.City{Name: "Rabat"}
	if err := db.Create(&city).Error; err != nil {
		t.Fatalf("failed to seed city: %v", err)
	}

	specialty := model.Specialty{Code: "INFO", Label: "Ingenierie Informatique", SeatCount: seats}
	if err := db.Create(&specialty).Error; err != nil {
		t.Fatalf("failed to seed specialty: %v", err)
	}

	center := model.ExamCenter{Code: "RAB-01", Capacity: 100, Active: true, CityID: city.ID}
	if err := db.Create(&center).Error; err != nil {
		t.Fatalf("failed to seed center: %v", err)
	}

	now := time.Now()
	contest := model.Contest{
		Reference:   fmt.Sprintf("CONC-%d-0001", now.UnixMilli()),
		Title:       "Concours de recrutement",
		OpenDate:    now.AddDate(0, 0, -1),
		CloseDate:   now.AddDate(0, 1, 0),
		ExamDate:    now.AddDate(0, 2, 0),
		SeatCount:   seats,
		Published:   true,
		Specialties: []model.Specialty{specialty},
		Centers:     []model.ExamCenter{center},
	}
	if err := db.Create(&contest).Error; err != nil {
		t.Fatalf("failed to seed contest: %v", err)
	}

	reviewer := model.User{
		Username:     "reviewer",
		PasswordHash: "x",
		Role:         model.RoleGlobalManager,
		Email:        "reviewer@mef.gov.ma",
		Enabled:      true,
	}
	if err := db.Create(&reviewer).Error; err != nil {
		t.Fatalf("failed to seed reviewer: %v", err)
	}

	return testFixture{contest: contest, specialty: specialty, center: center, city: city, reviewer: reviewer}
}

func submitRequest(f testFixture, nationalID string) SubmitApplicationRequest {
	birthDate := time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC)
	return SubmitApplicationRequest{
		NationalID:    nationalID,
		FirstName:     "Yasmine",
		LastName:      "El Amrani",
		BirthDate:     &birthDate,
		Gender:        model.GenderFemale,
		Email:         nationalID + "@example.com",
		Phone:         "0600000000",
		Diploma:       "Master en Genie Logiciel",
		BirthCityID:   f.city.ID,
		CityID:        f.city.ID,
		ContestID:     f.contest.ID,
		SpecialtyID:   f.specialty.ID,
		CenterID:      f.center.ID,
		TermsAccepted: true,
	}
}

func TestSubmitLifecycle(t *testing.T) {
	db := setupTestDB(t)
	mailer := &recordingMailer{}
	svc := NewApplicationService(db, mailer)
	ctx := context.Background()

	fixture := seedFixture(t, db, 10)

	number, err := svc.Submit(ctx, submitRequest(fixture, "AB123456"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !applicationNumberPattern.MatchString(number) {
		t.Errorf("unexpected number format: %s", number)
	}

	// Same candidate, same contest: refused regardless of specialty or center
	_, err = svc.Submit(ctx, submitRequest(fixture, "AB123456"))
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}

	view, err := svc.GetByNumber(ctx, number)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Status != model.StatusPending {
		t.Errorf("expected PENDING, got %s", view.Status)
	}
	if !view.DocumentsOK {
		t.Errorf("expected placeholder documents to cover all required kinds")
	}

	if err := svc.Validate(ctx, number, fixture.reviewer.ID); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	view, err = svc.GetByNumber(ctx, number)
	if err != nil {
		t.Fatalf("get after validate failed: %v", err)
	}
	if view.Status != model.StatusValidated {
		t.Errorf("expected VALIDATED, got %s", view.Status)
	}
	if view.ReviewerID == nil || *view.ReviewerID != fixture.reviewer.ID {
		t.Errorf("expected reviewer %d to be recorded, got %v", fixture.reviewer.ID, view.ReviewerID)
	}

	// Terminal states are frozen
	if err := svc.Validate(ctx, number, fixture.reviewer.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("expected ErrAlreadyProcessed on second validate, got %v", err)
	}
	if err := svc.Reject(ctx, number, fixture.reviewer.ID, "late"); !errors.Is(err, ErrAlreadyProcessed) {
		t.Errorf("expected ErrAlreadyProcessed on reject after validate, got %v", err)
	}
}

func TestSubmitRejectsInadequateDiploma(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, &recordingMailer{})
	ctx := context.Background()

	fixture := seedFixture(t, db, 10)

	// A biology diploma has no adequacy rule token for the informatique track
	req := submitRequest(fixture, "KL777777")
	req.Diploma = "Licence en Biologie"

	_, err := svc.Submit(ctx, req)
	if !errors.Is(err, ErrCandidateIneligible) {
		t.Fatalf("expected ErrCandidateIneligible for mismatched diploma, got %v", err)
	}

	var count int64
	if err := db.Model(&model.Application{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no persisted application, got %d", count)
	}

	// The same candidate with an adequate diploma goes through
	if _, err := svc.Submit(ctx, submitRequest(fixture, "KL777777")); err != nil {
		t.Fatalf("expected submit with adequate diploma to succeed, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, &recordingMailer{})
	ctx := context.Background()

	fixture := seedFixture(t, db, 10)

	number, err := svc.Submit(ctx, submitRequest(fixture, "CD789012"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := svc.Reject(ctx, number, fixture.reviewer.ID, "   "); !errors.Is(err, ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason for blank reason, got %v", err)
	}

	// The refused rejection must not have touched the application
	view, err := svc.GetByNumber(ctx, number)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Status != model.StatusPending {
		t.Errorf("expected PENDING after refused rejection, got %s", view.Status)
	}

	if err := svc.Reject(ctx, number, fixture.reviewer.ID, "Dossier incomplet"); err != nil {
		t.Fatalf("reject with reason failed: %v", err)
	}

	view, err = svc.GetByNumber(ctx, number)
	if err != nil {
		t.Fatalf("get after reject failed: %v", err)
	}
	if view.Status != model.StatusRejected {
		t.Errorf("expected REJECTED, got %s", view.Status)
	}
	if view.RejectReason != "Dossier incomplet" {
		t.Errorf("expected reason to be stored, got %q", view.RejectReason)
	}
}

func TestLastSeatSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, &recordingMailer{})
	ctx := context.Background()

	fixture := seedFixture(t, db, 1)

	// Two candidates race for the single remaining seat
	var wg sync.WaitGroup
	results := make([]error, 2)
	ids := []string{"EF111111", "EF222222"}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Submit(ctx, submitRequest(fixture, ids[i]))
		}(i)
	}
	wg.Wait()

	var won, refused int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrCapacityExceeded):
			refused++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}

	if won != 1 || refused != 1 {
		t.Fatalf("expected exactly one winner and one refusal, got %d winners, %d refusals", won, refused)
	}

	var count int64
	if err := db.Model(&model.Application{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 persisted application, got %d", count)
	}
}

func TestRejectionReleasesSeat(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, &recordingMailer{})
	ctx := context.Background()

	fixture := seedFixture(t, db, 1)

	number, err := svc.Submit(ctx, submitRequest(fixture, "GH333333"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Seat is occupied while the application is pending
	_, err = svc.Submit(ctx, submitRequest(fixture, "GH444444"))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded while pending, got %v", err)
	}

	if err := svc.Reject(ctx, number, fixture.reviewer.ID, "Conditions non remplies"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	// Rejection frees the seat for the next candidate
	if _, err := svc.Submit(ctx, submitRequest(fixture, "GH444444")); err != nil {
		t.Fatalf("expected submit to succeed after rejection, got %v", err)
	}
}

func TestListFiltersAndOrdering(t *testing.T) {
	db := setupTestDB(t)
	svc := NewApplicationService(db, &recordingMailer{})
	ctx := context.Background()

	fixture := seedFixture(t, db, 10)

	first, err := svc.Submit(ctx, submitRequest(fixture, "IJ555555"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := svc.Submit(ctx, submitRequest(fixture, "IJ666666"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := svc.Validate(ctx, first, fixture.reviewer.ID); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	// No filters: both rows, newest submission first
	views, total, err := svc.List(ctx, ApplicationFilters{}, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 applications, got total=%d len=%d", total, len(views))
	}
	if !views[0].SubmittedAt.After(views[1].SubmittedAt) && views[0].SubmittedAt != views[1].SubmittedAt {
		t.Errorf("expected newest-first ordering")
	}

	status := model.StatusValidated
	views, total, err = svc.List(ctx, ApplicationFilters{Status: &status}, 1, 20)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].Number != first {
		t.Fatalf("expected only the validated application, got total=%d", total)
	}
	_ = second

	// Combined filters are ANDed
	views, total, err = svc.List(ctx, ApplicationFilters{
		ContestID:   &fixture.contest.ID,
		SpecialtyID: &fixture.specialty.ID,
		Status:      &status,
		Diploma:     "genie",
	}, 1, 20)
	if err != nil {
		t.Fatalf("combined filter list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 match for combined filters, got %d", total)
	}

	// A filter matching nothing returns an empty page, not an error
	missing := model.StatusRejected
	views, total, err = svc.List(ctx, ApplicationFilters{Status: &missing}, 1, 20)
	if err != nil {
		t.Fatalf("empty list failed: %v", err)
	}
	if total != 0 || len(views) != 0 {
		t.Fatalf("expected empty result, got total=%d len=%d", total, len(views))
	}
}
