package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/concours-mef/api/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mailer sends candidate-facing notifications. Sends are best-effort: a slow
// or failing mail must never roll back the transaction that triggered it.
type Mailer interface {
	SendApplicationConfirmation(email, number string) error
	SendValidationNotice(email, number string) error
	SendRejectionNotice(email, number, reason string) error
}

// ApplicationService owns the application lifecycle: submission, review
// transitions, deletion and the filtered listing that powers dashboards.
type ApplicationService struct {
	db            *gorm.DB
	admission     *AdmissionService
	capacity      *CapacityService
	mailer        Mailer
	notifications *NotificationService
}

// NewApplicationService creates a new application service
func NewApplicationService(db *gorm.DB, mailer Mailer) *ApplicationService {
	return &ApplicationService{
		db:            db,
		admission:     NewAdmissionService(db),
		capacity:      NewCapacityService(db),
		mailer:        mailer,
		notifications: NewNotificationService(db),
	}
}

// SubmitApplicationRequest carries the candidate data and the chosen
// contest/specialty/center for a new submission
type SubmitApplicationRequest struct {
	NationalID    string
	FirstName     string
	LastName      string
	BirthDate     *time.Time
	Gender        model.Gender
	Address       string
	Email         string
	Phone         string
	StudyLevel    string
	Diploma       string
	Experience    string
	BirthCityID   uint
	CityID        uint
	ContestID     uint
	SpecialtyID   uint
	CenterID      uint
	TermsAccepted bool
}

// ApplicationView is the flattened read model served to listings and detail
// pages. It is produced by a single join-and-project query, decoupled from the
// write-side entity graph.
type ApplicationView struct {
	Number           string                  `json:"number"`
	Status           model.ApplicationStatus `json:"status"`
	SubmittedAt      time.Time               `json:"submitted_at"`
	RejectReason     string                  `json:"reject_reason,omitempty"`
	CandidateName    string                  `json:"candidate_name"`
	CandidateCIN     string                  `json:"candidate_cin"`
	CandidateEmail   string                  `json:"candidate_email"`
	CandidatePhone   string                  `json:"candidate_phone"`
	CandidateDiploma string                  `json:"candidate_diploma"`
	ContestID        uint                    `json:"contest_id"`
	ContestTitle     string                  `json:"contest_title"`
	ContestReference string                  `json:"contest_reference"`
	SpecialtyID      uint                    `json:"specialty_id"`
	SpecialtyCode    string                  `json:"specialty_code"`
	SpecialtyLabel   string                  `json:"specialty_label"`
	CenterID         uint                    `json:"center_id"`
	CenterCode       string                  `json:"center_code"`
	CenterCity       string                  `json:"center_city"`
	ReviewerID       *uint                   `json:"reviewer_id,omitempty"`
	Reviewer         string                  `json:"reviewer,omitempty"`
	DocumentsOK      bool                    `json:"documents_ok"`
}

// ApplicationFilters are the optional, independently combinable predicates of
// the listing query. Nil fields impose no constraint; present ones are ANDed.
type ApplicationFilters struct {
	ContestID   *uint
	SpecialtyID *uint
	CenterID    *uint
	Status      *model.ApplicationStatus
	Diploma     string // case-insensitive substring on the candidate's diploma
}

// Submit runs the full admission pipeline and persists a PENDING application.
// Everything up to the commit happens in one transaction; the confirmation
// email fires after the commit and cannot fail the submission.
func (s *ApplicationService) Submit(ctx context.Context, req SubmitApplicationRequest) (string, error) {
	var number string
	var candidateEmail string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contest model.Contest
		if err := tx.First(&contest, req.ContestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrContestNotFound
			}
			return fmt.Errorf("failed to load contest: %w", err)
		}

		if err := s.admission.CheckNoDuplicate(ctx, tx, req.NationalID, req.ContestID); err != nil {
			return err
		}

		if err := CheckEligible(&contest, time.Now()); err != nil {
			return err
		}

		candidate, err := s.resolveOrCreateCandidate(ctx, tx, req)
		if err != nil {
			return err
		}

		var specialty model.Specialty
		if err := tx.First(&specialty, req.SpecialtyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrSpecialtyNotFound
			}
			return fmt.Errorf("failed to load specialty: %w", err)
		}

		if !DiplomaMatchesSpecialty(candidate.Diploma, specialty.Label) {
			return fmt.Errorf("%w: diploma %q does not match specialty %q",
				ErrCandidateIneligible, candidate.Diploma, specialty.Label)
		}

		var center model.ExamCenter
		if err := tx.First(&center, req.CenterID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrCenterNotFound
			}
			return fmt.Errorf("failed to load center: %w", err)
		}

		if err := s.capacity.ReserveSeat(ctx, tx, center.ID, specialty.ID); err != nil {
			return err
		}

		number = GenerateApplicationNumber()
		application := model.Application{
			Number:        number,
			Status:        model.StatusPending,
			SubmittedAt:   time.Now(),
			TermsAccepted: req.TermsAccepted,
			CandidateID:   candidate.ID,
			ContestID:     contest.ID,
			SpecialtyID:   specialty.ID,
			CenterID:      center.ID,
		}
		if err := tx.Create(&application).Error; err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}

		if err := s.createPlaceholderDocuments(tx, &application, candidate); err != nil {
			return err
		}

		candidateEmail = candidate.Email
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("Application %s submitted for CIN %s", number, req.NationalID)
	s.notifyAsync(model.NotificationConfirmation, candidateEmail, number, "")

	return number, nil
}

// Validate moves a PENDING application to VALIDATED and records the reviewer.
// Calling it on an already-processed application fails with ErrAlreadyProcessed
// and never re-commits the seat.
func (s *ApplicationService) Validate(ctx context.Context, number string, reviewerID uint) error {
	var candidateEmail string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, reviewer, err := s.loadForReview(ctx, tx, number, reviewerID)
		if err != nil {
			return err
		}

		application.Status = model.StatusValidated
		application.ReviewerID = &reviewer.ID
		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to save application: %w", err)
		}

		if err := s.capacity.CommitSeat(ctx, tx, number); err != nil {
			return err
		}

		candidateEmail = application.Candidate.Email
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Application %s validated by reviewer %d", number, reviewerID)
	s.notifyAsync(model.NotificationValidation, candidateEmail, number, "")

	return nil
}

// Reject moves a PENDING application to REJECTED with a mandatory reason and
// releases its seat. The reason check runs before any state is touched.
func (s *ApplicationService) Reject(ctx context.Context, number string, reviewerID uint, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrMissingReason
	}

	var candidateEmail string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		application, reviewer, err := s.loadForReview(ctx, tx, number, reviewerID)
		if err != nil {
			return err
		}

		application.Status = model.StatusRejected
		application.RejectReason = reason
		application.ReviewerID = &reviewer.ID
		if err := tx.Save(application).Error; err != nil {
			return fmt.Errorf("failed to save application: %w", err)
		}

		if err := s.capacity.ReleaseSeat(ctx, tx, number); err != nil {
			return err
		}

		candidateEmail = application.Candidate.Email
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Application %s rejected by reviewer %d: %s", number, reviewerID, reason)
	s.notifyAsync(model.NotificationRejection, candidateEmail, number, reason)

	return nil
}

// Delete removes an application and its documents. Documents go first; the
// seat frees itself because capacity is derived from the remaining rows.
func (s *ApplicationService) Delete(ctx context.Context, number string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var application model.Application
		if err := tx.First(&application, "number = ?", number).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrApplicationNotFound
			}
			return fmt.Errorf("failed to load application: %w", err)
		}

		if err := tx.Where("application_number = ?", number).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		if err := tx.Delete(&application).Error; err != nil {
			return fmt.Errorf("failed to delete application: %w", err)
		}

		log.Printf("Application %s deleted", number)
		return nil
	})
}

// GetByNumber returns the detail view of one application
func (s *ApplicationService) GetByNumber(ctx context.Context, number string) (*ApplicationView, error) {
	var application model.Application
	err := s.db.WithContext(ctx).
		Preload("Candidate").
		Preload("Contest").
		Preload("Specialty").
		Preload("Center.City").
		Preload("Reviewer").
		Preload("Documents").
		First(&application, "number = ?", number).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}

	view := ApplicationView{
		Number:           application.Number,
		Status:           application.Status,
		SubmittedAt:      application.SubmittedAt,
		RejectReason:     application.RejectReason,
		CandidateName:    application.Candidate.FullName(),
		CandidateCIN:     application.Candidate.NationalID,
		CandidateEmail:   application.Candidate.Email,
		CandidatePhone:   application.Candidate.Phone,
		CandidateDiploma: application.Candidate.Diploma,
		ContestID:        application.ContestID,
		ContestTitle:     application.Contest.Title,
		ContestReference: application.Contest.Reference,
		SpecialtyID:      application.SpecialtyID,
		SpecialtyCode:    application.Specialty.Code,
		SpecialtyLabel:   application.Specialty.Label,
		CenterID:         application.CenterID,
		CenterCode:       application.Center.Code,
		CenterCity:       application.Center.City.Name,
		ReviewerID:       application.ReviewerID,
		DocumentsOK:      application.HasAllRequiredDocuments(),
	}
	if application.Reviewer != nil {
		view.Reviewer = application.Reviewer.Username
	}
	return &view, nil
}

// List answers the paginated multi-predicate query. All provided filters are
// ANDed; ordering is submission date descending with the number as tiebreaker
// so pages of one query never shuffle.
func (s *ApplicationService) List(ctx context.Context, filters ApplicationFilters, page, pageSize int) ([]ApplicationView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.filteredQuery(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	var views []ApplicationView
	err := query.
		Select(`applications.number,
			applications.status,
			applications.submitted_at,
			applications.reject_reason,
			candidates.first_name || ' ' || candidates.last_name AS candidate_name,
			candidates.national_id AS candidate_cin,
			candidates.email AS candidate_email,
			candidates.phone AS candidate_phone,
			candidates.diploma AS candidate_diploma,
			contests.id AS contest_id,
			contests.title AS contest_title,
			contests.reference AS contest_reference,
			specialties.id AS specialty_id,
			specialties.code AS specialty_code,
			specialties.label AS specialty_label,
			exam_centers.id AS center_id,
			exam_centers.code AS center_code,
			cities.name AS center_city,
			applications.reviewer_id,
			users.username AS reviewer`).
		Order("applications.submitted_at DESC, applications.number ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&views).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return views, total, nil
}

// CountByCenter returns the number of applications held by a center
func (s *ApplicationService) CountByCenter(ctx context.Context, centerID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("center_id = ?", centerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applications by center: %w", err)
	}
	return count, nil
}

// CountByCenterAndStatus returns the number of a center's applications in the
// given status
func (s *ApplicationService) CountByCenterAndStatus(ctx context.Context, centerID uint, status model.ApplicationStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("center_id = ? AND status = ?", centerID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count applications by center and status: %w", err)
	}
	return count, nil
}

// GenerateApplicationNumber returns a fresh application identifier in the form
// CAND-YYYYMMDD-XXXX, with a random uppercase suffix drawn from a UUID
func GenerateApplicationNumber() string {
	datePart := time.Now().Format("20060102")
	randomPart := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("CAND-%s-%s", datePart, randomPart)
}

// filteredQuery composes the predicate clauses onto one joined query. Each
// absent filter contributes nothing; there is exactly one query shape.
func (s *ApplicationService) filteredQuery(ctx context.Context, filters ApplicationFilters) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&model.Application{}).
		Joins("JOIN candidates ON candidates.id = applications.candidate_id").
		Joins("JOIN contests ON contests.id = applications.contest_id").
		Joins("JOIN specialties ON specialties.id = applications.specialty_id").
		Joins("JOIN exam_centers ON exam_centers.id = applications.center_id").
		Joins("LEFT JOIN cities ON cities.id = exam_centers.city_id").
		Joins("LEFT JOIN users ON users.id = applications.reviewer_id")

	if filters.ContestID != nil {
		query = query.Where("applications.contest_id = ?", *filters.ContestID)
	}
	if filters.SpecialtyID != nil {
		query = query.Where("applications.specialty_id = ?", *filters.SpecialtyID)
	}
	if filters.CenterID != nil {
		query = query.Where("applications.center_id = ?", *filters.CenterID)
	}
	if filters.Status != nil {
		query = query.Where("applications.status = ?", *filters.Status)
	}
	if filters.Diploma != "" {
		query = query.Where("candidates.diploma ILIKE ?", "%"+filters.Diploma+"%")
	}

	return query
}

// loadForReview fetches the application and reviewer for a review transition
// and applies the terminal-state guard
func (s *ApplicationService) loadForReview(ctx context.Context, tx *gorm.DB, number string, reviewerID uint) (*model.Application, *model.User, error) {
	var application model.Application
	err := tx.WithContext(ctx).Preload("Candidate").First(&application, "number = ?", number).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrApplicationNotFound
		}
		return nil, nil, fmt.Errorf("failed to load application: %w", err)
	}

	if application.Status.IsTerminal() {
		return nil, nil, ErrAlreadyProcessed
	}

	var reviewer model.User
	if err := tx.WithContext(ctx).First(&reviewer, reviewerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrReviewerNotFound
		}
		return nil, nil, fmt.Errorf("failed to load reviewer: %w", err)
	}

	return &application, &reviewer, nil
}

// resolveOrCreateCandidate reuses the candidate matching the national ID or
// creates one, resolving the city references first
func (s *ApplicationService) resolveOrCreateCandidate(ctx context.Context, tx *gorm.DB, req SubmitApplicationRequest) (*model.Candidate, error) {
	var candidate model.Candidate
	err := tx.WithContext(ctx).Where("national_id = ?", req.NationalID).First(&candidate).Error
	if err == nil {
		return &candidate, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up candidate: %w", err)
	}

	if err := CheckCandidateAge(req.BirthDate, time.Now()); err != nil {
		return nil, err
	}

	var birthCity, residenceCity model.City
	if err := tx.WithContext(ctx).First(&birthCity, req.BirthCityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: birth place %d", ErrCityNotFound, req.BirthCityID)
		}
		return nil, fmt.Errorf("failed to load birth city: %w", err)
	}
	if err := tx.WithContext(ctx).First(&residenceCity, req.CityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: residence city %d", ErrCityNotFound, req.CityID)
		}
		return nil, fmt.Errorf("failed to load residence city: %w", err)
	}

	candidate = model.Candidate{
		NationalID:  req.NationalID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BirthDate:   req.BirthDate,
		Gender:      req.Gender,
		Address:     req.Address,
		Email:       req.Email,
		Phone:       req.Phone,
		StudyLevel:  req.StudyLevel,
		Diploma:     req.Diploma,
		Experience:  req.Experience,
		BirthCityID: birthCity.ID,
		CityID:      residenceCity.ID,
	}
	if err := tx.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	log.Printf("Created candidate for CIN %s", req.NationalID)
	return &candidate, nil
}

// Minimal PDF header used for the placeholder attachments created at
// submission time, before the real uploads land in the blob store.
var placeholderPDF = []byte("%PDF-1.4\n")

// createPlaceholderDocuments attaches one row per required document kind so
// the review screens always have the full set to work against
func (s *ApplicationService) createPlaceholderDocuments(tx *gorm.DB, application *model.Application, candidate *model.Candidate) error {
	now := time.Now()
	documents := []model.Document{
		{
			Kind:        model.DocumentKindCV,
			Name:        strings.ReplaceAll(fmt.Sprintf("CV_%s_%s.pdf", candidate.LastName, candidate.FirstName), " ", "_"),
			ContentType: "application/pdf",
			Size:        int64(len(placeholderPDF)),
			UploadedAt:  now,
		},
		{
			Kind:        model.DocumentKindNationalID,
			Name:        fmt.Sprintf("CIN_%s.pdf", candidate.NationalID),
			ContentType: "application/pdf",
			Size:        int64(len(placeholderPDF)),
			UploadedAt:  now,
		},
		{
			Kind:        model.DocumentKindDiploma,
			Name:        strings.ReplaceAll(fmt.Sprintf("Diploma_%s.pdf", candidate.Diploma), " ", "_"),
			ContentType: "application/pdf",
			Size:        int64(len(placeholderPDF)),
			UploadedAt:  now,
		},
	}

	for i := range documents {
		documents[i].ApplicationNumber = application.Number
		if err := tx.Create(&documents[i]).Error; err != nil {
			return fmt.Errorf("failed to create %s document: %w", documents[i].Kind, err)
		}
	}
	return nil
}

// notifyAsync fires the matching email in the background and records the
// attempt in the notification log
func (s *ApplicationService) notifyAsync(kind model.NotificationKind, email, number, reason string) {
	if s.mailer == nil || email == "" {
		return
	}

	go func() {
		var err error
		switch kind {
		case model.NotificationConfirmation:
			err = s.mailer.SendApplicationConfirmation(email, number)
		case model.NotificationValidation:
			err = s.mailer.SendValidationNotice(email, number)
		case model.NotificationRejection:
			err = s.mailer.SendRejectionNotice(email, number, reason)
		}
		if err != nil {
			log.Printf("Failed to send %s email for %s: %v", kind, number, err)
		}

		if s.notifications != nil {
			s.notifications.Record(context.Background(), RecordNotificationRequest{
				Kind:              kind,
				Recipient:         email,
				ApplicationNumber: number,
				Success:           err == nil,
				Reason:            reason,
			})
		}
	}()
}
