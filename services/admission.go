package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/concours-mef/api/model"
	"gorm.io/gorm"
)

// AdmissionService groups the read-only checks run before a submission is
// accepted: the duplicate guard and the contest eligibility rules.
type AdmissionService struct {
	db *gorm.DB
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(db *gorm.DB) *AdmissionService {
	return &AdmissionService{db: db}
}

// CheckNoDuplicate fails with ErrDuplicateApplication when a non-deleted
// application already exists for the candidate identified by nationalID and the
// given contest. A candidate holds at most one application per contest; an
// unknown national ID can never be a duplicate.
func (s *AdmissionService) CheckNoDuplicate(ctx context.Context, tx *gorm.DB, nationalID string, contestID uint) error {
	if tx == nil {
		tx = s.db
	}

	var candidate model.Candidate
	err := tx.WithContext(ctx).Where("national_id = ?", nationalID).First(&candidate).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up candidate: %w", err)
	}

	var count int64
	err = tx.WithContext(ctx).Model(&model.Application{}).
		Where("candidate_id = ? AND contest_id = ?", candidate.ID, contestID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to count existing applications: %w", err)
	}
	if count > 0 {
		return ErrDuplicateApplication
	}
	return nil
}

// CheckEligible verifies the contest accepts submissions on the given day.
// Pure function of the contest state and the date.
func CheckEligible(contest *model.Contest, today time.Time) error {
	if !contest.Published {
		return ErrContestNotPublished
	}
	if !contest.IsOpen(today) {
		return ErrContestNotOpen
	}
	return nil
}

// Candidate admission rules inherited from the paper process: age bounds and a
// loose diploma/specialty adequacy check.
const (
	MinCandidateAge = 18
	MaxCandidateAge = 40
)

// CheckCandidateAge fails with ErrCandidateIneligible when the birth date puts
// the candidate outside the admissible age range. A missing birth date passes.
func CheckCandidateAge(birthDate *time.Time, today time.Time) error {
	if birthDate == nil {
		return nil
	}
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	if age < MinCandidateAge || age > MaxCandidateAge {
		return fmt.Errorf("%w: age %d outside [%d, %d]", ErrCandidateIneligible, age, MinCandidateAge, MaxCandidateAge)
	}
	return nil
}

// DiplomaMatchesSpecialty applies the adequacy rules between a diploma text
// and a specialty label. Unknown specialties accept any non-empty diploma.
func DiplomaMatchesSpecialty(diploma, specialtyLabel string) bool {
	if diploma == "" || specialtyLabel == "" {
		return false
	}

	d := strings.ToLower(strings.TrimSpace(diploma))
	sp := strings.ToLower(strings.TrimSpace(specialtyLabel))

	rules := map[string][]string{
		"informatique": {"informatique", "computer", "software", "reseaux", "logiciel"},
		"finance":      {"finance", "comptabilite", "gestion", "economie"},
		"audit":        {"audit", "comptabilite", "controle", "gestion"},
		"statistique":  {"statistique", "mathematique", "data", "econometrie"},
		"droit":        {"droit", "juridique", "administration"},
	}

	for key, accepted := range rules {
		if strings.Contains(sp, key) {
			for _, token := range accepted {
				if strings.Contains(d, token) {
					return true
				}
			}
			return false
		}
	}
	return true
}
