package services

import "errors"

// Business errors are expected, user-recoverable conditions. Handlers map them
// to 4xx responses and their messages are safe to show to candidates and staff.
// Anything else that comes out of a service is a technical failure and rolls
// the surrounding transaction back.
var (
	ErrDuplicateApplication = errors.New("an application already exists for this candidate and contest")
	ErrContestNotOpen       = errors.New("applications for this contest are not open")
	ErrContestNotPublished  = errors.New("this contest is not published yet")
	ErrCapacityExceeded     = errors.New("no seats remaining for this specialty at the selected center")
	ErrMissingReason        = errors.New("a rejection reason is required")
	ErrAlreadyProcessed     = errors.New("this application has already been processed")

	ErrApplicationNotFound = errors.New("application not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrCandidateIneligible = errors.New("candidate does not meet the contest requirements")
	ErrContestNotFound     = errors.New("contest not found")
	ErrSpecialtyNotFound   = errors.New("specialty not found")
	ErrCenterNotFound      = errors.New("exam center not found")
	ErrCityNotFound        = errors.New("city not found")
	ErrReviewerNotFound    = errors.New("reviewer not found")
)

// businessErrors is the closed set checked by IsBusinessError
var businessErrors = []error{
	ErrDuplicateApplication,
	ErrContestNotOpen,
	ErrContestNotPublished,
	ErrCapacityExceeded,
	ErrMissingReason,
	ErrAlreadyProcessed,
	ErrApplicationNotFound,
	ErrDocumentNotFound,
	ErrCandidateIneligible,
	ErrContestNotFound,
	ErrSpecialtyNotFound,
	ErrCenterNotFound,
	ErrCityNotFound,
	ErrReviewerNotFound,
}

// IsBusinessError reports whether err is (or wraps) one of the expected
// business failures, as opposed to an infrastructure fault.
func IsBusinessError(err error) bool {
	for _, be := range businessErrors {
		if errors.Is(err, be) {
			return true
		}
	}
	return false
}
