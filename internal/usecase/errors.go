package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("forbidden")
	ErrUnavailable         = errors.New("service unavailable")

	ErrSkillAlreadyExists      = errors.New("skill already exists")
	ErrSkillNotFound           = errors.New("skill not found")
	ErrInvalidProficiencyLevel = errors.New("invalid proficiency level")

	ErrJobNotFound    = errors.New("job not found")
	ErrJobInactive    = errors.New("job is no longer active")
	ErrAlreadyApplied = errors.New("already applied to this job")

	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrResumeNotFound      = errors.New("no resume uploaded")
	ErrInvalidResume       = errors.New("resume must be a .pdf, .doc or .docx file")
	ErrResumeTooLarge      = errors.New("resume file too large")

	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizCompleted     = errors.New("quiz already completed")
	ErrQuizNotCompleted  = errors.New("quiz not completed yet")
	ErrQuizBusy          = errors.New("quiz is being processed")
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrNoQuestions       = errors.New("quiz has no questions yet")
)

// PartialWriteError reports a submission that stopped after Recorded answers
// were stored. The quiz is left unchanged so a retry is safe.
type PartialWriteError struct {
	Recorded int
	Total    int
	Err      error
}

func (e *PartialWriteError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("answers partially recorded %d/%d: %v", e.Recorded, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
