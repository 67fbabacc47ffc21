package application

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusQuizCompleted   Status = "quiz_completed"
	StatusResumeRequested Status = "resume_requested"
	StatusResumeSubmitted Status = "resume_submitted"
	StatusInterview       Status = "interview"
	StatusAccepted        Status = "accepted"
	StatusRejected        Status = "rejected"
)

var (
	ErrInvalidStatus      = errors.New("invalid application status")
	ErrTransitionRejected = errors.New("status transition not allowed")
	ErrInvalidResumeType  = errors.New("resume must be .pdf, .doc or .docx")
)

var allStatuses = []Status{
	StatusPending,
	StatusQuizCompleted,
	StatusResumeRequested,
	StatusResumeSubmitted,
	StatusInterview,
	StatusAccepted,
	StatusRejected,
}

func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Trigger names who is moving an application.
type Trigger string

const (
	TriggerQuiz     Trigger = "quiz"
	TriggerResume   Trigger = "resume"
	TriggerEmployer Trigger = "employer"
)

// Transition decides the next status for a trigger. The employer may move an
// application to any status but pending, whatever the current one is. Quiz
// completion only advances a pending application, and a resume upload only
// advances one that was asked for a resume. A false second result means the
// status stays as it is.
func Transition(current Status, trigger Trigger, target Status) (Status, bool, error) {
	if !current.Valid() {
		return current, false, ErrInvalidStatus
	}

	switch trigger {
	case TriggerEmployer:
		if !target.Valid() || target == StatusPending {
			return current, false, ErrInvalidStatus
		}
		return target, target != current, nil
	case TriggerQuiz:
		if current != StatusPending {
			return current, false, nil
		}
		return StatusQuizCompleted, true, nil
	case TriggerResume:
		if current != StatusResumeRequested {
			return current, false, nil
		}
		return StatusResumeSubmitted, true, nil
	default:
		return current, false, ErrTransitionRejected
	}
}

type Application struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	EmployeeID uuid.UUID
	Status     Status
	ResumeURL  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EmployerView is an application as listed for the job owner.
type EmployerView struct {
	Application
	JobTitle      string
	EmployeeEmail string
	LatestScore   *int
}

// EmployeeView is an application as listed for the candidate.
type EmployeeView struct {
	Application
	JobTitle string
}

var resumeExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

func ValidateResumeFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if _, ok := resumeExtensions[ext]; !ok {
		return ErrInvalidResumeType
	}
	return nil
}

// ResumeObjectPath is the storage key for an upload: <user>/<unix ms>-<file>.
// The file name is reduced to a stem without path separators, blanks or
// repeated dots, followed by its extension.
func ResumeObjectPath(userID uuid.UUID, at time.Time, filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	ext := filepath.Ext(base)
	stem := resumeStem(strings.TrimSuffix(base, ext))
	return userID.String() + "/" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + stem + ext
}

func resumeStem(stem string) string {
	var b strings.Builder
	lastDot := false
	for _, r := range stem {
		switch {
		case r == '.':
			if lastDot {
				continue
			}
			lastDot = true
		case r == '/' || r == '\\' || unicode.IsSpace(r):
			r = '_'
			lastDot = false
		default:
			lastDot = false
		}
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "resume"
	}
	return out
}
