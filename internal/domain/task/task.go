package task

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"

	// DisplayTimeLayout renders created_at as YYYY-MM-DD HH:MM.
	DisplayTimeLayout = "2006-01-02 15:04"
	// DueDateLayout is the form and storage layout for due dates.
	DueDateLayout = "2006-01-02"
	// UnknownAssigner stands in for a deleted assigner profile.
	UnknownAssigner = "N/A"

	errInvalidStatusFmt   = "invalid status: %q"
	errBackwardTransition = "status cannot move from %s back to %s"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// Validate validates the status
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return nil
	default:
		return fmt.Errorf(errInvalidStatusFmt, string(s))
	}
}

// Rank orders statuses along pending -> in_progress -> done.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusDone:
		return 2
	default:
		return -1
	}
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// CheckTransition allows any move between valid statuses unless forwardOnly
// is set, in which case the rank may not decrease.
func CheckTransition(from, to Status, forwardOnly bool) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if forwardOnly && to.Rank() < from.Rank() {
		return fmt.Errorf(errBackwardTransition, from, to)
	}
	return nil
}

type Task struct {
	ID                 int64
	Title              string
	Description        string
	AssignedTo         int64
	AssignedBy         *int64
	AssignedByUsername string
	Status             Status
	Progress           int
	Review             string
	AttachmentKey      string
	DueDate            *time.Time
	CreatedAt          time.Time
}

// AssignerName is the assigner's username, or N/A once that profile is gone.
func (t Task) AssignerName() string {
	if t.AssignedBy == nil || t.AssignedByUsername == "" {
		return UnknownAssigner
	}
	return t.AssignedByUsername
}

func (t Task) CreatedAtDisplay() string {
	return t.CreatedAt.Format(DisplayTimeLayout)
}

func (t Task) DueDateDisplay() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(DueDateLayout)
}

func (t Task) HasAttachment() bool {
	return t.AttachmentKey != ""
}

// CreateTaskInput is one row of a batch assignment.
type CreateTaskInput struct {
	Title         string
	Description   string
	AssignedTo    int64
	AssignedBy    int64
	AttachmentKey string
	DueDate       *time.Time
}

type ReportInput struct {
	Status   Status
	Progress int
	Review   string
}
