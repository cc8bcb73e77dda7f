package app

import (
	"io"

	"department-service/internal/domain/profile"
	"department-service/internal/domain/task"
)

// Actor is the authenticated caller, resolved once per request and passed
// explicitly to every operation.
type Actor struct {
	UserID   int64
	Username string
	Profile  profile.Profile
}

// ProfileView backs the self-service profile page.
type ProfileView struct {
	Profile profile.Profile
	Tasks   []*task.Task
}

// EditView backs the role-gated profile edit page.
type EditView struct {
	Target       profile.Profile
	EditingOther bool
}

// Upload is an attachment received with an assignment.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type AssignRequest struct {
	Title       string
	Description string
	// AssigneeIDs are raw form values; anything non-numeric is ignored.
	AssigneeIDs []string
	DueDate     string
	Attachment  *Upload
}

// ReportRequest carries the report form. Nil fields keep the stored value.
type ReportRequest struct {
	Status   *string
	Progress *string
	Review   *string
}

// TaskSummary is the JSON shape of one task in a profile's task list.
type TaskSummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	AssignedBy string `json:"assigned_by"`
	CreatedAt  string `json:"created_at"`
}

type CreateUserRequest struct {
	Username string
	Password string
	Role     profile.Role
}
