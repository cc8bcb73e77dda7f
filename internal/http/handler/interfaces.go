package handler

import (
	"context"
	"time"

	"department-service/internal/app"
	"department-service/internal/authz"
	"department-service/internal/domain/profile"
	"department-service/internal/domain/task"
	"department-service/internal/domain/user"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*user.User, error)
}

type SessionIssuer interface {
	Generate(userID int64, username string) (string, error)
	Expiry() time.Duration
}

// CSRFTokens is satisfied by the CSRF middleware and its disabled stand-in.
type CSRFTokens interface {
	GetOrCreateToken(userID int64) (string, error)
	Forget(userID int64)
}

// DepartmentHandler interfaces
type DepartmentService interface {
	Policy() *authz.Policy
	AttachmentsEnabled() bool
	ListEmployees(ctx context.Context) ([]profile.ListingEntry, error)
	MyProfile(ctx context.Context, actor app.Actor) (*app.ProfileView, error)
	UpdateOwnProgress(ctx context.Context, actor app.Actor, raw string) (int, error)
	ProfileForEdit(ctx context.Context, actor app.Actor, targetUserID int64) (*app.EditView, error)
	EditProfile(ctx context.Context, actor app.Actor, targetUserID int64, raw string) (int, error)
	AssigneesFor(ctx context.Context, actor app.Actor) ([]profile.Profile, error)
	AssignTasks(ctx context.Context, actor app.Actor, req app.AssignRequest) (int, error)
	TaskForReport(ctx context.Context, actor app.Actor, taskID int64) (*task.Task, error)
	ReportTask(ctx context.Context, actor app.Actor, taskID int64, req app.ReportRequest) (*task.Task, error)
	AttachmentURL(ctx context.Context, actor app.Actor, taskID int64) (string, error)
}

// TaskAPIHandler interfaces
type TaskQuerier interface {
	TasksForProfile(ctx context.Context, actor app.Actor, profileID int64) ([]app.TaskSummary, error)
}

// SystemHandler interfaces
type Pinger interface {
	Ping(ctx context.Context) error
}
