package repository

import (
	"context"

	"department-service/internal/domain/profile"
	"department-service/internal/domain/task"
	"department-service/internal/domain/user"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, input user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// ProfileRepository defines employee profile data access operations.
// Profiles returned by every method carry the owning user's username.
type ProfileRepository interface {
	// GetOrCreateByUserID returns the user's profile, creating an employee
	// profile with zero progress when none exists yet.
	GetOrCreateByUserID(ctx context.Context, userID int64) (*profile.Profile, error)
	GetByID(ctx context.Context, id int64) (*profile.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (*profile.Profile, error)
	// ListNonAdmin returns every profile whose role is not admin, by id.
	ListNonAdmin(ctx context.Context) ([]*profile.Profile, error)
	// ListByIDs returns the profiles that exist among ids, by id.
	ListByIDs(ctx context.Context, ids []int64) ([]*profile.Profile, error)
	UpdateProgress(ctx context.Context, id int64, progress int) error
	UpdateRole(ctx context.Context, id int64, role profile.Role) error
}

// TaskRepository defines task data access operations.
// Tasks returned carry the assigner's username when the assigner still exists.
type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*task.Task, error)
	// ListByAssignee returns the profile's tasks newest first.
	ListByAssignee(ctx context.Context, profileID int64) ([]*task.Task, error)
	// CreateBatch inserts every input in one transaction. Either all rows
	// are created or none are.
	CreateBatch(ctx context.Context, inputs []task.CreateTaskInput) ([]*task.Task, error)
	UpdateReport(ctx context.Context, id int64, input task.ReportInput) error
}

// Migrator brings the schema up to date. It is idempotent.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Store bundles one backend's repositories.
type Store struct {
	Users    UserRepository
	Profiles ProfileRepository
	Tasks    TaskRepository
	Migrator Migrator

	closer func()
}

func NewStore(users UserRepository, profiles ProfileRepository, tasks TaskRepository, migrator Migrator, closer func()) *Store {
	return &Store{
		Users:    users,
		Profiles: profiles,
		Tasks:    tasks,
		Migrator: migrator,
		closer:   closer,
	}
}

// Ping is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Store) Close() {
	if s.closer != nil {
		s.closer()
	}
}
