package app

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"department-service/internal/authz"
	"department-service/internal/domain/profile"
	"department-service/internal/domain/task"
	"department-service/internal/domain/user"
	"department-service/internal/progress"
	"department-service/internal/repository"
	"department-service/internal/storage/s3"
	apperrors "department-service/pkg/errors"
	"department-service/pkg/logger"
	"department-service/pkg/password"
	"department-service/pkg/validator"
)

const (
	errActorInactive     = "account is disabled"
	errHashPassword      = "failed to hash password"
	errUploadAttachment  = "failed to store attachment"
	errCleanupAttachment = "failed to remove orphaned attachment"
)

// AttachmentStore keeps task attachments outside the database.
type AttachmentStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	PresignedURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type Options struct {
	// StatusForwardOnly rejects reports that move a task's status back.
	StatusForwardOnly bool
	MaxUploadSize     int64
	// PasswordCost is the bcrypt cost for accounts created through the
	// service. Zero means password.DefaultCost.
	PasswordCost int
}

// Service implements every department operation on top of the store.
type Service struct {
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	tasks       repository.TaskRepository
	policy      *authz.Policy
	attachments AttachmentStore
	opts        Options
}

// NewService wires a Service. attachments may be nil, which disables
// uploads.
func NewService(store *repository.Store, policy *authz.Policy, attachments AttachmentStore, opts Options) *Service {
	if opts.PasswordCost == 0 {
		opts.PasswordCost = password.DefaultCost
	}
	return &Service{
		users:       store.Users,
		profiles:    store.Profiles,
		tasks:       store.Tasks,
		policy:      policy,
		attachments: attachments,
		opts:        opts,
	}
}

func (s *Service) Policy() *authz.Policy {
	return s.policy
}

func (s *Service) AttachmentsEnabled() bool {
	return s.attachments != nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, pass string) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			password.BurnVerify(pass)
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}
	if !u.IsActive || !password.Verify(pass, u.PasswordHash) {
		return nil, apperrors.InvalidCredentials()
	}
	return u, nil
}

// ResolveActor loads the session user and their profile, creating the
// profile on first sight.
func (s *Service) ResolveActor(ctx context.Context, userID int64) (Actor, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	if !u.IsActive {
		return Actor{}, apperrors.Unauthorized(errActorInactive)
	}

	p, err := s.profiles.GetOrCreateByUserID(ctx, u.ID)
	if err != nil {
		return Actor{}, err
	}

	return Actor{UserID: u.ID, Username: u.Username, Profile: *p}, nil
}

// ListEmployees returns every non-admin profile, heads first, then
// managers, then employees, ties in id order.
func (s *Service) ListEmployees(ctx context.Context) ([]profile.ListingEntry, error) {
	profiles, err := s.profiles.ListNonAdmin(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]profile.ListingEntry, 0, len(profiles))
	for _, p := range profiles {
		if !p.Listable() {
			continue
		}
		entries = append(entries, profile.ListingEntry{
			Profile:        *p,
			ProgressOffset: progress.Offset(p.Progress),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Role.Priority() < entries[j].Role.Priority()
	})
	return entries, nil
}

func (s *Service) MyProfile(ctx context.Context, actor Actor) (*ProfileView, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, actor.Profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: actor.Profile, Tasks: tasks}, nil
}

// UpdateOwnProgress stores the actor's self-reported progress. Input that
// does not parse keeps the current value.
func (s *Service) UpdateOwnProgress(ctx context.Context, actor Actor, raw string) (int, error) {
	value := progress.Clamp(raw, actor.Profile.Progress)
	if err := s.profiles.UpdateProgress(ctx, actor.Profile.ID, value); err != nil {
		return 0, err
	}
	return value, nil
}

func (s *Service) ProfileForEdit(ctx context.Context, actor Actor, targetUserID int64) (*EditView, error) {
	target, err := s.profiles.GetByUserID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanEditProfile(actor.Profile, *target); err != nil {
		logger.FromContext(ctx).Info("profile edit denied",
			"actor_profile_id", actor.Profile.ID, "target_profile_id", target.ID, "reason", err.Error())
		return nil, apperrors.Forbidden(MsgPermissionDenied)
	}
	return &EditView{Target: *target, EditingOther: target.ID != actor.Profile.ID}, nil
}

func (s *Service) EditProfile(ctx context.Context, actor Actor, targetUserID int64, raw string) (int, error) {
	view, err := s.ProfileForEdit(ctx, actor, targetUserID)
	if err != nil {
		return 0, err
	}

	value := progress.Clamp(raw, view.Target.Progress)
	if err := s.profiles.UpdateProgress(ctx, view.Target.ID, value); err != nil {
		return 0, err
	}
	return value, nil
}

// AssigneesFor lists the profiles actor may assign tasks to.
func (s *Service) AssigneesFor(ctx context.Context, actor Actor) ([]profile.Profile, error) {
	if err := s.policy.CanAssign(actor.Profile); err != nil {
		return nil, apperrors.Forbidden(MsgPermissionDenied)
	}

	candidates, err := s.profiles.ListNonAdmin(ctx)
	if err != nil {
		return nil, err
	}

	flat := make([]profile.Profile, 0, len(candidates))
	for _, c := range candidates {
		flat = append(flat, *c)
	}
	return s.policy.EligibleAssignees(actor.Profile, flat), nil
}

// AssignTasks creates one pending task per distinct target. The request is
// all or nothing: any unknown or ineligible target rejects it before a
// single row is written.
func (s *Service) AssignTasks(ctx context.Context, actor Actor, req AssignRequest) (int, error) {
	if err := s.policy.CanAssign(actor.Profile); err != nil {
		return 0, apperrors.Forbidden(MsgPermissionDenied)
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	ids := parseIDs(req.AssigneeIDs)
	if title == "" || len(ids) == 0 {
		return 0, apperrors.Validation(MsgTitleAndAssigneeRequired)
	}
	if err := validator.TaskTitle(title); err != nil {
		return 0, apperrors.Validation(err.Error())
	}

	targets, err := s.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(targets) != len(ids) {
		return 0, apperrors.Validation(MsgEmployeeNotFound)
	}
	for _, target := range targets {
		if !s.policy.IsEligibleAssignee(actor.Profile, *target) {
			logger.FromContext(ctx).Info("assignment to ineligible target rejected",
				"actor_profile_id", actor.Profile.ID, "target_profile_id", target.ID, "target_role", target.Role)
			return 0, apperrors.Forbidden(MsgPermissionDenied)
		}
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return 0, err
	}

	attachmentKey, err := s.storeAttachment(ctx, req.Attachment)
	if err != nil {
		return 0, err
	}

	inputs := make([]task.CreateTaskInput, 0, len(targets))
	for _, target := range targets {
		inputs = append(inputs, task.CreateTaskInput{
			Title:         title,
			Description:   description,
			AssignedTo:    target.ID,
			AssignedBy:    actor.Profile.ID,
			AttachmentKey: attachmentKey,
			DueDate:       dueDate,
		})
	}

	created, err := s.tasks.CreateBatch(ctx, inputs)
	if err != nil {
		if attachmentKey != "" {
			if delErr := s.attachments.Delete(ctx, attachmentKey); delErr != nil {
				logger.FromContext(ctx).Error(errCleanupAttachment, "key", attachmentKey, "error", delErr)
			}
		}
		return 0, err
	}

	logger.FromContext(ctx).Info("tasks assigned",
		"actor_profile_id", actor.Profile.ID, "count", len(created), "attachment", attachmentKey != "")
	return len(created), nil
}

func (s *Service) storeAttachment(ctx context.Context, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	if s.attachments == nil {
		return "", apperrors.Validation(MsgAttachmentsDisabled)
	}
	if err := validator.FileName(up.Filename); err != nil {
		return "", apperrors.Validation(err.Error())
	}
	if err := validator.FileSize(up.Size, s.opts.MaxUploadSize); err != nil {
		return "", apperrors.Validation(err.Error())
	}
	if err := validator.ContentType(up.ContentType); err != nil {
		return "", apperrors.Validation(err.Error())
	}

	key := s3.NewAttachmentKey(up.Filename)
	if err := s.attachments.Put(ctx, key, up.Body, up.ContentType); err != nil {
		return "", apperrors.InternalServer(errUploadAttachment, err)
	}
	return key, nil
}

// TaskForReport loads a task the actor is allowed to report on.
func (s *Service) TaskForReport(ctx context.Context, actor Actor, taskID int64) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanReportTask(actor.Profile, *t); err != nil {
		return nil, apperrors.Forbidden(MsgReportOwnTasksOnly)
	}
	return t, nil
}

func (s *Service) ReportTask(ctx context.Context, actor Actor, taskID int64, req ReportRequest) (*task.Task, error) {
	t, err := s.TaskForReport(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	status := t.Status
	if req.Status != nil {
		parsed, err := task.ParseStatus(*req.Status)
		if err != nil {
			return nil, apperrors.Validation(MsgInvalidStatus)
		}
		if err := task.CheckTransition(t.Status, parsed, s.opts.StatusForwardOnly); err != nil {
			return nil, apperrors.Validation(MsgStatusBackwards)
		}
		status = parsed
	}

	value := t.Progress
	if req.Progress != nil {
		value = progress.Clamp(*req.Progress, t.Progress)
	}

	review := t.Review
	if req.Review != nil {
		review = *req.Review
	}

	input := task.ReportInput{Status: status, Progress: value, Review: review}
	if err := s.tasks.UpdateReport(ctx, t.ID, input); err != nil {
		return nil, err
	}

	t.Status, t.Progress, t.Review = status, value, review
	return t, nil
}

// TasksForProfile is the JSON task listing, newest first.
func (s *Service) TasksForProfile(ctx context.Context, actor Actor, profileID int64) ([]TaskSummary, error) {
	target, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanViewTasks(actor.Profile, *target); err != nil {
		return nil, apperrors.Forbidden(MsgPermissionDenied)
	}

	tasks, err := s.tasks.ListByAssignee(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	out := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskSummary{
			ID:         t.ID,
			Title:      t.Title,
			Status:     string(t.Status),
			Progress:   t.Progress,
			AssignedBy: t.AssignerName(),
			CreatedAt:  t.CreatedAtDisplay(),
		})
	}
	return out, nil
}

// AttachmentURL returns a short-lived download link for a task attachment.
func (s *Service) AttachmentURL(ctx context.Context, actor Actor, taskID int64) (string, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", err
	}
	assignee, err := s.profiles.GetByID(ctx, t.AssignedTo)
	if err != nil {
		return "", err
	}
	if err := s.policy.CanViewAttachment(actor.Profile, *assignee, *t); err != nil {
		return "", apperrors.Forbidden(MsgPermissionDenied)
	}
	if !t.HasAttachment() {
		return "", apperrors.NotFound(MsgNoAttachment)
	}
	if s.attachments == nil {
		return "", apperrors.Unavailable(MsgAttachmentsDisabled)
	}
	return s.attachments.PresignedURL(ctx, t.AttachmentKey)
}

// CreateUser provisions an account and its profile. It is the
// administrative path, not exposed over HTTP.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*profile.Profile, error) {
	if err := validator.Username(req.Username); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.Password(req.Password); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	role := req.Role
	if role == "" {
		role = profile.RoleEmployee
	}
	if err := role.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	hash, err := password.HashWithCost(req.Password, s.opts.PasswordCost)
	if err != nil {
		return nil, apperrors.InternalServer(errHashPassword, err)
	}

	u, err := s.users.Create(ctx, user.CreateUserInput{Username: req.Username, PasswordHash: hash})
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetOrCreateByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if role != p.Role {
		if err := s.profiles.UpdateRole(ctx, p.ID, role); err != nil {
			return nil, err
		}
		p.Role = role
	}
	return p, nil
}

// SetRole is the only way a profile's role changes.
func (s *Service) SetRole(ctx context.Context, username string, role profile.Role) (*profile.Profile, error) {
	if err := role.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.GetOrCreateByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateRole(ctx, p.ID, role); err != nil {
		return nil, err
	}
	p.Role = role

	logger.FromContext(ctx).Info("role changed", "username", u.Username, "profile_id", p.ID, "role", role)
	return p, nil
}

// parseIDs keeps the numeric values, first occurrence wins.
func parseIDs(raw []string) []int64 {
	seen := make(map[int64]bool, len(raw))
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(r), 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(task.DueDateLayout, raw)
	if err != nil {
		return nil, apperrors.Validation(MsgInvalidDueDate)
	}
	return &d, nil
}
