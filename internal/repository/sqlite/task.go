package sqlite

import (
	"context"
	"errors"
	"time"

	"department-service/internal/domain/task"
	apperrors "department-service/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type taskRow struct {
	ID               int64
	Title            string
	Description      string
	AssignedTo       int64
	AssignedBy       *int64
	AssignerUsername string
	Status           string
	Progress         int
	Review           string
	AttachmentKey    *string
	DueDate          *time.Time
	CreatedAt        time.Time
}

func (row taskRow) toDomain() *task.Task {
	t := &task.Task{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description,
		AssignedTo:         row.AssignedTo,
		AssignedBy:         row.AssignedBy,
		AssignedByUsername: row.AssignerUsername,
		Status:             task.Status(row.Status),
		Progress:           row.Progress,
		Review:             row.Review,
		DueDate:            row.DueDate,
		CreatedAt:          row.CreatedAt,
	}
	if row.AttachmentKey != nil {
		t.AttachmentKey = *row.AttachmentKey
	}
	return t
}

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) base(ctx context.Context) *gorm.DB {
	return r.db.Gorm.WithContext(ctx).
		Table("tasks AS t").
		Select(`t.id, t.title, t.description, t.assigned_to, t.assigned_by,
			COALESCE(u.username, '') AS assigner_username, t.status, t.progress,
			t.review, t.attachment_key, t.due_date, t.created_at`).
		Joins("LEFT JOIN employee_profiles AS p ON p.id = t.assigned_by").
		Joins("LEFT JOIN users AS u ON u.id = p.user_id")
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var row taskRow
	if err := r.base(ctx).Where("t.id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, errFailedGetTask(err)
	}
	return row.toDomain(), nil
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, profileID int64) ([]*task.Task, error) {
	var rows []taskRow
	err := r.base(ctx).
		Where("t.assigned_to = ?", profileID).
		Order("t.created_at DESC").
		Order("t.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errFailedListTasks(err)
	}

	tasks := make([]*task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) CreateBatch(ctx context.Context, inputs []task.CreateTaskInput) ([]*task.Task, error) {
	models := make([]*taskModel, 0, len(inputs))
	for _, in := range inputs {
		assignedBy := in.AssignedBy
		models = append(models, &taskModel{
			Title:         in.Title,
			Description:   in.Description,
			AssignedTo:    in.AssignedTo,
			AssignedBy:    &assignedBy,
			Status:        string(task.StatusPending),
			AttachmentKey: nullableString(in.AttachmentKey),
			DueDate:       in.DueDate,
		})
	}

	err := r.db.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range models {
			if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errFailedCreateTask(err)
	}

	created := make([]*task.Task, 0, len(models))
	for _, m := range models {
		t, err := r.GetByID(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		created = append(created, t)
	}
	return created, nil
}

func (r *TaskRepository) UpdateReport(ctx context.Context, id int64, input task.ReportInput) error {
	result := r.db.Gorm.WithContext(ctx).Model(&taskModel{}).Where("id = ?", id).Updates(map[string]any{
		"status":   string(input.Status),
		"progress": input.Progress,
		"review":   input.Review,
	})
	if err := result.Error; err != nil {
		return errFailedUpdateTask(err)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(errTaskNotFound)
	}
	return nil
}
