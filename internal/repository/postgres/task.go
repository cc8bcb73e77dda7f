package postgres

import (
	"context"
	"errors"

	"department-service/internal/domain/task"
	apperrors "department-service/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.assigned_to, t.assigned_by,
	       COALESCE(u.username, ''), t.status, t.progress, t.review,
	       COALESCE(t.attachment_key, ''), t.due_date, t.created_at
	FROM tasks t
	LEFT JOIN employee_profiles p ON p.id = t.assigned_by
	LEFT JOIN users u ON u.id = p.user_id
`

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	query := taskSelect + `WHERE t.id = $1`

	t, err := scanTask(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errTaskNotFound)
		}
		return nil, errFailedGetTask(err)
	}
	return t, nil
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, profileID int64) ([]*task.Task, error) {
	query := taskSelect + `
		WHERE t.assigned_to = $1
		ORDER BY t.created_at DESC, t.id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, errFailedListTasks(err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errFailedScanTask(err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateTasks(err)
	}

	return tasks, nil
}

func (r *TaskRepository) CreateBatch(ctx context.Context, inputs []task.CreateTaskInput) ([]*task.Task, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO tasks (title, description, assigned_to, assigned_by, status, progress, attachment_key, due_date)
		VALUES ($1, $2, $3, $4, $5, 0, NULLIF($6, ''), $7)
		RETURNING id
	`

	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		var id int64
		err := tx.QueryRow(ctx, insert,
			in.Title,
			in.Description,
			in.AssignedTo,
			in.AssignedBy,
			string(task.StatusPending),
			in.AttachmentKey,
			in.DueDate,
		).Scan(&id)
		if err != nil {
			return nil, errFailedCreateTask(err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	created := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		created = append(created, t)
	}
	return created, nil
}

func (r *TaskRepository) UpdateReport(ctx context.Context, id int64, input task.ReportInput) error {
	query := `
		UPDATE tasks
		SET status = $2, progress = $3, review = $4
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, string(input.Status), input.Progress, input.Review)
	if err != nil {
		return errFailedUpdateTask(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errTaskNotFound)
	}
	return nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var status string
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AssignedTo,
		&t.AssignedBy,
		&t.AssignedByUsername,
		&status,
		&t.Progress,
		&t.Review,
		&t.AttachmentKey,
		&t.DueDate,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = task.Status(status)
	return t, nil
}
