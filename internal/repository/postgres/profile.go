package postgres

import (
	"context"
	"errors"

	"department-service/internal/domain/profile"
	apperrors "department-service/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `p.id, p.user_id, u.username, p.role, p.progress`

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
	insert := `
		INSERT INTO employee_profiles (user_id, role, progress)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, insert, userID, string(profile.RoleEmployee)); err != nil {
		return nil, errFailedCreateProfile(err)
	}

	return r.GetByUserID(ctx, userID)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*profile.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM employee_profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM employee_profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`
	return r.getOne(ctx, query, userID)
}

func (r *ProfileRepository) ListNonAdmin(ctx context.Context) ([]*profile.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM employee_profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.role <> $1
		ORDER BY p.id
	`
	return r.list(ctx, query, string(profile.RoleAdmin))
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []int64) ([]*profile.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + profileColumns + `
		FROM employee_profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = ANY($1)
		ORDER BY p.id
	`
	return r.list(ctx, query, ids)
}

func (r *ProfileRepository) UpdateProgress(ctx context.Context, id int64, progress int) error {
	query := `UPDATE employee_profiles SET progress = $2 WHERE id = $1`
	return r.exec(ctx, query, id, progress)
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, id int64, role profile.Role) error {
	query := `UPDATE employee_profiles SET role = $2 WHERE id = $1`
	return r.exec(ctx, query, id, string(role))
}

func (r *ProfileRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return errFailedUpdateProfile(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errProfileNotFound)
	}
	return nil
}

func (r *ProfileRepository) getOne(ctx context.Context, query string, arg any) (*profile.Profile, error) {
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errProfileNotFound)
		}
		return nil, errFailedGetProfile(err)
	}
	return p, nil
}

func (r *ProfileRepository) list(ctx context.Context, query string, args ...any) ([]*profile.Profile, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListProfiles(err)
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, errFailedScanProfile(err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateProfiles(err)
	}

	return profiles, nil
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	var role string
	if err := row.Scan(&p.ID, &p.UserID, &p.Username, &role, &p.Progress); err != nil {
		return nil, err
	}
	p.Role = profile.Role(role)
	return p, nil
}
