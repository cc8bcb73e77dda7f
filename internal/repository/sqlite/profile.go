package sqlite

import (
	"context"
	"errors"

	"department-service/internal/domain/profile"
	apperrors "department-service/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRow struct {
	ID       int64
	UserID   int64
	Username string
	Role     string
	Progress int
}

func (row profileRow) toDomain() *profile.Profile {
	return &profile.Profile{
		ID:       row.ID,
		UserID:   row.UserID,
		Username: row.Username,
		Role:     profile.Role(row.Role),
		Progress: row.Progress,
	}
}

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) base(ctx context.Context) *gorm.DB {
	return r.db.Gorm.WithContext(ctx).
		Table("employee_profiles AS p").
		Select("p.id, p.user_id, u.username, p.role, p.progress").
		Joins("JOIN users AS u ON u.id = p.user_id")
}

func (r *ProfileRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
	m := &profileModel{UserID: userID, Role: string(profile.RoleEmployee)}
	err := r.db.Gorm.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(m).Error
	if err != nil {
		return nil, errFailedCreateProfile(err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*profile.Profile, error) {
	return r.getOne(r.base(ctx).Where("p.id = ?", id))
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*profile.Profile, error) {
	return r.getOne(r.base(ctx).Where("p.user_id = ?", userID))
}

func (r *ProfileRepository) ListNonAdmin(ctx context.Context) ([]*profile.Profile, error) {
	return r.list(r.base(ctx).Where("p.role <> ?", string(profile.RoleAdmin)).Order("p.id"))
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []int64) ([]*profile.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(r.base(ctx).Where("p.id IN ?", ids).Order("p.id"))
}

func (r *ProfileRepository) UpdateProgress(ctx context.Context, id int64, progress int) error {
	return r.update(ctx, id, "progress", progress)
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, id int64, role profile.Role) error {
	return r.update(ctx, id, "role", string(role))
}

func (r *ProfileRepository) update(ctx context.Context, id int64, column string, value any) error {
	result := r.db.Gorm.WithContext(ctx).Model(&profileModel{}).Where("id = ?", id).Update(column, value)
	if err := result.Error; err != nil {
		return errFailedUpdateProfile(err)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound(errProfileNotFound)
	}
	return nil
}

func (r *ProfileRepository) getOne(q *gorm.DB) (*profile.Profile, error) {
	var row profileRow
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(errProfileNotFound)
		}
		return nil, errFailedGetProfile(err)
	}
	return row.toDomain(), nil
}

func (r *ProfileRepository) list(q *gorm.DB) ([]*profile.Profile, error) {
	var rows []profileRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, errFailedListProfiles(err)
	}

	profiles := make([]*profile.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.toDomain())
	}
	return profiles, nil
}
