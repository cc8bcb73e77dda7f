package sqlite

import (
	"context"
	"errors"

	"department-service/internal/domain/user"
	apperrors "department-service/pkg/errors"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	m := &userModel{
		Username:     input.Username,
		PasswordHash: input.PasswordHash,
		IsActive:     true,
	}
	if err := r.db.Gorm.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errUsernameTaken)
		}
		return nil, errFailedCreateUser(err)
	}
	return toUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepository) getOne(ctx context.Context, cond string, arg any) (*user.User, error) {
	var m userModel
	if err := r.db.Gorm.WithContext(ctx).Where(cond, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return toUser(&m), nil
}

func toUser(m *userModel) *user.User {
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
}
