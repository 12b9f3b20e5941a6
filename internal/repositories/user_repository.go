package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser stores a new user. Emails are compared case-insensitively.
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	record := userRecord{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isDuplicateKey(err) {
			return model.User{}, apperrors.ErrEmailTaken
		}
		return model.User{}, err
	}
	return record.user(), nil
}

// FindByEmail returns the user and the stored password hash.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, string, error) {
	var record userRecord
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", err
	}
	return record.user(), record.PasswordHash, nil
}

// RevokeToken records a token id as signed out until it would have expired.
func (r *UserRepository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	record := revokedTokenRecord{ID: tokenID, ExpiresAt: expiresAt.UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
}

func (r *UserRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&revokedTokenRecord{}).Where("id = ?", tokenID).Count(&count).Error
	return count > 0, err
}

// PurgeRevoked drops revocations of tokens that have expired anyway.
func (r *UserRepository) PurgeRevoked(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now.UTC()).Delete(&revokedTokenRecord{})
	return res.RowsAffected, res.Error
}

func (r userRecord) user() model.User {
	return model.User{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt.UTC()}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
