package userrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ogonki/streak-api/internal/domain/user"
	"github.com/ogonki/streak-api/internal/infrastructure/database/entities"
	"github.com/ogonki/streak-api/internal/infrastructure/database/transaction"
)

type UserGormRepository struct {
	db *transaction.Database
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *transaction.Database) user.Repository {
	return &UserGormRepository{db: db}
}

// Upsert stores the profile keyed by Telegram id. Telegram usernames can move
// between accounts, so a handle held by another row is released first.
func (repo *UserGormRepository) Upsert(ctx context.Context, profile user.Profile) (int64, error) {
	entity := entities.User{
		TelegramID: profile.TelegramID,
		Username:   optional(profile.Username),
		FirstName:  optional(profile.FirstName),
		LastName:   optional(profile.LastName),
	}

	err := repo.db.Transaction(ctx, func(ctx context.Context) error {
		tx := repo.db.GetTx(ctx)

		if entity.Username != nil {
			if err := tx.Model(&entities.User{}).
				Where("LOWER(username) = LOWER(?) AND telegram_id <> ?", *entity.Username, entity.TelegramID).
				Update("username", nil).Error; err != nil {
				return fmt.Errorf("release username: %w", err)
			}
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "updated_at"}),
		}).Create(&entity).Error
	})
	if err != nil {
		return 0, fmt.Errorf("save user: %w", err)
	}
	return entity.TelegramID, nil
}

func (repo *UserGormRepository) FindByID(ctx context.Context, telegramID int64) (*user.User, error) {
	var entity entities.User
	err := repo.db.GetTx(ctx).
		Where("telegram_id = ?", telegramID).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return toDomain(entity), nil
}

func (repo *UserGormRepository) FindByHandle(ctx context.Context, handle string) (*user.User, error) {
	handle = user.NormalizeHandle(handle)
	if handle == "" {
		return nil, user.ErrNotFound
	}

	var entity entities.User
	err := repo.db.GetTx(ctx).
		Where("LOWER(username) = ?", handle).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by handle: %w", err)
	}
	return toDomain(entity), nil
}

func toDomain(e entities.User) *user.User {
	return &user.User{
		TelegramID: e.TelegramID,
		Username:   deref(e.Username),
		FirstName:  deref(e.FirstName),
		LastName:   deref(e.LastName),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
