package streakrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ogonki/streak-api/internal/domain/streak"
	"github.com/ogonki/streak-api/internal/infrastructure/database/entities"
	"github.com/ogonki/streak-api/internal/infrastructure/database/transaction"
)

const (
	statusPending = string(streak.StatusPending)
	statusActive  = string(streak.StatusActive)
)

// Most recent pending row of the caller. The outer status check keeps the
// update a no-op if another request activated the row first.
const acceptLatestSQL = `UPDATE streaks SET status = ?, updated_at = ?
WHERE id = (
	SELECT id FROM streaks
	WHERE (user1_id = ? OR user2_id = ?) AND status = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
) AND status = ?
RETURNING id`

const acceptPairSQL = `UPDATE streaks SET status = ?, updated_at = ?
WHERE user1_id = ? AND user2_id = ? AND status = ?
RETURNING id`

const listActiveSQL = `SELECT
	s.id,
	CASE WHEN s.user1_id = ? THEN s.user2_id ELSE s.user1_id END AS friend_id,
	CASE WHEN s.user1_id = ? THEN u2.username ELSE u1.username END AS friend_username,
	CASE WHEN s.user1_id = ? THEN u2.first_name ELSE u1.first_name END AS friend_first_name,
	s.streak_count,
	s.last_message_date,
	(SELECT COUNT(*) FROM messages m
		WHERE m.streak_id = s.id AND m.to_user_id = ? AND m.is_read = ?) AS unread_count
FROM streaks s
JOIN users u1 ON s.user1_id = u1.telegram_id
JOIN users u2 ON s.user2_id = u2.telegram_id
WHERE (s.user1_id = ? OR s.user2_id = ?) AND s.status = ?
ORDER BY s.streak_count DESC, s.id ASC`

const statsSQL = `SELECT
	COUNT(*) AS active_streaks,
	COALESCE(SUM(streak_count), 0) AS total_days,
	COALESCE(MAX(streak_count), 0) AS longest_streak
FROM streaks
WHERE (user1_id = ? OR user2_id = ?) AND status = ?`

type StreakGormRepository struct {
	db *transaction.Database
}

var _ streak.Repository = (*StreakGormRepository)(nil)

func NewStreakGormRepository(db *transaction.Database) streak.Repository {
	return &StreakGormRepository{db: db}
}

func (repo *StreakGormRepository) FindByPair(ctx context.Context, pair streak.Pair) (*streak.Streak, error) {
	var entity entities.Streak
	err := repo.db.GetTx(ctx).
		Where("user1_id = ? AND user2_id = ?", pair.Low, pair.High).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, streak.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find streak by pair: %w", err)
	}
	return toDomain(entity), nil
}

func (repo *StreakGormRepository) CreatePending(ctx context.Context, pair streak.Pair) (*streak.Streak, error) {
	entity := entities.Streak{
		User1ID: pair.Low,
		User2ID: pair.High,
		Status:  statusPending,
	}
	if err := repo.db.GetTx(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, streak.ErrAlreadyExists
		}
		return nil, fmt.Errorf("create pending streak: %w", err)
	}
	return toDomain(entity), nil
}

func (repo *StreakGormRepository) AcceptLatestPending(ctx context.Context, userID int64) (*streak.Streak, error) {
	return repo.accept(ctx, acceptLatestSQL,
		statusActive, time.Now().UTC(),
		userID, userID, statusPending,
		statusPending,
	)
}

func (repo *StreakGormRepository) AcceptPendingPair(ctx context.Context, pair streak.Pair) (*streak.Streak, error) {
	return repo.accept(ctx, acceptPairSQL,
		statusActive, time.Now().UTC(),
		pair.Low, pair.High, statusPending,
	)
}

func (repo *StreakGormRepository) accept(ctx context.Context, query string, args ...any) (*streak.Streak, error) {
	tx := repo.db.GetTx(ctx)

	var ids []int64
	if err := tx.Raw(query, args...).Scan(&ids).Error; err != nil {
		return nil, fmt.Errorf("accept pending streak: %w", err)
	}
	if len(ids) == 0 {
		return nil, streak.ErrNoPendingInvite
	}

	var entity entities.Streak
	if err := tx.Where("id = ?", ids[0]).First(&entity).Error; err != nil {
		return nil, fmt.Errorf("load accepted streak: %w", err)
	}
	return toDomain(entity), nil
}

type activeRow struct {
	ID              int64      `gorm:"column:id"`
	FriendID        int64      `gorm:"column:friend_id"`
	FriendUsername  *string    `gorm:"column:friend_username"`
	FriendFirstName *string    `gorm:"column:friend_first_name"`
	StreakCount     int        `gorm:"column:streak_count"`
	LastMessageDate *time.Time `gorm:"column:last_message_date"`
	UnreadCount     int64      `gorm:"column:unread_count"`
}

func (repo *StreakGormRepository) ListActive(ctx context.Context, userID int64) ([]streak.ActiveStreak, error) {
	var rows []activeRow
	err := repo.db.GetTx(ctx).
		Raw(listActiveSQL,
			userID, userID, userID,
			userID, false,
			userID, userID, statusActive,
		).
		Scan(&rows).
		Error
	if err != nil {
		return nil, fmt.Errorf("list active streaks: %w", err)
	}

	result := make([]streak.ActiveStreak, 0, len(rows))
	for _, row := range rows {
		result = append(result, streak.ActiveStreak{
			ID:              row.ID,
			FriendID:        row.FriendID,
			FriendUsername:  deref(row.FriendUsername),
			FriendFirstName: deref(row.FriendFirstName),
			Count:           row.StreakCount,
			LastMessageDate: row.LastMessageDate,
			UnreadCount:     row.UnreadCount,
		})
	}
	return result, nil
}

func (repo *StreakGormRepository) Stats(ctx context.Context, userID int64) (streak.Stats, error) {
	var row struct {
		ActiveStreaks int64 `gorm:"column:active_streaks"`
		TotalDays     int64 `gorm:"column:total_days"`
		LongestStreak int64 `gorm:"column:longest_streak"`
	}
	err := repo.db.GetTx(ctx).
		Raw(statsSQL, userID, userID, statusActive).
		Scan(&row).
		Error
	if err != nil {
		return streak.Stats{}, fmt.Errorf("streak stats: %w", err)
	}
	return streak.Stats{
		ActiveStreaks: row.ActiveStreaks,
		TotalDays:     row.TotalDays,
		LongestStreak: row.LongestStreak,
	}, nil
}

func toDomain(e entities.Streak) *streak.Streak {
	return &streak.Streak{
		ID:              e.ID,
		Pair:            streak.Pair{Low: e.User1ID, High: e.User2ID},
		Count:           e.StreakCount,
		LastMessageDate: e.LastMessageDate,
		Status:          streak.Status(e.Status),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
