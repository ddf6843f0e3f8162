package entities

import "time"

// Streak is the persisted pairwise relationship. User1ID is always the smaller id.
type Streak struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	User1ID         int64      `gorm:"column:user1_id;not null;uniqueIndex:idx_streaks_pair,priority:1"`
	User2ID         int64      `gorm:"column:user2_id;not null;uniqueIndex:idx_streaks_pair,priority:2;index"`
	StreakCount     int        `gorm:"column:streak_count;not null;default:0"`
	LastMessageDate *time.Time `gorm:"column:last_message_date;type:date"`
	Status          string     `gorm:"column:status;type:varchar(16);not null;default:pending;index"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Streak) TableName() string {
	return "streaks"
}
