package entities

import "time"

// Message is a chat message exchanged inside a streak. Rows are written by the
// message relay; this service only counts unread ones.
type Message struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	StreakID   int64     `gorm:"column:streak_id;not null;index:idx_messages_unread,priority:1"`
	FromUserID int64     `gorm:"column:from_user_id;not null"`
	ToUserID   int64     `gorm:"column:to_user_id;not null;index:idx_messages_unread,priority:2"`
	Text       string    `gorm:"column:text;type:text;not null;default:''"`
	IsRead     bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

// All lists every entity in dependency order, for AutoMigrate in tests and tooling.
func All() []any {
	return []any{&User{}, &Streak{}, &Message{}}
}
