package entities

import "time"

// User is a Telegram account that has talked to the bot at least once.
type User struct {
	TelegramID int64     `gorm:"column:telegram_id;primaryKey;autoIncrement:false"`
	Username   *string   `gorm:"column:username;type:text"`
	FirstName  *string   `gorm:"column:first_name;type:text"`
	LastName   *string   `gorm:"column:last_name;type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
