package user

import "context"

// Repository exposes data access for Telegram users.
type Repository interface {
	// Upsert inserts the profile or refreshes the stored one and returns the
	// canonical id, which is the Telegram id itself.
	Upsert(ctx context.Context, profile Profile) (int64, error)
	FindByID(ctx context.Context, telegramID int64) (*User, error)
	// FindByHandle matches the normalized handle case-insensitively.
	FindByHandle(ctx context.Context, handle string) (*User, error)
}
