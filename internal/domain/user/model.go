package user

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no user matches a lookup.
var ErrNotFound = errors.New("user not found")

// Profile is the sender information carried by an inbound Telegram message.
// Empty strings mean the field is absent.
type Profile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// User is a stored Telegram account.
type User struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// DisplayHandle returns the handle, or fallback when the account has none.
func (u *User) DisplayHandle(fallback string) string {
	if u == nil || u.Username == "" {
		return fallback
	}
	return u.Username
}

// NormalizeHandle strips leading @ markers and surrounding space and case-folds
// the result, so "@Alice " and "alice" resolve to the same account.
func NormalizeHandle(raw string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "@")))
}
