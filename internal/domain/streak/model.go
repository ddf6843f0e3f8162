package streak

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a streak.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	// StatusBroken is set by the streak keeper when a day is missed.
	StatusBroken Status = "broken"
)

// MilestoneDays is the streak length that earns the crown marker.
const MilestoneDays = 30

var (
	// ErrNotFound is returned when no streak exists for a pair.
	ErrNotFound = errors.New("streak not found")
	// ErrAlreadyExists is returned when a pair already has a streak row.
	ErrAlreadyExists = errors.New("streak already exists")
	// ErrNoPendingInvite is returned when there is nothing to accept.
	ErrNoPendingInvite = errors.New("no pending invite")
	// ErrSelfPair is returned when both sides of a pair are the same user.
	ErrSelfPair = errors.New("streak requires two distinct users")
)

// Pair is an unordered pair of users in canonical order: Low < High.
type Pair struct {
	Low  int64
	High int64
}

// NewPair orders a and b so that the same two users always map to one key.
func NewPair(a, b int64) (Pair, error) {
	if a == b {
		return Pair{}, ErrSelfPair
	}
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

// Other returns the participant that is not id.
func (p Pair) Other(id int64) int64 {
	if p.Low == id {
		return p.High
	}
	return p.Low
}

// Streak is a pairwise relationship between two users.
type Streak struct {
	ID              int64
	Pair            Pair
	Count           int
	LastMessageDate *time.Time
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Counterpart returns the participant that is not userID.
func (s *Streak) Counterpart(userID int64) int64 {
	return s.Pair.Other(userID)
}

// ActiveStreak is a row of the caller's streak list.
type ActiveStreak struct {
	ID              int64
	FriendID        int64
	FriendUsername  string
	FriendFirstName string
	Count           int
	LastMessageDate *time.Time
	UnreadCount     int64
}

// HasUnread reports whether the friend sent messages the caller has not read.
func (a ActiveStreak) HasUnread() bool {
	return a.UnreadCount > 0
}

// Milestone reports whether the streak earned the crown.
func (a ActiveStreak) Milestone() bool {
	return a.Count >= MilestoneDays
}

// Stats aggregates a user's active streaks.
type Stats struct {
	ActiveStreaks int64
	TotalDays     int64
	LongestStreak int64
}
