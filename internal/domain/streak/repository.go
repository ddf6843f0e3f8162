package streak

import "context"

// Repository exposes data access for streaks.
type Repository interface {
	// FindByPair returns ErrNotFound when the pair has no row.
	FindByPair(ctx context.Context, pair Pair) (*Streak, error)
	// CreatePending inserts a pending row and returns ErrAlreadyExists when
	// the pair already has one.
	CreatePending(ctx context.Context, pair Pair) (*Streak, error)
	// AcceptLatestPending activates the most recently created pending row the
	// user participates in, returning ErrNoPendingInvite when there is none.
	AcceptLatestPending(ctx context.Context, userID int64) (*Streak, error)
	// AcceptPendingPair activates the pending row of one specific pair.
	AcceptPendingPair(ctx context.Context, pair Pair) (*Streak, error)
	// ListActive returns the user's active streaks, longest first.
	ListActive(ctx context.Context, userID int64) ([]ActiveStreak, error)
	Stats(ctx context.Context, userID int64) (Stats, error)
}
