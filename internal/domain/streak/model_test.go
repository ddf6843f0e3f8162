package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPairIsDirectionIndependent(t *testing.T) {
	ab, err := NewPair(7, 3)
	require.NoError(t, err)
	ba, err := NewPair(3, 7)
	require.NoError(t, err)

	assert.Equal(t, Pair{Low: 3, High: 7}, ab)
	assert.Equal(t, ab, ba)
}

func TestNewPairRejectsSelf(t *testing.T) {
	_, err := NewPair(5, 5)
	assert.ErrorIs(t, err, ErrSelfPair)
}

func TestPairOther(t *testing.T) {
	pair := Pair{Low: 1, High: 2}
	assert.Equal(t, int64(2), pair.Other(1))
	assert.Equal(t, int64(1), pair.Other(2))

	s := &Streak{Pair: pair}
	assert.Equal(t, int64(1), s.Counterpart(2))
}

func TestActiveStreakIndicators(t *testing.T) {
	assert.False(t, ActiveStreak{Count: 29}.Milestone())
	assert.True(t, ActiveStreak{Count: 30}.Milestone())
	assert.False(t, ActiveStreak{}.HasUnread())
	assert.True(t, ActiveStreak{UnreadCount: 2}.HasUnread())
}
