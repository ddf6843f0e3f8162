package userrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogonki/streak-api/internal/domain/user"
	"github.com/ogonki/streak-api/internal/infrastructure/database/entities"
	"github.com/ogonki/streak-api/internal/infrastructure/database/transaction"
	"github.com/ogonki/streak-api/internal/testhelpers"
)

func TestUpsertIsIdempotent(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := NewUserGormRepository(transaction.NewDatabase(db))
	ctx := context.Background()

	profile := user.Profile{TelegramID: 42, Username: "Alice", FirstName: "Alice"}

	id, err := repo.Upsert(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = repo.Upsert(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	var count int64
	require.NoError(t, db.Model(&entities.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertRefreshesProfile(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := NewUserGormRepository(transaction.NewDatabase(db))
	ctx := context.Background()

	_, err := repo.Upsert(ctx, user.Profile{TelegramID: 1, Username: "old", FirstName: "A"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, user.Profile{TelegramID: 1, FirstName: "B"})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got.Username)
	assert.Equal(t, "B", got.FirstName)
}

func TestUpsertReleasesHandleHeldByAnotherAccount(t *testing.T) {
	db := testhelpers.NewDB(t)
	repo := NewUserGormRepository(transaction.NewDatabase(db))
	ctx := context.Background()

	_, err := repo.Upsert(ctx, user.Profile{TelegramID: 1, Username: "alice"})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, user.Profile{TelegramID: 2, Username: "Alice"})
	require.NoError(t, err)

	previous, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, previous.Username)

	holder, err := repo.FindByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), holder.TelegramID)
}

func TestFindByHandle(t *testing.T) {
	db := testhelpers.NewDB(t)
	testhelpers.SeedUser(t, db, 7, "Bob")
	repo := NewUserGormRepository(transaction.NewDatabase(db))
	ctx := context.Background()

	tests := []struct {
		name    string
		handle  string
		wantID  int64
		wantErr error
	}{
		{name: "exact", handle: "Bob", wantID: 7},
		{name: "case folded with marker", handle: "@BOB", wantID: 7},
		{name: "unknown", handle: "carol", wantErr: user.ErrNotFound},
		{name: "empty", handle: "@", wantErr: user.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByHandle(ctx, tt.handle)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.TelegramID)
		})
	}
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewUserGormRepository(transaction.NewDatabase(testhelpers.NewDB(t)))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, user.ErrNotFound)
}
