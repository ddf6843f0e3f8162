package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ogonki/streak-api/internal/domain/command"
	"github.com/ogonki/streak-api/internal/domain/streak"
	"github.com/ogonki/streak-api/internal/domain/user"
	"github.com/ogonki/streak-api/internal/infrastructure/database/entities"
	"github.com/ogonki/streak-api/internal/infrastructure/database/transaction"
	"github.com/ogonki/streak-api/internal/infrastructure/repository/streakrepo"
	"github.com/ogonki/streak-api/internal/infrastructure/repository/userrepo"
	"github.com/ogonki/streak-api/internal/testhelpers"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []OutgoingMessage
	err  error
}

func (r *recordingSender) SendMessage(_ context.Context, msg OutgoingMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) take() []OutgoingMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sent
	r.sent = nil
	return out
}

type fixture struct {
	db      *gorm.DB
	sender  *recordingSender
	service Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, func(repo streak.Repository) streak.Repository { return repo })
}

// newFixtureWith lets a test decorate the streak repository.
func newFixtureWith(t *testing.T, wrap func(streak.Repository) streak.Repository) *fixture {
	t.Helper()

	db := testhelpers.NewDB(t)
	tx := transaction.NewDatabase(db)
	sender := &recordingSender{}
	return &fixture{
		db:     db,
		sender: sender,
		service: NewService(
			tx,
			userrepo.NewUserGormRepository(tx),
			wrap(streakrepo.NewStreakGormRepository(tx)),
			sender,
			zerolog.Nop(),
		),
	}
}

// staleLookupRepo misses the first FindByPair, as if another request
// inserted the row right after the lookup.
type staleLookupRepo struct {
	streak.Repository
	missed bool
}

func (r *staleLookupRepo) FindByPair(ctx context.Context, pair streak.Pair) (*streak.Streak, error) {
	if !r.missed {
		r.missed = true
		return nil, streak.ErrNotFound
	}
	return r.Repository.FindByPair(ctx, pair)
}

var (
	alice = user.Profile{TelegramID: 1, Username: "alice", FirstName: "Alice"}
	bob   = user.Profile{TelegramID: 2, Username: "bob", FirstName: "Bob"}
	carol = user.Profile{TelegramID: 3, Username: "carol", FirstName: "Carol"}
)

func (f *fixture) send(t *testing.T, from user.Profile, text string) Result {
	t.Helper()
	res, err := f.service.HandleEvent(context.Background(), Event{
		ChatID: from.TelegramID,
		From:   from,
		Text:   text,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) streakStatus(t *testing.T, low, high int64) string {
	t.Helper()
	var row entities.Streak
	require.NoError(t, f.db.Where("user1_id = ? AND user2_id = ?", low, high).First(&row).Error)
	return row.Status
}

func TestStartSendsWelcomeWithMenu(t *testing.T) {
	f := newFixture(t)

	res := f.send(t, alice, "/start")
	assert.Equal(t, command.Start, res.Command)
	assert.Equal(t, 1, res.Sent)

	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].ChatID)
	assert.Equal(t, welcomeText, msgs[0].Text)
	require.NotNil(t, msgs[0].Keyboard)
	assert.True(t, msgs[0].Keyboard.Resize)

	var buttons int
	for _, row := range msgs[0].Keyboard.Rows {
		buttons += len(row)
	}
	assert.Equal(t, 4, buttons)

	var users int64
	require.NoError(t, f.db.Model(&entities.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
	assert.Zero(t, testhelpers.CountStreaks(t, f.db))
}

func TestInviteAcceptScenario(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.sender.take()

	res := f.send(t, bob, "@alice")
	assert.Equal(t, command.InviteByHandle, res.Command)
	assert.Equal(t, "pending", f.streakStatus(t, 1, 2))

	msgs := f.sender.take()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].ChatID)
	assert.Equal(t, renderInviteNotification("bob"), msgs[0].Text)
	assert.Equal(t, int64(2), msgs[1].ChatID)
	assert.Equal(t, renderInviteSent("alice"), msgs[1].Text)

	res = f.send(t, alice, "/accept")
	assert.Equal(t, command.Accept, res.Command)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, "active", f.streakStatus(t, 1, 2))

	msgs = f.sender.take()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].ChatID)
	assert.Equal(t, renderAcceptedForCaller("bob"), msgs[0].Text)
	assert.Equal(t, int64(2), msgs[1].ChatID)
	assert.Equal(t, renderAcceptedForFriend("alice"), msgs[1].Text)

	f.send(t, bob, "@alice")
	msgs = f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, renderExisting(streak.StatusActive, "alice"), msgs[0].Text)
	assert.Equal(t, int64(1), testhelpers.CountStreaks(t, f.db))
}

func TestInviteInEitherDirectionIsDeduplicated(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.send(t, bob, "/start")
	f.sender.take()

	f.send(t, alice, "@BOB")
	f.sender.take()

	f.send(t, bob, "@alice")
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, renderExisting(streak.StatusPending, "alice"), msgs[0].Text)
	assert.Equal(t, int64(1), testhelpers.CountStreaks(t, f.db))
	assert.Equal(t, "pending", f.streakStatus(t, 1, 2))
}

func TestInviteLosingInsertRaceReportsExistingRow(t *testing.T) {
	f := newFixtureWith(t, func(repo streak.Repository) streak.Repository {
		return &staleLookupRepo{Repository: repo}
	})
	f.send(t, alice, "/start")
	f.send(t, bob, "/start")
	testhelpers.SeedStreak(t, f.db, 1, 2, "pending", 0)
	f.sender.take()

	res := f.send(t, bob, "@alice")
	assert.Equal(t, 1, res.Sent)

	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(2), msgs[0].ChatID)
	assert.Equal(t, renderExisting(streak.StatusPending, "alice"), msgs[0].Text)
	assert.Equal(t, int64(1), testhelpers.CountStreaks(t, f.db))
	assert.Equal(t, "pending", f.streakStatus(t, 1, 2))
}

func TestInviteRejections(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.sender.take()

	f.send(t, alice, "@Alice")
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, selfInviteText, msgs[0].Text)

	f.send(t, alice, "@nobody")
	msgs = f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, renderUserNotFound("nobody"), msgs[0].Text)

	assert.Zero(t, testhelpers.CountStreaks(t, f.db))
}

func TestInviteReportsBrokenStreak(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.send(t, bob, "/start")
	testhelpers.SeedStreak(t, f.db, 1, 2, "broken", 0)
	f.sender.take()

	f.send(t, alice, "@bob")
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, renderExisting(streak.StatusBroken, "bob"), msgs[0].Text)
	assert.Equal(t, "broken", f.streakStatus(t, 1, 2))
}

func TestAcceptWithoutPendingInvite(t *testing.T) {
	f := newFixture(t)

	res := f.send(t, alice, "/accept")
	assert.Equal(t, 1, res.Sent)

	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, noPendingText, msgs[0].Text)
}

func TestAcceptByHandlePicksThatInvite(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.send(t, bob, "@alice")
	f.send(t, carol, "@alice")
	f.sender.take()

	f.send(t, alice, "/accept @bob")
	assert.Equal(t, "active", f.streakStatus(t, 1, 2))
	assert.Equal(t, "pending", f.streakStatus(t, 1, 3))

	msgs := f.sender.take()
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(2), msgs[1].ChatID)

	f.send(t, alice, "/accept")
	assert.Equal(t, "active", f.streakStatus(t, 1, 3))
}

func TestListStreaks(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.send(t, bob, "/start")
	f.send(t, carol, "/start")
	f.sender.take()

	f.send(t, alice, command.MenuStreaks)
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, emptyStreaksText, msgs[0].Text)

	testhelpers.SeedStreak(t, f.db, 1, 2, "active", 2)
	testhelpers.SeedStreak(t, f.db, 1, 3, "active", 30)

	f.send(t, alice, "/streaks")
	msgs = f.sender.take()
	require.Len(t, msgs, 1)
	text := msgs[0].Text
	assert.Equal(t, 2, strings.Count(text, "└ Серия"))
	assert.Less(t, strings.Index(text, "@carol"), strings.Index(text, "@bob"))
	assert.Contains(t, text, "👑")
	assert.Contains(t, text, "никогда")
}

func TestListStreaksNamesFriendWithoutHandle(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.send(t, user.Profile{TelegramID: 4, FirstName: "Dana"}, "/start")
	testhelpers.SeedStreak(t, f.db, 1, 4, "active", 3)
	f.sender.take()

	f.send(t, alice, "/streaks")
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "<b>Dana</b>")
	assert.NotContains(t, msgs[0].Text, "@Dana")
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	f.send(t, alice, "/start")
	f.send(t, bob, "/start")
	testhelpers.SeedStreak(t, f.db, 1, 2, "active", 7)
	f.sender.take()

	res := f.send(t, alice, command.MenuProfile)
	assert.Equal(t, command.Profile, res.Command)

	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, renderProfile("alice", streak.Stats{ActiveStreaks: 1, TotalDays: 7, LongestStreak: 7}), msgs[0].Text)
}

func TestProfileFallsBackToFirstName(t *testing.T) {
	f := newFixture(t)

	f.send(t, user.Profile{TelegramID: 9, FirstName: "Dana"}, "/profile")
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "📛 @Dana")
}

func TestFallbackAndPrompt(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"hello", "", command.MenuSettings} {
		res := f.send(t, alice, text)
		assert.Equal(t, command.Fallback, res.Command, "text %q", text)
	}
	for _, msg := range f.sender.take() {
		assert.Equal(t, helpText, msg.Text)
	}

	f.send(t, alice, command.MenuInvite)
	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Equal(t, invitePromptText, msgs[0].Text)
}

func TestSendFailuresDoNotFailTheEvent(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("telegram down")

	res := f.send(t, alice, "/start")
	assert.Equal(t, 0, res.Sent)
	assert.Equal(t, 1, res.Failed)
}

func TestStorageFailureWrapsOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Exec("DROP TABLE users").Error)

	_, err := f.service.HandleEvent(context.Background(), Event{ChatID: 1, From: alice, Text: "/start"})
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "upsert user"))
	assert.Contains(t, err.Error(), "upsert user: save user: ")
	assert.Empty(t, f.sender.take())
}

func TestUserNamesAreEscaped(t *testing.T) {
	f := newFixture(t)
	f.send(t, user.Profile{TelegramID: 5, FirstName: "<b>x</b>"}, "/profile")

	msgs := f.sender.take()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "&lt;b&gt;x&lt;/b&gt;")
}
