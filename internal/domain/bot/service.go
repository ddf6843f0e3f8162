// Package bot runs the streak relationship commands for one inbound chat message.
package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/ogonki/streak-api/internal/domain/command"
	"github.com/ogonki/streak-api/internal/domain/streak"
	"github.com/ogonki/streak-api/internal/domain/user"
)

var (
	tracer = otel.Tracer("streak-api/bot")
	meter  = otel.Meter("streak-api/bot")
)

// Service defines the interface for bot business logic.
type Service interface {
	// HandleEvent upserts the sender, runs exactly one command and sends its
	// replies. Send failures are counted in Result, never returned.
	HandleEvent(ctx context.Context, event Event) (Result, error)
}

// DefaultService implements the Service interface.
type DefaultService struct {
	sessions Sessions
	users    user.Repository
	streaks  streak.Repository
	sender   Sender
	log      zerolog.Logger

	invitesCreated  metric.Int64Counter
	invitesAccepted metric.Int64Counter
}

// NewService creates a new bot service.
func NewService(sessions Sessions, users user.Repository, streaks streak.Repository, sender Sender, log zerolog.Logger) Service {
	log = log.With().Str("component", "bot").Logger()
	return &DefaultService{
		sessions:        sessions,
		users:           users,
		streaks:         streaks,
		sender:          sender,
		log:             log,
		invitesCreated:  counter(log, "streaks.invites.created", "Pending streaks created"),
		invitesAccepted: counter(log, "streaks.invites.accepted", "Pending streaks activated"),
	}
}

func counter(log zerolog.Logger, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		log.Warn().Err(err).Str("instrument", name).Msg("create counter")
		return noop.Int64Counter{}
	}
	return c
}

// call carries the state of one HandleEvent invocation.
type call struct {
	userID int64
	chatID int64
	cmd    command.Command
	result *Result
}

func (s *DefaultService) HandleEvent(ctx context.Context, event Event) (Result, error) {
	cmd := command.Parse(event.Text)
	result := Result{Command: cmd.Kind}

	ctx, span := tracer.Start(ctx, "bot.HandleEvent")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("telegram.update_id", event.UpdateID),
		attribute.String("bot.command", cmd.Kind.String()),
	)

	err := s.sessions.Session(ctx, func(ctx context.Context) error {
		userID, err := s.users.Upsert(ctx, event.From)
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		return s.dispatch(ctx, call{
			userID: userID,
			chatID: event.ChatID,
			cmd:    cmd,
			result: &result,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	return result, nil
}

func (s *DefaultService) dispatch(ctx context.Context, c call) error {
	switch c.cmd.Kind {
	case command.Start:
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: welcomeText, Keyboard: &mainMenu})
		return nil
	case command.Streaks:
		return s.listStreaks(ctx, c)
	case command.InvitePrompt:
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: invitePromptText})
		return nil
	case command.InviteByHandle:
		return s.inviteByHandle(ctx, c)
	case command.Accept:
		return s.accept(ctx, c)
	case command.Profile:
		return s.profile(ctx, c)
	default:
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: helpText})
		return nil
	}
}

func (s *DefaultService) listStreaks(ctx context.Context, c call) error {
	rows, err := s.streaks.ListActive(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("list active streaks: %w", err)
	}
	s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderStreakList(rows)})
	return nil
}

func (s *DefaultService) inviteByHandle(ctx context.Context, c call) error {
	handle := c.cmd.Handle

	friend, err := s.users.FindByHandle(ctx, handle)
	if errors.Is(err, user.ErrNotFound) {
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderUserNotFound(handle)})
		return nil
	}
	if err != nil {
		return fmt.Errorf("find invitee: %w", err)
	}

	pair, err := streak.NewPair(c.userID, friend.TelegramID)
	if errors.Is(err, streak.ErrSelfPair) {
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: selfInviteText})
		return nil
	}

	existing, err := s.streaks.FindByPair(ctx, pair)
	switch {
	case err == nil:
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderExisting(existing.Status, handle)})
		return nil
	case !errors.Is(err, streak.ErrNotFound):
		return fmt.Errorf("find streak: %w", err)
	}

	if _, err := s.streaks.CreatePending(ctx, pair); err != nil {
		if !errors.Is(err, streak.ErrAlreadyExists) {
			return fmt.Errorf("create pending streak: %w", err)
		}
		// lost the race against an invite from the other side
		winner, findErr := s.streaks.FindByPair(ctx, pair)
		if findErr != nil {
			return fmt.Errorf("find streak after conflict: %w", findErr)
		}
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderExisting(winner.Status, handle)})
		return nil
	}
	s.invitesCreated.Add(ctx, 1)

	requester, err := s.users.FindByID(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("find requester: %w", err)
	}

	s.send(ctx, c, OutgoingMessage{
		ChatID: friend.TelegramID,
		Text:   renderInviteNotification(requester.DisplayHandle(fallbackRequester)),
	})
	s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderInviteSent(handle)})
	return nil
}

func (s *DefaultService) accept(ctx context.Context, c call) error {
	var (
		accepted *streak.Streak
		err      error
	)

	if c.cmd.Handle == "" {
		accepted, err = s.streaks.AcceptLatestPending(ctx, c.userID)
	} else {
		friend, findErr := s.users.FindByHandle(ctx, c.cmd.Handle)
		if errors.Is(findErr, user.ErrNotFound) {
			s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderUserNotFound(c.cmd.Handle)})
			return nil
		}
		if findErr != nil {
			return fmt.Errorf("find inviter: %w", findErr)
		}
		pair, pairErr := streak.NewPair(c.userID, friend.TelegramID)
		if pairErr != nil {
			s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: noPendingText})
			return nil
		}
		accepted, err = s.streaks.AcceptPendingPair(ctx, pair)
	}

	if errors.Is(err, streak.ErrNoPendingInvite) {
		s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: noPendingText})
		return nil
	}
	if err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	s.invitesAccepted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("by_handle", c.cmd.Handle != "")))

	friendID := accepted.Counterpart(c.userID)
	friend, err := s.users.FindByID(ctx, friendID)
	if err != nil {
		return fmt.Errorf("find counterpart: %w", err)
	}
	s.send(ctx, c, OutgoingMessage{
		ChatID: c.chatID,
		Text:   renderAcceptedForCaller(friend.DisplayHandle(fallbackFriend)),
	})

	me, err := s.users.FindByID(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("find caller: %w", err)
	}
	s.send(ctx, c, OutgoingMessage{
		ChatID: friendID,
		Text:   renderAcceptedForFriend(me.DisplayHandle(fallbackFriend)),
	})
	return nil
}

func (s *DefaultService) profile(ctx context.Context, c call) error {
	me, err := s.users.FindByID(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("find caller: %w", err)
	}
	stats, err := s.streaks.Stats(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("streak stats: %w", err)
	}

	name := me.Username
	if name == "" {
		name = me.FirstName
	}
	if name == "" {
		name = fallbackRequester
	}
	s.send(ctx, c, OutgoingMessage{ChatID: c.chatID, Text: renderProfile(name, stats)})
	return nil
}

// send delivers msg and records the outcome. Delivery failures never abort
// the command: state is already committed by the time replies go out.
func (s *DefaultService) send(ctx context.Context, c call, msg OutgoingMessage) {
	if err := s.sender.SendMessage(ctx, msg); err != nil {
		c.result.Failed++
		s.log.Warn().
			Err(err).
			Str("command", c.cmd.Kind.String()).
			Msg("outbound message failed")
		return
	}
	c.result.Sent++
}
