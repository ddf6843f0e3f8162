package bot

import (
	"context"

	"github.com/ogonki/streak-api/internal/domain/command"
	"github.com/ogonki/streak-api/internal/domain/user"
)

// Event is one inbound chat message addressed to the bot.
type Event struct {
	UpdateID int64
	ChatID   int64
	From     user.Profile
	Text     string
}

// Keyboard is a persistent reply keyboard shown under the chat input.
type Keyboard struct {
	Rows   [][]string
	Resize bool
}

// OutgoingMessage is an HTML formatted message for one chat.
type OutgoingMessage struct {
	ChatID   int64
	Text     string
	Keyboard *Keyboard
}

// Sender delivers outgoing messages. Implementations must be safe to call
// with a nil Keyboard.
type Sender interface {
	SendMessage(ctx context.Context, msg OutgoingMessage) error
}

// Sessions scopes the store access of one event.
type Sessions interface {
	Session(ctx context.Context, fn func(ctx context.Context) error) error
}

// Result describes what handling an event did.
type Result struct {
	Command command.Kind
	Sent    int
	Failed  int
}
