// Package command maps free-form chat text onto the closed set of bot commands.
package command

import (
	"strings"

	"github.com/ogonki/streak-api/internal/domain/user"
)

// Kind enumerates the commands the bot understands.
type Kind int

const (
	Fallback Kind = iota
	Start
	Streaks
	InvitePrompt
	InviteByHandle
	Accept
	Profile
)

// Reply keyboard labels. They are sent back verbatim when pressed.
const (
	MenuStreaks  = "🔥 Мои огоньки"
	MenuInvite   = "➕ Пригласить друга"
	MenuProfile  = "👤 Профиль"
	MenuSettings = "⚙️ Настройки"
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Streaks:
		return "streaks"
	case InvitePrompt:
		return "invite_prompt"
	case InviteByHandle:
		return "invite_by_handle"
	case Accept:
		return "accept"
	case Profile:
		return "profile"
	default:
		return "fallback"
	}
}

// Command is a parsed chat message.
type Command struct {
	Kind Kind
	// Handle is the normalized target handle for InviteByHandle, and the
	// optional counterpart for Accept.
	Handle string
}

// Parse is total: any text maps to exactly one command, Fallback included.
func Parse(text string) Command {
	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case MenuStreaks:
		return Command{Kind: Streaks}
	case MenuInvite:
		return Command{Kind: InvitePrompt}
	case MenuProfile:
		return Command{Kind: Profile}
	}

	if strings.HasPrefix(trimmed, "@") {
		return Command{Kind: InviteByHandle, Handle: user.NormalizeHandle(trimmed)}
	}

	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: Fallback}
	}

	name, args := splitCommand(trimmed)
	switch name {
	case "/start":
		return Command{Kind: Start}
	case "/streaks":
		return Command{Kind: Streaks}
	case "/profile":
		return Command{Kind: Profile}
	case "/invite":
		if args == "" {
			return Command{Kind: InvitePrompt}
		}
		return Command{Kind: InviteByHandle, Handle: user.NormalizeHandle(args)}
	case "/accept":
		return Command{Kind: Accept, Handle: user.NormalizeHandle(args)}
	}
	return Command{Kind: Fallback}
}

// splitCommand separates "/cmd@botname rest" into "/cmd" and "rest".
func splitCommand(text string) (string, string) {
	name, args, _ := strings.Cut(text, " ")
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return strings.ToLower(name), strings.TrimSpace(args)
}
