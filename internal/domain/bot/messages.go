package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ogonki/streak-api/internal/domain/command"
	"github.com/ogonki/streak-api/internal/domain/streak"
)

const (
	fallbackRequester = "Пользователь"
	fallbackFriend    = "друг"
	neverLabel        = "никогда"
)

var mainMenu = Keyboard{
	Rows: [][]string{
		{command.MenuStreaks, command.MenuInvite},
		{command.MenuProfile, command.MenuSettings},
	},
	Resize: true,
}

const welcomeText = "🔥 <b>Добро пожаловать в Огоньки!</b>\n\n" +
	"Поддерживай общение с друзьями каждый день и собирай серии огоньков!\n\n" +
	"💡 <b>Как это работает:</b>\n" +
	"• Отправь сообщение другу = +1 день к серии\n" +
	"• Пропустил день = огонёк тухнет 😔\n" +
	"• Есть 3 защиты в месяц для восстановления\n\n" +
	"Начни с приглашения друга! 👇"

const emptyStreaksText = "🔍 <b>У тебя пока нет активных огоньков</b>\n\n" +
	"Пригласи друга и начните серию! ➕"

const invitePromptText = "➕ <b>Пригласить друга</b>\n\n" +
	"Отправь username друга в формате:\n" +
	"<code>@username</code>\n\n" +
	"Если друг не зарегистрирован в боте, " +
	"мы отправим ему приглашение!"

const selfInviteText = "😅 Нельзя пригласить самого себя!"

const noPendingText = "❌ Нет ожидающих запросов"

const helpText = "Используй меню или команды:\n" +
	"/start - Главное меню\n" +
	"/streaks - Мои огоньки\n" +
	"/invite - Пригласить друга\n" +
	"/profile - Профиль\n" +
	"/accept - Принять запрос"

func renderStreakList(rows []streak.ActiveStreak) string {
	if len(rows) == 0 {
		return emptyStreaksText
	}

	var b strings.Builder
	b.WriteString("🔥 <b>Твои огоньки:</b>\n\n")
	for _, row := range rows {
		fire := "💨"
		if row.Count > 0 {
			fire = "🔥"
		}
		crown := ""
		if row.Milestone() {
			crown = "👑"
		}
		unread := ""
		if row.HasUnread() {
			unread = "🔴"
		}

		fmt.Fprintf(&b, "%s <b>%s</b> %s %s\n", fire, friendLabel(row), crown, unread)
		fmt.Fprintf(&b, "   └ Серия: <b>%d</b> дней\n", row.Count)
		fmt.Fprintf(&b, "   └ Последнее сообщение: %s\n\n", formatDate(row.LastMessageDate))
	}
	return b.String()
}

// friendLabel prefixes only real handles with @.
func friendLabel(row streak.ActiveStreak) string {
	if row.FriendUsername != "" {
		return "@" + html.EscapeString(row.FriendUsername)
	}
	if row.FriendFirstName != "" {
		return html.EscapeString(row.FriendFirstName)
	}
	return fallbackFriend
}

func formatDate(t *time.Time) string {
	if t == nil {
		return neverLabel
	}
	return t.Format("2006-01-02")
}

func renderUserNotFound(handle string) string {
	return fmt.Sprintf("❌ <b>Пользователь @%s не найден</b>\n\n"+
		"Убедись, что друг уже запустил бота!", html.EscapeString(handle))
}

func renderExisting(status streak.Status, handle string) string {
	handle = html.EscapeString(handle)
	switch status {
	case streak.StatusActive:
		return fmt.Sprintf("🔥 Огонёк с @%s уже активен!", handle)
	case streak.StatusBroken:
		return fmt.Sprintf("💨 Огонёк с @%s потух. Продолжайте общаться, чтобы разжечь его снова!", handle)
	default:
		return fmt.Sprintf("⏳ Запрос к @%s уже отправлен!", handle)
	}
}

func renderInviteNotification(requester string) string {
	return fmt.Sprintf("🔔 <b>Новый запрос!</b>\n\n"+
		"@%s хочет начать огонёк с тобой!\n\n"+
		"Отправь /accept чтобы принять", html.EscapeString(requester))
}

func renderInviteSent(handle string) string {
	return fmt.Sprintf("✅ Запрос отправлен @%s!", html.EscapeString(handle))
}

func renderAcceptedForCaller(friend string) string {
	return fmt.Sprintf("🔥 Огонёк с @%s начат! Начинайте общаться!", html.EscapeString(friend))
}

func renderAcceptedForFriend(caller string) string {
	return fmt.Sprintf("🔥 @%s принял запрос! Огонёк начат!", html.EscapeString(caller))
}

func renderProfile(name string, stats streak.Stats) string {
	return fmt.Sprintf("👤 <b>Твой профиль</b>\n\n"+
		"📛 @%s\n\n"+
		"📊 <b>Статистика:</b>\n"+
		"• Активных огоньков: %d\n"+
		"• Всего дней: %d\n"+
		"• Лучшая серия: %d 🏆\n",
		html.EscapeString(name), stats.ActiveStreaks, stats.TotalDays, stats.LongestStreak)
}
