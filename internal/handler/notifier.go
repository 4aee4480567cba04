package handler

import (
	tele "gopkg.in/telebot.v3"
)

// Notifier delivers service-layer messages through the bot.
type Notifier struct {
	bot *tele.Bot
}

// NewNotifier creates a bot-backed notifier.
func NewNotifier(bot *tele.Bot) *Notifier {
	return &Notifier{bot: bot}
}

// Notify sends a plain text message to the given chat.
func (n *Notifier) Notify(userID int64, text string) error {
	_, err := n.bot.Send(&tele.User{ID: userID}, text)
	return err
}
