package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const welcomeText = `👋 Welcome to the tutor registration bot!

Commands:
/register — apply to become a tutor
/status — check your application
/back — go back one step
/cancel — abandon the current application`

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.registration.StartSession(userID)
	h.metrics.MessagesHandled.Inc()

	return c.Send(welcomeText)
}
