package middleware

import (
	"tutorbot/internal/ratelimit"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// RateLimit creates rate limiting middleware. Messages from actors over
// their window quota are dropped silently; onReject, if set, is called for
// each dropped message.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger, onReject func()) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			if !limiter.Allow(sender.ID) {
				logger.Warn("Rate limit exceeded, dropping message",
					zap.Int64("user_id", sender.ID),
				)
				if onReject != nil {
					onReject()
				}
				return nil
			}

			return next(c)
		}
	}
}
