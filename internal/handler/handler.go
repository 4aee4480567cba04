package handler

import (
	"tutorbot/internal/metrics"
	"tutorbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot          *tele.Bot
	registration *service.RegistrationService
	review       *service.ReviewService
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	registration *service.RegistrationService,
	review *service.ReviewService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		registration: registration,
		review:       review,
		metrics:      m,
		logger:       logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/register", h.handleControl(service.ActionRegister))
	h.bot.Handle("/cancel", h.handleControl(service.ActionCancel))
	h.bot.Handle("/back", h.handleControl(service.ActionBack))
	h.bot.Handle("/status", h.handleControl(service.ActionStatus))

	// Text messages and contact shares
	h.bot.Handle(tele.OnText, h.handleText)
	h.bot.Handle(tele.OnContact, h.handleContact)

	// Reviewer decision buttons
	h.bot.Handle(&btnApprove, h.handleApprove)
	h.bot.Handle(&btnReject, h.handleReject)
	h.bot.Handle(&btnReply, h.handleReply)
}

// Reviewer decision buttons; the target actor ID travels in the callback data.
var (
	btnApprove = tele.Btn{Unique: "approve"}
	btnReject  = tele.Btn{Unique: "reject"}
	btnReply   = tele.Btn{Unique: "reply"}
)

// decisionMarkup builds the three decision affordances for one applicant.
func decisionMarkup(targetID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("💬 Reply", btnReply.Unique, targetID)),
		markup.Row(
			markup.Data("✅ Approve", btnApprove.Unique, targetID),
			markup.Data("❌ Reject", btnReject.Unique, targetID),
		),
	)
	return markup
}
