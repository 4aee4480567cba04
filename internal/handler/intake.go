package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tutorbot/internal/domain"
	"tutorbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// stepPrompts asks for the next piece of input.
var stepPrompts = map[domain.Step]string{
	domain.StepName:    "What is your full name?",
	domain.StepPhone:   "Send your phone number, or share your contact.\nFormat: 09XXXXXXXX or +2519XXXXXXXX",
	domain.StepYoutube: "Send a link to your YouTube channel.",
	domain.StepEmail:   "Send your email address, or type \"skip\".",
	domain.StepSubject: "Which subject do you teach?",
}

// invalidPrompts re-prompt after rejected input.
var invalidPrompts = map[domain.Step]string{
	domain.StepName:    "That name looks too short. Please send your full name (at least 2 characters).",
	domain.StepPhone:   "That doesn't look like an Ethiopian mobile number. Try 09XXXXXXXX or +2519XXXXXXXX, or share your own contact.",
	domain.StepYoutube: "Please send a valid YouTube channel link (youtube.com/@handle, /channel/, /c/, /user/ or youtu.be). This step cannot be skipped.",
	domain.StepEmail:   "That doesn't look like an email address. Send a valid address or type \"skip\".",
	domain.StepSubject: "Please name the subject you teach (at least 2 characters).",
}

// handleText handles all plain text messages
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// A pending reply redirection takes priority over everything else.
	if target, ok := h.review.TakeReplyTarget(userID); ok {
		if _, err := h.bot.Send(&tele.User{ID: target}, "📩 Message from the team:\n\n"+text); err != nil {
			h.logger.Error("Failed to forward reviewer reply",
				zap.Int64("target_id", target),
				zap.Error(err),
			)
			return c.Send("Could not deliver the message.")
		}
		return c.Send("✅ Message delivered.")
	}

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	h.metrics.MessagesHandled.Inc()

	outcome := h.registration.Handle(userID, service.Event{Kind: service.KindStepInput, Text: text})
	return h.respond(c, outcome)
}

// handleContact handles shared phone contacts
func (h *Handler) handleContact(c tele.Context) error {
	contact := c.Message().Contact
	if contact == nil {
		return nil
	}

	h.metrics.MessagesHandled.Inc()

	outcome := h.registration.Handle(c.Sender().ID, service.Event{
		Kind: service.KindStepInput,
		Contact: &service.ContactShare{
			OwnerID:     contact.UserID,
			PhoneNumber: contact.PhoneNumber,
		},
	})
	return h.respond(c, outcome)
}

// handleControl maps a command to a control action.
func (h *Handler) handleControl(action service.ControlAction) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.metrics.MessagesHandled.Inc()
		outcome := h.registration.Handle(c.Sender().ID, service.Event{Kind: service.KindControl, Action: action})
		return h.respond(c, outcome)
	}
}

// respond renders a state machine outcome back to the actor.
func (h *Handler) respond(c tele.Context, outcome service.Outcome) error {
	switch outcome.Result {
	case service.ResultIgnored:
		if outcome.Session == nil {
			// No session: stay silent until an explicit /start.
			return nil
		}
		if outcome.Session.Status == domain.StatusIdle {
			return c.Send("Send /register to begin your application.")
		}
		return nil

	case service.ResultRegisterStarted, service.ResultPrompt, service.ResultSteppedBack:
		return c.Send(stepPrompts[outcome.Step])

	case service.ResultInvalid:
		return c.Send(invalidPrompts[outcome.Step])

	case service.ResultRegisterBlocked:
		return c.Send("You already have an application in progress. Check /status for updates.")

	case service.ResultCancelled:
		return c.Send("Application cancelled. Send /register whenever you're ready to try again.")

	case service.ResultCompleted:
		h.metrics.ApplicationsSubmitted.Inc()
		go h.emitReviewRequest(*outcome.Session)
		return c.Send("🎉 Application submitted!\n\nOur team will review it shortly. You'll get a payment link here once it's approved. Check /status anytime.")

	case service.ResultStatus:
		return c.Send(h.renderStatus(outcome.Session))
	}

	return nil
}

// renderStatus builds the /status report for a session.
func (h *Handler) renderStatus(s *domain.Session) string {
	switch s.Status {
	case domain.StatusIdle:
		return "No application in progress. Send /register to begin."
	case domain.StatusCollecting:
		return fmt.Sprintf("📝 Application in progress — waiting for your %s.", s.Step)
	case domain.StatusPendingReview:
		return "⏳ Your application is awaiting review. We'll notify you here."
	case domain.StatusApproved:
		fee := service.ComputeFee(s, time.Now())
		return fmt.Sprintf("✅ Approved! Registration fee currently due: %d ETB.\nUse the payment link we sent you to finish up.", fee)
	case domain.StatusReapplyRequired:
		return "😔 Your application was not approved. Send /register to apply again."
	case domain.StatusPaymentVerified:
		return "🎓 You're all set — payment confirmed and your tutor account is active."
	}
	return "Unknown status."
}

// emitReviewRequest delivers the completed application to the reviewer.
// It runs detached from the message handler: the pending_review transition
// has already committed, so a transport failure here must not corrupt it.
func (h *Handler) emitReviewRequest(s domain.Session) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Review request emission panicked", zap.Any("panic", r))
		}
	}()

	// Best-effort profile enrichment; the review request goes out either way.
	profile := ""
	if chat, err := h.bot.ChatByID(s.UserID); err == nil && chat.Username != "" {
		profile = "@" + chat.Username
	} else if err != nil {
		h.logger.Warn("Failed to fetch applicant profile",
			zap.Int64("user_id", s.UserID),
			zap.Error(err),
		)
	}

	text := fmt.Sprintf(
		"📋 New tutor application %s\n\nName: %s\nPhone: %s\nYouTube: %s\nEmail: %s\nSubject: %s\nUser ID: %d",
		profile, s.Name, s.Phone, s.YoutubeURL, s.Email, s.Subject, s.UserID,
	)

	targetID := strconv.FormatInt(s.UserID, 10)
	if _, err := h.bot.Send(&tele.User{ID: h.review.ReviewerID()}, text, decisionMarkup(targetID)); err != nil {
		h.logger.Error("Failed to deliver review request",
			zap.Int64("user_id", s.UserID),
			zap.Error(err),
		)
	}
}
