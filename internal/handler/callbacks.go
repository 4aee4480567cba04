package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"tutorbot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const decisionTimeout = 30 * time.Second

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// targetFromCallback extracts the applicant ID carried in callback data.
func targetFromCallback(c tele.Context) (int64, error) {
	callback := c.Callback()
	if callback == nil {
		return 0, fmt.Errorf("not a callback")
	}
	return strconv.ParseInt(cleanCallbackData(callback.Data), 10, 64)
}

// handleApprove processes the reviewer's approve decision
func (h *Handler) handleApprove(c tele.Context) error {
	targetID, err := targetFromCallback(c)
	if err != nil {
		h.logger.Warn("Malformed approve callback", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Malformed callback"})
	}

	// Checkout creation can take a moment.
	_ = c.Notify(tele.Typing)

	ctx, cancel := context.WithTimeout(context.Background(), decisionTimeout)
	defer cancel()

	approval, err := h.review.Approve(ctx, c.Sender().ID, targetID)
	if err != nil {
		return h.respondDecisionError(c, err, targetID)
	}

	h.metrics.Approvals.Inc()

	// Resolve the review message so the decision buttons disappear.
	resolved := fmt.Sprintf("%s\n\n✅ Approved — fee %d ETB, payment link sent.", c.Message().Text, approval.Amount)
	if err := c.Edit(resolved); err != nil {
		h.logger.Warn("Failed to edit review message", zap.Error(err))
	}
	return c.Respond(&tele.CallbackResponse{Text: "Approved"})
}

// handleReject processes the reviewer's reject decision
func (h *Handler) handleReject(c tele.Context) error {
	targetID, err := targetFromCallback(c)
	if err != nil {
		h.logger.Warn("Malformed reject callback", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Malformed callback"})
	}

	if err := h.review.Reject(c.Sender().ID, targetID); err != nil {
		return h.respondDecisionError(c, err, targetID)
	}

	h.metrics.Rejections.Inc()

	resolved := fmt.Sprintf("%s\n\n❌ Rejected — applicant notified.", c.Message().Text)
	if err := c.Edit(resolved); err != nil {
		h.logger.Warn("Failed to edit review message", zap.Error(err))
	}
	return c.Respond(&tele.CallbackResponse{Text: "Rejected"})
}

// handleReply arms reply mode for the reviewer
func (h *Handler) handleReply(c tele.Context) error {
	targetID, err := targetFromCallback(c)
	if err != nil {
		h.logger.Warn("Malformed reply callback", zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Malformed callback"})
	}

	if err := h.review.SetReplyTarget(c.Sender().ID, targetID); err != nil {
		return h.respondDecisionError(c, err, targetID)
	}

	return c.Respond(&tele.CallbackResponse{
		Text:      "Reply mode: your next message goes to this applicant.",
		ShowAlert: true,
	})
}

// respondDecisionError maps decision protocol errors to reviewer feedback.
func (h *Handler) respondDecisionError(c tele.Context, err error, targetID int64) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.Respond(&tele.CallbackResponse{Text: "You are not authorized to do that."})

	case errors.Is(err, service.ErrNotFound):
		return c.Respond(&tele.CallbackResponse{
			Text:      "Application not found — the session may have expired.",
			ShowAlert: true,
		})

	case errors.Is(err, service.ErrApprovalOutstanding):
		return c.Respond(&tele.CallbackResponse{
			Text:      "An unpaid checkout already exists for this applicant.",
			ShowAlert: true,
		})

	case errors.Is(err, service.ErrAlreadyVerified):
		return c.Respond(&tele.CallbackResponse{Text: "This applicant has already paid."})

	case errors.Is(err, service.ErrGateway):
		h.logger.Error("Gateway failure during approval",
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
		// Approval stands; surface the diagnostic so the reviewer can retry.
		failed := fmt.Sprintf("%s\n\n⚠️ Approved, but payment link creation failed:\n%v\n\nPress Approve again to retry.", c.Message().Text, err)
		if editErr := c.Edit(failed, decisionMarkup(strconv.FormatInt(targetID, 10))); editErr != nil {
			h.logger.Warn("Failed to edit review message", zap.Error(editErr))
		}
		return c.Respond(&tele.CallbackResponse{
			Text:      "Payment gateway error — see the review message.",
			ShowAlert: true,
		})
	}

	h.logger.Error("Unexpected decision error", zap.Int64("target_id", targetID), zap.Error(err))
	return c.Respond(&tele.CallbackResponse{Text: "Something went wrong."})
}
