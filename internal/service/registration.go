package service

import (
	"strings"
	"time"

	"tutorbot/internal/domain"
	"tutorbot/internal/repository"
	"tutorbot/internal/validate"

	"go.uber.org/zap"
)

// EventKind distinguishes control actions from step input.
type EventKind int

const (
	// KindStepInput is free text or a contact share feeding the current step.
	KindStepInput EventKind = iota
	// KindControl is a flow control action (register, cancel, back, status).
	KindControl
)

// ControlAction is a flow control command issued by the actor.
type ControlAction string

const (
	ActionRegister ControlAction = "register"
	ActionCancel   ControlAction = "cancel"
	ActionBack     ControlAction = "back"
	ActionStatus   ControlAction = "status"
)

// ContactShare is a structured phone contact attached to a message.
type ContactShare struct {
	OwnerID     int64
	PhoneNumber string
}

// Event is one inbound actor message, already classified by the transport
// layer as either a control action or step input.
type Event struct {
	Kind    EventKind
	Action  ControlAction
	Text    string
	Contact *ContactShare
}

// Result describes what the state machine did with an event.
type Result int

const (
	// ResultIgnored means no session exists or the input is not applicable.
	ResultIgnored Result = iota
	// ResultPrompt means a step was accepted and the next one should be prompted.
	ResultPrompt
	// ResultInvalid means validation failed; re-prompt the current step.
	ResultInvalid
	// ResultCompleted means the final step was accepted and the application
	// is now pending review.
	ResultCompleted
	// ResultRegisterStarted means a fresh registration attempt began.
	ResultRegisterStarted
	// ResultRegisterBlocked means a registration attempt was refused because
	// an application is already pending, approved, or paid.
	ResultRegisterBlocked
	// ResultCancelled means the flow was reset to idle.
	ResultCancelled
	// ResultSteppedBack means the flow retreated exactly one step.
	ResultSteppedBack
	// ResultStatus means a read-only status report was requested.
	ResultStatus
)

// Outcome is the state machine's response to one event.
type Outcome struct {
	Result  Result
	Step    domain.Step
	Session *domain.Session
}

// RegistrationService advances registration sessions through the fixed
// intake step sequence.
type RegistrationService struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistrationService creates the intake state machine service.
func NewRegistrationService(sessions repository.SessionRepository, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// StartSession creates (or resets to idle) the session for an actor.
// Session creation happens only here; any message from an actor without a
// session is ignored by Handle. A session awaiting review or payment is
// never reset by a restart, only touched.
func (s *RegistrationService) StartSession(userID int64) *domain.Session {
	now := s.now()
	if existing, ok := s.sessions.Get(userID); ok {
		switch existing.Status {
		case domain.StatusPendingReview, domain.StatusApproved, domain.StatusPaymentVerified:
			existing.LastActivity = now
			return existing
		}
	}
	session := &domain.Session{
		UserID:       userID,
		Step:         domain.StepNone,
		Status:       domain.StatusIdle,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.sessions.Put(session)
	return session
}

// stepHandler consumes one event for one step and reports whether the
// input was accepted.
type stepHandler func(session *domain.Session, ev Event) bool

// stepHandlers is the transition table for the fixed intake sequence.
var stepHandlers = map[domain.Step]stepHandler{
	domain.StepName:    acceptName,
	domain.StepPhone:   acceptPhone,
	domain.StepYoutube: acceptYoutube,
	domain.StepEmail:   acceptEmail,
	domain.StepSubject: acceptSubject,
}

// Handle processes one inbound event for an actor. Control actions take
// priority over step input. Invalid input never mutates the session beyond
// its activity timestamp.
func (s *RegistrationService) Handle(userID int64, ev Event) Outcome {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return Outcome{Result: ResultIgnored}
	}
	session.LastActivity = s.now()

	if ev.Kind == KindControl {
		return s.handleControl(session, ev.Action)
	}

	if session.Status != domain.StatusCollecting {
		return Outcome{Result: ResultIgnored, Step: session.Step, Session: session}
	}

	handler, ok := stepHandlers[session.Step]
	if !ok {
		return Outcome{Result: ResultIgnored, Step: session.Step, Session: session}
	}

	if !handler(session, ev) {
		return Outcome{Result: ResultInvalid, Step: session.Step, Session: session}
	}

	session.Step = domain.NextStep(session.Step)
	if session.Step == domain.StepCompleted {
		session.Status = domain.StatusPendingReview
		s.logger.Info("Application submitted",
			zap.Int64("user_id", session.UserID),
			zap.String("subject", session.Subject),
		)
		return Outcome{Result: ResultCompleted, Step: session.Step, Session: session}
	}

	return Outcome{Result: ResultPrompt, Step: session.Step, Session: session}
}

func (s *RegistrationService) handleControl(session *domain.Session, action ControlAction) Outcome {
	switch action {
	case ActionRegister:
		switch session.Status {
		case domain.StatusPendingReview, domain.StatusApproved, domain.StatusPaymentVerified:
			return Outcome{Result: ResultRegisterBlocked, Step: session.Step, Session: session}
		}
		// The fee clock restarts on every fresh attempt.
		session.CreatedAt = s.now()
		session.Status = domain.StatusCollecting
		session.Step = domain.StepName
		session.Name = ""
		session.Phone = ""
		session.YoutubeURL = ""
		session.Email = ""
		session.Subject = ""
		session.PenaltyApplied = false
		return Outcome{Result: ResultRegisterStarted, Step: session.Step, Session: session}

	case ActionCancel:
		session.Step = domain.StepNone
		session.Status = domain.StatusIdle
		return Outcome{Result: ResultCancelled, Step: session.Step, Session: session}

	case ActionBack:
		if session.Status != domain.StatusCollecting || session.Step == domain.StepName || session.Step == domain.StepNone {
			return Outcome{Result: ResultIgnored, Step: session.Step, Session: session}
		}
		session.Step = domain.PrevStep(session.Step)
		return Outcome{Result: ResultSteppedBack, Step: session.Step, Session: session}

	case ActionStatus:
		return Outcome{Result: ResultStatus, Step: session.Step, Session: session}
	}

	return Outcome{Result: ResultIgnored, Step: session.Step, Session: session}
}

func acceptName(session *domain.Session, ev Event) bool {
	name := strings.TrimSpace(ev.Text)
	if len(name) < 2 {
		return false
	}
	session.Name = name
	return true
}

func acceptPhone(session *domain.Session, ev Event) bool {
	input := ev.Text
	if ev.Contact != nil {
		// A forwarded contact must belong to the sender.
		if ev.Contact.OwnerID != session.UserID {
			return false
		}
		input = ev.Contact.PhoneNumber
	}
	if !validate.Phone(input) {
		return false
	}
	session.Phone = strings.TrimSpace(input)
	return true
}

func acceptYoutube(session *domain.Session, ev Event) bool {
	url := strings.TrimSpace(ev.Text)
	// The channel is mandatory; skipping is not allowed here.
	if url == "" || strings.EqualFold(url, "skip") {
		return false
	}
	if !validate.ChannelURL(url) {
		return false
	}
	session.YoutubeURL = url
	return true
}

func acceptEmail(session *domain.Session, ev Event) bool {
	if !validate.Email(ev.Text) {
		return false
	}
	if validate.IsEmailSkip(ev.Text) {
		session.Email = domain.EmailNotProvided
	} else {
		session.Email = strings.TrimSpace(ev.Text)
	}
	return true
}

func acceptSubject(session *domain.Session, ev Event) bool {
	subject := strings.TrimSpace(ev.Text)
	if len(subject) < 2 {
		return false
	}
	session.Subject = subject
	return true
}
