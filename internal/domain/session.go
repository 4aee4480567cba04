package domain

import "time"

// Step is the current data-collection step of a registration.
type Step string

const (
	StepNone      Step = "none"
	StepName      Step = "name"
	StepPhone     Step = "phone"
	StepYoutube   Step = "youtube"
	StepEmail     Step = "email"
	StepSubject   Step = "subject"
	StepCompleted Step = "completed"
)

// Status is the lifecycle state of a registration.
type Status string

const (
	// StatusIdle indicates the actor has a session but no registration in progress.
	StatusIdle Status = "idle"
	// StatusCollecting indicates the intake flow is collecting fields.
	StatusCollecting Status = "collecting"
	// StatusPendingReview indicates the application awaits a reviewer decision.
	StatusPendingReview Status = "pending_review"
	// StatusApproved indicates the reviewer approved and a checkout was issued.
	StatusApproved Status = "approved"
	// StatusReapplyRequired indicates the application was rejected.
	StatusReapplyRequired Status = "reapply_required"
	// StatusPaymentVerified indicates the registration fee was confirmed paid.
	StatusPaymentVerified Status = "payment_verified"
)

// EmailNotProvided is stored when the applicant skips the email step.
const EmailNotProvided = "not provided"

// Session is the full registration and payment lifecycle record for one actor.
type Session struct {
	UserID       int64
	Step         Step
	Status       Status
	CreatedAt    time.Time
	LastActivity time.Time

	Name       string
	Phone      string
	YoutubeURL string
	Email      string
	Subject    string

	PenaltyApplied bool
	TransactionRef string

	PaidAmount  float64
	Commission  float64
	PaymentDate time.Time
}

// stepOrder is the fixed forward sequence of collection steps.
var stepOrder = []Step{StepName, StepPhone, StepYoutube, StepEmail, StepSubject, StepCompleted}

// NextStep returns the step following s, or StepCompleted when there is none.
func NextStep(s Step) Step {
	for i, st := range stepOrder {
		if st == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return StepCompleted
}

// PrevStep returns the step preceding s, or s itself when already at the
// first step or not collecting.
func PrevStep(s Step) Step {
	for i, st := range stepOrder {
		if st == s {
			if i == 0 {
				return s
			}
			return stepOrder[i-1]
		}
	}
	return s
}
