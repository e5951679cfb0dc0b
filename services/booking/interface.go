package booking

import (
	"context"

	"tripdesk/models"
)

// State is a step of the deferred submission state machine.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitingAuth State = "awaiting_auth"
	StateSubmitting   State = "submitting"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
)

type AuthMode string

const (
	AuthModeLogin  AuthMode = "login"
	AuthModeSignup AuthMode = "signup"
)

// AuthPrompt asks the client to open the authentication modal.
type AuthPrompt struct {
	Mode AuthMode `json:"mode"`
}

// Outcome is what a visitor action led to.
type Outcome struct {
	State      State       `json:"state"`
	AuthPrompt *AuthPrompt `json:"authPrompt,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// SubmitRequest is one finalized booking ready for the upstream API.
type SubmitRequest struct {
	Draft          models.BookingDraft
	ProfileID      string
	Destination    models.Destination
	IdempotencyKey string
}

// Gateway sends bookings upstream. It never retries.
type Gateway interface {
	Submit(ctx context.Context, req SubmitRequest) (*models.BookingResult, error)
}

// IdentityReader exposes the visitor's current identity.
type IdentityReader interface {
	Current() models.IdentitySnapshot
}

// BookingCreator is the upstream call the gateway wraps.
type BookingCreator interface {
	CreateBooking(ctx context.Context, payload models.BookingPayload, idempotencyKey string) (*models.BookingResult, error)
}
