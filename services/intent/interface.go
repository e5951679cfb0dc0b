// Package intent stores the booking a visitor tried to submit while anonymous,
// so it can be replayed once after they sign in.
package intent

import (
	"context"
	"errors"

	"tripdesk/models"
)

var ErrIntentNotFound = errors.New("no pending booking intent")

// Store keeps at most one pending intent per visitor.
type Store interface {
	// Save replaces any pending intent of the visitor.
	Save(ctx context.Context, in models.SubmissionIntent) error
	// Take returns and removes the pending intent atomically. Concurrent callers
	// see it at most once; the rest get ErrIntentNotFound.
	Take(ctx context.Context, visitorID string) (*models.SubmissionIntent, error)
	Peek(ctx context.Context, visitorID string) (*models.SubmissionIntent, error)
	Discard(ctx context.Context, visitorID string) error
}
