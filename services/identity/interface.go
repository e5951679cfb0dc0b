package identity

import (
	"context"

	"tripdesk/models"
)

// SessionSource answers the "current user" session query.
type SessionSource interface {
	CurrentUser(ctx context.Context, token string) (*models.Profile, error)
}

type EventKind int

const (
	// EventAuthenticated fires once when the visitor goes from loading or anonymous to a profile.
	EventAuthenticated EventKind = iota + 1
	// EventSignedOut fires once when an authenticated visitor becomes anonymous.
	EventSignedOut
)

func (k EventKind) String() string {
	switch k {
	case EventAuthenticated:
		return "authenticated"
	case EventSignedOut:
		return "signed_out"
	}
	return "unknown"
}

// Event is a discrete identity transition.
type Event struct {
	Kind    EventKind
	Profile *models.Profile
}

// Listener receives transitions. It is called on the goroutine that resolved the identity.
type Listener func(ctx context.Context, ev Event)
