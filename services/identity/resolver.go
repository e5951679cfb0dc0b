package identity

import (
	"context"
	"sync"
	"time"

	"tripdesk/metrics"
	"tripdesk/models"
	"tripdesk/utils"

	"go.uber.org/zap"
)

// Resolver determines whether a visitor has an authenticated session.
type Resolver struct {
	source  SessionSource
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu        sync.Mutex
	state     models.IdentitySnapshot
	seq       uint64
	listeners map[uint64]Listener
	nextSub   uint64
}

func NewResolver(source SessionSource, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source:    source,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		state:     models.IdentitySnapshot{Status: models.IdentityLoading},
		listeners: make(map[uint64]Listener),
	}
}

// Current returns the latest identity snapshot.
func (r *Resolver) Current() models.IdentitySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers a listener for identity transitions and returns its cancel func.
func (r *Resolver) Subscribe(l Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSub++
	id := r.nextSub
	r.listeners[id] = l
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// Resolve runs the session query with token and publishes the result.
// Fetch failures resolve to anonymous. When two resolutions overlap only the
// most recently started one is applied.
func (r *Resolver) Resolve(ctx context.Context, token string) models.IdentitySnapshot {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	profile := r.fetch(ctx, token)

	next := models.IdentitySnapshot{Status: models.IdentityAnonymous}
	if profile != nil {
		next = models.IdentitySnapshot{Status: models.IdentityAuthenticated, Profile: profile}
	}

	r.mu.Lock()
	if seq != r.seq {
		current := r.state
		r.mu.Unlock()
		return current
	}
	prev := r.state
	r.state = next
	ev, changed := transition(prev, next)
	var listeners []Listener
	if changed {
		listeners = make([]Listener, 0, len(r.listeners))
		for _, l := range r.listeners {
			listeners = append(listeners, l)
		}
	}
	r.mu.Unlock()

	if changed {
		r.logger.Info("identity transition",
			zap.String("from", string(prev.Status)),
			zap.String("to", string(next.Status)),
			zap.Stringer("event", ev.Kind),
		)
		for _, l := range listeners {
			l(ctx, ev)
		}
	}
	return next
}

func (r *Resolver) fetch(ctx context.Context, token string) *models.Profile {
	if token == "" {
		r.observe("no_token")
		return nil
	}
	if claims, err := utils.InspectToken(token); err == nil && claims.Expired(r.now()) {
		r.observe("expired")
		return nil
	}

	profile, err := r.source.CurrentUser(ctx, token)
	if err != nil {
		r.logger.Warn("session query failed, treating visitor as anonymous", zap.Error(err))
		r.observe("error")
		return nil
	}
	if profile == nil {
		r.observe("anonymous")
		return nil
	}
	r.observe("authenticated")
	return profile
}

func (r *Resolver) observe(result string) {
	if r.metrics != nil {
		r.metrics.IdentityFetches.WithLabelValues(result).Inc()
	}
}

func transition(prev, next models.IdentitySnapshot) (Event, bool) {
	switch {
	case !prev.Authenticated() && next.Authenticated():
		return Event{Kind: EventAuthenticated, Profile: next.Profile}, true
	case prev.Authenticated() && !next.Authenticated():
		return Event{Kind: EventSignedOut}, true
	case prev.Authenticated() && next.Authenticated() && prev.Profile.ID != next.Profile.ID:
		// A different account signed in on the same visitor.
		return Event{Kind: EventAuthenticated, Profile: next.Profile}, true
	}
	return Event{}, false
}
