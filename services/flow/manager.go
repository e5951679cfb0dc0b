// Package flow mounts one booking flow per visitor: a form, an identity
// resolver and a submission coordinator wired to each other.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tripdesk/metrics"
	"tripdesk/models"
	"tripdesk/services/booking"
	"tripdesk/services/form"
	"tripdesk/services/identity"
	"tripdesk/services/intent"
	"tripdesk/services/notification"
	"tripdesk/services/progress"

	"go.uber.org/zap"
)

var ErrFlowNotFound = errors.New("no booking flow for visitor")

// DestinationSource loads the destination a flow books.
type DestinationSource interface {
	GetDestination(ctx context.Context, id string) (*models.Destination, error)
}

// Flow is a visitor's mounted booking form.
type Flow struct {
	VisitorID   string
	Destination models.Destination
	Form        *form.Holder
	Identity    *identity.Resolver
	Coordinator *booking.Coordinator

	unsubscribe func()
	lastSeen    time.Time
}

func (f *Flow) close() {
	f.unsubscribe()
	f.Coordinator.Close()
}

// Deps are shared by every flow.
type Deps struct {
	Destinations    DestinationSource
	Sessions        identity.SessionSource
	Intents         intent.Store
	Gateway         booking.Gateway
	Notifier        *notification.FlashNotifier
	Progress        *progress.Tracker
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
	DisplayWindow   time.Duration
	DefaultCurrency string
}

// Manager owns the mounted flows and evicts idle ones.
type Manager struct {
	deps Deps
	idle time.Duration
	now  func() time.Time

	mu    sync.Mutex
	flows map[string]*Flow

	stopOnce sync.Once
	stop     chan struct{}
}

func NewManager(deps Deps, idle time.Duration) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{
		deps:  deps,
		idle:  idle,
		now:   time.Now,
		flows: make(map[string]*Flow),
		stop:  make(chan struct{}),
	}
}

// Open mounts a flow for the visitor and destination, resolving the visitor's
// identity with token. An existing flow for the same destination is reused;
// one for a different destination is unmounted first.
func (m *Manager) Open(ctx context.Context, visitorID, destinationID, token string) (*Flow, error) {
	m.mu.Lock()
	if f, ok := m.flows[visitorID]; ok {
		if f.Destination.ID == destinationID {
			f.lastSeen = m.now()
			m.mu.Unlock()
			return f, nil
		}
		m.removeLocked(visitorID)
	}
	m.mu.Unlock()

	dest, err := m.deps.Destinations.GetDestination(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("open booking flow: %w", err)
	}
	if dest.Currency == "" {
		dest.Currency = m.deps.DefaultCurrency
	}

	f := m.build(visitorID, *dest)
	f.Identity.Resolve(ctx, token)

	m.mu.Lock()
	if prev, ok := m.flows[visitorID]; ok {
		// Lost a race with a concurrent Open.
		prev.close()
	}
	f.lastSeen = m.now()
	m.flows[visitorID] = f
	m.publishLocked()
	m.mu.Unlock()

	m.deps.Logger.Info("booking flow opened", zap.String("visitorID", visitorID), zap.String("destinationID", dest.ID))
	return f, nil
}

func (m *Manager) build(visitorID string, dest models.Destination) *Flow {
	holder := form.NewHolder(dest.Price, dest.Currency)
	resolver := identity.NewResolver(m.deps.Sessions, m.deps.Metrics, m.deps.Logger)

	var notifier notification.Notifier
	if m.deps.Notifier != nil {
		notifier = m.deps.Notifier
	}
	coord := booking.NewCoordinator(booking.Config{
		VisitorID:     visitorID,
		Destination:   dest,
		Form:          holder,
		Identity:      resolver,
		Intents:       m.deps.Intents,
		Gateway:       m.deps.Gateway,
		Notifier:      notifier,
		Progress:      m.deps.Progress,
		Metrics:       m.deps.Metrics,
		Logger:        m.deps.Logger,
		DisplayWindow: m.deps.DisplayWindow,
	})

	return &Flow{
		VisitorID:   visitorID,
		Destination: dest,
		Form:        holder,
		Identity:    resolver,
		Coordinator: coord,
		unsubscribe: resolver.Subscribe(coord.HandleIdentity),
	}
}

// Get returns the visitor's flow and marks it as recently used.
func (m *Manager) Get(visitorID string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flows[visitorID]
	if !ok {
		return nil, ErrFlowNotFound
	}
	f.lastSeen = m.now()
	return f, nil
}

// Close unmounts the visitor's flow.
func (m *Manager) Close(visitorID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flows[visitorID]; !ok {
		return false
	}
	m.removeLocked(visitorID)
	return true
}

func (m *Manager) removeLocked(visitorID string) {
	f := m.flows[visitorID]
	delete(m.flows, visitorID)
	f.close()
	if m.deps.Notifier != nil {
		m.deps.Notifier.Forget(visitorID)
	}
	m.publishLocked()
}

// Len returns the number of mounted flows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// Sweep unmounts flows idle for longer than the idle timeout and returns how many it removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.idle)
	n := 0
	for id, f := range m.flows {
		if f.lastSeen.Before(cutoff) {
			m.removeLocked(id)
			n++
		}
	}
	if n > 0 {
		m.deps.Logger.Debug("evicted idle booking flows", zap.Int("count", n))
	}
	return n
}

// StartJanitor sweeps idle flows every interval until Shutdown.
func (m *Manager) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stop:
				return
			}
		}
	}()
}

// Shutdown stops the janitor and unmounts every flow.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.flows {
		m.removeLocked(id)
	}
}

func (m *Manager) publishLocked() {
	if m.deps.Metrics != nil {
		m.deps.Metrics.ActiveFlows.Set(float64(len(m.flows)))
	}
}
