// Package booking coordinates a visitor's booking submission. A submit made
// while the visitor is anonymous is parked as a pending intent, an
// authentication prompt is requested, and the parked draft is sent exactly
// once when the identity resolver reports that the visitor signed in.
package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"tripdesk/metrics"
	"tripdesk/models"
	"tripdesk/services/api"
	"tripdesk/services/form"
	"tripdesk/services/identity"
	"tripdesk/services/intent"
	"tripdesk/services/notification"
	"tripdesk/services/progress"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDisplayWindow = 10 * time.Second

	defaultSuccessMessage = "Your booking request has been sent"
	defaultFailureMessage = "We could not send your booking. Please try again."
	resumeFailureMessage  = "We could not resume your booking. Please submit it again."
	expiredIntentMessage  = "Your booking request expired while you were signing in. Please submit it again."
)

// Config wires a Coordinator to its collaborators.
type Config struct {
	VisitorID     string
	Destination   models.Destination
	Form          *form.Holder
	Identity      IdentityReader
	Intents       intent.Store
	Gateway       Gateway
	Notifier      notification.Notifier
	Progress      *progress.Tracker
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	DisplayWindow time.Duration
}

// Coordinator is the deferred submission state machine of one visitor.
type Coordinator struct {
	visitorID   string
	destination models.Destination
	form        *form.Holder
	identity    IdentityReader
	intents     intent.Store
	gateway     Gateway
	notifier    notification.Notifier
	progress    *progress.Tracker
	metrics     *metrics.Metrics
	logger      *zap.Logger
	window      time.Duration
	now         func() time.Time

	// ctx bounds gateway calls; it is cancelled when the flow unmounts.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	message string
	gen     uint64
	closed  bool
	timer   *time.Timer
}

func NewCoordinator(cfg Config) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		visitorID:   cfg.VisitorID,
		destination: cfg.Destination,
		form:        cfg.Form,
		identity:    cfg.Identity,
		intents:     cfg.Intents,
		gateway:     cfg.Gateway,
		notifier:    cfg.Notifier,
		progress:    cfg.Progress,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		window:      cfg.DisplayWindow,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		state:       StateIdle,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("visitorID", cfg.VisitorID), zap.String("destinationID", cfg.Destination.ID))
	if c.window <= 0 {
		c.window = DefaultDisplayWindow
	}
	if c.progress == nil {
		c.progress = &progress.Tracker{}
	}
	return c
}

// State returns the current state and the last notification text.
func (c *Coordinator) State() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomeLocked()
}

func (c *Coordinator) outcomeLocked() Outcome {
	out := Outcome{State: c.state, Message: c.message}
	if c.state == StateAwaitingAuth {
		out.AuthPrompt = &AuthPrompt{Mode: AuthModeLogin}
	}
	return out
}

// Submit handles the visitor pressing submit. Validation failures are returned
// as form.ValidationErrors; an upstream failure is not an error but a Failed outcome.
func (c *Coordinator) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, ErrFlowClosed
	}
	switch c.state {
	case StateSubmitting:
		out := c.outcomeLocked()
		c.mu.Unlock()
		return out, ErrSubmissionInFlight
	case StateSucceeded, StateFailed:
		c.toIdleLocked()
	}

	if err := c.form.Validate(); err != nil {
		out := c.outcomeLocked()
		c.mu.Unlock()
		return out, err
	}
	draft := c.form.Draft()
	who := c.identity.Current()

	if !who.Authenticated() {
		// Saved under the lock so an authentication event cannot slip in
		// between parking the intent and entering AwaitingAuth.
		in := models.SubmissionIntent{
			ID:            uuid.NewString(),
			VisitorID:     c.visitorID,
			DestinationID: c.destination.ID,
			Draft:         draft,
			CreatedAt:     c.now(),
		}
		if err := c.intents.Save(ctx, in); err != nil {
			c.mu.Unlock()
			return Outcome{State: c.state}, err
		}
		c.state = StateAwaitingAuth
		c.message = ""
		out := c.outcomeLocked()
		c.mu.Unlock()

		if c.metrics != nil {
			c.metrics.Deferred.Inc()
		}
		c.logger.Info("booking deferred until authentication", zap.String("intentID", in.ID), zap.String("identity", string(who.Status)))
		return out, nil
	}

	if c.state == StateAwaitingAuth {
		// Signed in some other way; this submit supersedes the parked draft.
		if err := c.intents.Discard(ctx, c.visitorID); err != nil {
			c.logger.Warn("failed to discard superseded intent", zap.Error(err))
		}
	}
	gen := c.beginSubmitLocked()
	c.mu.Unlock()

	return c.send(gen, draft, who.Profile, uuid.NewString()), nil
}

// HandleIdentity is subscribed to the identity resolver.
func (c *Coordinator) HandleIdentity(ctx context.Context, ev identity.Event) {
	switch ev.Kind {
	case identity.EventAuthenticated:
		if !c.stillSignedIn(ev.Profile) {
			c.logger.Info("ignoring stale authentication event")
			return
		}
		c.form.ApplyProfile(ev.Profile)
		c.resume(ctx, ev.Profile)
	case identity.EventSignedOut:
		if c.identity.Current().Authenticated() {
			c.logger.Info("ignoring stale sign-out event")
			return
		}
		c.form.ApplyProfile(nil)
		if c.form.Dirty() {
			c.logger.Info("identity lost with unsaved edits, resetting form")
			c.form.Reset()
		}
	}
}

// resume replays the parked intent. The atomic Take is what keeps a repeated
// authentication event from firing a second submission.
func (c *Coordinator) resume(ctx context.Context, profile *models.Profile) {
	c.mu.Lock()
	if c.closed || c.state != StateAwaitingAuth {
		c.mu.Unlock()
		return
	}
	// Events can arrive out of order when resolutions overlap; the resolver's
	// current snapshot is the one that counts.
	if !c.stillSignedIn(profile) {
		c.mu.Unlock()
		c.logger.Info("identity changed before resume, keeping intent parked")
		return
	}
	in, err := c.intents.Take(ctx, c.visitorID)
	if err != nil {
		if errors.Is(err, intent.ErrIntentNotFound) {
			c.logger.Warn("pending intent expired before authentication")
			c.state = StateFailed
			c.message = expiredIntentMessage
			c.notify(models.ToastError, c.message)
		} else {
			c.logger.Error("failed to load pending intent", zap.Error(err))
			c.state = StateFailed
			c.message = resumeFailureMessage
			c.notify(models.ToastError, c.message)
		}
		c.mu.Unlock()
		return
	}
	gen := c.beginSubmitLocked()
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Replays.Inc()
	}
	c.logger.Info("resuming deferred booking", zap.String("intentID", in.ID), zap.String("userID", profile.ID))
	c.send(gen, in.Draft, profile, in.ID)
}

// stillSignedIn reports whether the resolver currently holds profile's account.
func (c *Coordinator) stillSignedIn(profile *models.Profile) bool {
	if profile == nil {
		return false
	}
	cur := c.identity.Current()
	return cur.Authenticated() && cur.Profile.ID == profile.ID
}

// DismissAuth handles the visitor closing the authentication prompt.
// The parked intent is dropped; repeated calls do nothing.
func (c *Coordinator) DismissAuth(ctx context.Context) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAwaitingAuth {
		return c.outcomeLocked()
	}
	if err := c.intents.Discard(ctx, c.visitorID); err != nil {
		c.logger.Warn("failed to discard dismissed intent", zap.Error(err))
	}
	c.state = StateIdle
	if c.metrics != nil {
		c.metrics.AuthDismissed.Inc()
	}
	c.logger.Info("authentication prompt dismissed")
	return c.outcomeLocked()
}

// Acknowledge dismisses the success or failure notification.
func (c *Coordinator) Acknowledge() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSucceeded || c.state == StateFailed {
		c.toIdleLocked()
	}
	return c.outcomeLocked()
}

// Close unmounts the flow. In-flight submissions are abandoned and their
// results ignored; a parked intent is dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	c.cancel()
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.state == StateAwaitingAuth {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.intents.Discard(ctx, c.visitorID); err != nil {
			c.logger.Warn("failed to discard intent on close", zap.Error(err))
		}
	}
}

func (c *Coordinator) beginSubmitLocked() uint64 {
	c.gen++
	c.state = StateSubmitting
	c.message = ""
	if c.timer != nil {
		c.timer.Stop()
	}
	return c.gen
}

func (c *Coordinator) toIdleLocked() {
	c.state = StateIdle
	c.message = ""
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) send(gen uint64, draft models.BookingDraft, profile *models.Profile, key string) Outcome {
	var res *models.BookingResult
	var err error
	if profile == nil || profile.ID == "" {
		err = ErrNoProfile
	} else {
		c.progress.Start()
		start := c.now()
		res, err = c.gateway.Submit(c.ctx, SubmitRequest{
			Draft:          draft,
			ProfileID:      profile.ID,
			Destination:    c.destination,
			IdempotencyKey: key,
		})
		c.progress.Done()
		if c.metrics != nil {
			c.metrics.GatewayLatency.Observe(c.now().Sub(start).Seconds())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		c.logger.Debug("ignoring result of abandoned submission")
		return c.outcomeLocked()
	}

	if err != nil {
		c.state = StateFailed
		c.message = failureMessage(err)
		c.notify(models.ToastError, c.message)
		c.observe("failed")
		c.logger.Warn("booking submission failed", zap.Error(err))
		return c.outcomeLocked()
	}

	c.state = StateSucceeded
	c.message = res.Message
	if c.message == "" {
		c.message = defaultSuccessMessage
	}
	c.notify(models.ToastSuccess, c.message)
	c.observe("succeeded")
	c.form.Reset()
	c.timer = time.AfterFunc(c.window, func() { c.expireSuccess(gen) })
	c.logger.Info("booking submitted", zap.String("userID", profile.ID))
	return c.outcomeLocked()
}

func (c *Coordinator) expireSuccess(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen || c.state != StateSucceeded {
		return
	}
	c.toIdleLocked()
}

func (c *Coordinator) notify(kind models.ToastKind, msg string) {
	if c.notifier == nil {
		return
	}
	if kind == models.ToastSuccess {
		c.notifier.Success(c.visitorID, msg)
		return
	}
	c.notifier.Error(c.visitorID, msg)
}

func (c *Coordinator) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}

func failureMessage(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" && se.Code < 500 {
		return se.Message
	}
	return defaultFailureMessage
}
