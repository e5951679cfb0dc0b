package notification

import (
	"sync"
	"time"

	"tripdesk/models"

	"go.uber.org/zap"
)

// Notifier shows transient messages to a visitor.
type Notifier interface {
	Success(visitorID, message string)
	Error(visitorID, message string)
}

// FlashNotifier keeps the latest toast per visitor until the client drains it.
type FlashNotifier struct {
	mu     sync.Mutex
	toasts map[string]models.Toast
	logger *zap.Logger
	now    func() time.Time
}

func NewFlashNotifier(logger *zap.Logger) *FlashNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlashNotifier{
		toasts: make(map[string]models.Toast),
		logger: logger,
		now:    time.Now,
	}
}

func (n *FlashNotifier) Success(visitorID, message string) {
	n.push(visitorID, models.ToastSuccess, message)
}

func (n *FlashNotifier) Error(visitorID, message string) {
	n.push(visitorID, models.ToastError, message)
}

func (n *FlashNotifier) push(visitorID string, kind models.ToastKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts[visitorID] = models.Toast{Kind: kind, Message: message, CreatedAt: n.now()}
	n.logger.Debug("toast", zap.String("visitorID", visitorID), zap.String("kind", string(kind)), zap.String("message", message))
}

// Drain returns and clears the visitor's pending toast.
func (n *FlashNotifier) Drain(visitorID string) *models.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.toasts[visitorID]
	if !ok {
		return nil
	}
	delete(n.toasts, visitorID)
	return &t
}

// Forget drops anything pending for the visitor.
func (n *FlashNotifier) Forget(visitorID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.toasts, visitorID)
}
