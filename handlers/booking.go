package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tripdesk/metrics"
	"tripdesk/middleware"
	"tripdesk/models"
	"tripdesk/services/api"
	"tripdesk/services/booking"
	"tripdesk/services/flow"
	"tripdesk/services/form"
	"tripdesk/services/identity"
	"tripdesk/services/notification"
	"tripdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes a visitor's booking flow over HTTP.
type BookingHandler struct {
	Flows    *flow.Manager
	Sessions identity.SessionSource
	Notifier *notification.FlashNotifier
	Metrics  *metrics.Metrics
}

func NewBookingHandler(flows *flow.Manager, sessions identity.SessionSource, notifier *notification.FlashNotifier, m *metrics.Metrics) *BookingHandler {
	return &BookingHandler{
		Flows:    flows,
		Sessions: sessions,
		Notifier: notifier,
		Metrics:  m,
	}
}

// draftView renders form dates as YYYY-MM-DD, empty when unset.
type draftView struct {
	FullName          string               `json:"fullName"`
	Email             string               `json:"email"`
	Phone             string               `json:"phone"`
	StartDate         string               `json:"startDate"`
	EndDate           string               `json:"endDate"`
	NumberOfTravelers int                  `json:"numberOfTravelers"`
	SpecialRequests   string               `json:"specialRequests"`
	PaymentStatus     models.PaymentStatus `json:"paymentStatus"`
}

// FlowView is the client facing snapshot of a booking flow.
type FlowView struct {
	booking.Outcome
	Destination models.Destination      `json:"destination"`
	Identity    models.IdentitySnapshot `json:"identity"`
	Draft       draftView               `json:"draft"`
	Errors      map[string]string       `json:"errors"`
	TotalPrice  float64                 `json:"totalPrice"`
	Currency    string                  `json:"currency"`
	Toast       *models.Toast           `json:"toast,omitempty"`
}

func (h *BookingHandler) view(f *flow.Flow, out booking.Outcome) FlowView {
	d := f.Form.Draft()
	v := FlowView{
		Outcome:     out,
		Destination: f.Destination,
		Identity:    f.Identity.Current(),
		Draft: draftView{
			FullName:          d.FullName,
			Email:             d.Email,
			Phone:             d.Phone,
			StartDate:         formatDate(d.StartDate),
			EndDate:           formatDate(d.EndDate),
			NumberOfTravelers: d.NumberOfTravelers,
			SpecialRequests:   d.SpecialRequests,
			PaymentStatus:     d.PaymentStatus,
		},
		Errors:     f.Form.Errors().Strings(),
		TotalPrice: f.Form.TotalPrice(),
		Currency:   f.Form.Currency(),
	}
	if h.Notifier != nil {
		v.Toast = h.Notifier.Drain(f.VisitorID)
	}
	return v
}

// currentFlow loads the visitor's flow or writes a 404.
func (h *BookingHandler) currentFlow(c *gin.Context) (*flow.Flow, bool) {
	f, err := h.Flows.Get(middleware.VisitorID(c))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "No booking in progress", "open a destination first")
		return nil, false
	}
	return f, true
}

// OpenFlow mounts the booking form for a destination.
func (h *BookingHandler) OpenFlow(c *gin.Context) {
	logger := getLogger(c)
	destinationID := c.Param("destinationID")
	if destinationID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Destination is required", "")
		return
	}

	token := utils.BearerToken(c.GetHeader("Authorization"))
	f, err := h.Flows.Open(c.Request.Context(), middleware.VisitorID(c), destinationID, token)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.NotFound() {
			utils.JSONError(c, http.StatusNotFound, "Destination not found", destinationID)
			return
		}
		logger.Error("Failed to open booking flow", zap.String("destinationID", destinationID), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Could not load destination", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.view(f, f.Coordinator.State()))
}

// SetFieldRequest carries one raw form input. Value may be a JSON string or number.
type SetFieldRequest struct {
	Name  models.BookingField `json:"name" binding:"required"`
	Value any                 `json:"value"`
}

// SetField updates a single form field.
func (h *BookingHandler) SetField(c *gin.Context) {
	f, ok := h.currentFlow(c)
	if !ok {
		return
	}
	var req SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	raw, err := rawValue(req.Value)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	if err := f.Form.SetField(req.Name, raw); err != nil {
		switch {
		case errors.Is(err, form.ErrUnknownField):
			utils.JSONError(c, http.StatusBadRequest, "Unknown field", string(req.Name))
			return
		case errors.Is(err, form.ErrReadOnlyField):
			utils.JSONError(c, http.StatusForbidden, "Field cannot be edited", string(req.Name))
			return
		case errors.Is(err, form.ErrInvalidValue):
			// The field error is recorded on the form and shown in the view.
		default:
			getLogger(c).Error("Failed to set booking field", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Failed to update field", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, h.view(f, f.Coordinator.State()))
}

// Submit handles the visitor pressing submit.
func (h *BookingHandler) Submit(c *gin.Context) {
	f, ok := h.currentFlow(c)
	if !ok {
		return
	}
	out, err := f.Coordinator.Submit(c.Request.Context())
	if err != nil {
		var verrs form.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			utils.JSONFieldErrors(c, "Please correct the highlighted fields", verrs.Strings())
		case errors.Is(err, booking.ErrSubmissionInFlight):
			utils.JSONError(c, http.StatusConflict, "A booking is already being sent", "")
		case errors.Is(err, booking.ErrFlowClosed):
			utils.JSONError(c, http.StatusNotFound, "No booking in progress", "")
		default:
			getLogger(c).Error("Failed to submit booking", zap.Error(err))
			utils.JSONError(c, http.StatusServiceUnavailable, "Could not submit booking", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, h.view(f, out))
}

type authSuccessRequest struct {
	Token string `json:"token"`
}

// AuthSuccess is called when the authentication prompt reports a sign in.
// The identity is refetched with the new credentials; the coordinator replays
// the parked booking from the resulting authenticated event.
func (h *BookingHandler) AuthSuccess(c *gin.Context) {
	f, ok := h.currentFlow(c)
	if !ok {
		return
	}
	token := utils.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		var req authSuccessRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.Token
		}
	}
	snap := f.Identity.Resolve(c.Request.Context(), token)
	if !snap.Authenticated() {
		getLogger(c).Warn("Sign in reported but session is not authenticated", zap.String("status", string(snap.Status)))
	}
	c.JSON(http.StatusOK, h.view(f, f.Coordinator.State()))
}

// AuthDismiss is called when the visitor closes the authentication prompt.
func (h *BookingHandler) AuthDismiss(c *gin.Context) {
	f, ok := h.currentFlow(c)
	if !ok {
		return
	}
	out := f.Coordinator.DismissAuth(c.Request.Context())
	c.JSON(http.StatusOK, h.view(f, out))
}

// Acknowledge clears the success or failure banner.
func (h *BookingHandler) Acknowledge(c *gin.Context) {
	f, ok := h.currentFlow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.view(f, f.Coordinator.Acknowledge()))
}

// GetFlow returns the current flow view.
func (h *BookingHandler) GetFlow(c *gin.Context) {
	f, ok := h.currentFlow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.view(f, f.Coordinator.State()))
}

// CloseFlow unmounts the visitor's booking form.
func (h *BookingHandler) CloseFlow(c *gin.Context) {
	if !h.Flows.Close(middleware.VisitorID(c)) {
		utils.JSONError(c, http.StatusNotFound, "No booking in progress", "")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetIdentity reports who the visitor is. A mounted flow answers from its
// resolver; otherwise the session is queried with the request's bearer token.
func (h *BookingHandler) GetIdentity(c *gin.Context) {
	if f, err := h.Flows.Get(middleware.VisitorID(c)); err == nil {
		c.JSON(http.StatusOK, f.Identity.Current())
		return
	}
	r := identity.NewResolver(h.Sessions, h.Metrics, getLogger(c))
	c.JSON(http.StatusOK, r.Resolve(c.Request.Context(), utils.BearerToken(c.GetHeader("Authorization"))))
}

func rawValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}
