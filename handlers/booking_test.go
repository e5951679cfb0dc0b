package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tripdesk/middleware"
	"tripdesk/models"
	"tripdesk/services/api"
	"tripdesk/services/booking"
	"tripdesk/services/flow"
	"tripdesk/services/intent"
	"tripdesk/services/notification"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const visitor = "7f1c8a52-3b7e-4f7e-9d53-0f3a2b1c4d5e"

type fakeAPI struct {
	mu       sync.Mutex
	sessions map[string]*models.Profile
	bookings []models.BookingPayload
}

func (f *fakeAPI) CurrentUser(_ context.Context, token string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[token], nil
}

func (f *fakeAPI) GetDestination(_ context.Context, id string) (*models.Destination, error) {
	if id != "kigali" {
		return nil, &api.StatusError{Code: http.StatusNotFound, Message: "not found"}
	}
	return &models.Destination{ID: "kigali", Name: "Kigali", Price: 120}, nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, p models.BookingPayload, _ string) (*models.BookingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = append(f.bookings, p)
	return &models.BookingResult{OK: true, Message: "Booking received"}, nil
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeAPI) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := &fakeAPI{sessions: map[string]*models.Profile{
		"good-token": {ID: "user-1", Name: "Ada", Email: "ada@example.com"},
	}}
	notifier := notification.NewFlashNotifier(nil)
	flows := flow.NewManager(flow.Deps{
		Destinations:    fake,
		Sessions:        fake,
		Intents:         intent.NewMemoryStore(time.Hour),
		Gateway:         &booking.SubmissionGateway{API: fake, DefaultCurrency: "USD"},
		Notifier:        notifier,
		DefaultCurrency: "USD",
	}, time.Hour)
	t.Cleanup(flows.Shutdown)

	hb := NewHandlerBundle(NewBookingHandler(flows, fake, notifier, nil))
	r := gin.New()
	g := r.Group("/api", middleware.VisitorMiddleware("visitor_id", false))
	g.GET("/identity", hb.GetIdentity)
	g.GET("/booking", hb.GetFlow)
	g.DELETE("/booking", hb.CloseFlow)
	g.POST("/booking/:destinationID/open", hb.OpenFlow)
	g.PATCH("/booking/fields", hb.SetField)
	g.POST("/booking/submit", hb.Submit)
	g.POST("/booking/ack", hb.Acknowledge)
	g.POST("/booking/auth/success", hb.AuthSuccess)
	g.POST("/booking/auth/dismiss", hb.AuthDismiss)
	return r, fake
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "visitor_id", Value: visitor})
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) FlowView {
	t.Helper()
	var v FlowView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func fillForm(t *testing.T, r *gin.Engine) {
	t.Helper()
	for _, f := range []SetFieldRequest{
		{Name: models.FieldPhone, Value: "+250700000000"},
		{Name: models.FieldStartDate, Value: "2025-06-01"},
		{Name: models.FieldEndDate, Value: "2025-06-05"},
		{Name: models.FieldNumberOfTravelers, Value: 2},
	} {
		w := do(t, r, http.MethodPatch, "/api/booking/fields", f, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
}

func TestOpenUnknownDestination(t *testing.T) {
	r, _ := setupRouter(t)
	w := do(t, r, http.MethodPost, "/api/booking/atlantis/open", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFlowWithoutOpen(t *testing.T) {
	r, _ := setupRouter(t)
	w := do(t, r, http.MethodGet, "/api/booking", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVisitorCookieIssued(t *testing.T) {
	r, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/identity", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "visitor_id", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestSetFieldUpdatesTotalAndErrors(t *testing.T) {
	r, _ := setupRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/booking/kigali/open", nil, "").Code)

	w := do(t, r, http.MethodPatch, "/api/booking/fields", SetFieldRequest{Name: models.FieldNumberOfTravelers, Value: "3"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, 360.0, v.TotalPrice)
	assert.Equal(t, "USD", v.Currency)

	w = do(t, r, http.MethodPatch, "/api/booking/fields", SetFieldRequest{Name: models.FieldPhone, Value: ""}, "")
	v = decodeView(t, w)
	assert.Equal(t, "Phone number is required", v.Errors["phone"])

	w = do(t, r, http.MethodPatch, "/api/booking/fields", SetFieldRequest{Name: "nickname", Value: "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/api/booking/fields", SetFieldRequest{Name: models.FieldEmail, Value: "x@y.z"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitInvalidFormReturnsFieldErrors(t *testing.T) {
	r, _ := setupRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/booking/kigali/open", nil, "").Code)

	w := do(t, r, http.MethodPost, "/api/booking/submit", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "phone")
	assert.Contains(t, body.Fields, "startDate")
}

func TestAnonymousSubmitThenSignIn(t *testing.T) {
	r, fake := setupRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/booking/kigali/open", nil, "").Code)
	fillForm(t, r)

	w := do(t, r, http.MethodPost, "/api/booking/submit", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, booking.StateAwaitingAuth, v.State)
	require.NotNil(t, v.AuthPrompt)
	assert.Equal(t, booking.AuthModeLogin, v.AuthPrompt.Mode)
	assert.Equal(t, 0, fake.count())

	w = do(t, r, http.MethodPost, "/api/booking/auth/success", nil, "good-token")
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, booking.StateSucceeded, v.State)
	assert.Equal(t, models.IdentityAuthenticated, v.Identity.Status)
	require.NotNil(t, v.Toast)
	assert.Equal(t, models.ToastSuccess, v.Toast.Kind)
	require.Equal(t, 1, fake.count())
	assert.Equal(t, "user-1", fake.bookings[0].UserID)
	assert.Equal(t, 240.0, fake.bookings[0].TotalPrice)

	// A repeated callback does not resend.
	do(t, r, http.MethodPost, "/api/booking/auth/success", authSuccessRequest{Token: "good-token"}, "")
	assert.Equal(t, 1, fake.count())

	w = do(t, r, http.MethodPost, "/api/booking/ack", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StateIdle, decodeView(t, w).State)
}

func TestDismissDropsPendingBooking(t *testing.T) {
	r, fake := setupRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/booking/kigali/open", nil, "").Code)
	fillForm(t, r)
	do(t, r, http.MethodPost, "/api/booking/submit", nil, "")

	w := do(t, r, http.MethodPost, "/api/booking/auth/dismiss", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.StateIdle, decodeView(t, w).State)

	do(t, r, http.MethodPost, "/api/booking/auth/success", nil, "good-token")
	assert.Equal(t, 0, fake.count())
}

func TestIdentityEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/identity", nil, "")
	var snap models.IdentitySnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.IdentityAnonymous, snap.Status)

	w = do(t, r, http.MethodGet, "/api/identity", nil, "good-token")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.IdentityAuthenticated, snap.Status)
	assert.Equal(t, "user-1", snap.Profile.ID)
}

func TestCloseFlow(t *testing.T) {
	r, _ := setupRouter(t)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/booking/kigali/open", nil, "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, r, http.MethodDelete, "/api/booking", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/booking", nil, "").Code)
}
