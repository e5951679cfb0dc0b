// Package form holds the booking form state: typed field values, per-field
// validation results and the derived total price.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripdesk/models"
)

var (
	ErrUnknownField  = errors.New("unknown booking field")
	ErrReadOnlyField = errors.New("field is read-only")
	ErrInvalidValue  = errors.New("invalid field value")
)

// Holder is safe for concurrent use.
type Holder struct {
	mu        sync.Mutex
	draft     models.BookingDraft
	errors    ValidationErrors
	dirty     bool
	unitPrice float64
	currency  string
	profile   *models.Profile
}

// NewHolder returns a holder with default values priced at unitPrice per traveler.
func NewHolder(unitPrice float64, currency string) *Holder {
	return &Holder{
		draft:     models.NewBookingDraft(),
		errors:    ValidationErrors{},
		unitPrice: unitPrice,
		currency:  currency,
	}
}

// SetField updates one field from its raw form input and revalidates only that field.
// Changing the start date also revalidates the end date, whose rule depends on it.
func (h *Holder) SetField(name models.BookingField, raw string) error {
	if !name.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if name == models.FieldEmail {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	raw = strings.TrimSpace(raw)
	switch name {
	case models.FieldFullName:
		h.draft.FullName = raw
	case models.FieldPhone:
		h.draft.Phone = raw
	case models.FieldStartDate:
		t, err := parseDate(raw)
		if err != nil {
			h.errors[name] = "Invalid date"
			return err
		}
		h.draft.StartDate = t
	case models.FieldEndDate:
		t, err := parseDate(raw)
		if err != nil {
			h.errors[name] = "Invalid date"
			return err
		}
		h.draft.EndDate = t
	case models.FieldNumberOfTravelers:
		h.draft.NumberOfTravelers = ParseTravelers(raw)
	case models.FieldSpecialRequests:
		h.draft.SpecialRequests = raw
	case models.FieldPaymentStatus:
		h.draft.PaymentStatus = models.PaymentStatus(strings.ToUpper(raw))
	}
	h.dirty = true

	fields := []models.BookingField{name}
	if name == models.FieldStartDate {
		fields = append(fields, models.FieldEndDate)
	}
	for _, f := range fields {
		delete(h.errors, f)
	}
	// An unset end date is only reported by a full Validate.
	for f, msg := range validateFields(h.draft, fields...) {
		if f == models.FieldEndDate && name == models.FieldStartDate && h.draft.EndDate.IsZero() {
			continue
		}
		h.errors[f] = msg
	}
	return nil
}

// ParseTravelers coerces raw input to an integer of at least one.
func ParseTravelers(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidValue, raw)
		}
		y, m, d := t.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return t, nil
}

// Validate checks every field and replaces the stored errors. It returns nil when the form is valid.
func (h *Holder) Validate() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	errs := validateFields(h.draft)
	if errs == nil {
		h.errors = ValidationErrors{}
		return nil
	}
	h.errors = errs
	return errs
}

// Errors returns a copy of the current per-field errors.
func (h *Holder) Errors() ValidationErrors {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(ValidationErrors, len(h.errors))
	for k, v := range h.errors {
		out[k] = v
	}
	return out
}

// Draft returns a copy of the current values.
func (h *Holder) Draft() models.BookingDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.draft
}

// Dirty reports whether the visitor has edited any field since the last reset.
func (h *Holder) Dirty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dirty
}

// TotalPrice is the unit price multiplied by the number of travelers.
func (h *Holder) TotalPrice() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return TotalPrice(h.unitPrice, h.draft.NumberOfTravelers)
}

// TotalPrice computes the price of a trip for the given traveler count.
func TotalPrice(unitPrice float64, travelers int) float64 {
	if travelers < 1 {
		travelers = 1
	}
	return unitPrice * float64(travelers)
}

func (h *Holder) UnitPrice() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unitPrice
}

func (h *Holder) Currency() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currency
}

// SetUnitPrice changes the per-traveler price, for example when the destination reloads.
func (h *Holder) SetUnitPrice(price float64, currency string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unitPrice = price
	if currency != "" {
		h.currency = currency
	}
}

// ApplyProfile fills the identity-owned fields. A nil profile clears the email.
func (h *Holder) ApplyProfile(p *models.Profile) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.applyProfileLocked(p)
}

func (h *Holder) applyProfileLocked(p *models.Profile) {
	h.profile = p
	if p == nil {
		h.draft.Email = ""
		return
	}
	h.draft.Email = p.Email
	if h.draft.FullName == "" {
		h.draft.FullName = p.Name
	}
}

// Reset restores the defaults, keeping the identity-owned fields of the current profile.
func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draft = models.NewBookingDraft()
	h.errors = ValidationErrors{}
	h.dirty = false
	h.applyProfileLocked(h.profile)
}
