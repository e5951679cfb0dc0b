package form

import (
	"errors"
	"testing"

	"tripdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillValid(t *testing.T, h *Holder) {
	t.Helper()
	require.NoError(t, h.SetField(models.FieldPhone, "+250700000000"))
	require.NoError(t, h.SetField(models.FieldStartDate, "2025-06-01"))
	require.NoError(t, h.SetField(models.FieldEndDate, "2025-06-05"))
	require.NoError(t, h.SetField(models.FieldNumberOfTravelers, "2"))
}

func TestTotalPriceFollowsTravelers(t *testing.T) {
	h := NewHolder(100, "USD")
	assert.Equal(t, 100.0, h.TotalPrice())

	for travelers, want := range map[string]float64{"1": 100, "3": 300, "10": 1000} {
		require.NoError(t, h.SetField(models.FieldNumberOfTravelers, travelers))
		assert.Equal(t, want, h.TotalPrice(), "travelers=%s", travelers)
	}

	h.SetUnitPrice(250, "")
	assert.Equal(t, 2500.0, h.TotalPrice())
	assert.Equal(t, "USD", h.Currency())
}

func TestTravelersFallBackToOne(t *testing.T) {
	for _, raw := range []string{"", "0", "-4", "abc", "2.5"} {
		assert.Equal(t, 1, ParseTravelers(raw), "raw=%q", raw)
	}
	assert.Equal(t, 7, ParseTravelers(" 7 "))
}

func TestPhoneRequired(t *testing.T) {
	h := NewHolder(100, "USD")
	require.NoError(t, h.SetField(models.FieldPhone, "   "))
	assert.Equal(t, "Phone number is required", h.Errors()[models.FieldPhone])

	require.NoError(t, h.SetField(models.FieldPhone, "+250700000000"))
	assert.NotContains(t, h.Errors(), models.FieldPhone)
}

func TestSetFieldOnlyValidatesThatField(t *testing.T) {
	h := NewHolder(100, "USD")
	require.NoError(t, h.SetField(models.FieldSpecialRequests, "window seat"))
	assert.Empty(t, h.Errors())
}

func TestEndDateBoundary(t *testing.T) {
	h := NewHolder(100, "USD")
	require.NoError(t, h.SetField(models.FieldStartDate, "2025-06-05"))

	require.NoError(t, h.SetField(models.FieldEndDate, "2025-06-04"))
	assert.Equal(t, "End date cannot be before start date", h.Errors()[models.FieldEndDate])

	require.NoError(t, h.SetField(models.FieldEndDate, "2025-06-05"))
	assert.NotContains(t, h.Errors(), models.FieldEndDate)
}

func TestStartDateChangeRevalidatesEndDate(t *testing.T) {
	h := NewHolder(100, "USD")
	require.NoError(t, h.SetField(models.FieldStartDate, "2025-06-01"))
	require.NoError(t, h.SetField(models.FieldEndDate, "2025-06-03"))
	assert.Empty(t, h.Errors())

	require.NoError(t, h.SetField(models.FieldStartDate, "2025-06-10"))
	assert.Contains(t, h.Errors(), models.FieldEndDate)
}

func TestNoOrderingErrorWhileEndDateUnset(t *testing.T) {
	h := NewHolder(100, "USD")
	require.NoError(t, h.SetField(models.FieldStartDate, "2025-06-01"))
	assert.Empty(t, h.Errors())
}

func TestInvalidDateInput(t *testing.T) {
	h := NewHolder(100, "USD")
	err := h.SetField(models.FieldStartDate, "June 1st")
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, "Invalid date", h.Errors()[models.FieldStartDate])
}

func TestValidateReportsAllRequiredFields(t *testing.T) {
	h := NewHolder(100, "USD")
	err := h.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, models.FieldPhone)
	assert.Contains(t, verrs, models.FieldStartDate)
	assert.Contains(t, verrs, models.FieldEndDate)

	fillValid(t, h)
	assert.NoError(t, h.Validate())
	assert.Empty(t, h.Errors())
}

func TestEmailIsReadOnly(t *testing.T) {
	h := NewHolder(100, "USD")
	assert.ErrorIs(t, h.SetField(models.FieldEmail, "x@example.com"), ErrReadOnlyField)
	assert.ErrorIs(t, h.SetField(models.BookingField("nickname"), "x"), ErrUnknownField)

	h.ApplyProfile(&models.Profile{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	d := h.Draft()
	assert.Equal(t, "ada@example.com", d.Email)
	assert.Equal(t, "Ada", d.FullName)
}

func TestResetKeepsProfileEmail(t *testing.T) {
	h := NewHolder(100, "USD")
	h.ApplyProfile(&models.Profile{ID: "u1", Name: "Ada", Email: "ada@example.com"})
	fillValid(t, h)
	assert.True(t, h.Dirty())

	h.Reset()
	d := h.Draft()
	assert.False(t, h.Dirty())
	assert.Empty(t, d.Phone)
	assert.True(t, d.StartDate.IsZero())
	assert.Equal(t, 1, d.NumberOfTravelers)
	assert.Equal(t, "ada@example.com", d.Email)

	h.ApplyProfile(nil)
	h.Reset()
	assert.Empty(t, h.Draft().Email)
}
