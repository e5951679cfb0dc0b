package models

import "time"

// BookingField names one field of the booking form.
type BookingField string

const (
	FieldFullName          BookingField = "fullName"
	FieldEmail             BookingField = "email"
	FieldPhone             BookingField = "phone"
	FieldStartDate         BookingField = "startDate"
	FieldEndDate           BookingField = "endDate"
	FieldNumberOfTravelers BookingField = "numberOfTravelers"
	FieldSpecialRequests   BookingField = "specialRequests"
	FieldPaymentStatus     BookingField = "paymentStatus"
)

// BookingFields lists every form field in display order.
var BookingFields = []BookingField{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldStartDate,
	FieldEndDate,
	FieldNumberOfTravelers,
	FieldSpecialRequests,
	FieldPaymentStatus,
}

// StructField returns the Go field name backing a form field.
func (f BookingField) StructField() string {
	switch f {
	case FieldFullName:
		return "FullName"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	case FieldStartDate:
		return "StartDate"
	case FieldEndDate:
		return "EndDate"
	case FieldNumberOfTravelers:
		return "NumberOfTravelers"
	case FieldSpecialRequests:
		return "SpecialRequests"
	case FieldPaymentStatus:
		return "PaymentStatus"
	}
	return ""
}

// Valid reports whether f is a known form field.
func (f BookingField) Valid() bool {
	return f.StructField() != ""
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentDeposit PaymentStatus = "DEPOSIT"
	PaymentPaid    PaymentStatus = "PAID"
)

// DateLayout is the wire format for form dates.
const DateLayout = "2006-01-02"

// BookingDraft is the in-progress set of values a visitor has entered into the booking form.
type BookingDraft struct {
	FullName          string        `json:"fullName" validate:"max=120"`
	Email             string        `json:"email" validate:"omitempty,email"`
	Phone             string        `json:"phone" validate:"required"`
	StartDate         time.Time     `json:"startDate" validate:"date_required"`
	EndDate           time.Time     `json:"endDate" validate:"date_required,date_not_before=StartDate"`
	NumberOfTravelers int           `json:"numberOfTravelers" validate:"min=1"`
	SpecialRequests   string        `json:"specialRequests" validate:"max=2000"`
	PaymentStatus     PaymentStatus `json:"paymentStatus" validate:"oneof=UNPAID DEPOSIT PAID"`
}

// NewBookingDraft returns a draft holding the form defaults.
func NewBookingDraft() BookingDraft {
	return BookingDraft{
		NumberOfTravelers: 1,
		PaymentStatus:     PaymentUnpaid,
	}
}
