package models

import "time"

const BookingStatusPending = "PENDING"

type PriceStatus string

const (
	PriceConfirmed PriceStatus = "CONFIRMED"
	PriceOnRequest PriceStatus = "ON_REQUEST"
)

// BookingPayload is the body of the upstream booking creation request.
type BookingPayload struct {
	UserID            string        `json:"userId"`
	DestinationID     string        `json:"destinationId"`
	StartDate         time.Time     `json:"startDate"`
	EndDate           time.Time     `json:"endDate"`
	TotalPrice        float64       `json:"totalPrice"`
	Currency          string        `json:"currency"`
	Status            string        `json:"status"`
	PriceStatus       PriceStatus   `json:"priceStatus"`
	NumberOfTravelers int           `json:"numberOfTravelers"`
	SpecialRequests   string        `json:"specialRequests,omitempty"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
}

// BookingResult is the upstream reply to a booking creation.
type BookingResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
