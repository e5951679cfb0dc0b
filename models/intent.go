package models

import "time"

// SubmissionIntent is a booking the visitor tried to submit while anonymous.
type SubmissionIntent struct {
	ID            string       `json:"id"`
	VisitorID     string       `json:"visitorId"`
	DestinationID string       `json:"destinationId"`
	Draft         BookingDraft `json:"draft"`
	CreatedAt     time.Time    `json:"createdAt"`
}
