package booking

import "errors"

var (
	ErrNoProfile          = errors.New("booking submission requires an authenticated profile")
	ErrSubmissionInFlight = errors.New("a booking submission is already in progress")
	ErrFlowClosed         = errors.New("booking flow is closed")
)
