package booking

import (
	"context"
	"time"

	"tripdesk/models"
	"tripdesk/services/form"

	"go.uber.org/zap"
)

// SubmissionGateway turns a draft into the upstream booking payload.
type SubmissionGateway struct {
	API             BookingCreator
	DefaultCurrency string
	Logger          *zap.Logger
}

func (g *SubmissionGateway) Submit(ctx context.Context, req SubmitRequest) (*models.BookingResult, error) {
	if req.ProfileID == "" {
		return nil, ErrNoProfile
	}
	payload := BuildPayload(req, g.DefaultCurrency)

	res, err := g.API.CreateBooking(ctx, payload, req.IdempotencyKey)
	if err != nil {
		if g.Logger != nil {
			g.Logger.Warn("booking submission failed",
				zap.String("userID", req.ProfileID),
				zap.String("destinationID", req.Destination.ID),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return res, nil
}

// BuildPayload fills the upstream booking body. The total is priced from the
// draft's own traveler count so a replayed draft keeps its original price.
func BuildPayload(req SubmitRequest, defaultCurrency string) models.BookingPayload {
	d := req.Draft
	currency := req.Destination.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	priceStatus := models.PriceConfirmed
	if req.Destination.Price <= 0 {
		priceStatus = models.PriceOnRequest
	}
	paymentStatus := d.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentUnpaid
	}
	travelers := d.NumberOfTravelers
	if travelers < 1 {
		travelers = 1
	}

	return models.BookingPayload{
		UserID:            req.ProfileID,
		DestinationID:     req.Destination.ID,
		StartDate:         d.StartDate.UTC().Truncate(24 * time.Hour),
		EndDate:           d.EndDate.UTC().Truncate(24 * time.Hour),
		TotalPrice:        form.TotalPrice(req.Destination.Price, travelers),
		Currency:          currency,
		Status:            models.BookingStatusPending,
		PriceStatus:       priceStatus,
		NumberOfTravelers: travelers,
		SpecialRequests:   d.SpecialRequests,
		PaymentStatus:     paymentStatus,
	}
}
