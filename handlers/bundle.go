package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Identity endpoints
	GetIdentity gin.HandlerFunc

	// Booking flow endpoints
	OpenFlow    gin.HandlerFunc
	GetFlow     gin.HandlerFunc
	CloseFlow   gin.HandlerFunc
	SetField    gin.HandlerFunc
	Submit      gin.HandlerFunc
	Acknowledge gin.HandlerFunc

	// Authentication prompt callbacks
	AuthSuccess gin.HandlerFunc
	AuthDismiss gin.HandlerFunc
}

// NewHandlerBundle wires the booking handler's endpoints.
func NewHandlerBundle(bh *BookingHandler) *HandlerBundle {
	return &HandlerBundle{
		GetIdentity: bh.GetIdentity,
		OpenFlow:    bh.OpenFlow,
		GetFlow:     bh.GetFlow,
		CloseFlow:   bh.CloseFlow,
		SetField:    bh.SetField,
		Submit:      bh.Submit,
		Acknowledge: bh.Acknowledge,
		AuthSuccess: bh.AuthSuccess,
		AuthDismiss: bh.AuthDismiss,
	}
}
