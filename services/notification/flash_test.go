package notification

import (
	"testing"

	"tripdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashNotifierKeepsLatest(t *testing.T) {
	n := NewFlashNotifier(nil)
	n.Error("v1", "network down")
	n.Success("v1", "Booking received")

	toast := n.Drain("v1")
	require.NotNil(t, toast)
	assert.Equal(t, models.ToastSuccess, toast.Kind)
	assert.Equal(t, "Booking received", toast.Message)
	assert.Nil(t, n.Drain("v1"))
}

func TestFlashNotifierForget(t *testing.T) {
	n := NewFlashNotifier(nil)
	n.Error("v1", "x")
	n.Forget("v1")
	assert.Nil(t, n.Drain("v1"))
}
