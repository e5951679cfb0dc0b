package utils

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestCheckHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	assert.True(t, CheckHealth(context.Background(), client).Redis)
	assert.True(t, GetHealthStatus().Redis)

	mr.SetError("LOADING dataset")
	assert.False(t, CheckHealth(context.Background(), client).Redis)
	assert.False(t, GetHealthStatus().Redis)
}
