package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 10*time.Second, cfg.SuccessDisplayWindow)
	assert.Equal(t, 30*time.Minute, cfg.IntentTTL)
	assert.Equal(t, 3, cfg.RedisIntentDB)
	assert.Equal(t, "visitor_id", cfg.VisitorCookie)
}

func TestIsProduction(t *testing.T) {
	prev := AppConfig
	defer func() { AppConfig = prev }()

	AppConfig.Env = "production"
	assert.True(t, IsProduction())
	AppConfig.Env = "development"
	assert.False(t, IsProduction())
}
