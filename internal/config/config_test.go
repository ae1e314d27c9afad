package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"RAG_GATEWAY_URL", "RUNPOD_RAG_URL", "RUNPOD_CHATBOT_URL", "PORT", "NATS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "", cfg.GatewayURL)
	assert.Equal(t, "", cfg.NATSURL)
	assert.Equal(t, time.Minute, cfg.ProfileCacheTTL)
}

func TestLoad_GatewayFallbacks(t *testing.T) {
	t.Setenv("RAG_GATEWAY_URL", "")
	t.Setenv("RUNPOD_RAG_URL", "")
	t.Setenv("RUNPOD_CHATBOT_URL", "http://legacy:8000")
	assert.Equal(t, "http://legacy:8000", Load().GatewayURL)

	t.Setenv("RUNPOD_RAG_URL", "http://runpod:8000")
	assert.Equal(t, "http://runpod:8000", Load().GatewayURL)

	t.Setenv("RAG_GATEWAY_URL", "http://rag:8000")
	assert.Equal(t, "http://rag:8000", Load().GatewayURL)
}

func TestLoad_TypedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.ServerReadTimeout)
}

func TestLocation(t *testing.T) {
	cfg := &Config{AnalyticsTimezone: "UTC"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.AnalyticsTimezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
