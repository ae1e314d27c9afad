package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/model"
	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "chatbot.7.turn.completed", EventSubject(7, model.EventTypeTurnCompleted))
	assert.Equal(t, "chatbot.7.feedback.recorded", EventSubject(7, model.EventTypeFeedback))
	assert.Equal(t, "chatbot.7.>", UserFilter(7))
}

func TestClient_NilIsDisconnected(t *testing.T) {
	var c *Client
	assert.False(t, c.IsConnected())
	assert.Equal(t, "DISCONNECTED", c.Status())
	c.Close()
}

func TestConnectionName(t *testing.T) {
	assert.Equal(t, DefaultConnectionName, connectionName(Config{}))
	assert.Equal(t, "chatbot-events", connectionName(Config{Name: "chatbot-events"}))
}

func TestTLSOptions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    int
		wantErr bool
	}{
		{"plain", Config{}, 0, false},
		{"server verification only", Config{CAFile: "ca.pem"}, 1, false},
		{"mutual", Config{CAFile: "ca.pem", CertFile: "client.pem", KeyFile: "client.key"}, 2, false},
		{"cert without key", Config{CertFile: "client.pem"}, 0, true},
		{"key without cert", Config{KeyFile: "client.key"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tlsOptions(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, opts, tt.want)
		})
	}
}

func TestConnect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, Config{URL: "nats://127.0.0.1:1"}, logger.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}
