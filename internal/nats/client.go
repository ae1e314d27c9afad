// Package nats publishes chat turn events to NATS JetStream.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/inucreativehrd21/FINAL-SERVER/pkg/logger"
)

// DefaultConnectionName identifies the chatbot to the NATS server.
const DefaultConnectionName = "chatbot"

// Config holds NATS connection configuration.
type Config struct {
	URL string
	// Name shows up in the server's connection list, e.g. "chatbot-serve".
	Name string

	// CAFile alone verifies the server; CertFile and KeyFile add a client certificate.
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// Client is the connection turn events travel over.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	name   string
	logger *logger.Logger
}

// Connect dials the server. A deadline on ctx bounds the initial dial.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := connectionName(cfg)
	connLog := log.With(zap.String("connection", name), zap.String("stream", StreamName))

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		// Turn events published while disconnected wait here until the link is back.
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			connLog.Warn("turn event publishing paused", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			connLog.Info("turn event publishing resumed",
				zap.String("url", nc.ConnectedUrl()),
				zap.Uint64("reconnects", nc.Stats().Reconnects),
			)
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			connLog.Info("event connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			connLog.Error("event connection error", zap.Error(err))
		}),
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	tlsOpts, err := tlsOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, tlsOpts...)

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	connLog.Info("event connection established", zap.String("url", nc.ConnectedUrl()))
	return &Client{conn: nc, js: js, name: name, logger: connLog}, nil
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Close flushes buffered events before closing.
func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("drain failed, closing event connection", zap.Error(err))
		c.conn.Close()
	}
}

// IsConnected reports whether the connection is up.
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// Status names the connection state for readiness reports.
func (c *Client) Status() string {
	if c == nil || c.conn == nil {
		return "DISCONNECTED"
	}
	return c.conn.Status().String()
}

func connectionName(cfg Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return DefaultConnectionName
}

func tlsOptions(cfg Config) ([]nats.Option, error) {
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("NATS client certificate needs both cert and key files")
	}

	var opts []nats.Option
	if cfg.CAFile != "" {
		opts = append(opts, nats.RootCAs(cfg.CAFile))
	}
	if cfg.CertFile != "" {
		opts = append(opts, nats.ClientCert(cfg.CertFile, cfg.KeyFile))
	}
	return opts, nil
}
