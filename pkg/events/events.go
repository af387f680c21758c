// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/school-feed/pkg/lifecycle"
	"github.com/nats-io/nats.go"
)

// System publishes JSON payloads on prefixed subjects.
type System interface {
	Publish(ctx context.Context, name string, payload any) error
	Start(lc *lifecycle.Coordinator) error
}

// New returns a NATS publisher when cfg.Enabled, otherwise a no-op publisher.
func New(cfg *Config, logger *slog.Logger) System {
	if !cfg.Enabled {
		return Noop()
	}
	return &publisher{
		cfg:    cfg,
		logger: logger.With("system", "events"),
	}
}

type noop struct{}

// Noop returns a publisher that discards every event.
func Noop() System {
	return noop{}
}

func (noop) Publish(context.Context, string, any) error { return nil }
func (noop) Start(*lifecycle.Coordinator) error         { return nil }

type publisher struct {
	cfg    *Config
	logger *slog.Logger

	mu   sync.RWMutex
	conn *nats.Conn
}

func (p *publisher) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting event publisher", "url", p.cfg.URL)

	conn, err := nats.Connect(p.cfg.URL,
		nats.Name("school-feed"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.logger.Info("draining event publisher")
		if err := conn.Drain(); err != nil {
			p.logger.Error("nats drain failed", "error", err)
		}
	})

	return nil
}

func (p *publisher) Publish(ctx context.Context, name string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("publish %s: publisher not started", name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	subject := p.cfg.Subject(name)
	if err := conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
