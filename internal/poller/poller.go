// Package poller is the client-side mirror of the session state machine. It
// re-queries the session status on a fixed interval until a terminal status
// is observed, and keeps a disposable view-state hint that is always
// reconciled against the server before being trusted.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"meetgo/backend/internal/config"
	"meetgo/backend/internal/models"
)

// StatusFetcher is anything that can answer the status operation for a
// participant: the in-process manager, or an HTTP client hitting the status
// endpoint.
type StatusFetcher interface {
	SessionStatus(sessionID, userID string) (*models.SessionSnapshot, error)
}

// FetcherFunc adapts a plain function to the StatusFetcher interface.
type FetcherFunc func(sessionID, userID string) (*models.SessionSnapshot, error)

func (f FetcherFunc) SessionStatus(sessionID, userID string) (*models.SessionSnapshot, error) {
	return f(sessionID, userID)
}

// Poller polls the status of one session until it turns terminal. It is safe
// to drop a Poller and start a fresh one after a restart; no server-side
// state is attached to it.
type Poller struct {
	Fetcher  StatusFetcher
	Interval time.Duration

	// OnUpdate receives every successfully fetched snapshot, including the
	// terminal one that stops the poller.
	OnUpdate func(models.SessionSnapshot)

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller with the default 3 second interval.
func NewPoller(fetcher StatusFetcher, onUpdate func(models.SessionSnapshot)) *Poller {
	return &Poller{
		Fetcher:  fetcher,
		Interval: config.StatusPollInterval,
		OnUpdate: onUpdate,
	}
}

// Start begins polling in a new goroutine. The loop stops when a terminal
// status is observed, when ctx is cancelled, or when Stop is called.
func (p *Poller) Start(ctx context.Context, sessionID, userID string) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go p.run(ctx, sessionID, userID)
}

// Stop cancels the polling loop. Safe to call more than once and after the
// loop already stopped on its own.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Done is closed once the polling loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) run(ctx context.Context, sessionID, userID string) {
	defer close(p.done)
	defer p.Stop()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, err := p.Fetcher.SessionStatus(sessionID, userID)
			if err != nil {
				// Transient fetch errors are retried on the next tick.
				log.Printf("WARNING: Failed to poll session %s: %v", sessionID, err)
				continue
			}

			if p.OnUpdate != nil {
				p.OnUpdate(*snapshot)
			}
			if snapshot.Status.IsTerminal() {
				log.Printf("Session %s reached terminal status %s, polling stopped",
					sessionID, snapshot.Status)
				return
			}
		}
	}
}
