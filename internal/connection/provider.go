package connection

import (
	"context"
	"errors"
	"sync"
	"time"

	"openhab_updater/internal/logger"
	"openhab_updater/internal/openhab"
)

// probePath is the cheapest endpoint that proves the REST API answers.
const probePath = "rest/"

const defaultProbeInterval = 15 * time.Second

// Provider resolves a live connection to the openHAB server. Initialization is
// asynchronous: Start launches a background probe loop, and callers block in
// WaitForInitialization until the first probe completes. While the server is
// unreachable the loop keeps re-probing so a later attempt can pick the
// connection up again.
type Provider struct {
	conn          *openhab.Connection
	log           *logger.Logger
	probeInterval time.Duration

	mu        sync.Mutex
	available bool

	initOnce sync.Once
	initDone chan struct{}
}

func NewProvider(conn *openhab.Connection, log *logger.Logger) *Provider {
	return &Provider{
		conn:          conn,
		log:           log,
		probeInterval: defaultProbeInterval,
		initDone:      make(chan struct{}),
	}
}

// SetProbeInterval overrides the re-probe cadence. Must be called before Start.
func (p *Provider) SetProbeInterval(d time.Duration) {
	if d > 0 {
		p.probeInterval = d
	}
}

// Start runs the probe loop until ctx is canceled.
func (p *Provider) Start(ctx context.Context) {
	p.probe(ctx)
	p.markInitialized()

	t := time.NewTicker(p.probeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.probe(ctx)
		}
	}
}

// WaitForInitialization blocks until the first probe has completed or ctx is
// done. It says nothing about whether the connection is usable; call
// UsableConnection for that.
func (p *Provider) WaitForInitialization(ctx context.Context) error {
	select {
	case <-p.initDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UsableConnection returns the server connection, or nil while the server is
// unreachable.
func (p *Provider) UsableConnection() *openhab.Connection {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.available {
		return nil
	}
	return p.conn
}

// Refresh forces a synchronous re-probe and reports availability.
func (p *Provider) Refresh(ctx context.Context) bool {
	p.probe(ctx)
	p.markInitialized()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (p *Provider) markInitialized() {
	p.initOnce.Do(func() { close(p.initDone) })
}

// probe checks reachability. A non-2xx answer still proves the server is up;
// only transport-level failures mark the connection unusable.
func (p *Provider) probe(ctx context.Context) {
	_, err := p.conn.Get(ctx, probePath)

	var httpErr *openhab.HTTPError
	reachable := err == nil || errors.As(err, &httpErr)

	p.mu.Lock()
	changed := p.available != reachable
	p.available = reachable
	p.mu.Unlock()

	if changed && p.log != nil {
		if reachable {
			p.log.Infow("server_reachable", "url", p.conn.BaseURL())
		} else {
			p.log.Warnw("server_unreachable", "url", p.conn.BaseURL(), "err", err)
		}
	}
}
