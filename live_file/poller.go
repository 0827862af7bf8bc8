package live_file

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/meysamhadeli/livefile/live_file/contracts"
	"github.com/meysamhadeli/livefile/logging"
	"github.com/sourcegraph/conc"
)

// DefaultPollInterval is how long the poller sleeps between scans.
const DefaultPollInterval = time.Second

// Poller runs FileStore.ScanAndReload on a fixed cadence in a background
// goroutine. It must be started and stopped explicitly by its owner.
type Poller struct {
	store    contracts.IFileStore
	logger   *logging.Logger
	interval atomic.Int64
	cycles   atomic.Uint64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      *conc.WaitGroup
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the time between scans. Non-positive values are ignored.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		p.SetInterval(interval)
	}
}

// WithPollerLogger sets the poller's logger.
func WithPollerLogger(logger *logging.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a stopped poller for store.
func NewPoller(store contracts.IFileStore, opts ...PollerOption) *Poller {
	p := &Poller{
		store:  store,
		logger: logging.NopLogger(),
	}
	p.interval.Store(int64(DefaultPollInterval))
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("poller")
	return p
}

// Start launches the background scan loop.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrPollerRunning
	}

	stopCh := make(chan struct{})
	wg := conc.NewWaitGroup()
	wg.Go(func() {
		p.loop(stopCh)
	})

	p.running = true
	p.stopCh = stopCh
	p.wg = wg

	p.logger.Info("poller started", "interval", p.Interval().String())
	return nil
}

// Stop asks the loop to exit and waits until it has. No scan runs after
// Stop returns. Calling Stop on a stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.wg.Wait()

	p.running = false
	p.stopCh = nil
	p.wg = nil

	p.logger.Info("poller stopped", "cycles", p.Cycles())
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SetInterval changes the time between scans, starting with the next wait.
func (p *Poller) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.interval.Store(int64(interval))
}

// Interval returns the current time between scans.
func (p *Poller) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

// Cycles returns the number of completed scans since creation.
func (p *Poller) Cycles() uint64 {
	return p.cycles.Load()
}

func (p *Poller) loop(stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		if reloaded := p.store.ScanAndReload(); reloaded > 0 {
			p.logger.Debug("scan finished", "reloaded", reloaded)
		}
		p.cycles.Add(1)

		timer := time.NewTimer(p.Interval())
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
