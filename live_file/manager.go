package live_file

import (
	"time"

	"github.com/meysamhadeli/livefile/logging"
	"github.com/spf13/afero"
)

// ManagerConfig holds the settings used to build a Manager
type ManagerConfig struct {
	PollInterval time.Duration
	Fs           afero.Fs
	Logger       *logging.Logger
}

// Manager owns a FileStore and the Poller that keeps it fresh. The
// application starts it during startup and stops it before exiting; nothing
// runs in the background until Start is called.
type Manager struct {
	store  *FileStore
	poller *Poller
}

// NewManager wires a store and a poller together without starting anything.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	storeOpts := []Option{WithLogger(logger)}
	if cfg.Fs != nil {
		storeOpts = append(storeOpts, WithFs(cfg.Fs))
	}
	store := NewFileStore(storeOpts...)

	pollerOpts := []PollerOption{WithPollerLogger(logger)}
	if cfg.PollInterval > 0 {
		pollerOpts = append(pollerOpts, WithInterval(cfg.PollInterval))
	}

	return &Manager{
		store:  store,
		poller: NewPoller(store, pollerOpts...),
	}
}

// Start begins background reload checks.
func (m *Manager) Start() error {
	return m.poller.Start()
}

// Stop ends background reload checks and waits for the poller to exit.
func (m *Manager) Stop() {
	m.poller.Stop()
}

// Open returns a new handle to path backed by the manager's store.
func (m *Manager) Open(path string) (*LiveFile, error) {
	return Open(m.store, path)
}

// Store returns the underlying store.
func (m *Manager) Store() *FileStore {
	return m.store
}

// Poller returns the underlying poller.
func (m *Manager) Poller() *Poller {
	return m.poller
}
