package live_file

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/meysamhadeli/livefile/live_file/contracts"
	"github.com/meysamhadeli/livefile/live_file/models"
	"github.com/meysamhadeli/livefile/logging"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// FileStore is the process-wide registry of cached files. It is the only
// code allowed to touch a record's content, generation, timestamps and
// reference count; everything else goes through its methods.
//
// One RWMutex guards both maps and every record. Disk reads happen outside
// the lock and the result is swapped in afterwards, so readers block at most
// for a map lookup or a pointer swap.
type FileStore struct {
	fs     afero.Fs
	logger *logging.Logger
	now    func() time.Time

	mu      sync.RWMutex
	records map[UID]*fileRecord
	paths   map[string]UID

	// loads collapses concurrent first checkouts of one path into one read.
	loads singleflight.Group

	// scanMu serializes reload passes so one change bumps the generation once.
	scanMu sync.Mutex

	stats *StoreStats
}

var _ contracts.IFileStore = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

// WithFs sets the filesystem files are read from. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *FileStore) {
		s.fs = fs
	}
}

// WithLogger sets the logger used for load and reload events.
func WithLogger(logger *logging.Logger) Option {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// NewFileStore creates an empty store.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		fs:      afero.NewOsFs(),
		logger:  logging.NopLogger(),
		now:     time.Now,
		records: make(map[UID]*fileRecord),
		paths:   make(map[string]UID),
		stats:   newStoreStats(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("store")
	return s
}

// Checkout returns the id of the record for path, loading the file on first
// use and bumping the reference count otherwise. Concurrent first checkouts
// of the same path share a single read and end up with one record.
func (s *FileStore) Checkout(path string) (UID, error) {
	path = filepath.Clean(path)

	for {
		if id, ok := s.acquirePath(path); ok {
			s.stats.recordCheckout()
			return id, nil
		}

		// Only the caller whose function ran holds the reference taken by
		// loadAndPublish; callers sharing its result take their own below.
		loaded := false
		v, err, _ := s.loads.Do(path, func() (interface{}, error) {
			id, err := s.loadAndPublish(path)
			loaded = err == nil
			return id, err
		})
		if err != nil {
			return NoUID, err
		}
		if loaded {
			s.stats.recordCheckout()
			return v.(UID), nil
		}
		// If the shared record was already returned to zero, it gets loaded again.
	}
}

// acquirePath bumps the reference count of the record for path, if any.
func (s *FileStore) acquirePath(path string) (UID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.paths[path]
	if !ok {
		return NoUID, false
	}
	s.records[id].refCount++
	return id, true
}

// loadAndPublish reads path and inserts its record already holding one
// reference for the caller, so no record is ever visible with a zero count.
func (s *FileStore) loadAndPublish(path string) (UID, error) {
	if id, ok := s.acquirePath(path); ok {
		return id, nil
	}

	content, err := s.readFile(path, 0)
	if err != nil {
		s.logger.Debug("load failed", "path", path, "error", err.Error())
		return NoUID, newLoadError(path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.paths[path]; exists {
		s.records[id].refCount++
		return id, nil
	}
	record := &fileRecord{
		id:       NextUID(),
		path:     path,
		current:  content,
		refCount: 1,
	}
	s.records[record.id] = record
	s.paths[path] = record.id
	s.stats.recordLoad()

	s.logger.Debug("file loaded", "path", path, "id", uint64(record.id), "size", len(content.data))
	return record.id, nil
}

// readFile stats then reads path. The stat comes first so that a write racing
// with the read is picked up again by the next scan.
func (s *FileStore) readFile(path string, generation uint64) (fileContent, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return fileContent{}, err
	}
	if info.IsDir() {
		return fileContent{}, fmt.Errorf("%s is a directory", path)
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fileContent{}, err
	}

	return newFileContent(data, generation, info.ModTime(), info.Size(), s.now()), nil
}

// CheckoutID bumps the reference count of an existing record.
func (s *FileStore) CheckoutID(id UID) (UID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return NoUID, unknownHandle(id)
	}
	record.refCount++
	s.stats.recordCheckout()
	return id, nil
}

// Return drops one reference. The record and its buffer are released when
// the count reaches zero.
func (s *FileStore) Return(id UID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.returnLocked(id)
}

// ReturnPath drops one reference to the record cached for path.
func (s *FileStore) ReturnPath(path string) error {
	path = filepath.Clean(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.paths[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, path)
	}
	return s.returnLocked(id)
}

// returnLocked must be called with mu held for writing.
func (s *FileStore) returnLocked(id UID) error {
	record, ok := s.records[id]
	if !ok || record.refCount <= 0 {
		return unknownHandle(id)
	}

	record.refCount--
	s.stats.recordReturn()
	if record.refCount > 0 {
		return nil
	}

	delete(s.records, id)
	delete(s.paths, record.path)
	record.current = fileContent{}
	s.stats.recordUnload()

	s.logger.Debug("file unloaded", "path", record.path, "id", uint64(id))
	return nil
}

// Access returns the current content, its size and its generation, all read
// under one lock. The returned slice is never modified by the store and must
// not be modified by the caller.
func (s *FileStore) Access(id UID) ([]byte, int, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, 0, 0, unknownHandle(id)
	}
	return record.current.data, len(record.current.data), record.current.generation, nil
}

// AccessWithHash returns the current content, its generation and the xxh3
// hash computed when it was loaded, all read under one lock.
func (s *FileStore) AccessWithHash(id UID) ([]byte, uint64, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, 0, 0, unknownHandle(id)
	}
	return record.current.data, record.current.generation, record.current.hash, nil
}

// Size returns the size of the current content.
func (s *FileStore) Size(id UID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return 0, unknownHandle(id)
	}
	return len(record.current.data), nil
}

// Generation returns how many times the record has been reloaded.
func (s *FileStore) Generation(id UID) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return 0, unknownHandle(id)
	}
	return record.current.generation, nil
}

// Snapshot returns the metadata of one record.
func (s *FileStore) Snapshot(id UID) (models.FileSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return models.FileSnapshot{}, unknownHandle(id)
	}
	return record.snapshot(), nil
}

// Snapshots returns the metadata of every record, sorted by path.
func (s *FileStore) Snapshots() []models.FileSnapshot {
	s.mu.RLock()
	snapshots := make([]models.FileSnapshot, 0, len(s.records))
	for _, record := range s.records {
		snapshots = append(snapshots, record.snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Path < snapshots[j].Path
	})
	return snapshots
}

// Len returns the number of cached files.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ScanAndReload checks every record against the filesystem and reloads the
// ones whose file changed. Failed reloads keep the previous content and are
// retried on the next scan. It returns the number of records reloaded.
func (s *FileStore) ScanAndReload() int {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	reloaded := 0
	for _, record := range s.liveRecords() {
		ok, err := s.reloadRecord(record)
		if err != nil {
			s.logger.Warn("reload failed, keeping previous content",
				"path", record.path, "id", uint64(record.id), "error", err.Error())
			continue
		}
		if ok {
			reloaded++
		}
	}
	return reloaded
}

// Reload checks a single record and reloads it if its file changed.
// Unlike ScanAndReload it reports read failures to the caller.
func (s *FileStore) Reload(id UID) (bool, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return false, unknownHandle(id)
	}

	ok, err := s.reloadRecord(record)
	if err != nil {
		return false, fmt.Errorf("failed to reload %s: %w", record.path, err)
	}
	return ok, nil
}

// liveRecords collects pointers to the current records; it never copies them.
func (s *FileStore) liveRecords() []*fileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*fileRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].id < records[j].id
	})
	return records
}

// reloadRecord must be called with scanMu held.
func (s *FileStore) reloadRecord(record *fileRecord) (bool, error) {
	info, err := s.fs.Stat(record.path)
	if err != nil {
		s.stats.recordFailedReload()
		return false, err
	}

	s.mu.RLock()
	if s.records[record.id] != record {
		s.mu.RUnlock()
		return false, nil
	}
	previous := record.current
	s.mu.RUnlock()

	if !previous.isStale(info.ModTime(), info.Size()) {
		return false, nil
	}

	content, err := s.readFile(record.path, previous.generation+1)
	if err != nil {
		s.stats.recordFailedReload()
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Returned to zero while we were reading.
	if s.records[record.id] != record {
		return false, nil
	}
	record.current = content
	s.stats.recordReload()

	s.logger.Info("file reloaded",
		"path", record.path,
		"id", uint64(record.id),
		"generation", content.generation,
		"size", len(content.data))
	return true, nil
}
