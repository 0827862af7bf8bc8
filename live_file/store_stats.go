package live_file

import (
	"sync"
	"time"
)

// StoreStats tracks store activity counters
type StoreStats struct {
	Checkouts     int64
	DiskLoads     int64
	Returns       int64
	Unloads       int64
	Reloads       int64
	FailedReloads int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

func newStoreStats() *StoreStats {
	return &StoreStats{LastResetTime: time.Now()}
}

// recordCheckout counts one acquired reference
func (st *StoreStats) recordCheckout() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.Checkouts++
}

// recordLoad counts one initial read from disk
func (st *StoreStats) recordLoad() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.DiskLoads++
}

func (st *StoreStats) recordReturn() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.Returns++
}

func (st *StoreStats) recordUnload() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.Unloads++
}

func (st *StoreStats) recordReload() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.Reloads++
}

func (st *StoreStats) recordFailedReload() {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.FailedReloads++
}

// GetPerformanceStats returns a report of the store counters
func (s *FileStore) GetPerformanceStats() map[string]interface{} {
	// Read before taking the stats lock; the store takes them in the other order.
	cachedFiles := s.Len()

	st := s.stats
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	// Every checkout that did not cause a disk load was served from memory.
	dedupHits := st.Checkouts - st.DiskLoads
	if dedupHits < 0 {
		dedupHits = 0
	}

	hitRate := 0.0
	if st.Checkouts > 0 {
		hitRate = float64(dedupHits) / float64(st.Checkouts) * 100
	}

	reloadFailureRate := 0.0
	if attempts := st.Reloads + st.FailedReloads; attempts > 0 {
		reloadFailureRate = float64(st.FailedReloads) / float64(attempts) * 100
	}

	uptime := time.Since(st.LastResetTime)

	return map[string]interface{}{
		"cached_files":           cachedFiles,
		"checkouts":              st.Checkouts,
		"disk_loads":             st.DiskLoads,
		"dedup_hits":             dedupHits,
		"hit_rate_percent":       hitRate,
		"returns":                st.Returns,
		"unloads":                st.Unloads,
		"reloads":                st.Reloads,
		"failed_reloads":         st.FailedReloads,
		"reload_failure_percent": reloadFailureRate,
		"uptime_seconds":         uptime.Seconds(),
		"uptime_human":           uptime.String(),
		"last_reset":             st.LastResetTime.Format(time.RFC3339),
	}
}

// ResetPerformanceStats resets all counters
func (s *FileStore) ResetPerformanceStats() {
	st := s.stats
	st.mutex.Lock()
	defer st.mutex.Unlock()

	st.Checkouts = 0
	st.DiskLoads = 0
	st.Returns = 0
	st.Unloads = 0
	st.Reloads = 0
	st.FailedReloads = 0
	st.LastResetTime = time.Now()
}
