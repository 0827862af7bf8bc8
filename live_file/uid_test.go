package live_file

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextUID_UniqueUnderConcurrency(t *testing.T) {
	const goroutines, perGoroutine = 16, 500

	var mu sync.Mutex
	seen := make(map[UID]struct{}, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]UID, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				local = append(local, NextUID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
	_, issuedZero := seen[NoUID]
	assert.False(t, issuedZero)
}
