package live_file

import (
	"sync/atomic"

	"github.com/meysamhadeli/livefile/live_file/models"
)

// UID identifies a cached file record.
type UID = models.UID

// NoUID is never issued by NextUID.
const NoUID UID = 0

var lastUID atomic.Uint64

// NextUID returns a fresh process-unique id. Safe for concurrent use.
func NextUID() UID {
	return UID(lastUID.Add(1))
}
