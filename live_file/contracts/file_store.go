package contracts

import "github.com/meysamhadeli/livefile/live_file/models"

// IFileStore is the reference-counted file cache that handles and the poller talk to.
type IFileStore interface {
	Checkout(path string) (models.UID, error)
	CheckoutID(id models.UID) (models.UID, error)
	Return(id models.UID) error
	Access(id models.UID) ([]byte, int, uint64, error)
	AccessWithHash(id models.UID) ([]byte, uint64, uint64, error)
	Size(id models.UID) (int, error)
	Generation(id models.UID) (uint64, error)
	Snapshot(id models.UID) (models.FileSnapshot, error)
	ScanAndReload() int
}
