package live_file

import (
	"errors"
	"fmt"

	"github.com/meysamhadeli/livefile/live_file/contracts"
	"github.com/meysamhadeli/livefile/live_file/models"
)

// LiveFile is a reference-counted view of one cached file. Each handle keeps
// its own record of the last generation it saw, so several consumers of the
// same file get their own reload notifications.
//
// A LiveFile is meant to be used by one goroutine at a time. The store it
// points at may be shared freely.
type LiveFile struct {
	store contracts.IFileStore
	id    UID
	path  string

	checkedGeneration uint64
	closed            bool
}

// Open checks out path from store and returns a handle to it. The handle
// does not report reloads that happened before it was opened.
func Open(store contracts.IFileStore, path string) (*LiveFile, error) {
	id, err := store.Checkout(path)
	if err != nil {
		return nil, err
	}

	snapshot, err := store.Snapshot(id)
	if err != nil {
		mustBeKnown(err)
	}

	return &LiveFile{
		store:             store,
		id:                id,
		path:              snapshot.Path,
		checkedGeneration: snapshot.Generation,
	}, nil
}

// Duplicate returns a second handle to the same record. The copy starts with
// a checked generation of zero, so it reports any reload that happened since
// the record was first loaded.
func (f *LiveFile) Duplicate() (*LiveFile, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if _, err := f.store.CheckoutID(f.id); err != nil {
		mustBeKnown(err)
	}
	return &LiveFile{
		store: f.store,
		id:    f.id,
		path:  f.path,
	}, nil
}

// Close returns the handle's reference to the store. Closing twice returns ErrClosed.
func (f *LiveFile) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	if err := f.store.Return(f.id); err != nil {
		mustBeKnown(err)
	}
	return nil
}

// ID returns the id of the backing record.
func (f *LiveFile) ID() UID {
	return f.id
}

// Path returns the cleaned path the file was opened with.
func (f *LiveFile) Path() string {
	return f.path
}

// Equal reports whether both handles point at the same record.
func (f *LiveFile) Equal(other *LiveFile) bool {
	return other != nil && f.id == other.id
}

// Generation returns the record's current generation.
func (f *LiveFile) Generation() (uint64, error) {
	if f.closed {
		return 0, ErrClosed
	}
	generation, err := f.store.Generation(f.id)
	if err != nil {
		mustBeKnown(err)
	}
	return generation, nil
}

// CheckedGeneration returns the generation this handle last acknowledged.
func (f *LiveFile) CheckedGeneration() uint64 {
	return f.checkedGeneration
}

// WasReloaded reports whether the file was reloaded since the previous call
// and acknowledges the reload, so a second call without a new reload is false.
// A closed handle never reports a reload.
func (f *LiveFile) WasReloaded() bool {
	generation, err := f.Generation()
	if err != nil {
		return false
	}
	if generation > f.checkedGeneration {
		f.checkedGeneration = generation
		return true
	}
	return false
}

// WasReloadedNoReset is WasReloaded without acknowledging the reload.
func (f *LiveFile) WasReloadedNoReset() bool {
	generation, err := f.Generation()
	if err != nil {
		return false
	}
	return generation > f.checkedGeneration
}

// ResetWasReloaded acknowledges any pending reload.
func (f *LiveFile) ResetWasReloaded() {
	if generation, err := f.Generation(); err == nil {
		f.checkedGeneration = generation
	}
}

// Contents returns the current bytes of the file. The slice is shared with
// the store and must not be modified; a later reload replaces it rather than
// writing into it.
func (f *LiveFile) Contents() ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	data, _, _, err := f.store.Access(f.id)
	if err != nil {
		mustBeKnown(err)
	}
	return data, nil
}

// ContentsWithGeneration returns the current bytes together with the
// generation they belong to.
func (f *LiveFile) ContentsWithGeneration() ([]byte, uint64, error) {
	if f.closed {
		return nil, 0, ErrClosed
	}
	data, _, generation, err := f.store.Access(f.id)
	if err != nil {
		mustBeKnown(err)
	}
	return data, generation, nil
}

// ContentsWithHash returns the current bytes, their generation and their
// formatted content hash, all from the same version.
func (f *LiveFile) ContentsWithHash() ([]byte, uint64, string, error) {
	if f.closed {
		return nil, 0, "", ErrClosed
	}
	data, generation, hash, err := f.store.AccessWithHash(f.id)
	if err != nil {
		mustBeKnown(err)
	}
	return data, generation, FormatHash(hash), nil
}

// Size returns the size of the current contents.
func (f *LiveFile) Size() (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	size, err := f.store.Size(f.id)
	if err != nil {
		mustBeKnown(err)
	}
	return size, nil
}

// Snapshot returns the metadata of the backing record.
func (f *LiveFile) Snapshot() (models.FileSnapshot, error) {
	if f.closed {
		return models.FileSnapshot{}, ErrClosed
	}
	snapshot, err := f.store.Snapshot(f.id)
	if err != nil {
		mustBeKnown(err)
	}
	return snapshot, nil
}

// mustBeKnown is called when the store rejects an id held by an open handle.
// That can only happen if reference counting is broken, so it does not return.
func mustBeKnown(err error) {
	if errors.Is(err, ErrUnknownHandle) {
		panic(fmt.Sprintf("live file: open handle has no backing record: %v", err))
	}
	panic(fmt.Sprintf("live file: unexpected store error: %v", err))
}
