package live_file

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func TestLiveFile_OpenAndRead(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "hello", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer f.Close()

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, 5, size)

	contents, err := f.Contents()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(contents))

	assert.False(t, f.WasReloaded())
	assert.Equal(t, "/data/a.txt", f.Path())
}

func TestLiveFile_OpenMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	f, err := Open(store, "/data/missing.txt")
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLiveFile_TwoHandlesShareRecord(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "hello", baseTime)

	first, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	second, err := Open(store, "/data/a.txt")
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	snapshot, err := first.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.RefCount)

	require.NoError(t, first.Close())
	assert.Equal(t, 1, store.Len())
	require.NoError(t, second.Close())
	assert.Equal(t, 0, store.Len())
}

func TestLiveFile_WasReloadedConsumesNotification(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "hello", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer f.Close()

	writeAt(t, fs, "/data/a.txt", "hello world", baseTime.Add(time.Minute))
	require.Equal(t, 1, store.ScanAndReload())

	assert.True(t, f.WasReloadedNoReset())
	assert.True(t, f.WasReloadedNoReset(), "no-reset check is idempotent")
	assert.True(t, f.WasReloaded())
	assert.False(t, f.WasReloaded())
	assert.False(t, f.WasReloadedNoReset())
	assert.Equal(t, uint64(1), f.CheckedGeneration())

	contents, err := f.Contents()
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(contents))
}

func TestLiveFile_ResetWasReloaded(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer f.Close()

	writeAt(t, fs, "/data/a.txt", "two", baseTime.Add(time.Minute))
	store.ScanAndReload()

	f.ResetWasReloaded()
	assert.False(t, f.WasReloadedNoReset())
	assert.Equal(t, uint64(1), f.CheckedGeneration())
}

func TestLiveFile_PerHandleNotifications(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	first, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer first.Close()
	second, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer second.Close()

	writeAt(t, fs, "/data/a.txt", "two", baseTime.Add(time.Minute))
	store.ScanAndReload()

	assert.True(t, first.WasReloaded())
	assert.True(t, second.WasReloaded(), "one handle acknowledging does not hide the reload from another")
}

func TestLiveFile_OpenAfterReloadStartsCurrent(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	first, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer first.Close()

	writeAt(t, fs, "/data/a.txt", "two", baseTime.Add(time.Minute))
	store.ScanAndReload()

	late, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer late.Close()

	assert.False(t, late.WasReloaded())
	assert.Equal(t, uint64(1), late.CheckedGeneration())
}

func TestLiveFile_DuplicateReportsEarlierReloads(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	original, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer original.Close()

	writeAt(t, fs, "/data/a.txt", "two", baseTime.Add(time.Minute))
	store.ScanAndReload()
	require.True(t, original.WasReloaded())

	duplicate, err := original.Duplicate()
	require.NoError(t, err)
	defer duplicate.Close()

	assert.True(t, duplicate.Equal(original))
	assert.Equal(t, uint64(0), duplicate.CheckedGeneration())
	assert.True(t, duplicate.WasReloaded(), "a duplicate starts from generation zero")
	assert.False(t, duplicate.WasReloaded())
	assert.False(t, original.WasReloaded())

	snapshot, err := duplicate.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.RefCount)
}

func TestLiveFile_DuplicateWithoutReload(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	original, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer original.Close()

	duplicate, err := original.Duplicate()
	require.NoError(t, err)
	defer duplicate.Close()

	assert.False(t, duplicate.WasReloaded())
}

func TestLiveFile_CloseOnce(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "hello", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)

	require.NoError(t, f.Close())
	assert.True(t, errors.Is(f.Close(), ErrClosed))
	assert.Equal(t, 0, store.Len())

	_, err = f.Contents()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = f.Size()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = f.Generation()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = f.Duplicate()
	assert.True(t, errors.Is(err, ErrClosed))
	assert.False(t, f.WasReloaded())
}

func TestLiveFile_MissingRecordPanics(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "hello", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)

	// Return the handle's reference behind its back.
	require.NoError(t, store.Return(f.ID()))

	assert.Panics(t, func() { _, _ = f.Contents() })
	assert.Panics(t, func() { _, _ = f.Size() })
	assert.Panics(t, func() { _ = f.Close() })
}

func TestLiveFile_ContentsWithGeneration(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)
	defer f.Close()

	writeAt(t, fs, "/data/a.txt", "three", baseTime.Add(time.Minute))
	store.ScanAndReload()

	data, generation, err := f.ContentsWithGeneration()
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))
	assert.Equal(t, uint64(1), generation)
}

func TestLiveFile_ContentsWithHash(t *testing.T) {
	store, fs := newTestStore(t)
	writeAt(t, fs, "/data/a.txt", "one", baseTime)

	f, err := Open(store, "/data/a.txt")
	require.NoError(t, err)

	writeAt(t, fs, "/data/a.txt", "three", baseTime.Add(time.Minute))
	store.ScanAndReload()

	data, generation, hash, err := f.ContentsWithHash()
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))
	assert.Equal(t, uint64(1), generation)
	assert.Equal(t, FormatHash(xxh3.HashString("three")), hash)

	snapshot, err := f.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snapshot.Hash, hash)

	require.NoError(t, f.Close())
	_, _, _, err = f.ContentsWithHash()
	assert.True(t, errors.Is(err, ErrClosed))
}
