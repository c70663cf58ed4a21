package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/logger"
)

type fakeInvalidator struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeInvalidator) Invalidate(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
}

func (f *fakeInvalidator) invalidated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	userDir := filepath.Join(dir, "alice")
	require.NoError(t, os.MkdirAll(userDir, 0o755))

	inv := &fakeInvalidator{}
	w, err := New(dir, inv, logger.Nop())
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(userDir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,category\n"), 0o644))

	require.Eventually(t, func() bool {
		for _, k := range inv.invalidated() {
			if k == path {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()

	inv := &fakeInvalidator{}
	w, err := New(dir, inv, logger.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, inv.invalidated())
}

func TestWatcher_PicksUpNewUserDir(t *testing.T) {
	dir := t.TempDir()

	inv := &fakeInvalidator{}
	w, err := New(dir, inv, logger.Nop())
	require.NoError(t, err)
	defer w.Close()

	userDir := filepath.Join(dir, "bob")
	require.NoError(t, os.MkdirAll(userDir, 0o755))

	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)

	path := filepath.Join(userDir, "records.csv")
	require.NoError(t, os.WriteFile(path, []byte("time,category\n"), 0o644))

	require.Eventually(t, func() bool {
		for _, k := range inv.invalidated() {
			if k == path {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}
