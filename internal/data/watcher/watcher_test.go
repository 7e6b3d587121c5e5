package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isHTML(path string) bool {
	return strings.HasSuffix(path, ".html")
}

func waitForEvent(t *testing.T, fw *FileWatcher, path string) FileEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-fw.Events():
			require.True(t, ok, "event channel closed")
			if ev.Path == path {
				return ev
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestNewFileWatcherMissingDirectory(t *testing.T) {
	fw, err := NewFileWatcher([]string{"/path/that/does/not/exist"}, isHTML)
	assert.Error(t, err)
	assert.Nil(t, fw)
}

func TestFileWatcherReportsMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, isHTML)
	require.NoError(t, err)
	defer fw.Close()

	ignored := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0644))

	report := filepath.Join(dir, "debug-2024.html")
	require.NoError(t, os.WriteFile(report, []byte("<table></table>"), 0644))

	ev := waitForEvent(t, fw, report)
	assert.False(t, ev.Removed)
	assert.NotEmpty(t, ev.Operation)

	require.NoError(t, os.Remove(report))
	for {
		ev = waitForEvent(t, fw, report)
		if ev.Removed {
			break
		}
	}
}

func TestFileWatcherClose(t *testing.T) {
	fw, err := NewFileWatcher([]string{t.TempDir()}, isHTML)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	select {
	case _, ok := <-fw.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed")
	}
}
