package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRelevant(t *testing.T) {
	w := &Watcher{base: "fleet.db"}
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"db write", fsnotify.Event{Name: "/data/fleet.db", Op: fsnotify.Write}, true},
		{"wal create", fsnotify.Event{Name: "/data/fleet.db-wal", Op: fsnotify.Create}, true},
		{"journal remove", fsnotify.Event{Name: "/data/fleet.db-journal", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "/data/fleet.db", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write}, false},
		{"prefix lookalike", fsnotify.Event{Name: "/data/fleet.dbx", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.ev))
		})
	}
}

func TestWatcherSignalsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fleet.db")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	w, err := Watch(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after writing the database")
	}
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close is a no-op")
}
