package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/semactivity/activity"
	"github.com/c360studio/semactivity/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noteJSON = `{"objectType":"note","id":"urn:note:1","content":"hi"}`
const activityJSON = `{"verb":"post","actor":"acct:alice@example.org"}`

func newWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	c, err := codec.New()
	require.NoError(t, err)
	w, err := NewWatcher(c, WatcherConfig{Root: root, DebounceDelay: 20 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func next(t *testing.T, w *Watcher) WatchEvent {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return WatchEvent{}
	}
}

// nextMatching skips intermediate events, such as a read racing a truncate,
// until one for path with op and no error arrives.
func nextMatching(t *testing.T, w *Watcher, path string, op WatchOperation) WatchEvent {
	t.Helper()
	for {
		ev := next(t, w)
		if ev.Path == path && ev.Operation == op && ev.Error == nil {
			return ev
		}
	}
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), noteJSON)
	writeFile(t, filepath.Join(root, "sub", "deep", "b.json"), activityJSON)
	writeFile(t, filepath.Join(root, "c.txt"), "nope")

	paths, err := Glob(root, DefaultPattern)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a.json"),
		filepath.Join(root, "sub", "deep", "b.json"),
	}, paths)
}

func TestInvalidPattern(t *testing.T) {
	c, err := codec.New()
	require.NoError(t, err)
	_, err = NewWatcher(c, WatcherConfig{Root: t.TempDir(), Pattern: "[unclosed"})
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "note.json"), noteJSON)
	writeFile(t, filepath.Join(root, "x", "act.json"), activityJSON)
	writeFile(t, filepath.Join(root, "bad.json"), `{"objectType":`)

	w := newWatcher(t, root)
	events, err := w.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)

	byPath := make(map[string]WatchEvent)
	for _, ev := range events {
		byPath[ev.Path] = ev
	}

	require.NoError(t, byPath["note.json"].Error)
	assert.Equal(t, "urn:note:1", byPath["note.json"].Document.Doc().ID())

	_, isActivity := byPath["x/act.json"].Document.(*activity.Activity)
	assert.True(t, isActivity, "sniffed as activity")

	assert.ErrorIs(t, byPath["bad.json"].Error, codec.ErrMalformed)

	_, ok := w.GetHash("note.json")
	assert.True(t, ok)
}

func TestWatchChanges(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "note.json")
	writeFile(t, path, noteJSON)

	w := newWatcher(t, root)
	_, err := w.Scan(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	writeFile(t, filepath.Join(root, "new.json"), activityJSON)
	ev := nextMatching(t, w, "new.json", OpCreate)
	_, isActivity := ev.Document.(*activity.Activity)
	assert.True(t, isActivity)

	writeFile(t, path, `{"objectType":"note","id":"urn:note:2"}`)
	ev = nextMatching(t, w, "note.json", OpModify)
	assert.Equal(t, "urn:note:2", ev.Document.Doc().ID())

	require.NoError(t, os.Remove(path))
	nextMatching(t, w, "note.json", OpDelete)
	_, ok := w.GetHash("note.json")
	assert.False(t, ok)
}
