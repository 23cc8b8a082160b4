package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanInvalidator struct {
	ch chan struct{}
}

func (c *chanInvalidator) InvalidateAll() {
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func TestWatch_InvalidatesOnPolicyWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := New(nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inv := &chanInvalidator{ch: make(chan struct{}, 1)}
	require.NoError(t, w.Watch(ctx, dir, inv))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "auto_policy_1.md"), []byte("updated"), 0o644))

	select {
	case <-inv.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected invalidation after policy write")
	}
}

func TestWatch_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	w, err := New(nil)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inv := &chanInvalidator{ch: make(chan struct{}, 1)}
	require.NoError(t, w.Watch(ctx, dir, inv))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644))

	select {
	case <-inv.ch:
		t.Fatal("json files must not trigger invalidation")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), &chanInvalidator{ch: make(chan struct{}, 1)})
	assert.Error(t, err)
}

func TestIsWatchedExtension(t *testing.T) {
	w, err := New([]string{".md"})
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.isWatchedExtension("policies/auto_policy_1.md"))
	assert.False(t, w.isWatchedExtension("policies/users.yaml"))
}
