package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunReportsChanges(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.zz")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("func run() {\n}\n"), 0o644))

	w, err := New([]string{src}, WithDelay(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) error {
			changes <- struct{}{}
			return nil
		})
	}()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	select {
	case <-changes:
		t.Fatal("change reported for an unwatched file")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(src, []byte("func run() {\n\tnum a = 1\n}\n"), 0o644))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "main.zz")})
	require.Error(t, err)
}
