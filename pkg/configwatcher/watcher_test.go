package configwatcher

import (
	"certify_backend/internal/config"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	write := func(score int) {
		body := "storage:\n  type: memory\ncertificate:\n  min_exam_score: " + strconv.Itoa(score) + "\n"
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	}
	write(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, file, 50*time.Millisecond, func(cfg *config.Config) {
			got <- cfg.Certificate.MinExamScore
		})
	}()

	// give the watcher time to register before the first write
	time.Sleep(100 * time.Millisecond)
	write(80)

	select {
	case score := <-got:
		assert.Equal(t, 80, score)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "config.yaml"), time.Millisecond)
	assert.Error(t, err)
}
