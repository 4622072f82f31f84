package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// callRecorder collects file handler invocations across goroutines.
type callRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *callRecorder) record(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *callRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func (r *callRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// newTestWatcher builds a watcher with timings short enough for tests.
// The config debounce is in whole seconds, so the debouncer is swapped
// for one firing after delay instead.
func newTestWatcher(handler FileHandler, delay time.Duration) *Watcher {
	w := New(&WatchConfig{
		DebounceSeconds:   1,
		StableThresholdMs: 40,
		IgnorePatterns:    DefaultIgnorePatterns(),
	}, handler)
	w.debouncer = NewDebouncer(delay, w.debounceFired)
	return w
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcherOrganizesNewAudioFile(t *testing.T) {
	dir := t.TempDir()
	rec := &callRecorder{}
	handler := func(path string) (bool, bool, error) {
		rec.record(path)
		return true, false, nil
	}

	w := newTestWatcher(handler, 50*time.Millisecond)
	if err := w.Start([]string{dir}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	target := filepath.Join(dir, "Dool - She Goat.opus")
	if err := os.WriteFile(target, []byte("opus data"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return rec.count() >= 1 }) {
		t.Fatal("handler was never called for new file")
	}

	summary := w.Stop()
	if summary.FilesOrganized != 1 {
		t.Errorf("FilesOrganized = %d, want 1", summary.FilesOrganized)
	}
	if got := rec.all()[0]; got != target {
		t.Errorf("handler path = %q, want %q", got, target)
	}
}

func TestWatcherIgnoresDownloadTempFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &callRecorder{}
	handler := func(path string) (bool, bool, error) {
		rec.record(path)
		return true, false, nil
	}

	w := newTestWatcher(handler, 30*time.Millisecond)
	if err := w.Start([]string{dir}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, name := range []string{"track.opus.part", "track.ytdl", "track.crdownload"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}

	// Give events time to flow through; the handler must stay silent.
	time.Sleep(400 * time.Millisecond)
	summary := w.Stop()

	if rec.count() != 0 {
		t.Errorf("handler called %d times for temp files: %v", rec.count(), rec.all())
	}
	if summary.FilesOrganized != 0 {
		t.Errorf("FilesOrganized = %d, want 0", summary.FilesOrganized)
	}
	if summary.FilesSkipped != 3 {
		t.Errorf("FilesSkipped = %d, want 3", summary.FilesSkipped)
	}
}

func TestWatcherDebounceCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	rec := &callRecorder{}
	handler := func(path string) (bool, bool, error) {
		rec.record(path)
		return true, false, nil
	}

	w := newTestWatcher(handler, 150*time.Millisecond)
	if err := w.Start([]string{dir}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Simulate a download writing the file in chunks.
	target := filepath.Join(dir, "Crystal Viper - The Witch Is Back.flac")
	f, err := os.Create(target)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.Write([]byte("chunk")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		f.Sync()
		time.Sleep(30 * time.Millisecond)
	}
	f.Close()

	if !waitFor(t, 3*time.Second, func() bool { return rec.count() >= 1 }) {
		t.Fatal("handler was never called")
	}
	time.Sleep(300 * time.Millisecond)

	w.Stop()
	if rec.count() != 1 {
		t.Errorf("handler called %d times, want 1 after debounce", rec.count())
	}
}

func TestWatcherSummaryCounts(t *testing.T) {
	dir := t.TempDir()
	handler := func(path string) (bool, bool, error) {
		switch filepath.Base(path) {
		case "Dool - Oweynagat.opus":
			return true, false, nil
		case "unknown artist.mp3":
			return false, true, nil
		default:
			return false, false, nil
		}
	}

	w := newTestWatcher(handler, 30*time.Millisecond)
	if err := w.Start([]string{dir}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for _, name := range []string{"Dool - Oweynagat.opus", "unknown artist.mp3", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}

	ok := waitFor(t, 3*time.Second, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.filesOrganized+w.filesReviewed+w.filesSkipped >= 3
	})
	summary := w.Stop()
	if !ok {
		t.Fatalf("not all files processed: %+v", summary)
	}

	if summary.FilesOrganized != 1 {
		t.Errorf("FilesOrganized = %d, want 1", summary.FilesOrganized)
	}
	if summary.FilesReviewed != 1 {
		t.Errorf("FilesReviewed = %d, want 1", summary.FilesReviewed)
	}
	if summary.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", summary.FilesSkipped)
	}
	if summary.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", summary.Duration)
	}
}

func TestWatcherHandlerErrorCountsAsSkipped(t *testing.T) {
	dir := t.TempDir()
	handler := func(path string) (bool, bool, error) {
		return false, false, os.ErrPermission
	}

	var reported []error
	var mu sync.Mutex

	w := newTestWatcher(handler, 30*time.Millisecond)
	w.SetErrorHandler(func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	})
	if err := w.Start([]string{dir}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "locked.opus"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) >= 1
	})
	summary := w.Stop()

	if summary.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", summary.FilesSkipped)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 {
		t.Errorf("error handler called %d times, want 1", len(reported))
	}
}

func TestWatcherMultipleDirectories(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	rec := &callRecorder{}
	handler := func(path string) (bool, bool, error) {
		rec.record(path)
		return true, false, nil
	}

	w := newTestWatcher(handler, 30*time.Millisecond)
	if err := w.Start([]string{dirA, dirB}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dirA, "a.opus"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirB, "b.opus"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return rec.count() >= 2 }) {
		t.Fatalf("handler called %d times, want 2", rec.count())
	}

	summary := w.Stop()
	if summary.FilesOrganized != 2 {
		t.Errorf("FilesOrganized = %d, want 2", summary.FilesOrganized)
	}
}

func TestWatcherStartMissingDirectory(t *testing.T) {
	w := newTestWatcher(nil, 30*time.Millisecond)
	err := w.Start([]string{"/nonexistent/watch/dir"})
	if err == nil {
		w.Stop()
		t.Fatal("Start() on missing directory should fail")
	}
}

func TestWatcherStartStop(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(nil, 30*time.Millisecond)

	if err := w.Start([]string{dir}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !w.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	summary := w.Stop()
	if summary == nil {
		t.Fatal("Stop() returned nil summary")
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestDefaultWatchConfig(t *testing.T) {
	cfg := DefaultWatchConfig()
	if cfg.DebounceSeconds != 2 {
		t.Errorf("DebounceSeconds = %d, want 2", cfg.DebounceSeconds)
	}
	if cfg.StableThresholdMs != 1000 {
		t.Errorf("StableThresholdMs = %d, want 1000", cfg.StableThresholdMs)
	}
	if cfg.StabilityTimeoutSecs != 30 {
		t.Errorf("StabilityTimeoutSecs = %d, want 30", cfg.StabilityTimeoutSecs)
	}
	if len(cfg.IgnorePatterns) == 0 {
		t.Error("IgnorePatterns should not be empty")
	}
}

func TestNewWiresStabilityFromConfig(t *testing.T) {
	cfg := DefaultWatchConfig()
	cfg.StableThresholdMs = 400
	cfg.StabilityTimeoutSecs = 5

	w := New(cfg, nil)
	if got := w.stability.GetThreshold(); got != 400*time.Millisecond {
		t.Errorf("threshold = %v, want 400ms", got)
	}
	if got := w.stability.GetTimeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
	if got := w.stability.GetInterval(); got != 100*time.Millisecond {
		t.Errorf("interval = %v, want threshold/4", got)
	}

	cfg.StabilityTimeoutSecs = 0
	w = New(cfg, nil)
	if got := w.stability.GetTimeout(); got != defaultStabilityTimeout {
		t.Errorf("timeout = %v, want the default", got)
	}
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	w := New(nil, nil)
	cfg := w.GetConfig()
	if cfg == nil {
		t.Fatal("GetConfig() returned nil")
	}
	if cfg.DebounceSeconds != 2 {
		t.Errorf("DebounceSeconds = %d, want default 2", cfg.DebounceSeconds)
	}
}
