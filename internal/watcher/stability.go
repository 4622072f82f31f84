package watcher

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrFileNotFound is returned when the file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file does not stabilize within the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

const (
	// defaultStabilityTimeout bounds the wait for a download to finish.
	// Slow connections on large lossless rips can take a while, but a
	// file still growing after this long is treated as stuck.
	defaultStabilityTimeout = 30 * time.Second

	// minPollInterval keeps the size polling from busy-looping when the
	// threshold is very short.
	minPollInterval = 50 * time.Millisecond
)

// StabilityChecker waits for a file's size to stop changing. Download tools
// flush audio data in bursts, so a freshly created file is usually still
// being written when its create event arrives.
type StabilityChecker struct {
	threshold time.Duration // how long the size must hold still
	timeout   time.Duration // give up after this long
	interval  time.Duration // polling cadence
}

// NewStabilityChecker creates a StabilityChecker with the given threshold
// and default timeout. The polling interval is derived from the threshold.
func NewStabilityChecker(threshold time.Duration) *StabilityChecker {
	return NewStabilityCheckerWithOptions(threshold, defaultStabilityTimeout, pollIntervalFor(threshold))
}

// NewStabilityCheckerWithOptions creates a StabilityChecker with explicit
// timeout and polling interval.
func NewStabilityCheckerWithOptions(threshold, timeout, interval time.Duration) *StabilityChecker {
	return &StabilityChecker{
		threshold: threshold,
		timeout:   timeout,
		interval:  interval,
	}
}

// pollIntervalFor samples a few times per threshold window, clamped so short
// thresholds don't hammer stat.
func pollIntervalFor(threshold time.Duration) time.Duration {
	interval := threshold / 4
	if interval < minPollInterval {
		interval = minPollInterval
	}
	return interval
}

// WaitForStable blocks until the file size has held still for the threshold
// duration. It returns ErrFileNotFound if the file vanishes, ErrFileUnstable
// if it keeps growing past the timeout.
func (s *StabilityChecker) WaitForStable(path string) error {
	return s.WaitForStableWithContext(context.Background(), path)
}

// WaitForStableWithContext is WaitForStable with cancellation support.
func (s *StabilityChecker) WaitForStableWithContext(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	lastSize, err := s.fileSize(path)
	if err != nil {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			size, err := s.fileSize(path)
			if err != nil {
				// deleted or renamed away mid-download
				if os.IsNotExist(err) {
					return ErrFileNotFound
				}
				return err
			}
			if size != lastSize {
				lastSize = size
				lastChange = time.Now()
			} else if time.Since(lastChange) >= s.threshold {
				return nil
			}
		}
	}
}

// IsStable samples the file size twice, a threshold apart, and reports
// whether it held still. It blocks for the full threshold.
func (s *StabilityChecker) IsStable(path string) bool {
	return s.IsStableQuick(path, s.threshold)
}

// IsStableQuick is IsStable with a caller-chosen sample gap, for cheap
// checks that tolerate false positives.
func (s *StabilityChecker) IsStableQuick(path string, sampleInterval time.Duration) bool {
	first, err := s.fileSize(path)
	if err != nil {
		return false
	}
	time.Sleep(sampleInterval)
	second, err := s.fileSize(path)
	if err != nil {
		return false
	}
	return first == second
}

func (s *StabilityChecker) fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrFileNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// GetThreshold returns the configured stability threshold.
func (s *StabilityChecker) GetThreshold() time.Duration {
	return s.threshold
}

// GetTimeout returns the configured timeout.
func (s *StabilityChecker) GetTimeout() time.Duration {
	return s.timeout
}

// GetInterval returns the configured polling interval.
func (s *StabilityChecker) GetInterval() time.Duration {
	return s.interval
}
