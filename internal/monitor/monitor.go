// Package monitor reports changes in shared-storage availability while a
// process runs. Storage roots are never re-probed; only availability is.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// Availability is the live query being monitored, normally a *files.Resolver.
type Availability interface {
	IsExternalStorageAvailable() bool
}

// AvailabilityFunc adapts a function to Availability.
type AvailabilityFunc func() bool

func (f AvailabilityFunc) IsExternalStorageAvailable() bool { return f() }

// Monitor watches the directory containing the shared-storage root. Mount
// and unmount show up there as the root appearing or disappearing.
type Monitor struct {
	source   Availability
	root     string
	debounce time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Monitor for the shared root. A debounce of zero uses the
// default; an interval above zero also re-checks on a timer, which catches
// changes that produce no file system events, such as a remount read-only.
func New(source Availability, sharedRoot string, debounce, interval time.Duration, logger *slog.Logger) *Monitor {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Monitor{
		source:   source,
		root:     filepath.Clean(sharedRoot),
		debounce: debounce,
		interval: interval,
		logger:   logger,
	}
}

// relevant reports whether an event path touches the shared root.
func (m *Monitor) relevant(name string) bool {
	name = filepath.Clean(name)
	return name == m.root || strings.HasPrefix(name, m.root+string(filepath.Separator))
}

// Run calls onChange with the current availability and again every time it
// changes, until ctx is cancelled. It returns ctx.Err() on cancellation.
func (m *Monitor) Run(ctx context.Context, onChange func(available bool)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create storage watcher: %w", err)
	}
	defer watcher.Close()

	parent := filepath.Dir(m.root)
	if err := watcher.Add(parent); err != nil {
		return fmt.Errorf("failed to watch %s: %w", parent, err)
	}

	last := m.source.IsExternalStorageAvailable()
	onChange(last)
	m.logger.Info("Watching external storage", "root", m.root, "available", last)

	var (
		timerMu       sync.Mutex
		debounceTimer *time.Timer
	)
	recheck := make(chan struct{}, 1)
	signal := func() {
		select {
		case recheck <- struct{}{}:
		default:
		}
	}
	defer func() {
		timerMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		timerMu.Unlock()
	}()

	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Stopping storage watch")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if !m.relevant(event.Name) {
				continue
			}
			m.logger.Debug("Storage event", "event", event.String())
			timerMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(m.debounce, signal)
			timerMu.Unlock()

		case <-tick:
			signal()

		case <-recheck:
			now := m.source.IsExternalStorageAvailable()
			if now == last {
				continue
			}
			last = now
			m.logger.Info("External storage availability changed", "root", m.root, "available", now)
			onChange(now)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			m.logger.Error("Storage watcher error, continuing", "error", err)
		}
	}
}
