package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tbuchner/relais/pkg/retry"
)

// Store holds the live configuration and supports atomic reloads. Readers
// take an immutable snapshot; a reload swaps the whole config in one step,
// so no caller ever observes a half-applied change.
type Store struct {
	path    string
	current atomic.Pointer[Config]
	logger  *slog.Logger
}

// NewStore loads the initial configuration and returns a store tracking
// the discovered config file.
func NewStore(configPath string) (*Store, error) {
	path := discoverConfigFile(configPath)

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:   path,
		logger: slog.Default().With("component", "config"),
	}
	s.current.Store(cfg)
	return s, nil
}

// Snapshot returns the current configuration. The returned value must be
// treated as read-only.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// PolicyFor returns the effective retry policy for the named provider from
// the current snapshot.
func (s *Store) PolicyFor(providerID string) retry.Policy {
	return s.Snapshot().PolicyFor(providerID)
}

// Reload re-reads the config file and swaps in the new configuration. On
// any load or validation error the previous configuration stays active.
func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	s.current.Store(cfg)
	s.logger.Info("configuration reloaded", "path", s.path)
	return nil
}

// Watch reloads the configuration whenever the config file changes. It
// blocks until the context is canceled. Editors and orchestrators often
// replace the file rather than write in place, so the parent directory is
// watched and events are debounced before reloading.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	var pending <-chan time.Time

	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				s.logger.Error("config reload failed, keeping previous configuration", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("config watcher error", "error", err)
		}
	}
}
