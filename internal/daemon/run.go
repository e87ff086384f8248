package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// Run serves the HTTP API and re-scores on schedule and on assumption file
// changes until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Schedule != "" {
		if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", s.cfg.Schedule, err)
		}
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Str("config", s.cfg.ConfigPath).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
	s.scoreOnce("startup")

	if s.cfg.Schedule != "" {
		sched := cron.New()
		if _, err := sched.AddFunc(s.cfg.Schedule, func() { s.scoreOnce("schedule") }); err != nil {
			_ = server.Close()
			return fmt.Errorf("scheduling rescore: %w", err)
		}
		sched.Start()
		s.log.Info().Str("schedule", s.cfg.Schedule).Msg("scheduler started")
		defer func() {
			<-sched.Stop().Done() // wait for a running score to finish
		}()
	}

	events, watchErrs, closeWatch := s.watchConfig()
	defer closeWatch()

	var (
		debounce  *time.Timer
		debounceC <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !s.isConfigEvent(ev) {
				continue
			}
			s.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("config change detected")
			if debounce == nil {
				debounce = time.NewTimer(s.cfg.Debounce)
			} else {
				debounce.Reset(s.cfg.Debounce)
			}
			debounceC = debounce.C
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			s.log.Warn().Err(err).Msg("config watcher error")
		case <-debounceC:
			debounceC = nil
			s.scoreOnce("reload")
		}
	}
}

// watchConfig watches the directory holding the assumptions file, since
// editors often replace files by rename. A nil channel pair is returned when
// there is nothing to watch.
func (s *Service) watchConfig() (<-chan fsnotify.Event, <-chan error, func()) {
	noop := func() {}
	if s.cfg.ConfigPath == "" {
		return nil, nil, noop
	}

	dir := filepath.Dir(s.cfg.ConfigPath)
	if _, err := os.Stat(dir); err != nil {
		s.log.Warn().Str("dir", dir).Msg("config dir missing, reload on change disabled")
		return nil, nil, noop
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Warn().Err(err).Msg("creating config watcher failed")
		return nil, nil, noop
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		s.log.Warn().Err(err).Str("dir", dir).Msg("watching config dir failed")
		return nil, nil, noop
	}
	s.log.Info().Str("path", s.cfg.ConfigPath).Dur("debounce", s.cfg.Debounce).Msg("config watcher started")
	return w.Events, w.Errors, func() { _ = w.Close() }
}

func (s *Service) isConfigEvent(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(s.cfg.ConfigPath) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
