package staging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultStaleAfter    = time.Hour
	DefaultSweepInterval = 10 * time.Minute

	stagedPrefix = "upload-"
)

// StartSweeper periodically removes staged files older than staleAfter.
// Handlers always remove their own files; the sweeper only catches files
// orphaned by a crash or a killed request.
func (s *Stager) StartSweeper(ctx context.Context, interval, staleAfter time.Duration, log *slog.Logger) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	go s.sweepLoop(ctx, interval, staleAfter, log)
}

func (s *Stager) sweepLoop(ctx context.Context, interval, staleAfter time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := s.Sweep(now.Add(-staleAfter))
			if err != nil {
				log.Warn("sweep staged files", "error", err)
			}
			if removed > 0 {
				log.Info("swept stale staged files", "count", removed)
			}
		}
	}
}

// Sweep removes staged files last modified before cutoff and reports how
// many were removed.
func (s *Stager) Sweep(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	var (
		removed int
		errs    []error
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), stagedPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
