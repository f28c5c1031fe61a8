// Package watch runs a sync at startup, and again every time the credential
// files change.
package watch

import (
	"context"
	"time"

	"github.com/dataway/truenas-cert-sync/internal/logging"
	"github.com/dataway/truenas-cert-sync/internal/repeat"
)

const DefaultInterval = 60 * time.Second

type ModTimer interface {
	ModTime() (time.Time, error)
}

// SyncFunc runs one reconciliation pass.
type SyncFunc func(ctx context.Context, force bool) error

type Loop struct {
	source   ModTimer
	sync     SyncFunc
	interval time.Duration

	// baseline is the latest modification time seen by check. The zero value
	// means no observation has been made yet.
	baseline time.Time
}

// New returns a Loop that checks source every interval. A zero interval uses
// DefaultInterval.
func New(source ModTimer, sync SyncFunc, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{source: source, sync: sync, interval: interval}
}

// Run syncs once with force. When oneshot is true Run returns the error from
// that sync. Otherwise Run keeps checking the files for changes until ctx is
// done, and a failed sync is logged and retried only after the next change.
func (l *Loop) Run(ctx context.Context, oneshot, force bool) error {
	if err := l.sync(ctx, force); err != nil {
		return err
	}
	if oneshot {
		return nil
	}

	logging.L.Info().Dur("interval", l.interval).Msg("watching for changes")
	// repeat.Run only returns once ctx is done.
	_ = repeat.Run(ctx, l.interval, l.check)
	return nil
}

func (l *Loop) check(ctx context.Context) {
	modTime, err := l.source.ModTime()
	if err != nil {
		logging.Warnf("failed to check credential files: %v", err)
		return
	}

	previous := l.baseline
	l.baseline = modTime
	if previous.IsZero() || modTime.Equal(previous) {
		return
	}

	logging.L.Info().Time("modified", modTime).Msg("credential files changed, syncing")
	if err := l.sync(ctx, false); err != nil {
		logging.Errorf("sync failed: %v", err)
	}
}
