package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/wallplay/wallplay/pkg/logger"
)

// instanceLock keeps a second copy of the app from fighting over the
// same display and audio device.
type instanceLock struct {
	fl  *flock.Flock
	log *logger.Logger
}

func acquireLock(dir string, log *logger.Logger) (*instanceLock, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("couldn't create the lock dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, "wallplay.lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("couldn't acquire the instance lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another instance is already running (%v)", fl.Path())
	}
	return &instanceLock{fl: fl, log: log}, nil
}

func (l *instanceLock) release() {
	if err := l.fl.Unlock(); err != nil {
		l.log.Error().Err(err).Msg("couldn't release the instance lock")
	}
}
