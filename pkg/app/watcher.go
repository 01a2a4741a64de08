package app

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wallplay/wallplay/pkg/logger"
)

const reloadDebounce = 250 * time.Millisecond

// mediaWatcher signals when the media file is rewritten on disk.
// Editors and converters replace files via rename, so the parent
// directory is watched rather than the file itself.
type mediaWatcher struct {
	fw     *fsnotify.Watcher
	events chan struct{}
	quit   chan struct{}
	done   chan struct{}
}

func watchMedia(path string, log *logger.Logger) (*mediaWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &mediaWatcher{
		fw:     fw,
		events: make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run(abs, log)
	log.Info().Str("path", abs).Msg("watching the media file for changes")
	return w, nil
}

func (w *mediaWatcher) run(target string, log *logger.Logger) {
	defer close(w.done)
	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.quit:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce the burst of events a single save produces.
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			select {
			case w.events <- struct{}{}:
			default:
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("media watch error")
		}
	}
}

func (w *mediaWatcher) stop() {
	close(w.quit)
	_ = w.fw.Close()
	<-w.done
}
