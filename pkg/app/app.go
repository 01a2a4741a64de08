// Package app wires the media player, the compositor, and the display
// surface into one running application.
package app

import (
	"errors"
	"time"

	"github.com/wallplay/wallplay/pkg/audio"
	"github.com/wallplay/wallplay/pkg/compositor"
	"github.com/wallplay/wallplay/pkg/config"
	"github.com/wallplay/wallplay/pkg/display"
	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/media"
	"github.com/wallplay/wallplay/pkg/monitoring"
)

// idleFrameDelay paces the loop when there is nothing to decode, so a
// paused video or a still image doesn't spin a core.
const idleFrameDelay = 50 * time.Millisecond

type App struct {
	conf config.WallplayConfig
	log  *logger.Logger

	player  *media.Player
	surface display.Surface
	policy  compositor.Policy
	dst     compositor.Buffer

	monitoring *monitoring.Monitoring
	lock       *instanceLock
	watcher    *mediaWatcher

	redraw bool
}

func New(conf config.WallplayConfig, log *logger.Logger) (*App, error) {
	if conf.Player.Media == "" {
		return nil, errors.New("no media file given, see --media")
	}
	policy, err := compositor.ParsePolicy(conf.Player.Scaling)
	if err != nil {
		return nil, err
	}

	lock, err := acquireLock(conf.Wallplay.LockDir, log)
	if err != nil {
		return nil, err
	}

	surface, err := display.New(conf.Display, log)
	if err != nil {
		lock.release()
		return nil, err
	}

	player := media.NewPlayer(audio.NewSDL(log), log)
	if err = player.Load(conf.Player.Media); err != nil {
		surface.Close()
		lock.release()
		return nil, err
	}
	player.SetVolume(conf.Player.Volume)
	player.SetMuted(conf.Player.Muted)
	if conf.Player.Fps > 0 {
		player.SetDisplayRate(float64(conf.Player.Fps))
	}

	a := &App{
		conf:    conf,
		log:     log.Extend(log.With().Str("m", "app")),
		player:  player,
		surface: surface,
		policy:  policy,
		lock:    lock,
	}
	a.monitoring = monitoring.New(conf.Monitoring, conf.Wallplay.Tag, log)
	if conf.Player.WatchMedia {
		if a.watcher, err = watchMedia(conf.Player.Media, log); err != nil {
			a.log.Warn().Err(err).Msg("media watch unavailable")
		}
	}
	return a, nil
}

// Run drives decode and presentation until the done channel closes or
// the surface is dismissed.
func (a *App) Run(done chan struct{}) {
	a.monitoring.Run()
	if err := a.player.Play(); err != nil {
		a.log.Error().Err(err).Msg("couldn't start playback")
		return
	}
	a.redraw = true

	var reloads <-chan struct{}
	if a.watcher != nil {
		reloads = a.watcher.events
	}

	for {
		select {
		case <-done:
			return
		case <-reloads:
			a.reload()
		default:
		}
		if !a.surface.Pump() {
			return
		}

		if a.player.IsAnimated() && a.player.IsPlaying() {
			frame, err := a.player.NextFrame()
			if err != nil {
				a.log.PerFrame().Error().Err(err).Msg("decode failed")
				time.Sleep(idleFrameDelay)
				continue
			}
			if a.player.ShouldDisplay() || a.redraw {
				a.present(frame)
			} else {
				monitoring.FramesSkipped.Inc()
			}
			// Under a display limit the clock doesn't pace NextFrame, so
			// the loop has to idle here or decode runs at CPU speed.
			if wait := a.player.DecodeDelay(); wait > 0 {
				time.Sleep(wait)
			}
			continue
		}

		// Still image, or a paused video keeping its last frame.
		if a.sizeChanged() {
			a.redraw = true
		}
		if a.redraw && !a.player.IsAnimated() {
			if frame, err := a.player.NextFrame(); err == nil {
				a.present(frame)
			}
		}
		time.Sleep(idleFrameDelay)
	}
}

func (a *App) present(frame media.Frame) {
	w, h := a.surface.Bounds()
	if a.dst.W != w || a.dst.H != h {
		a.dst = compositor.NewBuffer(w, h)
	}
	src := compositor.Buffer{Pix: frame.Pix, W: frame.W, H: frame.H}
	compositor.Composite(src, a.dst, a.policy, a.surface.NeedsVFlip(), a.surface.Layout())
	if err := a.surface.Present(a.dst.Pix, a.dst.W, a.dst.H); err != nil {
		a.log.PerFrame().Error().Err(err).Msg("present failed")
		return
	}
	monitoring.FramesPresented.Inc()
	a.redraw = false
}

func (a *App) sizeChanged() bool {
	w, h := a.surface.Bounds()
	return w != a.dst.W || h != a.dst.H
}

func (a *App) reload() {
	a.log.Info().Str("path", a.conf.Player.Media).Msg("media changed, reloading")
	// Load tears the old media down first, so a failed reload leaves
	// nothing loaded and the surface frozen on the last presented frame.
	if err := a.player.Load(a.conf.Player.Media); err != nil {
		a.log.Error().Err(err).Msg("reload failed, media unloaded until the file is fixed")
		return
	}
	a.player.SetVolume(a.conf.Player.Volume)
	a.player.SetMuted(a.conf.Player.Muted)
	if err := a.player.Play(); err != nil {
		a.log.Error().Err(err).Msg("couldn't restart playback")
	}
	a.redraw = true
}

func (a *App) Shutdown() {
	if a.watcher != nil {
		a.watcher.stop()
	}
	a.player.Close()
	a.surface.Close()
	a.monitoring.Shutdown()
	a.lock.release()
	a.log.Info().Msg("shutdown complete")
}
