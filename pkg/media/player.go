package media

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wallplay/wallplay/pkg/audio"
	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/monitoring"
	"github.com/wallplay/wallplay/pkg/os"
)

type State int

const (
	Unloaded State = iota
	Loaded
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	return [...]string{"unloaded", "loaded", "playing", "paused", "stopped"}[s]
}

// videoSource is the decode adapter the producer pulls from.
type videoSource interface {
	Info() sourceInfo
	Next() (Frame, error)
	SeekStart() error
	Close()
}

// Swappable in tests.
var openVideoSource = func(path string, log *logger.Logger) (videoSource, error) {
	return openDecoder(path, log)
}

// Player is the frame producer: it owns all decode state for one loaded
// media file, paces decoding through the playback clock, and runs the
// audio pipeline on the side.
//
// NextFrame/ShouldDisplay/Composite are meant to be called in sequence
// from a single render-driving goroutine; volume and mute may be set
// from anywhere.
type Player struct {
	log  *logger.Logger
	sink audio.Sink

	state State
	kind  Kind
	path  string

	src       videoSource
	clock     *clock
	targetFps float64 // user override, <=0 means native

	still    Frame
	hasStill bool

	playing atomic.Bool
	muted   atomic.Bool
	volume  int

	audio *pipeline
}

func NewPlayer(sink audio.Sink, log *logger.Logger) *Player {
	if sink == nil {
		sink = audio.Null{}
	}
	return &Player{
		log:    log.Extend(log.With().Str("m", "player")),
		sink:   sink,
		clock:  newClock(defaultFrameRate),
		volume: 100,
	}
}

// Load opens a media file, tearing down whatever was loaded before.
// On failure the player ends up with no media loaded.
func (p *Player) Load(path string) error {
	p.unload()

	if !os.Exists(path) {
		return fmt.Errorf("media file does not exist: %s", path)
	}

	kind := DetectKind(path)
	if kind == KindUnknown {
		return fmt.Errorf("unsupported media type: %s", path)
	}

	switch kind {
	case KindImage:
		if err := p.loadStill(path); err != nil {
			return err
		}
	default:
		src, err := openVideoSource(path, p.log)
		if err != nil {
			return err
		}
		p.src = src
		info := src.Info()
		p.clock = newClock(info.frameRate)
		p.clock.setTargetRate(p.targetFps)
		if info.hasAudio {
			p.audio = startPipeline(path, p.sink, &p.playing, &p.muted, p.log)
			if p.audio != nil {
				p.sink.SetVolume(p.volume)
				p.sink.SetMuted(p.muted.Load())
			}
		}
	}

	p.path = path
	p.kind = kind
	p.state = Loaded
	p.log.Info().Str("kind", kind.String()).Str("path", path).Msg("media loaded")
	return nil
}

// loadStill decodes a single frame through the FFmpeg path and keeps it
// cached; every later NextFrame returns the same buffer. Files FFmpeg
// rejects go through the native image decoders instead.
func (p *Player) loadStill(path string) error {
	if src, err := openVideoSource(path, p.log); err == nil {
		f, derr := src.Next()
		if derr == nil {
			pix := make([]byte, len(f.Pix))
			copy(pix, f.Pix)
			p.still = Frame{Pix: pix, W: f.W, H: f.H}
			p.hasStill = true
			src.Close()
			return nil
		}
		src.Close()
	}
	f, err := loadStillNative(path)
	if err != nil {
		return err
	}
	p.still = f
	p.hasStill = true
	return nil
}

func (p *Player) unload() {
	if p.audio != nil {
		p.audio.stop()
		p.audio = nil
	}
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	p.still = Frame{}
	p.hasStill = false
	p.playing.Store(false)
	p.state = Unloaded
	p.path = ""
	p.kind = KindUnknown
}

// Close releases all decode state and joins the audio goroutine.
func (p *Player) Close() { p.unload() }

func (p *Player) Play() error {
	if p.state == Unloaded {
		return errors.New("no media loaded")
	}
	p.playing.Store(true)
	p.state = Playing
	return nil
}

func (p *Player) Pause() {
	if p.state == Playing {
		p.playing.Store(false)
		p.state = Paused
	}
}

// Stop halts playback and resets the play position to the start.
func (p *Player) Stop() {
	if p.state == Unloaded {
		return
	}
	p.playing.Store(false)
	if p.src != nil {
		if err := p.src.SeekStart(); err != nil {
			p.log.Warn().Err(err).Msg("rewind on stop failed")
		}
	}
	p.clock.restart()
	p.state = Stopped
}

func (p *Player) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.volume = volume
	p.sink.SetVolume(volume)
}

func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
	p.sink.SetMuted(muted)
}

// SetDisplayRate sets the target display rate in frames per second;
// rate <= 0 restores the native frame rate.
func (p *Player) SetDisplayRate(fps float64) {
	p.targetFps = fps
	p.clock.setTargetRate(fps)
}

// NextFrame returns the next frame to consider for display.
//
// For videos and animated images this advances the decoder, waiting out
// the native-speed pacing if no display limit is in effect, and loops
// back to the start at end of stream. For still images it returns the
// cached frame every time.
//
// The returned pixel buffer is only valid until the next call.
func (p *Player) NextFrame() (Frame, error) {
	if p.state == Unloaded {
		return Frame{}, errors.New("no media loaded")
	}
	if p.hasStill {
		return p.still, nil
	}

	for {
		f, err := p.src.Next()
		if errors.Is(err, ErrEndOfStream) {
			if err = p.src.SeekStart(); err != nil {
				return Frame{}, err
			}
			p.clock.restart()
			monitoring.Loops.Inc()
			continue
		}
		if err != nil {
			return Frame{}, err
		}
		p.clock.frameDecoded(f.PTS)
		return f, nil
	}
}

// DecodeDelay is the pause the render loop should take between decode
// ticks. Zero at native speed (NextFrame already waited); one native
// frame interval when a display limit is set, so decode keeps native
// pace while the gate does the skipping.
func (p *Player) DecodeDelay() time.Duration { return p.clock.decodeDelay() }

// ShouldDisplay is the display gate: it must be called every tick of the
// render loop, and only a true return means "show a new frame now".
// Decode still advances regardless of the answer, so a display rate
// below the encode rate skips frames instead of slowing the video down.
func (p *Player) ShouldDisplay() bool { return p.clock.shouldDisplay() }

func (p *Player) State() State    { return p.state }
func (p *Player) Kind() Kind      { return p.kind }
func (p *Player) IsPlaying() bool { return p.playing.Load() }

// IsAnimated reports whether the loaded media needs continuous decode.
func (p *Player) IsAnimated() bool {
	return p.kind == KindVideo || p.kind == KindAnimatedImage
}

// Size returns the source dimensions.
func (p *Player) Size() (w, h int) {
	if p.hasStill {
		return p.still.W, p.still.H
	}
	if p.src != nil {
		info := p.src.Info()
		return info.width, info.height
	}
	return 0, 0
}

// HasAudio reports whether the audio pipeline is running for the loaded
// media.
func (p *Player) HasAudio() bool { return p.audio != nil }
