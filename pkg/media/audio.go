package media

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/asticode/go-astiav"

	"github.com/wallplay/wallplay/pkg/audio"
	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/monitoring"
)

// audioDecoder is the audio pipeline's private demux/decode handle.
// It opens the file a second time so the video decoder's read position
// is never shared across threads.
type audioDecoder struct {
	log *logger.Logger

	fc    *astiav.FormatContext
	cc    *astiav.CodecContext
	aIdx  int
	pkt   *astiav.Packet
	frame *astiav.Frame

	sampleRate int
	channels   int
}

var errNoAudioStream = errors.New("no decodable audio stream")

// audioSource is the decode adapter the pipeline pulls PCM from.
type audioSource interface {
	info() (sampleRate, channels int)
	next() ([]byte, error)
	seekStart() error
	close()
}

// Swappable in tests.
var openAudioSource = func(path string, log *logger.Logger) (audioSource, error) {
	return openAudioDecoder(path, log)
}

func openAudioDecoder(path string, log *logger.Logger) (*audioDecoder, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("media: allocating format context failed")
	}
	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("media: opening %s failed: %w", path, err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("media: reading stream info failed: %w", err)
	}

	aIdx := -1
	for i, s := range fc.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeAudio {
			aIdx = i
			break
		}
	}
	if aIdx < 0 {
		fc.CloseInput()
		fc.Free()
		return nil, errNoAudioStream
	}

	par := fc.Streams()[aIdx].CodecParameters()
	dec := astiav.FindDecoder(par.CodecID())
	if dec == nil {
		fc.CloseInput()
		fc.Free()
		return nil, errNoAudioStream
	}
	cc := astiav.AllocCodecContext(dec)
	if cc == nil {
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("media: allocating audio codec context failed")
	}
	if err := par.ToCodecContext(cc); err != nil {
		cc.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("media: copying audio codec parameters failed: %w", err)
	}
	if err := cc.Open(dec, nil); err != nil {
		cc.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("media: opening %s decoder failed: %w", dec.Name(), err)
	}

	d := &audioDecoder{
		log:        log,
		fc:         fc,
		cc:         cc,
		aIdx:       aIdx,
		pkt:        astiav.AllocPacket(),
		frame:      astiav.AllocFrame(),
		sampleRate: cc.SampleRate(),
		channels:   cc.ChannelLayout().Channels(),
	}
	log.Info().Str("codec", dec.Name()).Int("rate", d.sampleRate).
		Int("ch", d.channels).Msg("audio stream opened")
	return d, nil
}

func (d *audioDecoder) info() (int, int) { return d.sampleRate, d.channels }

// next decodes one audio frame and converts it to interleaved S16LE.
func (d *audioDecoder) next() ([]byte, error) {
	for {
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				return nil, ErrEndOfStream
			}
			return nil, fmt.Errorf("media: reading audio packet failed: %w", err)
		}
		if d.pkt.StreamIndex() != d.aIdx {
			d.pkt.Unref()
			continue
		}
		err := d.cc.SendPacket(d.pkt)
		d.pkt.Unref()
		if err != nil && !errors.Is(err, astiav.ErrEagain) {
			d.log.PerFrame().Warn().Err(err).Msg("audio packet skipped")
			continue
		}
		if err = d.cc.ReceiveFrame(d.frame); err != nil {
			if errors.Is(err, astiav.ErrEagain) {
				continue
			}
			if errors.Is(err, astiav.ErrEof) {
				return nil, ErrEndOfStream
			}
			d.log.PerFrame().Warn().Err(err).Msg("audio frame skipped")
			continue
		}
		pcm := d.interleave(d.frame)
		d.frame.Unref()
		return pcm, nil
	}
}

func (d *audioDecoder) interleave(f *astiav.Frame) []byte {
	samples := f.NbSamples()
	channels := f.ChannelLayout().Channels()
	if channels <= 0 {
		channels = d.channels
	}

	planes := func(n int) ([][]byte, bool) {
		out := make([][]byte, n)
		for i := 0; i < n; i++ {
			b, err := f.Data().Bytes(i)
			if err != nil || len(b) == 0 {
				return nil, false
			}
			out[i] = b
		}
		return out, true
	}

	switch f.SampleFormat() {
	case astiav.SampleFormatS16:
		if data, err := f.Data().Bytes(0); err == nil {
			return pcmFromS16(data, samples, channels)
		}
	case astiav.SampleFormatFltp:
		if p, ok := planes(channels); ok {
			return pcmFromF32Planar(p, samples, channels)
		}
	case astiav.SampleFormatS16P:
		if p, ok := planes(channels); ok {
			return pcmFromS16Planar(p, samples, channels)
		}
	default:
		d.log.PerFrame().Warn().Str("format", f.SampleFormat().Name()).
			Msg("unsupported sample format, outputting silence")
	}
	return make([]byte, samples*channels*2)
}

func (d *audioDecoder) seekStart() error {
	if err := d.fc.SeekFrame(d.aIdx, 0, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return fmt.Errorf("media: seeking audio to start failed: %w", err)
	}
	d.cc.FlushBuffers()
	return nil
}

func (d *audioDecoder) close() {
	if d.frame != nil {
		d.frame.Free()
	}
	if d.pkt != nil {
		d.pkt.Free()
	}
	if d.cc != nil {
		d.cc.Free()
	}
	if d.fc != nil {
		d.fc.CloseInput()
		d.fc.Free()
	}
}

// pipeline streams decoded PCM to the sink on its own goroutine for the
// lifetime of one loaded media file. It shares nothing with the video
// path except the play/mute flags.
type pipeline struct {
	log  *logger.Logger
	sink audio.Sink
	dec  audioSource

	playing *atomic.Bool
	muted   *atomic.Bool

	quit chan struct{}
	done chan struct{}
}

// startPipeline opens the audio side of the file and starts streaming.
// Any failure is non-fatal to the video path: it returns nil and the
// player continues video-only.
func startPipeline(path string, sink audio.Sink, playing, muted *atomic.Bool, log *logger.Logger) *pipeline {
	dec, err := openAudioSource(path, log)
	if err != nil {
		if !errors.Is(err, errNoAudioStream) {
			log.Warn().Err(err).Msg("audio disabled")
		}
		return nil
	}
	rate, channels := dec.info()
	if err := sink.CreateStream(rate, channels); err != nil {
		log.Warn().Err(err).Msg("audio disabled")
		dec.close()
		return nil
	}

	p := &pipeline{
		log:     log,
		sink:    sink,
		dec:     dec,
		playing: playing,
		muted:   muted,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *pipeline) run() {
	defer close(p.done)
	for {
		select {
		case <-p.quit:
			return
		default:
		}

		// Cooperative polling keeps the loop responsive to play/mute
		// flips without any synchronization with the video path.
		if !p.playing.Load() || p.muted.Load() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		pcm, err := p.dec.next()
		if errors.Is(err, ErrEndOfStream) {
			if err = p.dec.seekStart(); err != nil {
				p.log.Warn().Err(err).Msg("audio loop failed")
				return
			}
			continue
		}
		if err != nil {
			p.log.PerFrame().Warn().Err(err).Msg("audio decode failed")
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if len(pcm) > 0 {
			if err = p.sink.Write(pcm); err != nil {
				monitoring.AudioWriteErrors.Inc()
				p.log.PerFrame().Warn().Err(err).Msg("audio write failed")
			} else {
				monitoring.AudioWrites.Inc()
			}
		}
		time.Sleep(100 * time.Microsecond)
	}
}

// stop joins the goroutine before any state it touches is freed.
func (p *pipeline) stop() {
	close(p.quit)
	<-p.done
	p.sink.DestroyStream()
	p.dec.close()
}
