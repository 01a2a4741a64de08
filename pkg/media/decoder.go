package media

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/monitoring"
)

var (
	// ErrUnsupportedFormat is returned on load when the container has no
	// decodable video stream. Fatal to that load only.
	ErrUnsupportedFormat = errors.New("no decodable video stream")
	// ErrEndOfStream is not an error during playback: the producer reacts
	// by seeking back to the start.
	ErrEndOfStream = errors.New("end of stream")
)

// Transient per-packet failures tolerated within one Next call before
// the decoder gives up on the file.
const maxSkippedPackets = 1024

type sourceInfo struct {
	width, height int
	frameRate     float64
	hasAudio      bool
}

// decoder wraps an FFmpeg demux/decode context for the first video
// stream of a file and converts every frame to tightly packed RGBA.
// It is not safe for concurrent use; the audio pipeline opens its own
// independent handle on the same path.
type decoder struct {
	log *logger.Logger

	fc       *astiav.FormatContext
	cc       *astiav.CodecContext
	vIdx     int
	timeBase astiav.Rational
	info     sourceInfo

	pkt      *astiav.Packet
	frame    *astiav.Frame
	draining bool

	// Lazily (re)created when the source dimensions or pixel format
	// change mid-stream.
	ssc              *astiav.SoftwareScaleContext
	rgb              *astiav.Frame
	sscW, sscH       int
	sscPix           astiav.PixelFormat
	rgbW, rgbH, rgbN int

	buf []byte // single reused RGBA buffer lent to callers
}

func rational(r astiav.Rational) float64 {
	if r.Den() == 0 {
		return 0
	}
	return float64(r.Num()) / float64(r.Den())
}

// openDecoder opens the media container and prepares the first video
// stream for decoding. Opening performs blocking I/O.
func openDecoder(path string, log *logger.Logger) (*decoder, error) {
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

	vIdx, aIdx := -1, -1
	for i, s := range fc.Streams() {
		switch s.CodecParameters().MediaType() {
		case astiav.MediaTypeVideo:
			if vIdx < 0 {
				vIdx = i
			}
		case astiav.MediaTypeAudio:
			if aIdx < 0 {
				aIdx = i
			}
		}
	}
	if vIdx < 0 {
		fc.CloseInput()
		fc.Free()
		return nil, ErrUnsupportedFormat
	}

	vst := fc.Streams()[vIdx]
	par := vst.CodecParameters()
	dec := astiav.FindDecoder(par.CodecID())
	if dec == nil {
		fc.CloseInput()
		fc.Free()
		return nil, ErrUnsupportedFormat
	}
	cc := astiav.AllocCodecContext(dec)
	if cc == nil {
		fc.CloseInput()
		fc.Free()
		return nil, errors.New("media: allocating codec context failed")
	}
	if err := par.ToCodecContext(cc); err != nil {
		cc.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("media: copying codec parameters failed: %w", err)
	}
	if err := cc.Open(dec, nil); err != nil {
		cc.Free()
		fc.CloseInput()
		fc.Free()
		return nil, fmt.Errorf("media: opening %s decoder failed: %w", dec.Name(), err)
	}

	rate := rational(vst.AvgFrameRate())
	if rate <= 0 {
		rate = rational(cc.Framerate())
	}
	if rate <= 0 {
		rate = defaultFrameRate
	}

	d := &decoder{
		log:      log,
		fc:       fc,
		cc:       cc,
		vIdx:     vIdx,
		timeBase: vst.TimeBase(),
		pkt:      astiav.AllocPacket(),
		frame:    astiav.AllocFrame(),
		info: sourceInfo{
			width:     cc.Width(),
			height:    cc.Height(),
			frameRate: rate,
			hasAudio:  aIdx >= 0,
		},
	}
	log.Info().Str("path", path).Str("codec", dec.Name()).
		Int("w", d.info.width).Int("h", d.info.height).
		Float64("fps", rate).Bool("audio", d.info.hasAudio).
		Msg("video stream opened")
	return d, nil
}

func (d *decoder) Info() sourceInfo { return d.info }

// Next decodes the next video frame. It returns ErrEndOfStream at the
// end of the container and skips over transient packet failures.
func (d *decoder) Next() (Frame, error) {
	skipped := 0
	for {
		if d.draining {
			if err := d.cc.ReceiveFrame(d.frame); err != nil {
				return Frame{}, ErrEndOfStream
			}
			return d.emit()
		}
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				// Reordering codecs buffer frames that only come out
				// after a flush packet; drain before reporting the end.
				d.draining = true
				if serr := d.cc.SendPacket(nil); serr != nil && !errors.Is(serr, astiav.ErrEagain) {
					return Frame{}, ErrEndOfStream
				}
				continue
			}
			monitoring.DecodeErrors.Inc()
			if skipped++; skipped > maxSkippedPackets {
				return Frame{}, fmt.Errorf("media: reading frame failed: %w", err)
			}
			continue
		}
		if d.pkt.StreamIndex() != d.vIdx {
			d.pkt.Unref()
			continue
		}
		err := d.cc.SendPacket(d.pkt)
		d.pkt.Unref()
		if err != nil && !errors.Is(err, astiav.ErrEagain) {
			monitoring.DecodeErrors.Inc()
			d.log.PerFrame().Warn().Err(err).Msg("packet skipped")
			if skipped++; skipped > maxSkippedPackets {
				return Frame{}, fmt.Errorf("media: decoding failed: %w", err)
			}
			continue
		}
		if err = d.cc.ReceiveFrame(d.frame); err != nil {
			if errors.Is(err, astiav.ErrEagain) {
				continue // decoder wants more packets
			}
			if errors.Is(err, astiav.ErrEof) {
				return Frame{}, ErrEndOfStream
			}
			monitoring.DecodeErrors.Inc()
			d.log.PerFrame().Warn().Err(err).Msg("frame skipped")
			if skipped++; skipped > maxSkippedPackets {
				return Frame{}, fmt.Errorf("media: decoding failed: %w", err)
			}
			continue
		}

		return d.emit()
	}
}

// emit converts the decoded frame sitting in d.frame and hands it out.
func (d *decoder) emit() (Frame, error) {
	pts := float64(d.frame.Pts()) * rational(d.timeBase)
	if pts < 0 {
		pts = 0
	}
	f, err := d.toRGBA(d.frame, pts)
	d.frame.Unref()
	if err != nil {
		return Frame{}, err
	}
	monitoring.FramesDecoded.Inc()
	return f, nil
}

// SeekStart rewinds to the beginning of the stream for looping.
func (d *decoder) SeekStart() error {
	if err := d.fc.SeekFrame(d.vIdx, 0, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		return fmt.Errorf("media: seeking to start failed: %w", err)
	}
	d.cc.FlushBuffers()
	d.draining = false
	return nil
}

func (d *decoder) Close() {
	if d.rgb != nil {
		d.rgb.Free()
	}
	if d.ssc != nil {
		d.ssc.Free()
	}
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

// ensureScaler (re)builds the pixel format converter when the source
// geometry changes mid-stream.
func (d *decoder) ensureScaler(src *astiav.Frame) error {
	w, h, pix := src.Width(), src.Height(), src.PixelFormat()
	if d.ssc != nil && w == d.sscW && h == d.sscH && pix == d.sscPix {
		return nil
	}
	if d.rgb != nil {
		d.rgb.Free()
		d.rgb = nil
	}
	if d.ssc != nil {
		d.ssc.Free()
		d.ssc = nil
	}

	ssc, err := astiav.CreateSoftwareScaleContext(
		w, h, pix,
		w, h, astiav.PixelFormatRgba,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear),
	)
	if err != nil {
		return fmt.Errorf("media: creating %dx%d %s to RGBA converter failed: %w", w, h, pix, err)
	}
	rgb := astiav.AllocFrame()
	rgb.SetWidth(w)
	rgb.SetHeight(h)
	rgb.SetPixelFormat(astiav.PixelFormatRgba)
	if err := rgb.AllocBuffer(1); err != nil {
		rgb.Free()
		ssc.Free()
		return fmt.Errorf("media: allocating RGBA frame failed: %w", err)
	}
	n, err := rgb.ImageBufferSize(1)
	if err != nil {
		rgb.Free()
		ssc.Free()
		return fmt.Errorf("media: sizing RGBA frame failed: %w", err)
	}

	d.ssc, d.rgb = ssc, rgb
	d.sscW, d.sscH, d.sscPix = w, h, pix
	d.rgbW, d.rgbH, d.rgbN = w, h, n
	if cap(d.buf) < n {
		d.buf = make([]byte, n)
	}
	return nil
}

// toRGBA converts a decoded frame into the single reused RGBA buffer.
func (d *decoder) toRGBA(src *astiav.Frame, pts float64) (Frame, error) {
	if err := d.ensureScaler(src); err != nil {
		return Frame{}, err
	}
	if err := d.ssc.ScaleFrame(src, d.rgb); err != nil {
		return Frame{}, fmt.Errorf("media: converting frame to RGBA failed: %w", err)
	}
	buf := d.buf[:d.rgbN]
	if _, err := d.rgb.ImageCopyToBuffer(buf, 1); err != nil {
		return Frame{}, fmt.Errorf("media: copying frame pixels failed: %w", err)
	}
	return Frame{Pix: buf, W: d.rgbW, H: d.rgbH, PTS: pts}, nil
}
