package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "frames_decoded_total",
		Help: "Video frames decoded from the source stream.",
	})
	FramesPresented = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "frames_presented_total",
		Help: "Frames composited and handed to the presentation surface.",
	})
	FramesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "frames_skipped_total",
		Help: "Decoded frames not shown because the display gate was closed.",
	})
	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "decode_errors_total",
		Help: "Transient packet or frame decode failures that were skipped.",
	})
	Loops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "loops_total",
		Help: "Times playback wrapped from end of stream back to the start.",
	})
	AudioWrites = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "audio_writes_total",
		Help: "PCM buffers pushed to the audio sink.",
	})
	AudioWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wallplay", Name: "audio_write_errors_total",
		Help: "PCM buffers dropped because the sink write failed.",
	})
)
