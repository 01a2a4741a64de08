// Package media turns an encoded media file into a stream of
// correctly-timed RGBA frames plus an independent audio playback path.
package media

import (
	"path/filepath"
	"strings"
)

// Kind classifies a media source by what the playback loop has to do
// with it: decode once (Image) or decode forever (AnimatedImage, Video).
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindAnimatedImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAnimatedImage:
		return "animated image"
	case KindVideo:
		return "video"
	}
	return "unknown"
}

var kinds = map[string]Kind{
	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage,
	".bmp": KindImage, ".tiff": KindImage, ".webp": KindImage,
	".gif": KindAnimatedImage,
	".mp4": KindVideo, ".avi": KindVideo, ".mkv": KindVideo,
	".mov": KindVideo, ".webm": KindVideo, ".flv": KindVideo,
}

// DetectKind guesses the media kind from the file extension.
func DetectKind(path string) Kind {
	return kinds[strings.ToLower(filepath.Ext(path))]
}

// Frame is one decoded picture: tightly packed RGBA, 4 bytes per pixel,
// with its presentation timestamp in seconds from stream start.
//
// The pixel buffer is owned by the producer and reused between calls;
// consumers must be done with it (i.e. have finished compositing) before
// asking for the next frame.
type Frame struct {
	Pix  []byte
	W, H int
	PTS  float64
}
