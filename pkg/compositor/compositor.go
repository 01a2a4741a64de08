// Package compositor maps a decoded RGBA frame of arbitrary dimensions
// onto a destination pixel buffer of fixed dimensions under one of the
// supported scaling policies. It is pure pixel math with no knowledge of
// where the destination ends up (window, background, texture).
package compositor

import (
	"fmt"
	"strings"
)

type Policy int

const (
	PolicyDefault Policy = iota
	PolicyStretch
	PolicyFit
	PolicyFill
)

func (p Policy) String() string {
	switch p {
	case PolicyStretch:
		return "stretch"
	case PolicyFit:
		return "fit"
	case PolicyFill:
		return "fill"
	}
	return "default"
}

// ParsePolicy converts one of the literal mode strings into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "stretch":
		return PolicyStretch, nil
	case "fit":
		return PolicyFit, nil
	case "fill":
		return PolicyFill, nil
	case "default", "":
		return PolicyDefault, nil
	}
	return PolicyDefault, fmt.Errorf("invalid scaling mode: %v", s)
}

// Layout is the byte order of the destination surface pixels.
// Sources are always tightly packed RGBA.
type Layout int

const (
	LayoutRGBA Layout = iota
	LayoutBGRA
)

// Buffer is a tightly packed 4-bytes-per-pixel image.
type Buffer struct {
	Pix  []byte
	W, H int
}

func NewBuffer(w, h int) Buffer { return Buffer{Pix: make([]byte, w*h*4), W: w, H: h} }

// DefaultSourceLimit caps source dimensions before compositing. Sources
// beyond a surface/texture limit are downsampled rather than rejected.
const DefaultSourceLimit = 16384

// Rect is the placement of the scaled source inside the destination.
// X/Y may be negative under PolicyFill; the copy loop clips per pixel.
type Rect struct {
	W, H, X, Y int
}

// PlacementRect computes the render rectangle for a src of (srcW, srcH)
// inside a dst of (dstW, dstH) under the given policy.
//
// Fill intentionally keeps negative offsets so the overflowing axis stays
// centered; clamping them here would shift the visible crop. Every other
// policy gets its offsets clamped and its dimensions shrunk so the
// rectangle never exceeds the destination.
func PlacementRect(srcW, srcH, dstW, dstH int, p Policy) Rect {
	r := Rect{W: dstW, H: dstH}
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Rect{}
	}

	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(dstW) / float64(dstH)

	switch p {
	case PolicyStretch:
		// Full destination, already set.
	case PolicyFill:
		if srcAspect > dstAspect {
			// Source is wider, scale to height and crop horizontally.
			r.H = dstH
			r.W = int(float64(dstH) * srcAspect)
			r.X = -(r.W - dstW) / 2
		} else {
			// Source is taller, scale to width and crop vertically.
			r.W = dstW
			r.H = int(float64(dstW) / srcAspect)
			r.Y = -(r.H - dstH) / 2
		}
	default: // PolicyFit, PolicyDefault
		if srcAspect > dstAspect {
			r.W = dstW
			r.H = int(float64(dstW) / srcAspect)
			r.Y = (dstH - r.H) / 2
		} else {
			r.H = dstH
			r.W = int(float64(dstH) * srcAspect)
			r.X = (dstW - r.W) / 2
		}
	}

	if p != PolicyFill {
		if r.X < 0 {
			r.X = 0
		}
		if r.Y < 0 {
			r.Y = 0
		}
		if r.W > dstW-r.X {
			r.W = dstW - r.X
		}
		if r.H > dstH-r.Y {
			r.H = dstH - r.Y
		}
	}
	return r
}

// Composite renders src into dst under the given policy.
//
// flipV flips the source vertically during the copy. It is a property of
// the destination's coordinate convention (bottom-up surfaces), never of
// the policy or the media kind, so the caller must pass it explicitly.
func Composite(src, dst Buffer, p Policy, flipV bool, layout Layout) {
	// Transparent black letterbox/pillarbox background.
	clear(dst.Pix)

	if src.W <= 0 || src.H <= 0 || dst.W <= 0 || dst.H <= 0 {
		return
	}
	if src.W > DefaultSourceLimit || src.H > DefaultSourceLimit {
		// The flip is consumed by the downsample pass.
		src = Downsample(src, DefaultSourceLimit, flipV)
		flipV = false
	}

	r := PlacementRect(src.W, src.H, dst.W, dst.H, p)
	if r.W <= 0 || r.H <= 0 {
		return
	}

	for y := 0; y < r.H; y++ {
		dy := y + r.Y
		if dy < 0 || dy >= dst.H {
			// Fill's negative offsets land here; skipping is mandatory,
			// the write below would be out of bounds otherwise.
			continue
		}
		srcY := y * src.H / r.H
		if flipV {
			srcY = src.H - 1 - srcY
		}
		srcRow := srcY * src.W * 4
		dstRow := dy * dst.W * 4
		for x := 0; x < r.W; x++ {
			dx := x + r.X
			if dx < 0 || dx >= dst.W {
				continue
			}
			si := srcRow + (x*src.W/r.W)*4
			di := dstRow + dx*4
			px := src.Pix[si : si+4 : si+4]
			out := dst.Pix[di : di+4 : di+4]
			if layout == LayoutBGRA {
				out[0], out[1], out[2], out[3] = px[2], px[1], px[0], px[3]
			} else {
				out[0], out[1], out[2], out[3] = px[0], px[1], px[2], px[3]
			}
		}
	}
}

// Downsample shrinks src so neither dimension exceeds limit, preserving
// aspect ratio, with nearest-neighbor sampling. The conditional vertical
// flip matches the main copy loop so both paths agree on orientation.
// Sources already within the limit are returned as is (unless a flip is
// requested).
func Downsample(src Buffer, limit int, flipV bool) Buffer {
	if src.W <= limit && src.H <= limit && !flipV {
		return src
	}

	scale := 1.0
	if src.W > limit || src.H > limit {
		sw := float64(limit) / float64(src.W)
		sh := float64(limit) / float64(src.H)
		scale = sw
		if sh < sw {
			scale = sh
		}
	}
	w := int(float64(src.W) * scale)
	h := int(float64(src.H) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	out := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		srcY := y * src.H / h
		if flipV {
			srcY = src.H - 1 - srcY
		}
		srcRow := srcY * src.W * 4
		dstRow := y * w * 4
		for x := 0; x < w; x++ {
			si := srcRow + (x*src.W/w)*4
			copy(out.Pix[dstRow+x*4:dstRow+x*4+4], src.Pix[si:si+4])
		}
	}
	return out
}
