package compositor

import (
	"bytes"
	"testing"
)

func testPattern(w, h int) Buffer {
	b := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			b.Pix[i] = byte(x)
			b.Pix[i+1] = byte(y)
			b.Pix[i+2] = byte(x + y)
			b.Pix[i+3] = 255
		}
	}
	return b
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in     string
		policy Policy
		ok     bool
	}{
		{"stretch", PolicyStretch, true},
		{"fit", PolicyFit, true},
		{"fill", PolicyFill, true},
		{"default", PolicyDefault, true},
		{"FILL", PolicyFill, true},
		{"", PolicyDefault, true},
		{"cover", PolicyDefault, false},
	}
	for _, test := range tests {
		p, err := ParsePolicy(test.in)
		if (err == nil) != test.ok {
			t.Errorf("%q: expected ok=%v, got %v", test.in, test.ok, err)
		}
		if err == nil && p != test.policy {
			t.Errorf("%q: expected %v, got %v", test.in, test.policy, p)
		}
	}
}

func TestPlacementRectExample(t *testing.T) {
	// 1920x1080 source into an 800x600 destination.
	fit := PlacementRect(1920, 1080, 800, 600, PolicyFit)
	if fit.W != 800 || fit.H != 450 || fit.X != 0 || fit.Y != 75 {
		t.Errorf("fit: unexpected rect %+v", fit)
	}

	fill := PlacementRect(1920, 1080, 800, 600, PolicyFill)
	if fill.H != 600 || fill.Y != 0 {
		t.Errorf("fill: unexpected rect %+v", fill)
	}
	if fill.W < 1066 || fill.W > 1067 {
		t.Errorf("fill: render width should be ~1067, got %v", fill.W)
	}
	if fill.X != -(fill.W-800)/2 {
		t.Errorf("fill: offset should center the overflow, got %+v", fill)
	}
}

func TestFitNeverCrops(t *testing.T) {
	dims := []struct{ sw, sh, dw, dh int }{
		{1920, 1080, 800, 600},
		{1080, 1920, 800, 600},
		{640, 480, 1920, 1080},
		{100, 100, 300, 200},
		{3, 1000, 500, 500},
		{1000, 3, 500, 500},
	}
	for _, d := range dims {
		r := PlacementRect(d.sw, d.sh, d.dw, d.dh, PolicyFit)
		if r.X < 0 || r.Y < 0 || r.X+r.W > d.dw || r.Y+r.H > d.dh {
			t.Errorf("fit %vx%v -> %vx%v: rect %+v escapes the destination", d.sw, d.sh, d.dw, d.dh, r)
		}
	}
}

func TestFillAlwaysCovers(t *testing.T) {
	dims := []struct{ sw, sh, dw, dh int }{
		{1920, 1080, 800, 600},
		{1080, 1920, 800, 600},
		{640, 480, 1920, 1080},
		{100, 200, 300, 100},
	}
	for _, d := range dims {
		r := PlacementRect(d.sw, d.sh, d.dw, d.dh, PolicyFill)
		if r.W != d.dw && r.H != d.dh {
			t.Errorf("fill %vx%v -> %vx%v: no axis matches the destination, rect %+v", d.sw, d.sh, d.dw, d.dh, r)
		}
		if r.W < d.dw || r.H < d.dh {
			t.Errorf("fill %vx%v -> %vx%v: rect %+v does not cover", d.sw, d.sh, d.dw, d.dh, r)
		}
	}
}

func TestFillExactFit(t *testing.T) {
	// Same aspect ratio: fill must degenerate to a full-destination copy
	// with zero offsets and no off-by-one cropping.
	r := PlacementRect(1600, 900, 800, 450, PolicyFill)
	if r.W != 800 || r.H != 450 || r.X != 0 || r.Y != 0 {
		t.Fatalf("exact-fit fill: unexpected rect %+v", r)
	}

	src := testPattern(800, 450)
	dst := NewBuffer(800, 450)
	Composite(src, dst, PolicyFill, false, LayoutRGBA)
	if !bytes.Equal(src.Pix, dst.Pix) {
		t.Error("exact-fit fill at 1:1 should copy the source unchanged")
	}
}

func TestCompositeFillStaysInBounds(t *testing.T) {
	// A very wide source under fill produces a large negative X offset;
	// every out-of-range pixel must be skipped, not written.
	src := testPattern(200, 10)
	dst := NewBuffer(50, 50)
	Composite(src, dst, PolicyFill, false, LayoutRGBA)

	covered := 0
	for i := 3; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] != 0 {
			covered++
		}
	}
	if covered != dst.W*dst.H {
		t.Errorf("fill should cover all %v pixels, covered %v", dst.W*dst.H, covered)
	}
}

func TestCompositeStretchFlipSymmetry(t *testing.T) {
	src := testPattern(64, 48)
	up := NewBuffer(64, 48)
	down := NewBuffer(64, 48)
	Composite(src, up, PolicyStretch, false, LayoutRGBA)
	Composite(src, down, PolicyStretch, true, LayoutRGBA)

	for y := 0; y < 48; y++ {
		a := up.Pix[y*64*4 : (y+1)*64*4]
		b := down.Pix[(47-y)*64*4 : (48-y)*64*4]
		if !bytes.Equal(a, b) {
			t.Fatalf("row %v is not mirrored", y)
		}
	}
}

func TestCompositeBgraLayout(t *testing.T) {
	src := NewBuffer(1, 1)
	src.Pix[0], src.Pix[1], src.Pix[2], src.Pix[3] = 10, 20, 30, 40
	dst := NewBuffer(1, 1)
	Composite(src, dst, PolicyStretch, false, LayoutBGRA)
	if dst.Pix[0] != 30 || dst.Pix[1] != 20 || dst.Pix[2] != 10 || dst.Pix[3] != 40 {
		t.Errorf("unexpected BGRA pixel: %v", dst.Pix)
	}
}

func TestCompositeClearsLetterbox(t *testing.T) {
	src := testPattern(100, 100)
	dst := NewBuffer(300, 100)
	for i := range dst.Pix {
		dst.Pix[i] = 0xAA // stale pixels from the previous frame
	}
	Composite(src, dst, PolicyFit, false, LayoutRGBA)

	r := PlacementRect(100, 100, 300, 100, PolicyFit)
	for y := 0; y < dst.H; y++ {
		for x := 0; x < dst.W; x++ {
			inside := x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
			i := (y*dst.W + x) * 4
			if !inside && (dst.Pix[i] != 0 || dst.Pix[i+3] != 0) {
				t.Fatalf("pillarbox pixel (%v,%v) not cleared", x, y)
			}
		}
	}
}

func TestDownsample(t *testing.T) {
	src := testPattern(200, 100)
	out := Downsample(src, 50, false)
	if out.W != 50 || out.H != 25 {
		t.Fatalf("expected 50x25, got %vx%v", out.W, out.H)
	}

	// Within the limit and no flip: same buffer back.
	same := Downsample(src, 400, false)
	if &same.Pix[0] != &src.Pix[0] {
		t.Error("in-limit source should not be copied")
	}
}

func TestDownsampleFlip(t *testing.T) {
	src := testPattern(8, 4)
	flipped := Downsample(src, 8, true)
	for y := 0; y < 4; y++ {
		a := src.Pix[y*8*4 : (y+1)*8*4]
		b := flipped.Pix[(3-y)*8*4 : (4-y)*8*4]
		if !bytes.Equal(a, b) {
			t.Fatalf("row %v is not mirrored", y)
		}
	}
}
