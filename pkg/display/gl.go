package display

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/wallplay/wallplay/pkg/compositor"
	"github.com/wallplay/wallplay/pkg/config"
	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/thread"
)

// glSurface draws frames with glDrawPixels into an OpenGL 2.1 context.
// OpenGL raster rows run bottom-up, so callers composite flipped.
type glSurface struct {
	log *logger.Logger
	win *sdl.Window
	ctx sdl.GLContext
}

func newGLSurface(conf config.Display, log *logger.Logger) (Surface, error) {
	s := &glSurface{log: log}
	var err error
	thread.Main(func() {
		if err = sdl.Init(sdl.INIT_VIDEO); err != nil {
			return
		}
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
		_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
		_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
		if s.win, err = sdl.CreateWindow(
			conf.Title,
			int32(conf.X), int32(conf.Y),
			int32(conf.Width), int32(conf.Height),
			sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
		); err != nil {
			return
		}
		if s.ctx, err = s.win.GLCreateContext(); err != nil {
			return
		}
		err = gl.Init()
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't init an OpenGL surface: %w", err)
	}
	log.Info().
		Str("version", gl.GoStr(gl.GetString(gl.VERSION))).
		Str("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		Msg("OpenGL surface is ready")
	return s, nil
}

func (s *glSurface) Bounds() (w, h int) {
	thread.Main(func() {
		ww, wh := s.win.GLGetDrawableSize()
		w, h = int(ww), int(wh)
	})
	return
}

func (s *glSurface) NeedsVFlip() bool          { return true }
func (s *glSurface) Layout() compositor.Layout { return compositor.LayoutRGBA }

func (s *glSurface) Present(pix []byte, w, h int) error {
	if len(pix) < w*h*4 {
		return fmt.Errorf("short pixel buffer: %v for %vx%v", len(pix), w, h)
	}
	thread.Main(func() {
		dw, dh := s.win.GLGetDrawableSize()
		gl.Viewport(0, 0, dw, dh)
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.RasterPos2i(-1, -1)
		if int(dw) != w || int(dh) != h {
			// the window resized between composite and present
			gl.PixelZoom(float32(dw)/float32(w), float32(dh)/float32(h))
		} else {
			gl.PixelZoom(1, 1)
		}
		gl.DrawPixels(int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
		s.win.GLSwap()
	})
	return nil
}

func (s *glSurface) Pump() bool { return pumpEvents() }

func (s *glSurface) Close() {
	thread.Main(func() {
		if s.ctx != nil {
			sdl.GLDeleteContext(s.ctx)
			s.ctx = nil
		}
		if s.win != nil {
			if err := s.win.Destroy(); err != nil {
				s.log.Error().Err(err).Msg("Couldn't destroy the GL window")
			}
			s.win = nil
		}
		sdl.Quit()
	})
}
