package display

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/wallplay/wallplay/pkg/compositor"
	"github.com/wallplay/wallplay/pkg/config"
	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/thread"
)

// windowSurface blits through the window's software surface.
// SDL keeps those surfaces top-down in ARGB pixel order, which reads as
// BGRA byte-wise on little-endian machines.
type windowSurface struct {
	log *logger.Logger
	win *sdl.Window
}

func newWindowSurface(conf config.Display, log *logger.Logger) (Surface, error) {
	s := &windowSurface{log: log}
	var err error
	thread.Main(func() {
		if err = sdl.Init(sdl.INIT_VIDEO); err != nil {
			return
		}
		s.win, err = sdl.CreateWindow(
			conf.Title,
			int32(conf.X), int32(conf.Y),
			int32(conf.Width), int32(conf.Height),
			sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't open a window: %w", err)
	}
	log.Info().Int("w", conf.Width).Int("h", conf.Height).Msg("Software window surface is ready")
	return s, nil
}

func (s *windowSurface) Bounds() (w, h int) {
	thread.Main(func() {
		ww, wh := s.win.GetSize()
		w, h = int(ww), int(wh)
	})
	return
}

func (s *windowSurface) NeedsVFlip() bool          { return false }
func (s *windowSurface) Layout() compositor.Layout { return compositor.LayoutBGRA }

func (s *windowSurface) Present(pix []byte, w, h int) error {
	var err error
	thread.Main(func() {
		var surf *sdl.Surface
		if surf, err = s.win.GetSurface(); err != nil {
			return
		}
		if surf.Format.BytesPerPixel != 4 {
			err = fmt.Errorf("unsupported surface depth: %v bytes per pixel", surf.Format.BytesPerPixel)
			return
		}
		dst := surf.Pixels()
		pitch := int(surf.Pitch)
		rows := min(h, int(surf.H))
		rowLen := min(w, int(surf.W)) * 4
		for y := 0; y < rows; y++ {
			copy(dst[y*pitch:y*pitch+rowLen], pix[y*w*4:y*w*4+rowLen])
		}
		err = s.win.UpdateSurface()
	})
	return err
}

func (s *windowSurface) Pump() bool { return pumpEvents() }

func (s *windowSurface) Close() {
	thread.Main(func() {
		if s.win != nil {
			if err := s.win.Destroy(); err != nil {
				s.log.Error().Err(err).Msg("Couldn't destroy the window")
			}
			s.win = nil
		}
		sdl.Quit()
	})
}
