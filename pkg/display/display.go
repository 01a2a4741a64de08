// Package display hosts the presentation surfaces a composited frame
// can be handed to. The backend is picked once at startup; callers only
// ever see the Surface capability interface.
package display

import (
	"fmt"

	"github.com/wallplay/wallplay/pkg/compositor"
	"github.com/wallplay/wallplay/pkg/config"
	"github.com/wallplay/wallplay/pkg/logger"
)

// Surface receives composited pixel buffers and performs the device
// blit. It also tells the caller which coordinate convention and pixel
// layout to composite for.
type Surface interface {
	// Bounds is the destination size to composite against; it may
	// change between render calls (window resize).
	Bounds() (w, h int)
	// NeedsVFlip reports whether the surface consumes rows bottom-up.
	NeedsVFlip() bool
	// Layout is the surface's native pixel byte order.
	Layout() compositor.Layout
	// Present blits a w x h buffer in the surface's layout.
	Present(pix []byte, w, h int) error
	// Pump processes windowing events; false means the surface was
	// closed and the render loop should end.
	Pump() bool
	Close()
}

// New creates the surface selected by the configuration.
func New(conf config.Display, log *logger.Logger) (Surface, error) {
	switch conf.Backend {
	case "gl":
		return newGLSurface(conf, log)
	case "window", "":
		return newWindowSurface(conf, log)
	}
	return nil, fmt.Errorf("unknown display backend: %v", conf.Backend)
}
