package display

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/wallplay/wallplay/pkg/thread"
)

// pumpEvents drains the SDL event queue on the main thread.
// It returns false once the user asked the window to go away.
func pumpEvents() bool {
	open := true
	thread.Main(func() {
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			switch e := ev.(type) {
			case *sdl.QuitEvent:
				open = false
			case *sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_CLOSE {
					open = false
				}
			case *sdl.KeyboardEvent:
				if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
					open = false
				}
			}
		}
	})
	return open
}
