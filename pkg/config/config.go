package config

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

type (
	WallplayConfig struct {
		Wallplay   Wallplay
		Player     Player
		Display    Display
		Monitoring Monitoring
	}
	Wallplay struct {
		Debug   bool
		Tag     string
		LockDir string
	}
	Player struct {
		Media      string
		Scaling    string `fig:"scaling" default:"default"`
		Fps        int
		Volume     int `fig:"volume" default:"100"`
		Muted      bool
		WatchMedia bool
	}
	Display struct {
		Backend string `fig:"backend" default:"window"`
		Title   string `fig:"title" default:"wallplay"`
		X       int
		Y       int
		Width   int `fig:"width" default:"1280"`
		Height  int `fig:"height" default:"720"`
	}
	Monitoring struct {
		Port             int
		URLPrefix        string
		MetricEnabled    bool
		ProfilingEnabled bool
	}
)

var scalingModes = map[string]struct{}{
	"stretch": {}, "fit": {}, "fill": {}, "default": {},
}

// Validate checks the values which can't be expressed as fig tags.
// An invalid scaling mode string is a load-time error.
func (c *WallplayConfig) Validate() error {
	if _, ok := scalingModes[strings.ToLower(c.Player.Scaling)]; !ok {
		return fmt.Errorf("invalid scaling mode: %v", c.Player.Scaling)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 100 {
		return fmt.Errorf("volume out of range [0,100]: %v", c.Player.Volume)
	}
	switch c.Display.Backend {
	case "window", "gl":
	default:
		return fmt.Errorf("unknown display backend: %v", c.Display.Backend)
	}
	return nil
}

// ParseFlags defines and parses the CLI overrides on top of file/env values.
func (c *WallplayConfig) ParseFlags() {
	flag.StringVar(&c.Player.Media, "media", c.Player.Media, "Path to the media file (image, GIF, or video)")
	flag.StringVar(&c.Player.Scaling, "scaling", c.Player.Scaling, "Scaling mode: stretch|fit|fill|default")
	flag.IntVar(&c.Player.Fps, "fps", c.Player.Fps, "Display FPS limit, <=0 means the native video rate")
	flag.IntVar(&c.Player.Volume, "volume", c.Player.Volume, "Audio volume [0,100]")
	flag.BoolVar(&c.Player.Muted, "silent", c.Player.Muted, "Mute audio")
	flag.BoolVar(&c.Player.WatchMedia, "watch", c.Player.WatchMedia, "Reload the media file when it changes on disk")
	flag.StringVar(&c.Display.Backend, "backend", c.Display.Backend, "Presentation backend: window|gl")
	flag.IntVar(&c.Display.Width, "width", c.Display.Width, "Window width")
	flag.IntVar(&c.Display.Height, "height", c.Display.Height, "Window height")
	flag.BoolVar(&c.Wallplay.Debug, "debug", c.Wallplay.Debug, "Enable debug logging")
	flag.Parse()
}
