package config

import (
	"os"

	"github.com/kkyr/fig"
)

const EnvPrefix = "WALLPLAY"

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file.
// Reads and puts environment variables with the prefix WALLPLAY_.
// Params from the config should be in uppercase separated with _.
func LoadConfig(config any, path string) error {
	dirs := []string{path}
	if path == "" {
		dirs = append(dirs, ".", "configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, home+"/.wallplay")
		}
	}
	return fig.Load(config, fig.File("wallplay.yaml"), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
}

// NewWallplayConfig returns the app config with defaults applied, ignoring
// a missing config file (flags and env are enough to run).
func NewWallplayConfig(path string) (conf WallplayConfig) {
	if err := LoadConfig(&conf, path); err != nil {
		_ = fig.Load(&conf, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
	}
	return
}
