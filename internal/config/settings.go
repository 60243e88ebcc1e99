package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"storyview/internal/gesture"
	"storyview/internal/playback"
)

// Settings are the application settings shared by the viewer and the CLI.
type Settings struct {
	Library  LibrarySettings  `yaml:"library"`
	Playback PlaybackSettings `yaml:"playback"`
	Server   ServerSettings   `yaml:"server"`
	Logging  LoggingSettings  `yaml:"logging"`
}

type LibrarySettings struct {
	Path string `yaml:"path"`
}

type PlaybackSettings struct {
	HoldDelay   time.Duration `yaml:"hold_delay"`
	FastForward time.Duration `yaml:"fast_forward"`
	FrameRate   int           `yaml:"frame_rate"`
}

type ServerSettings struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type LoggingSettings struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Defaults returns the settings used when no file overrides them.
func Defaults() *Settings {
	return &Settings{
		Library: LibrarySettings{
			Path: DefaultLibraryPath(),
		},
		Playback: PlaybackSettings{
			HoldDelay:   gesture.DefaultHoldDelay,
			FastForward: playback.DefaultFastForward,
			FrameRate:   60,
		},
		Server: ServerSettings{
			Addr:        "127.0.0.1:6541",
			ReadTimeout: 10 * time.Second,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Pretty: true,
		},
	}
}

// DefaultLibraryPath places the library in the user config directory, or the
// working directory when there is none.
func DefaultLibraryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storyview.db"
	}
	return filepath.Join(dir, "storyview", "library.db")
}

// Load applies the file at path over the defaults. A missing file or an
// empty path yields the defaults.
func Load(path string) (*Settings, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (s *Settings) Validate() error {
	var err error
	if s.Library.Path == "" {
		err = multierr.Append(err, fmt.Errorf("library.path is required"))
	}
	if s.Playback.HoldDelay <= 0 {
		err = multierr.Append(err, fmt.Errorf("playback.hold_delay must be positive"))
	}
	if s.Playback.FastForward <= 0 {
		err = multierr.Append(err, fmt.Errorf("playback.fast_forward must be positive"))
	}
	if s.Playback.FrameRate <= 0 || s.Playback.FrameRate > 240 {
		err = multierr.Append(err, fmt.Errorf("playback.frame_rate must be between 1 and 240 (got %d)", s.Playback.FrameRate))
	}
	if _, lerr := zerolog.ParseLevel(s.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	return err
}

// FrameInterval converts the frame rate into a tick interval.
func (p PlaybackSettings) FrameInterval() time.Duration {
	if p.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(p.FrameRate)
}

// NewLogger builds the root logger. Unknown levels fall back to info.
func NewLogger(cfg LoggingSettings, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}
