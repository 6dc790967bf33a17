// Package config loads the viewer configuration from YAML with environment overrides
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/folio/audio"
	"github.com/lixenwraith/folio/content"
	"github.com/lixenwraith/folio/datefx"
	"github.com/lixenwraith/folio/force"
	"github.com/lixenwraith/folio/logging"
	"github.com/lixenwraith/folio/menu"
	"github.com/lixenwraith/folio/navigation"
	"github.com/lixenwraith/folio/theme"
)

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid config")

// Environment variables read by ApplyEnv
const (
	EnvSiteDir      = "FOLIO_SITE_DIR"
	EnvAudioEnabled = "FOLIO_AUDIO_ENABLED"
	EnvTheme        = "FOLIO_THEME"
	EnvLogFile      = "FOLIO_LOG_FILE"
	EnvLogLevel     = "FOLIO_LOG_LEVEL"
	EnvForceRadius  = "FOLIO_FORCE_RADIUS"
	EnvFPS          = "FOLIO_FPS"
)

// Site locates the page files
type Site struct {
	Dir      string        `yaml:"dir"`
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
	Preload  bool          `yaml:"preload"`
}

// Theme extends the theme manager settings with palettes and a start mode
type Theme struct {
	theme.Config `yaml:",inline"`
	Initial      string                           `yaml:"initial"` // "", auto, light or dark
	Palettes     map[theme.Theme]theme.PaletteHex `yaml:"palettes"`
}

// Menu holds the label shortening table
type Menu struct {
	Breakpoints []menu.Breakpoint `yaml:"breakpoints"`
}

// Render controls the terminal surface
type Render struct {
	FPS        int     `yaml:"fps"`
	CellWidth  float64 `yaml:"cell_width"`  // surface units per column
	CellHeight float64 `yaml:"cell_height"` // surface units per row
	Gain       float64 `yaml:"gain"`        // displacement magnification when drawn
	MaxWidth   int     `yaml:"max_width"`   // reading width in columns
	StatusLine bool    `yaml:"status_line"`
	QueueSize  int     `yaml:"queue_size"`
}

// Config is the complete viewer configuration
type Config struct {
	Site       Site                        `yaml:"site"`
	Force      force.Config                `yaml:"force"`
	Theme      Theme                       `yaml:"theme"`
	Menu       Menu                        `yaml:"menu"`
	Dates      datefx.BoardConfig          `yaml:"dates"`
	Audio      audio.Config                `yaml:"audio"`
	Transition navigation.TransitionConfig `yaml:"transition"`
	Render     Render                      `yaml:"render"`
	Logging    logging.Config              `yaml:"logging"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Site: Site{
			Dir:      "site",
			Watch:    true,
			Debounce: content.DefaultDebounce,
			Preload:  true,
		},
		Force:      force.DefaultConfig(),
		Theme:      Theme{Config: theme.DefaultConfig(), Initial: "", Palettes: theme.DefaultPalettes()},
		Menu:       Menu{Breakpoints: menu.DefaultBreakpoints()},
		Dates:      datefx.DefaultBoardConfig(),
		Audio:      audio.DefaultConfig(),
		Transition: navigation.DefaultTransitionConfig(),
		Render: Render{
			FPS:        60,
			CellWidth:  8,
			CellHeight: 16,
			Gain:       4,
			MaxWidth:   80,
			StatusLine: true,
			QueueSize:  256,
		},
		Logging: logging.Config{
			Enabled: false,
			Level:   "info",
		},
	}
}

// Load reads path over the defaults; a missing file yields the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML data into cfg, rejecting unknown keys
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from FOLIO_* variables; malformed values are reported, not ignored
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error

	if v := getenv(EnvSiteDir); v != "" {
		c.Site.Dir = v
	}
	if v := getenv(EnvAudioEnabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvAudioEnabled, err))
		} else {
			c.Audio.Enabled = b
		}
	}
	if v := getenv(EnvTheme); v != "" {
		c.Theme.Initial = strings.ToLower(v)
	}
	if v := getenv(EnvLogFile); v != "" {
		c.Logging.File = v
		c.Logging.Enabled = true
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
		c.Logging.Enabled = true
	}
	if v := getenv(EnvForceRadius); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvForceRadius, err))
		} else {
			c.Force.ForceRadius = f
		}
	}
	if v := getenv(EnvFPS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvFPS, err))
		} else {
			c.Render.FPS = n
			c.Transition.FPS = n
		}
	}
	return errors.Join(errs...)
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Force.Validate(); err != nil {
		return err
	}

	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Site.Dir != "", "site.dir is empty")
	check(c.Render.FPS > 0 && c.Render.FPS <= 240, "render.fps %d out of range", c.Render.FPS)
	check(c.Render.CellWidth > 0 && c.Render.CellHeight > 0, "render cell size must be positive")
	check(c.Render.Gain > 0, "render.gain must be positive")
	check(c.Render.QueueSize > 0, "render.queue_size must be positive")
	check(validHour(c.Theme.EveningHour) && validHour(c.Theme.MorningHour), "theme hours must be 0..23")
	check(c.Theme.CheckInterval > 0, "theme.check_interval must be positive")
	switch c.Theme.Initial {
	case "", "auto", string(theme.Light), string(theme.Dark):
	default:
		check(false, "theme.initial %q", c.Theme.Initial)
	}
	check(c.Audio.Volume >= 0 && c.Audio.Volume <= 1, "audio.volume %v out of range", c.Audio.Volume)
	check(c.Audio.SampleRate > 0, "audio.sample_rate must be positive")
	check(c.Dates.FPS > 0 && c.Dates.Duration > 0, "dates fps and duration must be positive")
	for i, bp := range c.Menu.Breakpoints {
		check(bp.Width > 0, "menu.breakpoints[%d].width must be positive", i)
	}
	if c.Logging.Enabled {
		_, err := zapcore.ParseLevel(c.Logging.Level)
		check(err == nil, "logging.level %q", c.Logging.Level)
	}

	return errors.Join(errs...)
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// Marshal renders cfg as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
