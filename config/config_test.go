package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/folio/force"
	"github.com/lixenwraith/folio/theme"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, force.DefaultConfig(), cfg.Force)
	assert.Equal(t, 60, cfg.Render.FPS)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	data := `
site:
  dir: /srv/portfolio
force:
  force_radius: 120
  idle_timeout: 750ms
theme:
  evening_hour: 20
  palettes:
    dark:
      highlight: "#00ff00"
render:
  fps: 30
logging:
  enabled: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/portfolio", cfg.Site.Dir)
	assert.Equal(t, 120.0, cfg.Force.ForceRadius)
	assert.Equal(t, 750*time.Millisecond, cfg.Force.IdleTimeout)
	assert.Equal(t, 1.2, cfg.Force.MaxForce, "unset keys keep defaults")
	assert.Equal(t, 20, cfg.Theme.EveningHour)
	assert.Equal(t, 6, cfg.Theme.MorningHour)
	assert.Equal(t, "#00ff00", cfg.Theme.Palettes[theme.Dark].Highlight)
	assert.Equal(t, 30, cfg.Render.FPS)
	assert.True(t, cfg.Logging.Enabled)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("force:\n  radius: 3\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvSiteDir:      "/tmp/site",
		EnvAudioEnabled: "false",
		EnvTheme:        "DARK",
		EnvLogFile:      "/tmp/folio.log",
		EnvForceRadius:  "64",
		EnvFPS:          "30",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/site", cfg.Site.Dir)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, "dark", cfg.Theme.Initial)
	assert.True(t, cfg.Logging.Enabled)
	assert.Equal(t, "/tmp/folio.log", cfg.Logging.File)
	assert.Equal(t, 64.0, cfg.Force.ForceRadius)
	assert.Equal(t, 30, cfg.Render.FPS)
	assert.Equal(t, 30, cfg.Transition.FPS)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvMalformed(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvAudioEnabled: "loud",
		EnvForceRadius:  "far",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvAudioEnabled)
	assert.Contains(t, err.Error(), EnvForceRadius)
	assert.True(t, cfg.Audio.Enabled, "malformed value must not change the field")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"force", func(c *Config) { c.Force.ForceRadius = 0 }},
		{"site", func(c *Config) { c.Site.Dir = "" }},
		{"fps", func(c *Config) { c.Render.FPS = 0 }},
		{"cell", func(c *Config) { c.Render.CellHeight = -1 }},
		{"hour", func(c *Config) { c.Theme.EveningHour = 24 }},
		{"initial", func(c *Config) { c.Theme.Initial = "sepia" }},
		{"volume", func(c *Config) { c.Audio.Volume = 2 }},
		{"level", func(c *Config) { c.Logging.Enabled = true; c.Logging.Level = "loud" }},
		{"breakpoint", func(c *Config) { c.Menu.Breakpoints[0].Width = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Site.Dir = "/x"
	data, err := cfg.Marshal()
	require.NoError(t, err)

	got := Default()
	require.NoError(t, Decode(data, &got))
	assert.Equal(t, cfg, got)
}
