// Package theme switches between day and night palettes by time of day, with a persisted manual override
package theme

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio/engine"
)

// Theme names a palette
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	return t == Light || t == Dark
}

// Opposite returns the other theme
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Config holds the evening window and re-check period
type Config struct {
	EveningHour   int           `yaml:"evening_hour"`
	MorningHour   int           `yaml:"morning_hour"`
	CheckInterval time.Duration `yaml:"check_interval"`
	StateFile     string        `yaml:"state_file"`
}

// DefaultConfig is dark from 18:00 to 06:00, checked every minute
func DefaultConfig() Config {
	return Config{
		EveningHour:   18,
		MorningHour:   6,
		CheckInterval: time.Minute,
	}
}

// Info describes the manager state for display
type Info struct {
	Current Theme
	Auto    bool
	Hour    int
}

// Manager owns the current theme
// Safe for concurrent use: the viewer reads it every frame while the ticker service calls Check
type Manager struct {
	mu sync.RWMutex

	cfg        Config
	store      Store
	clock      engine.TimeProvider
	log        *zap.Logger
	systemDark bool

	current Theme
	auto    bool
}

// NewManager restores the saved preference or falls back to the time of day
func NewManager(cfg Config, store Store, clock engine.TimeProvider, systemDark bool, log *zap.Logger) *Manager {
	if store == nil {
		store = &MemoryStore{}
	}
	if clock == nil {
		clock = engine.NewMonotonicTimeProvider()
	}
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		cfg:        cfg,
		store:      store,
		clock:      clock,
		log:        log,
		systemDark: systemDark,
		current:    Light,
		auto:       true,
	}

	st, err := store.Load()
	if err != nil {
		log.Warn("theme state unreadable, using auto mode", zap.Error(err))
	}
	if st.Auto != nil {
		m.auto = *st.Auto
	}

	m.mu.Lock()
	if st.Theme.Valid() && !m.auto {
		m.current = st.Theme
	} else {
		m.checkLocked(clock.Now())
	}
	m.applySystemLocked(clock.Now())
	m.mu.Unlock()

	return m
}

// Evening reports whether hour falls in the dark window
func (m *Manager) Evening(hour int) bool {
	return hour >= m.cfg.EveningHour || hour < m.cfg.MorningHour
}

// Current returns the active theme
func (m *Manager) Current() Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Auto reports whether the theme follows the clock
func (m *Manager) Auto() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.auto
}

// Check re-evaluates the time of day in auto mode; returns true when the theme changed
func (m *Manager) Check() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.auto {
		return false
	}
	return m.checkLocked(m.clock.Now())
}

func (m *Manager) checkLocked(now time.Time) bool {
	want := Light
	if m.Evening(now.Hour()) {
		want = Dark
	}
	if want == m.current {
		return false
	}
	m.setLocked(want, false)
	return true
}

// applySystemLocked honours a dark terminal only in auto mode during the evening window
func (m *Manager) applySystemLocked(now time.Time) {
	if m.systemDark && m.auto && m.Evening(now.Hour()) && m.current != Dark {
		m.setLocked(Dark, false)
	}
}

// Set applies t; a manual set disables auto mode and persists the choice
// Clock-driven switches in auto mode are never saved
func (m *Manager) Set(t Theme, manual bool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(t, manual)
	return nil
}

func (m *Manager) setLocked(t Theme, manual bool) {
	m.current = t
	m.log.Debug("theme applied", zap.String("theme", string(t)), zap.Bool("manual", manual))
	if !manual {
		return
	}

	m.auto = false
	if err := m.store.Save(State{Theme: t, Auto: boolPtr(false)}); err != nil {
		m.log.Warn("theme state not saved", zap.Error(err))
	}
}

// Apply switches to t for this run only; the saved preference is left as it is
func (m *Manager) Apply(t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auto = false
	m.current = t
	m.log.Debug("theme applied for session", zap.String("theme", string(t)))
	return nil
}

// Follow returns to the time of day for this run only, without saving
func (m *Manager) Follow() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auto = true
	want := Light
	if m.Evening(m.clock.Now().Hour()) {
		want = Dark
	}
	m.current = want
}

// Toggle switches to the opposite theme as a manual override
func (m *Manager) Toggle() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(m.current.Opposite(), true)
	return m.current
}

// EnableAuto drops the manual override and follows the clock again
func (m *Manager) EnableAuto() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auto = true
	if err := m.store.Save(State{Auto: boolPtr(true)}); err != nil {
		m.log.Warn("theme state not saved", zap.Error(err))
	}
	m.checkLocked(m.clock.Now())
}

// Info returns a snapshot for display
func (m *Manager) Info() Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Info{Current: m.current, Auto: m.auto, Hour: m.clock.Now().Hour()}
}

// Icon is the toggle glyph for the current theme
func (m *Manager) Icon() string {
	if m.Current() == Light {
		return "◐"
	}
	return "◑"
}

// Title describes the toggle state, e.g. "Auto: dark theme (evening)"
func (m *Manager) Title() string {
	info := m.Info()
	if !info.Auto {
		return fmt.Sprintf("Manual: %s theme", info.Current)
	}
	period := "day"
	if info.Current == Dark {
		period = "evening"
	}
	return fmt.Sprintf("Auto: %s theme (%s)", info.Current, period)
}

// SystemPrefersDark inspects COLORFGBG ("fg;bg" or "fg;default;bg") for a dark background
func SystemPrefersDark(getenv func(string) string) bool {
	v := getenv("COLORFGBG")
	if v == "" {
		return false
	}
	fields := strings.Split(v, ";")
	bg, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return false
	}
	return bg <= 6 || bg == 8
}

func boolPtr(b bool) *bool {
	return &b
}
