// File path: internal/session/guard.go
package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jmcardoso/fieldops/internal/common"
)

// State is the guard's current position in its single-timer state machine.
type State string

const (
	StateActive    State = "active"
	StateWarned    State = "warned"
	StateLoggedOut State = "logged_out"
)

// Config controls the inactivity window.
type Config struct {
	Timeout     time.Duration
	WarningLead time.Duration
}

// DefaultConfig returns the standard five-minute window with a thirty-second
// warning lead.
func DefaultConfig() Config {
	return Config{Timeout: 5 * time.Minute, WarningLead: 30 * time.Second}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_SESSION_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse FIELDOPS_SESSION_TIMEOUT: %w", err)
		}
		cfg.Timeout = dur
	}
	if value := strings.TrimSpace(os.Getenv("FIELDOPS_SESSION_WARNING")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse FIELDOPS_SESSION_WARNING: %w", err)
		}
		cfg.WarningLead = dur
	}
	if cfg.Timeout <= cfg.WarningLead {
		return Config{}, fmt.Errorf("session timeout %s must exceed warning lead %s", cfg.Timeout, cfg.WarningLead)
	}
	return cfg, nil
}

// Guard is the inactivity session monitor: a single rearming timer that fires
// a warning at timeout-warningLead and a forced logout at timeout. Activity
// resets the window. It has no data dependency on the work-order cache.
type Guard struct {
	cfg       Config
	onWarning func()
	onLogout  func()

	mu           sync.Mutex
	state        State
	timer        *time.Timer
	lastActivity time.Time
	stopped      bool
}

// New starts the guard with the window armed.
func New(cfg Config, onWarning, onLogout func()) *Guard {
	g := &Guard{
		cfg:          cfg,
		onWarning:    onWarning,
		onLogout:     onLogout,
		state:        StateActive,
		lastActivity: time.Now(),
	}
	g.timer = time.AfterFunc(cfg.Timeout-cfg.WarningLead, g.warn)
	return g
}

// Activity resets the inactivity window. After a forced logout the guard
// stays down until Reset.
func (g *Guard) Activity() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped || g.state == StateLoggedOut {
		return
	}
	g.state = StateActive
	g.lastActivity = time.Now()
	g.timer.Stop()
	g.timer = time.AfterFunc(g.cfg.Timeout-g.cfg.WarningLead, g.warn)
}

// Reset re-arms the guard after a logout, for a fresh sign-in.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.state = StateActive
	g.lastActivity = time.Now()
	g.timer.Stop()
	g.timer = time.AfterFunc(g.cfg.Timeout-g.cfg.WarningLead, g.warn)
}

// State reports the guard's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// LastActivity reports when the window was last reset.
func (g *Guard) LastActivity() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActivity
}

// Stop releases the timer. The guard cannot be restarted.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	g.timer.Stop()
}

func (g *Guard) warn() {
	g.mu.Lock()
	if g.stopped || g.state != StateActive {
		g.mu.Unlock()
		return
	}
	g.state = StateWarned
	g.timer = time.AfterFunc(g.cfg.WarningLead, g.logout)
	callback := g.onWarning
	g.mu.Unlock()

	common.Logger().Info("session: inactivity warning", "lead", g.cfg.WarningLead)
	if callback != nil {
		callback()
	}
}

func (g *Guard) logout() {
	g.mu.Lock()
	if g.stopped || g.state != StateWarned {
		g.mu.Unlock()
		return
	}
	g.state = StateLoggedOut
	callback := g.onLogout
	g.mu.Unlock()

	common.Logger().Info("session: inactivity logout", "timeout", g.cfg.Timeout)
	if callback != nil {
		callback()
	}
}
