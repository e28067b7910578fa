// Package scan decides whether a burst of key presses came from a hardware
// barcode scanner or from a human typing. Scanners emit near-constant,
// very fast keystrokes and finish with Enter; the classifier watches
// inter-key timing and only claims the Enter when the burst looks machine
// made, so normal keyboard shortcuts keep working.
package scan

import (
	"sync"
	"time"
	"unicode/utf8"
)

type Config struct {
	// InterKeyGap: a pause longer than this starts a new burst.
	InterKeyGap time.Duration
	// IdleTimeout clears a half-typed burst nobody finished.
	IdleTimeout time.Duration
	// MinLength: shorter inputs are never classified as scans.
	MinLength int
	// MaxCharInterval: average time per character above which the burst is
	// treated as human typing.
	MaxCharInterval time.Duration

	// Injectable clock and timer, so tests run without real delays.
	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

func DefaultConfig() Config {
	return Config{
		InterKeyGap:     150 * time.Millisecond,
		IdleTimeout:     800 * time.Millisecond,
		MinLength:       8,
		MaxCharInterval: 80 * time.Millisecond,
	}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }

// KeyEvent is one raw key press as the window saw it.
type KeyEvent struct {
	Key string
	// FromEditable: the event targeted a text-entry element.
	FromEditable bool
	// FromSearch: that element is the designated search input, which the
	// scanner is allowed to fill.
	FromSearch bool
}

// Result of feeding one event through the classifier. SuppressDefault is
// set when the Enter that closed a scan should not reach the application's
// own shortcut handling.
type Result struct {
	IsScan          bool
	Code            string
	SuppressDefault bool
}

// Classifier holds the single scan buffer for one window. Safe for the idle
// timer goroutine; the key path takes one mutex and does arithmetic only.
type Classifier struct {
	cfg    Config
	onScan func(code string)

	mu         sync.Mutex
	buf        []rune
	firstKeyAt time.Time
	lastKeyAt  time.Time
	idleTimer  Timer
}

// New builds a classifier. onScan may be nil; callers can also just read
// HandleKey results.
func New(cfg Config, onScan func(code string)) *Classifier {
	if cfg.InterKeyGap <= 0 {
		cfg.InterKeyGap = DefaultConfig().InterKeyGap
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultConfig().MinLength
	}
	if cfg.MaxCharInterval <= 0 {
		cfg.MaxCharInterval = DefaultConfig().MaxCharInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) Timer {
			return realTimer{t: time.AfterFunc(d, f)}
		}
	}
	return &Classifier{cfg: cfg, onScan: onScan}
}

// HandleKey consumes one key event and reports whether it completed a scan.
func (c *Classifier) HandleKey(ev KeyEvent) Result {
	if isModifier(ev.Key) {
		return Result{}
	}
	// typing into an ordinary form field is never scanner input
	if ev.FromEditable && !ev.FromSearch {
		return Result{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Key == "Enter" {
		return c.finish()
	}
	if r, ok := printableRune(ev.Key); ok {
		c.append(r)
	}
	return Result{}
}

func (c *Classifier) append(r rune) {
	now := c.cfg.Now()
	if len(c.buf) > 0 && now.Sub(c.lastKeyAt) > c.cfg.InterKeyGap {
		// unrelated burst, start over
		c.resetLocked()
	}
	if len(c.buf) == 0 {
		c.firstKeyAt = now
	}
	c.buf = append(c.buf, r)
	c.lastKeyAt = now

	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	c.idleTimer = c.cfg.AfterFunc(c.cfg.IdleTimeout, c.idleExpire)
}

func (c *Classifier) finish() Result {
	defer c.resetLocked()

	n := len(c.buf)
	if n < c.cfg.MinLength {
		return Result{}
	}
	perChar := c.lastKeyAt.Sub(c.firstKeyAt) / time.Duration(n)
	if perChar >= c.cfg.MaxCharInterval {
		return Result{}
	}
	code := string(c.buf)
	if c.onScan != nil {
		c.onScan(code)
	}
	return Result{IsScan: true, Code: code, SuppressDefault: true}
}

func (c *Classifier) idleExpire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Classifier) resetLocked() {
	c.buf = c.buf[:0]
	c.firstKeyAt = time.Time{}
	c.lastKeyAt = time.Time{}
	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
}

var modifierKeys = map[string]bool{
	"Shift": true, "Control": true, "Alt": true, "Meta": true,
	"CapsLock": true, "NumLock": true, "ScrollLock": true,
	"AltGraph": true, "Fn": true,
}

func isModifier(key string) bool { return modifierKeys[key] }

// printableRune accepts only single-character keys, i.e. actual input.
// Named keys ("Tab", "ArrowDown", ...) fall through and are ignored.
func printableRune(key string) (rune, bool) {
	if utf8.RuneCountInString(key) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r < 0x20 || r == 0x7f {
		return 0, false
	}
	return r, true
}
