package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives the classifier without real delays.
type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	fireAt  time.Time
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{fireAt: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock and fires due timers, like a real scheduler would.
func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.stopped && !t.fireAt.After(c.now) {
			t.stopped = true
			t.f()
		}
	}
}

func newTestClassifier(t *testing.T) (*Classifier, *fakeClock, *[]string) {
	t.Helper()
	clk := newFakeClock()
	cfg := DefaultConfig()
	cfg.Now = clk.Now
	cfg.AfterFunc = clk.AfterFunc
	var scans []string
	c := New(cfg, func(code string) { scans = append(scans, code) })
	return c, clk, &scans
}

func typeBurst(c *Classifier, clk *fakeClock, s string, interval time.Duration) {
	for i, r := range s {
		if i > 0 {
			clk.Advance(interval)
		}
		c.HandleKey(KeyEvent{Key: string(r)})
	}
}

func TestFastLongBurstIsScan(t *testing.T) {
	c, clk, scans := newTestClassifier(t)
	typeBurst(c, clk, "6009123456784", 20*time.Millisecond)

	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.True(t, res.IsScan)
	require.True(t, res.SuppressDefault)
	require.Equal(t, "6009123456784", res.Code)
	require.Equal(t, []string{"6009123456784"}, *scans)
}

func TestSlowTypingIsNotScan(t *testing.T) {
	c, clk, scans := newTestClassifier(t)
	// 300ms between keys exceeds the inter-key gap, so only the final key
	// survives in the buffer; either way no scan comes out.
	typeBurst(c, clk, "6009123456784", 300*time.Millisecond)

	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.False(t, res.IsScan)
	require.False(t, res.SuppressDefault)
	require.Empty(t, *scans)
}

func TestShortBurstNeverScans(t *testing.T) {
	c, clk, scans := newTestClassifier(t)
	typeBurst(c, clk, "12345", 20*time.Millisecond)

	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.False(t, res.IsScan)
	require.Empty(t, *scans)
}

func TestMidBurstGapStartsNewBuffer(t *testing.T) {
	c, clk, _ := newTestClassifier(t)
	typeBurst(c, clk, "12345", 20*time.Millisecond)
	clk.Advance(200 * time.Millisecond)
	typeBurst(c, clk, "6789012", 20*time.Millisecond)

	// only "6789012" is evaluated: 7 chars, below minimum length
	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.False(t, res.IsScan)
}

func TestMidBurstGapThenLongTail(t *testing.T) {
	c, clk, _ := newTestClassifier(t)
	typeBurst(c, clk, "12345", 20*time.Millisecond)
	clk.Advance(200 * time.Millisecond)
	typeBurst(c, clk, "67890123", 20*time.Millisecond)

	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.True(t, res.IsScan)
	require.Equal(t, "67890123", res.Code)
}

func TestIdleTimeoutClearsBuffer(t *testing.T) {
	c, clk, _ := newTestClassifier(t)
	typeBurst(c, clk, "60091234", 20*time.Millisecond)
	clk.Advance(time.Second) // idle timer fires

	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.False(t, res.IsScan)
}

func TestModifiersIgnored(t *testing.T) {
	c, clk, _ := newTestClassifier(t)
	typeBurst(c, clk, "6009", 20*time.Millisecond)
	clk.Advance(20 * time.Millisecond)
	c.HandleKey(KeyEvent{Key: "Shift"})
	clk.Advance(20 * time.Millisecond)
	typeBurst(c, clk, "1234", 20*time.Millisecond)

	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.True(t, res.IsScan)
	require.Equal(t, "60091234", res.Code)
}

func TestEditableFieldKeysIgnored(t *testing.T) {
	c, clk, _ := newTestClassifier(t)
	for _, r := range "60091234" {
		c.HandleKey(KeyEvent{Key: string(r), FromEditable: true})
		clk.Advance(20 * time.Millisecond)
	}
	res := c.HandleKey(KeyEvent{Key: "Enter", FromEditable: true})
	require.False(t, res.IsScan)
}

func TestSearchFieldKeysAreClassified(t *testing.T) {
	c, clk, _ := newTestClassifier(t)
	for i, r := range "60091234" {
		if i > 0 {
			clk.Advance(20 * time.Millisecond)
		}
		c.HandleKey(KeyEvent{Key: string(r), FromEditable: true, FromSearch: true})
	}
	res := c.HandleKey(KeyEvent{Key: "Enter", FromEditable: true, FromSearch: true})
	require.True(t, res.IsScan)
}

func TestInclusiveRateBoundary(t *testing.T) {
	clk := newFakeClock()
	cfg := DefaultConfig()
	cfg.Now = clk.Now
	cfg.AfterFunc = clk.AfterFunc
	c := New(cfg, nil)

	// exactly 80ms/char average is typing, not a scan
	typeBurst(c, clk, "123456789", 90*time.Millisecond)
	res := c.HandleKey(KeyEvent{Key: "Enter"})
	require.False(t, res.IsScan)
}
