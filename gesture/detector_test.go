package gesture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/langra/platform"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	modDown  = platform.KeyEvent{Type: platform.Pressed, Key: platform.KeyModifier}
	modUp    = platform.KeyEvent{Type: platform.Released, Key: platform.KeyModifier}
	copyDown = platform.KeyEvent{Type: platform.Pressed, Key: platform.KeyCopy}
	copyUp   = platform.KeyEvent{Type: platform.Released, Key: platform.KeyCopy}
	other    = platform.KeyEvent{Type: platform.Pressed, Key: platform.KeyOther}
)

func newTestDetector() (*Detector, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(DefaultWindow, WithClock(clock.now)), clock
}

func TestDetector_DoublePressWithinWindowFires(t *testing.T) {
	d, clock := newTestDetector()

	assert.False(t, d.Handle(modDown))
	assert.Equal(t, ModifierHeld, d.State())

	assert.False(t, d.Handle(copyDown))
	assert.Equal(t, Armed, d.State())
	assert.Equal(t, uint(1), d.Count())

	d.Handle(copyUp)
	clock.advance(300 * time.Millisecond)

	assert.True(t, d.Handle(copyDown), "second press within 300ms should fire")
	assert.Equal(t, uint(0), d.Count())
	assert.Equal(t, ModifierHeld, d.State())
}

func TestDetector_PressAtExactWindowFires(t *testing.T) {
	d, clock := newTestDetector()

	d.Handle(modDown)
	d.Handle(copyDown)
	clock.advance(DefaultWindow)

	assert.True(t, d.Handle(copyDown))
}

func TestDetector_SlowSecondPressRestartsCount(t *testing.T) {
	d, clock := newTestDetector()

	d.Handle(modDown)
	d.Handle(copyDown)
	clock.advance(600 * time.Millisecond)

	assert.False(t, d.Handle(copyDown), "press after 600ms must not fire")
	assert.Equal(t, uint(1), d.Count())

	// The slow press counts as a fresh first press
	clock.advance(200 * time.Millisecond)
	assert.True(t, d.Handle(copyDown))
}

func TestDetector_ThirdPressAfterFireStartsAtOne(t *testing.T) {
	d, clock := newTestDetector()

	d.Handle(modDown)
	d.Handle(copyDown)
	clock.advance(100 * time.Millisecond)
	require.True(t, d.Handle(copyDown))

	clock.advance(100 * time.Millisecond)
	assert.False(t, d.Handle(copyDown))
	assert.Equal(t, uint(1), d.Count())
}

func TestDetector_ModifierReleaseResets(t *testing.T) {
	d, clock := newTestDetector()

	d.Handle(modDown)
	d.Handle(copyDown)
	d.Handle(modUp)

	assert.Equal(t, Idle, d.State())
	assert.Equal(t, uint(0), d.Count())

	// Re-holding the modifier still requires two presses
	d.Handle(modDown)
	clock.advance(50 * time.Millisecond)
	assert.False(t, d.Handle(copyDown))
	clock.advance(50 * time.Millisecond)
	assert.True(t, d.Handle(copyDown))
}

func TestDetector_CopyWithoutModifierIgnored(t *testing.T) {
	d, _ := newTestDetector()

	assert.False(t, d.Handle(copyDown))
	assert.False(t, d.Handle(copyDown))
	assert.Equal(t, Idle, d.State())
	assert.Equal(t, uint(0), d.Count())
}

func TestDetector_OtherKeysDoNotParticipate(t *testing.T) {
	d, clock := newTestDetector()

	d.Handle(modDown)
	d.Handle(copyDown)
	clock.advance(100 * time.Millisecond)
	assert.False(t, d.Handle(other))
	assert.Equal(t, uint(1), d.Count())
	assert.True(t, d.Handle(copyDown))
}

func TestDetector_ReleaseFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		setup []platform.KeyEvent
	}{
		{"idle", nil},
		{"modifier held", []platform.KeyEvent{modDown}},
		{"armed", []platform.KeyEvent{modDown, copyDown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDetector()
			for _, ev := range tt.setup {
				d.Handle(ev)
			}
			d.Handle(modUp)
			assert.Equal(t, Idle, d.State())
			assert.Equal(t, uint(0), d.Count())
		})
	}
}

func TestDetector_RunCallsOnFireOnce(t *testing.T) {
	d, clock := newTestDetector()

	events := make(chan platform.KeyEvent, 8)
	events <- modDown
	events <- copyDown
	events <- copyUp
	events <- copyDown
	events <- modUp
	close(events)

	fired := 0
	d.Run(context.Background(), events, func() {
		fired++
		clock.advance(time.Millisecond)
	})

	assert.Equal(t, 1, fired)
	assert.Equal(t, Idle, d.State())
}

func TestNew_DefaultsWindow(t *testing.T) {
	d := New(0)
	assert.Equal(t, DefaultWindow, d.window)
}

func TestSetWindow_AppliesToNextPress(t *testing.T) {
	d, clock := newTestDetector()
	d.SetWindow(200 * time.Millisecond)
	d.SetWindow(0)

	d.Handle(modDown)
	d.Handle(copyDown)
	clock.advance(300 * time.Millisecond)
	assert.False(t, d.Handle(copyDown))

	clock.advance(150 * time.Millisecond)
	assert.True(t, d.Handle(copyDown))
}
