package systray

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"markestedt/langra/events"
)

type fakeController struct {
	mode     string
	captures int
}

func (c *fakeController) Mode() string { return c.mode }

func (c *fakeController) SetMode(mode string) error {
	if mode != ModeTranslate && mode != ModeCorrect {
		return fmt.Errorf("unknown mode: %s", mode)
	}
	c.mode = mode
	return nil
}

func (c *fakeController) TriggerCapture() error { c.captures++; return nil }

func TestSwitchMode_BeforeMenuIsReady(t *testing.T) {
	ctrl := &fakeController{mode: ModeTranslate}
	m := NewSystrayManager(ctrl, "")

	m.switchMode(ModeCorrect)
	assert.Equal(t, ModeCorrect, ctrl.mode)

	m.switchMode("summarize")
	assert.Equal(t, ModeCorrect, ctrl.mode)
}

func TestEmit_BeforeMenuIsReady(t *testing.T) {
	m := NewSystrayManager(&fakeController{mode: ModeTranslate}, "http://localhost:7341")

	assert.NotPanics(t, func() {
		m.Emit(events.Event{Name: events.ModeChanged, Payload: events.ModePayload{Mode: ModeCorrect}})
		m.Emit(events.Event{Name: events.TranslationStart})
		m.Emit(events.Event{Name: events.TranslationError})
		m.SetStatus("Ready")
	})
}

func TestWaitForQuit_OpenUntilQuit(t *testing.T) {
	m := NewSystrayManager(&fakeController{}, "")

	select {
	case <-m.WaitForQuit():
		t.Fatal("quit channel closed before Quit")
	default:
	}
}
