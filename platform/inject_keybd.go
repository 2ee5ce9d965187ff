//go:build darwin || linux

package platform

import (
	"fmt"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// KeybdInjector implements the Injector interface with keybd_event.
// Launching posts press and release of the whole chord in one call.
type KeybdInjector struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// NewInjector creates a new injector for macOS and Linux
func NewInjector() (Injector, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("failed to create key bonding: %w", err)
	}
	// uinput devices are not usable until udev has registered them
	if injectorWarmup > 0 {
		time.Sleep(injectorWarmup)
	}
	return &KeybdInjector{kb: kb}, nil
}

// SendCopy simulates the copy chord
func (i *KeybdInjector) SendCopy() error {
	return i.chord(keybd_event.VK_C)
}

// SendPaste simulates the paste chord
func (i *KeybdInjector) SendPaste() error {
	return i.chord(keybd_event.VK_V)
}

func (i *KeybdInjector) chord(key int) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.kb.Clear()
	setChordModifier(&i.kb)
	i.kb.SetKeys(key)
	if err := i.kb.Launching(); err != nil {
		return fmt.Errorf("%w: %v", ErrInjectionIncomplete, err)
	}
	return nil
}
