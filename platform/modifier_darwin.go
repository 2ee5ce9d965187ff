//go:build darwin

package platform

import (
	"time"

	"github.com/micmonay/keybd_event"
)

const injectorWarmup time.Duration = 0

// libuiohook virtual key codes for the Command keys
var modifierCodes = []uint16{0x0E5B, 0x0E5C}

func setChordModifier(kb *keybd_event.KeyBonding) {
	kb.HasSuper(true)
}
