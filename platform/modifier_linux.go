//go:build linux

package platform

import (
	"time"

	"github.com/micmonay/keybd_event"
)

const injectorWarmup = 2 * time.Second

// libuiohook virtual key codes for the Control keys
var modifierCodes = []uint16{0x001D, 0x0E1D}

func setChordModifier(kb *keybd_event.KeyBonding) {
	kb.HasCTRL(true)
}
