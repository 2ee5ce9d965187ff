//go:build windows

package platform

import (
	"fmt"
	"unsafe"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
	mapvkVkToVsc   = 0
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

// WindowsInjector implements the Injector interface with SendInput
type WindowsInjector struct{}

// NewInjector creates a new Windows injector instance
func NewInjector() (Injector, error) {
	return &WindowsInjector{}, nil
}

// SendCopy simulates Ctrl+C
func (p *WindowsInjector) SendCopy() error {
	return sendCtrlChord(vkC)
}

// SendPaste simulates Ctrl+V
func (p *WindowsInjector) SendPaste() error {
	return sendCtrlChord(vkV)
}

// sendCtrlChord delivers Ctrl down, key down, key up, Ctrl up in a single SendInput call
func sendCtrlChord(vk uint16) error {
	// Scan codes improve compatibility with elevated applications
	ctrlScan, _, _ := mapVirtualKeyW.Call(vkControl, mapvkVkToVsc)
	keyScan, _, _ := mapVirtualKeyW.Call(uintptr(vk), mapvkVkToVsc)

	key := func(vk uint16, scan uintptr, flags uint32) input {
		return input{
			inputType: inputKeyboard,
			ki: keyboardInput{
				wVk:     vk,
				wScan:   uint16(scan),
				dwFlags: flags,
			},
		}
	}

	inputs := []input{
		key(vkControl, ctrlScan, 0),
		key(vk, keyScan, 0),
		key(vk, keyScan, keyeventfKeyup),
		key(vkControl, ctrlScan, keyeventfKeyup),
	}

	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)

	if int(ret) != len(inputs) {
		return fmt.Errorf("%w: SendInput sent %d of %d events: %v", ErrInjectionIncomplete, ret, len(inputs), err)
	}

	return nil
}
