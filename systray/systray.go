package systray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"

	"markestedt/langra/events"
)

// Modes shown in the tray menu
const (
	ModeTranslate = "translate"
	ModeCorrect   = "correct"
)

// Controller is what the tray menu drives
type Controller interface {
	Mode() string
	SetMode(mode string) error
	TriggerCapture() error
}

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	ctrl   Controller
	webURL string
	quit   chan struct{}

	mu         sync.Mutex
	mTranslate *systray.MenuItem
	mCorrect   *systray.MenuItem
	mStatus    *systray.MenuItem
}

// NewSystrayManager creates a new systray manager; webURL may be empty when the web UI is off
func NewSystrayManager(ctrl Controller, webURL string) *SystrayManager {
	return &SystrayManager{
		ctrl:   ctrl,
		webURL: webURL,
		quit:   make(chan struct{}),
	}
}

// Run starts the system tray (blocking call, must run on the main thread)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// Emit implements events.Emitter and keeps the menu in sync with the agent
func (m *SystrayManager) Emit(ev events.Event) {
	switch ev.Name {
	case events.ModeChanged:
		if p, ok := ev.Payload.(events.ModePayload); ok {
			m.showMode(p.Mode)
		}
	case events.TranslationStart:
		m.setStatus("Working…")
	case events.TranslationComplete:
		m.setStatus("Ready")
	case events.TranslationError, events.CredentialsMissing:
		m.setStatus("Last run failed")
	}
}

// SetStatus shows a one-line state in the menu
func (m *SystrayManager) SetStatus(status string) {
	m.setStatus(status)
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	systray.SetIcon(iconData)
	systray.SetTooltip("Langra - press Ctrl+C twice to translate")

	m.mu.Lock()
	m.mStatus = systray.AddMenuItem("Ready", "")
	m.mStatus.Disable()
	systray.AddSeparator()
	m.mTranslate = systray.AddMenuItemCheckbox("Translate", "Translate captured text", false)
	m.mCorrect = systray.AddMenuItemCheckbox("Correct", "Fix grammar and spelling of captured text", false)
	m.mu.Unlock()
	m.showMode(m.ctrl.Mode())

	systray.AddSeparator()
	mCapture := systray.AddMenuItem("Capture selection", "Run the current mode on the selected text")
	mOpenWebUI := systray.AddMenuItem("Open Web UI", "Open the Langra web window")
	if m.webURL == "" {
		mOpenWebUI.Disable()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit Langra")

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-m.mTranslate.ClickedCh:
				m.switchMode(ModeTranslate)
			case <-m.mCorrect.ClickedCh:
				m.switchMode(ModeCorrect)
			case <-mCapture.ClickedCh:
				if err := m.ctrl.TriggerCapture(); err != nil {
					slog.Error("Failed to start capture", "error", err)
				}
			case <-mOpenWebUI.ClickedCh:
				m.openWebUI()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

func (m *SystrayManager) switchMode(mode string) {
	if err := m.ctrl.SetMode(mode); err != nil {
		slog.Error("Failed to switch mode", "mode", mode, "error", err)
	}
	m.showMode(m.ctrl.Mode())
}

func (m *SystrayManager) showMode(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mTranslate == nil {
		return
	}
	if mode == ModeCorrect {
		m.mTranslate.Uncheck()
		m.mCorrect.Check()
	} else {
		m.mCorrect.Uncheck()
		m.mTranslate.Check()
	}
}

func (m *SystrayManager) setStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mStatus != nil {
		m.mStatus.SetTitle(status)
	}
}

// openWebUI opens the web UI in the default browser
func (m *SystrayManager) openWebUI() {
	if m.webURL == "" {
		return
	}
	if err := OpenBrowser(m.webURL); err != nil {
		slog.Error("Failed to open web UI", "error", err)
	}
}

// OpenBrowser opens url in the default browser
func OpenBrowser(url string) error {
	slog.Info("Opening web UI", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
