// Package capture moves text between the focused application and this process
// through the system clipboard and synthetic copy/paste chords.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"markestedt/langra/platform"
)

// Placeholder is written to the clipboard before the synthetic copy.
// If it is still there afterwards, the focused application had nothing selected.
const Placeholder = "__langra_capture_placeholder__"

// Delays holds the settle times between clipboard writes and injected chords
type Delays struct {
	BeforeCopy  time.Duration
	AfterCopy   time.Duration
	BeforePaste time.Duration
}

// DefaultDelays returns the settle times that work across the supported platforms
func DefaultDelays() Delays {
	return Delays{
		BeforeCopy:  50 * time.Millisecond,
		AfterCopy:   100 * time.Millisecond,
		BeforePaste: 50 * time.Millisecond,
	}
}

type snapshotKind int

const (
	snapshotEmpty snapshotKind = iota
	snapshotText
	snapshotImage
)

type snapshot struct {
	kind  snapshotKind
	text  string
	image []byte
}

// Mediator implements selected-text extraction and text injection
type Mediator struct {
	mu       sync.Mutex
	cb       platform.Clipboard
	injector platform.Injector
	delays   Delays
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *slog.Logger
}

// NewMediator creates a mediator over the given clipboard and injector
func NewMediator(cb platform.Clipboard, injector platform.Injector, delays Delays) *Mediator {
	return &Mediator{
		cb:       cb,
		injector: injector,
		delays:   delays,
		sleep:    sleepCtx,
		logger:   slog.Default().With("component", "capture"),
	}
}

// SetDelays replaces the settle times used by subsequent calls
func (m *Mediator) SetDelays(d Delays) {
	m.mu.Lock()
	m.delays = d
	m.mu.Unlock()
}

// ExtractSelectedText copies the current selection of the focused application and
// returns it, leaving the user's clipboard as it was. An empty string means nothing
// was selected.
func (m *Mediator) ExtractSelectedText(ctx context.Context) (text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.takeSnapshot()
	defer func() {
		if rerr := m.restore(snap); rerr != nil {
			m.logger.Warn("Failed to restore clipboard", "error", rerr)
		}
	}()

	if err := m.cb.SetText(Placeholder); err != nil {
		return "", fmt.Errorf("failed to write placeholder: %w", err)
	}

	if err := m.sleep(ctx, m.delays.BeforeCopy); err != nil {
		return "", err
	}

	if err := m.injector.SendCopy(); err != nil {
		return "", fmt.Errorf("failed to send copy: %w", err)
	}

	if err := m.sleep(ctx, m.delays.AfterCopy); err != nil {
		return "", err
	}

	got, err := m.cb.Text()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}

	if strings.TrimSpace(got) == strings.TrimSpace(Placeholder) {
		m.logger.Debug("Clipboard unchanged after copy, nothing selected")
		return "", nil
	}

	return got, nil
}

// InjectText pastes text into the focused application. The clipboard keeps the
// injected text afterwards.
func (m *Mediator) InjectText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cb.SetText(text); err != nil {
		return fmt.Errorf("failed to set clipboard: %w", err)
	}

	if err := m.sleep(ctx, m.delays.BeforePaste); err != nil {
		return err
	}

	if err := m.injector.SendPaste(); err != nil {
		return fmt.Errorf("failed to send paste: %w", err)
	}

	return nil
}

func (m *Mediator) takeSnapshot() snapshot {
	if text, err := m.cb.Text(); err == nil && text != "" {
		return snapshot{kind: snapshotText, text: text}
	}
	if img, err := m.cb.Image(); err == nil && len(img) > 0 {
		return snapshot{kind: snapshotImage, image: img}
	}
	return snapshot{kind: snapshotEmpty}
}

func (m *Mediator) restore(s snapshot) error {
	switch s.kind {
	case snapshotText:
		return m.cb.SetText(s.text)
	case snapshotImage:
		return m.cb.SetImage(s.image)
	default:
		return m.cb.Clear()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
