package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"markestedt/langra/capture"
	"markestedt/langra/config"
	"markestedt/langra/events"
	"markestedt/langra/focus"
	"markestedt/langra/gesture"
	"markestedt/langra/platform"
	"markestedt/langra/storage"
	"markestedt/langra/tasks"
	"markestedt/langra/translate"
	"markestedt/langra/web"
)

// Processing modes
const (
	ModeTranslate = "translate"
	ModeCorrect   = "correct"

	// modeImprove is recorded for corrections driven by a free-form instruction
	modeImprove = "improve"
)

const (
	pipelineWorkers  = 2
	pipelineCapacity = 16
	startSettle      = 50 * time.Millisecond
)

// CredentialSource reads and clears provider API keys
type CredentialSource interface {
	APIKey(provider string) (string, error)
	HasCredentials(t config.TranslationConfig) bool
	Clear() error
}

// CycleStore persists finished cycles
type CycleStore interface {
	SaveCycle(c *storage.Cycle) error
}

// ProviderFactory builds a translation provider for the current settings
type ProviderFactory func(cfg config.TranslationConfig, apiKey string) (translate.Provider, error)

// AgentDeps are the collaborators of an Agent. OS, Clipboard, Creds and Emitter are required.
type AgentDeps struct {
	OS          platform.OS
	Clipboard   platform.Clipboard
	Creds       CredentialSource
	Emitter     events.Emitter
	Store       CycleStore
	OnCycle     func(c *storage.Cycle)
	NewProvider ProviderFactory
	// SelfPID is the process excluded from window tracking; zero means os.Getpid()
	SelfPID int
}

// Agent owns the capture pipeline: gesture detection, window tracking,
// clipboard mediation and the translation cycle.
type Agent struct {
	os          platform.OS
	clipboard   platform.Clipboard
	detector    *gesture.Detector
	tracker     *focus.Tracker
	mediator    *capture.Mediator
	executor    *tasks.Executor
	langs       *translate.Detector
	creds       CredentialSource
	emitter     events.Emitter
	store       CycleStore
	onCycle     func(c *storage.Cycle)
	newProvider ProviderFactory
	sleep       func(ctx context.Context, d time.Duration) error

	cfg              atomic.Pointer[config.Config]
	mode             atomic.Value
	listening        atomic.Bool
	permissionDenied atomic.Bool

	logger *slog.Logger
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config, deps AgentDeps) (*Agent, error) {
	if deps.OS == nil || deps.Clipboard == nil || deps.Creds == nil {
		return nil, errors.New("agent requires platform, clipboard and credentials")
	}

	langs, err := translate.NewDetector()
	if err != nil {
		return nil, fmt.Errorf("failed to create language detector: %w", err)
	}

	pid := deps.SelfPID
	if pid == 0 {
		pid = os.Getpid()
	}

	emitter := deps.Emitter
	if emitter == nil {
		emitter = events.Discard
	}

	newProvider := deps.NewProvider
	if newProvider == nil {
		newProvider = translate.NewProvider
	}

	a := &Agent{
		os:          deps.OS,
		clipboard:   deps.Clipboard,
		detector:    gesture.New(cfg.Hotkey.DebounceWindow()),
		tracker:     focus.NewTrackerForPID(deps.OS, pid),
		mediator:    capture.NewMediator(deps.Clipboard, deps.OS, mediatorDelays(cfg.Timing)),
		executor:    tasks.New(pipelineWorkers, pipelineCapacity),
		langs:       langs,
		creds:       deps.Creds,
		emitter:     emitter,
		store:       deps.Store,
		onCycle:     deps.OnCycle,
		newProvider: newProvider,
		sleep:       sleepCtx,
		logger:      slog.Default().With("component", "agent"),
	}
	a.cfg.Store(cfg)
	a.mode.Store(ModeTranslate)

	return a, nil
}

func mediatorDelays(t config.TimingConfig) capture.Delays {
	return capture.Delays{
		BeforeCopy:  t.BeforeCopy(),
		AfterCopy:   t.AfterCopy(),
		BeforePaste: t.BeforePaste(),
	}
}

// Run listens for the double copy gesture until ctx is done. A listener that
// cannot be installed leaves the agent running without the gesture.
func (a *Agent) Run(ctx context.Context) error {
	defer a.executor.Close()

	keys, err := a.os.Listen(ctx)
	if err != nil {
		a.permissionDenied.Store(errors.Is(err, platform.ErrPermissionDenied))
		a.logger.Error("Keyboard listener unavailable, double copy gesture disabled", "error", err)
		<-ctx.Done()
		return nil
	}

	a.listening.Store(true)
	defer a.listening.Store(false)

	a.logger.Info("Langra started", "mode", a.Mode(), "provider", a.config().Translation.Provider)

	a.detector.Run(ctx, keys, a.OnGestureFired)
	return nil
}

// OnGestureFired remembers the focused window and queues a cycle on the
// clipboard text the user's own copy just produced.
func (a *Agent) OnGestureFired() {
	a.tracker.Remember()
	a.submit(func(ctx context.Context) (string, error) {
		return a.clipboard.Text()
	})
}

// TriggerCapture remembers the focused window and queues a cycle on the
// current selection, copied programmatically.
func (a *Agent) TriggerCapture() error {
	a.tracker.Remember()
	return a.submit(a.mediator.ExtractSelectedText)
}

func (a *Agent) submit(source func(ctx context.Context) (string, error)) error {
	err := a.executor.Submit(func(ctx context.Context) {
		a.pipeline(ctx, source)
	})
	if err != nil {
		a.logger.Warn("Dropping capture cycle", "error", err)
		return fmt.Errorf("failed to queue capture: %w", err)
	}
	return nil
}

// pipeline runs one gesture cycle from window-show to translation-complete
func (a *Agent) pipeline(ctx context.Context, source func(ctx context.Context) (string, error)) {
	start := time.Now()
	cfg := a.config()

	a.emit(events.WindowShow, nil)
	if err := a.sleep(ctx, cfg.Timing.WindowShow()); err != nil {
		return
	}

	if !a.creds.HasCredentials(cfg.Translation) {
		a.logger.Info("No credentials configured")
		a.emit(events.CredentialsMissing, nil)
		return
	}

	text, err := source(ctx)
	if err != nil {
		a.logger.Warn("Failed to read selection", "error", err)
		text = ""
	}
	if strings.TrimSpace(text) == "" {
		a.emit(events.TranslationError, events.ErrorPayload{Message: "No text selected"})
		return
	}

	mode := a.Mode()
	cycle := a.newCycle(mode, cfg, text)

	provider, err := a.provider(cfg)
	if err != nil {
		a.fail(cycle, start, err)
		return
	}

	detectStart := time.Now()
	lang := translate.FallbackLanguage(text)
	if cfg.Translation.DetectLanguage {
		lang, err = a.langs.Detect(ctx, provider, text)
		if err != nil {
			a.fail(cycle, start, err)
			return
		}
	}
	cycle.DetectionLatencyMs = time.Since(detectStart).Milliseconds()
	cycle.SourceLanguage = lang

	a.logger.Info("Capture cycle started", "cycle", cycle.CycleID, "mode", mode, "language", lang, "chars", cycle.CharacterCount)
	a.emit(events.TranslationStart, events.StartPayload{
		DetectedLanguage: lang,
		OriginalText:     text,
		Mode:             mode,
	})

	if err := a.sleep(ctx, startSettle); err != nil {
		return
	}

	runStart := time.Now()
	var result string
	if mode == ModeCorrect {
		result, err = provider.Correct(ctx, text, lang, a.streamHandler())
	} else {
		cycle.TargetLanguage = cfg.Translation.TargetLanguage(lang)
		result, err = provider.Translate(ctx, text, lang, cycle.TargetLanguage, a.streamHandler())
	}
	cycle.TranslationLatencyMs = time.Since(runStart).Milliseconds()

	if err != nil {
		a.fail(cycle, start, err)
		return
	}
	a.complete(cycle, start, result)
}

// InsertResult focuses the window that was active at capture time and pastes text into it
func (a *Agent) InsertResult(ctx context.Context, text string) error {
	if err := a.tracker.FocusPrevious(); err != nil {
		a.logger.Warn("Not inserting result", "error", err)
		return err
	}

	if err := a.sleep(ctx, a.config().Timing.FocusSettle()); err != nil {
		return err
	}

	if err := a.mediator.InjectText(ctx, text); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Retranslate translates text again from an explicitly chosen source language
func (a *Agent) Retranslate(ctx context.Context, text, sourceLang string) (string, error) {
	cfg := a.config()
	cycle := a.newCycle(ModeTranslate, cfg, text)
	cycle.SourceLanguage = sourceLang
	cycle.TargetLanguage = cfg.Translation.TargetLanguage(sourceLang)

	return a.command(ctx, cycle, func(p translate.Provider, h translate.Handler) (string, error) {
		return p.Translate(ctx, text, sourceLang, cycle.TargetLanguage, h)
	})
}

// Correct fixes grammar and spelling of text written in language
func (a *Agent) Correct(ctx context.Context, text, language string) (string, error) {
	cycle := a.newCycle(ModeCorrect, a.config(), text)
	cycle.SourceLanguage = language

	return a.command(ctx, cycle, func(p translate.Provider, h translate.Handler) (string, error) {
		return p.Correct(ctx, text, language, h)
	})
}

// CorrectWithInstruction rewrites text following a free-form instruction
func (a *Agent) CorrectWithInstruction(ctx context.Context, text, language, instruction string) (string, error) {
	cycle := a.newCycle(modeImprove, a.config(), text)
	cycle.SourceLanguage = language

	return a.command(ctx, cycle, func(p translate.Provider, h translate.Handler) (string, error) {
		return p.CorrectWithInstruction(ctx, text, language, instruction, h)
	})
}

// command runs a UI-initiated request with the same streaming, auth handling
// and history as a gesture cycle, and returns the result to the caller.
func (a *Agent) command(ctx context.Context, cycle *storage.Cycle, run func(translate.Provider, translate.Handler) (string, error)) (string, error) {
	start := time.Now()

	if strings.TrimSpace(cycle.OriginalText) == "" {
		return "", errors.New("no text to process")
	}

	provider, err := a.provider(a.config())
	if err != nil {
		a.fail(cycle, start, err)
		return "", err
	}

	result, err := run(provider, a.streamHandler())
	cycle.TranslationLatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		a.fail(cycle, start, err)
		return "", err
	}

	a.complete(cycle, start, result)
	return result, nil
}

// CopyToClipboard places text on the system clipboard
func (a *Agent) CopyToClipboard(text string) error {
	if err := a.clipboard.SetText(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// SetMode switches between translate and correct. "enhance" is accepted as an alias of correct.
func (a *Agent) SetMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeTranslate:
		mode = ModeTranslate
	case ModeCorrect, "enhance":
		mode = ModeCorrect
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	if prev := a.mode.Swap(mode); prev != mode {
		a.logger.Info("Mode changed", "mode", mode)
		a.emit(events.ModeChanged, events.ModePayload{Mode: mode})
	}
	return nil
}

// Mode returns the current processing mode
func (a *Agent) Mode() string {
	return a.mode.Load().(string)
}

// Status reports the agent state for the web UI
func (a *Agent) Status() web.AgentStatus {
	cfg := a.config()

	status := "ready"
	switch {
	case a.permissionDenied.Load():
		status = "permission-denied"
	case !a.listening.Load():
		status = "inactive"
	}

	return web.AgentStatus{
		Status:           status,
		Mode:             a.Mode(),
		Provider:         cfg.Translation.Provider,
		Listening:        a.listening.Load(),
		PermissionDenied: a.permissionDenied.Load(),
		HasCredentials:   a.creds.HasCredentials(cfg.Translation),
	}
}

// ApplyConfig swaps in reloaded settings. Cycles already running keep the old ones.
func (a *Agent) ApplyConfig(cfg *config.Config) {
	a.cfg.Store(cfg)
	a.detector.SetWindow(cfg.Hotkey.DebounceWindow())
	a.mediator.SetDelays(mediatorDelays(cfg.Timing))
	a.logger.Info("Configuration applied", "provider", cfg.Translation.Provider, "debounce", cfg.Hotkey.DebounceWindow())
}

func (a *Agent) config() *config.Config {
	return a.cfg.Load()
}

// provider builds a provider from the stored API key
func (a *Agent) provider(cfg *config.Config) (translate.Provider, error) {
	key, err := a.creds.APIKey(cfg.Translation.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", translate.ErrCredentialsMissing, err)
	}
	return a.newProvider(cfg.Translation, key)
}

func (a *Agent) streamHandler() translate.Handler {
	return translate.Handler{
		OnChunk: func(s string) {
			a.emit(events.TranslationChunk, events.ChunkPayload{Text: s})
		},
		OnProgress: func(p int) {
			a.emit(events.TranslationProgress, events.ProgressPayload{Percent: p})
		},
	}
}

func (a *Agent) newCycle(mode string, cfg *config.Config, text string) *storage.Cycle {
	return &storage.Cycle{
		CycleID:        uuid.NewString(),
		Timestamp:      time.Now(),
		Mode:           mode,
		Provider:       cfg.Translation.Provider,
		OriginalText:   text,
		CharacterCount: len([]rune(text)),
	}
}

func (a *Agent) complete(cycle *storage.Cycle, start time.Time, result string) {
	cycle.ResultText = result
	cycle.Success = true
	cycle.TotalLatencyMs = time.Since(start).Milliseconds()

	a.logger.Info("Capture cycle complete", "cycle", cycle.CycleID, "mode", cycle.Mode, "latency_ms", cycle.TotalLatencyMs)
	a.emit(events.TranslationComplete, events.CompletePayload{
		Text:           result,
		SourceLanguage: cycle.SourceLanguage,
		TargetLanguage: cycle.TargetLanguage,
	})
	a.record(cycle)
}

// fail reports err to the UI. Credential failures also wipe the stored keys
// so the UI asks for new ones.
func (a *Agent) fail(cycle *storage.Cycle, start time.Time, err error) {
	cycle.Success = false
	cycle.ErrorMessage = err.Error()
	cycle.TotalLatencyMs = time.Since(start).Milliseconds()

	a.logger.Error("Capture cycle failed", "cycle", cycle.CycleID, "mode", cycle.Mode, "error", err)

	if errors.Is(err, translate.ErrCredentialsMissing) || translate.IsAuthError(err) {
		if translate.IsAuthError(err) {
			if clearErr := a.creds.Clear(); clearErr != nil {
				a.logger.Error("Failed to clear credentials", "error", clearErr)
			} else {
				a.logger.Warn("Invalid credentials cleared")
			}
		}
		a.emit(events.CredentialsMissing, nil)
	}

	a.emit(events.TranslationError, events.ErrorPayload{Message: err.Error()})
	a.record(cycle)
}

func (a *Agent) record(cycle *storage.Cycle) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveCycle(cycle); err != nil {
		a.logger.Error("Failed to save cycle", "error", err)
		return
	}
	if a.onCycle != nil {
		a.onCycle(cycle)
	}
}

func (a *Agent) emit(name string, payload any) {
	a.emitter.Emit(events.Event{Name: name, Payload: payload})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
