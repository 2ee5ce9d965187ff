package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"markestedt/langra/focus"
	"markestedt/langra/storage"
	"markestedt/langra/translate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeCommandError maps pipeline errors to HTTP status codes
func writeCommandError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, translate.ErrCredentialsMissing), errors.Is(err, translate.ErrCredentialsInvalid):
		status = http.StatusUnauthorized
	case errors.Is(err, focus.ErrNoPreviousWindow):
		status = http.StatusConflict
	case errors.Is(err, translate.ErrBackend):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// handleConfig handles GET and PUT requests for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConfig(w, r)
	case http.MethodPut:
		s.handlePutConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type configView struct {
	Provider             string `json:"provider"`
	Model                string `json:"model"`
	AzureEndpoint        string `json:"azureEndpoint"`
	AzureDeployment      string `json:"azureDeployment"`
	Style                string `json:"style"`
	PrimaryLanguage      string `json:"primaryLanguage"`
	SecondaryLanguage    string `json:"secondaryLanguage"`
	DebounceMS           int    `json:"debounceMs"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	WebEnabled           bool   `json:"webEnabled"`
	WebPort              int    `json:"webPort"`
	HasAPIKey            bool   `json:"hasApiKey"`
}

// handleGetConfig returns the current configuration; API keys are never returned
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.GetConfig()

	writeJSON(w, http.StatusOK, configView{
		Provider:             cfg.Translation.Provider,
		Model:                cfg.Translation.Model,
		AzureEndpoint:        cfg.Translation.AzureEndpoint,
		AzureDeployment:      cfg.Translation.AzureDeployment,
		Style:                cfg.Translation.Style,
		PrimaryLanguage:      cfg.Translation.PrimaryLanguage,
		SecondaryLanguage:    cfg.Translation.SecondaryLanguage,
		DebounceMS:           cfg.Hotkey.DebounceMS,
		NotificationsEnabled: cfg.Notifications.Enabled,
		WebEnabled:           cfg.Web.Enabled,
		WebPort:              cfg.Web.Port,
		HasAPIKey:            s.creds.HasCredentials(cfg.Translation),
	})
}

// handlePutConfig updates the configuration
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider             *string `json:"provider"`
		Model                *string `json:"model"`
		AzureEndpoint        *string `json:"azureEndpoint"`
		AzureDeployment      *string `json:"azureDeployment"`
		Style                *string `json:"style"`
		PrimaryLanguage      *string `json:"primaryLanguage"`
		SecondaryLanguage    *string `json:"secondaryLanguage"`
		DebounceMS           *int    `json:"debounceMs"`
		NotificationsEnabled *bool   `json:"notificationsEnabled"`
		WebEnabled           *bool   `json:"webEnabled"`
		WebPort              *int    `json:"webPort"`
		APIKey               *string `json:"apiKey"`
	}

	if !decodeBody(w, r, &req) {
		return
	}

	cfg := s.GetConfig().Clone()

	// Update fields if provided
	if req.Provider != nil {
		cfg.Translation.Provider = *req.Provider
	}
	if req.Model != nil {
		cfg.Translation.Model = *req.Model
	}
	if req.AzureEndpoint != nil {
		cfg.Translation.AzureEndpoint = strings.TrimSpace(*req.AzureEndpoint)
	}
	if req.AzureDeployment != nil {
		cfg.Translation.AzureDeployment = *req.AzureDeployment
	}
	if req.Style != nil {
		cfg.Translation.Style = *req.Style
	}
	if req.PrimaryLanguage != nil {
		cfg.Translation.PrimaryLanguage = *req.PrimaryLanguage
	}
	if req.SecondaryLanguage != nil {
		cfg.Translation.SecondaryLanguage = *req.SecondaryLanguage
	}
	if req.DebounceMS != nil {
		cfg.Hotkey.DebounceMS = *req.DebounceMS
	}
	if req.NotificationsEnabled != nil {
		cfg.Notifications.Enabled = *req.NotificationsEnabled
	}
	if req.WebEnabled != nil {
		cfg.Web.Enabled = *req.WebEnabled
	}
	if req.WebPort != nil {
		cfg.Web.Port = *req.WebPort
	}

	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.APIKey != nil && *req.APIKey != "" {
		if err := s.creds.SetAPIKey(cfg.Translation.Provider, strings.TrimSpace(*req.APIKey)); err != nil {
			slog.Error("Failed to store API key", "error", err)
			http.Error(w, "Failed to store API key", http.StatusInternalServerError)
			return
		}
	}

	// Save to file; the config watcher propagates the change to the agent
	if err := cfg.Save(); err != nil {
		slog.Error("Failed to save config", "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	// Update in-memory config
	s.UpdateConfig(cfg)

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "History is disabled", http.StatusServiceUnavailable)
		return
	}

	days := 7 // default to 7 days
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	modes, err := s.db.GetModeStats(days)
	if err != nil {
		slog.Error("Failed to get mode stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	providers, err := s.db.GetProviderStats(days)
	if err != nil {
		slog.Error("Failed to get provider stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overall":   overall,
		"daily":     daily,
		"modes":     modes,
		"providers": providers,
	})
}

// handleHistory handles GET and DELETE requests for cycle history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "History is disabled", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetHistory returns paginated cycle history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50 // default
	offset := 0

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	cycles, err := s.db.GetCycles(limit, offset)
	if err != nil {
		slog.Error("Failed to get cycles", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.db.GetCycleCount()
	if err != nil {
		slog.Error("Failed to get cycle count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cycles": cycles,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// handleDeleteHistory deletes a cycle by ID
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path (e.g., /api/history/123)
	idStr := strings.TrimPrefix(r.URL.Path, "/api/history/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := s.db.DeleteCycle(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Cycle not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete cycle", "error", err, "id", id)
		http.Error(w, "Failed to delete cycle", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStatus returns the current agent status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

// handleMode reads or switches between translate and correct
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"mode": s.ctrl.Mode()})
	case http.MethodPut, http.MethodPost:
		var req struct {
			Mode string `json:"mode"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if err := s.ctrl.SetMode(req.Mode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"mode": s.ctrl.Mode()})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCapture starts a capture of the current selection; results arrive over /ws
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.ctrl.TriggerCapture(); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// handleInsert pastes text into the previously focused application
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.ctrl.InsertResult(r.Context(), req.Text); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleRetranslate translates text again, e.g. after the user edited it
func (s *Server) handleRetranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text       string `json:"text"`
		SourceLang string `json:"sourceLang"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.ctrl.Retranslate(r.Context(), req.Text, req.SourceLang)
	if err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": result})
}

// handleCorrect corrects text, optionally following an instruction
func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text        string `json:"text"`
		Language    string `json:"language"`
		Instruction string `json:"instruction"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		result string
		err    error
	)
	if strings.TrimSpace(req.Instruction) != "" {
		result, err = s.ctrl.CorrectWithInstruction(r.Context(), req.Text, req.Language, req.Instruction)
	} else {
		result, err = s.ctrl.Correct(r.Context(), req.Text, req.Language)
	}
	if err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": result})
}

// handleClipboard copies text to the system clipboard
func (s *Server) handleClipboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.ctrl.CopyToClipboard(req.Text); err != nil {
		writeCommandError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
