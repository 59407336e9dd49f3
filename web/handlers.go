package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"markestedt/reloadbridge/config"
	"markestedt/reloadbridge/reload"
	"markestedt/reloadbridge/storage"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

// decodeJSON enforces a JSON content type and decodes the body into v. An
// empty body leaves v untouched. It writes the error response itself and
// reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

type commandResponse struct {
	Result string `json:"result"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func newCommandResponse(res reload.Result) commandResponse {
	resp := commandResponse{Status: res.Status.String()}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	return resp
}

// handleReload types the configured reload command. Like the command it
// bridges, the result is always empty; status is informational.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Version string `json:"version"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res := s.commander.ReloadFrom("web", req.Version)
	writeJSON(w, http.StatusOK, newCommandResponse(res))
}

// handleChat types arbitrary text into the game chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text         string `json:"text"`
		RestoreFocus bool   `json:"restoreFocus"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	res := s.commander.Chat(req.Text, req.RestoreFocus, "web")
	code := http.StatusOK
	if res.Status == reload.StatusInvalidCommand {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, newCommandResponse(res))
}

type configResponse struct {
	WindowTitle   string `json:"windowTitle"`
	ReloadCommand string `json:"reloadCommand"`
	SettleDelayMs int    `json:"settleDelayMs"`
	MaxCommandLen int    `json:"maxCommandLen"`
	Hotkey        string `json:"hotkey"`
	WebPort       int    `json:"webPort"`
	Storage       bool   `json:"storageEnabled"`
}

// handleGetConfig returns the current configuration
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.GetConfig()

	writeJSON(w, http.StatusOK, configResponse{
		WindowTitle:   cfg.Target.WindowTitle,
		ReloadCommand: cfg.Target.ReloadCommand,
		SettleDelayMs: cfg.Target.SettleDelayMs,
		MaxCommandLen: cfg.Target.MaxCommandLen,
		Hotkey:        cfg.Hotkey.Combo,
		WebPort:       cfg.Web.Port,
		Storage:       cfg.Storage.Enabled,
	})
}

// handlePutConfig updates the target and hotkey settings. Target changes apply
// to the next command; a hotkey change needs a restart.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WindowTitle   *string `json:"windowTitle"`
		ReloadCommand *string `json:"reloadCommand"`
		SettleDelayMs *int    `json:"settleDelayMs"`
		MaxCommandLen *int    `json:"maxCommandLen"`
		Hotkey        *string `json:"hotkey"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	apply := func(c *config.Config) {
		if req.WindowTitle != nil {
			c.Target.WindowTitle = *req.WindowTitle
		}
		if req.ReloadCommand != nil {
			c.Target.ReloadCommand = *req.ReloadCommand
		}
		if req.SettleDelayMs != nil {
			c.Target.SettleDelayMs = *req.SettleDelayMs
		}
		if req.MaxCommandLen != nil {
			c.Target.MaxCommandLen = *req.MaxCommandLen
		}
		if req.Hotkey != nil {
			c.Hotkey.Combo = *req.Hotkey
		}
	}

	current := s.GetConfig()
	cfg := current.Clone()
	apply(cfg)

	if err := cfg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Persist the edit on top of the file's own contents so values that only
	// come from RELOADBRIDGE_* variables stay out of it.
	onDisk, err := config.ReadFile(current.Path())
	if err != nil {
		slog.Error("Failed to read config file", "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}
	apply(onDisk)
	if err := onDisk.Save(); err != nil {
		slog.Error("Failed to save config", "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	s.UpdateConfig(cfg)
	s.commander.SetTarget(cfg.Target)
	slog.Info("Configuration updated", "window", cfg.Target.WindowTitle, "command", cfg.Target.ReloadCommand)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"restartRequired": cfg.Hotkey.Combo != current.Hotkey.Combo,
	})
}

func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		http.Error(w, "History is disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def, lo, hi int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < lo {
		return def
	}
	if v > hi {
		return hi
	}
	return v
}

// handleGetHistory returns paginated reload history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	limit := queryInt(r, "limit", 50, 1, 500)
	offset := queryInt(r, "offset", 0, 0, 1<<31-1)

	reloads, err := s.db.GetReloads(limit, offset)
	if err != nil {
		slog.Error("Failed to get reloads", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.db.GetReloadCount()
	if err != nil {
		slog.Error("Failed to get reload count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reloads": reloads,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleDeleteHistory deletes a reload by ID
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := s.db.DeleteReload(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Reload not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete reload", "error", err, "id", id)
		http.Error(w, "Failed to delete reload", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleStats returns statistics for the last ?days= days (default 7)
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	days := queryInt(r, "days", 7, 1, 3650)

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

	byStatus, err := s.db.GetStatusStats(days)
	if err != nil {
		slog.Error("Failed to get status stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overall":  overall,
		"daily":    daily,
		"byStatus": byStatus,
	})
}

// handleStatus reports whether a command is in flight and the last outcome.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := "idle"
	if s.commander.Busy() {
		state = "busy"
	}

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": state,
		"window": s.GetConfig().Target.WindowTitle,
		"last":   last,
	})
}
