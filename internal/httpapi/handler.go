// Package httpapi exposes the chat and telemetry operations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"farm-assistant/internal/chat"
	"farm-assistant/internal/telemetry"
)

type Chatter interface {
	Reply(ctx context.Context, message string) (string, error)
	Clear() error
}

type Refresher interface {
	Refresh(ctx context.Context) (telemetry.Reading, error)
}

type Handler struct {
	chat      Chatter
	telemetry Refresher
}

func NewHandler(c Chatter, r Refresher) *Handler {
	return &Handler{chat: c, telemetry: r}
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ failed to encode response: %v", err)
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	// an unreadable body is treated like a missing message
	_ = json.NewDecoder(r.Body).Decode(&req)

	reply, err := h.chat.Reply(r.Context(), req.Message)
	if err != nil {
		var be *chat.BackendError
		switch {
		case errors.Is(err, chat.ErrMessageRequired):
			Error(w, http.StatusBadRequest, "Message required")
		case errors.As(err, &be):
			log.Printf("❌ AI request failed: %v", be.Cause)
			JSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "AI request failed",
				"details": be.Cause.Error(),
			})
		default:
			log.Printf("❌ chat failed: %v", err)
			JSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "AI request failed",
				"details": err.Error(),
			})
		}
		return
	}
	JSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Clear(); err != nil {
		log.Printf("❌ failed to clear chat: %v", err)
		Error(w, http.StatusInternalServerError, "failed to clear chat")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "Chat cleared"})
}

func (h *Handler) Telemetry(w http.ResponseWriter, r *http.Request) {
	reading, err := h.telemetry.Refresh(r.Context())
	switch {
	case err == nil:
		JSON(w, http.StatusOK, reading)
	case errors.Is(err, telemetry.ErrNotConfigured):
		Error(w, http.StatusInternalServerError, "ESP_IP not configured")
	default:
		log.Printf("⚠️ telemetry refresh failed: %v", err)
		Error(w, http.StatusServiceUnavailable, "ESP not reachable")
	}
}
