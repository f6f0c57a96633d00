package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"farm-assistant/internal/prompt"
	"farm-assistant/internal/telemetry"
	"farm-assistant/internal/transcript"
)

var ErrMessageRequired = errors.New("message required")

// BackendError means the language model failed and the turn was dropped.
type BackendError struct {
	Cause error
}

func (e *BackendError) Error() string { return "AI request failed: " + e.Cause.Error() }

func (e *BackendError) Unwrap() error { return e.Cause }

// Completer turns a prompt into a reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	store transcript.Store
	src   telemetry.Source
	llm   Completer
}

func NewService(store transcript.Store, src telemetry.Source, llm Completer) *Service {
	return &Service{store: store, src: src, llm: llm}
}

// Reply runs one conversational turn. The transcript is written only when
// the model answered; telemetry failures end up as an error marker in the
// prompt instead of failing the turn.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrMessageRequired
	}

	history := s.store.Load()

	snap := telemetry.Capture(ctx, s.src)
	if snap.Err != nil && !errors.Is(snap.Err, telemetry.ErrNotConfigured) {
		log.Printf("⚠️ telemetry unavailable for chat: %v", snap.Err)
	}

	p := prompt.Assemble(history, message, snap)

	reply, err := s.llm.Complete(ctx, p)
	if err != nil {
		return "", &BackendError{Cause: err}
	}

	if err := s.store.Append(message, reply); err != nil {
		// the user still gets the answer, only the history entry is lost
		log.Printf("❌ failed to save turn to history: %v", err)
	}
	return reply, nil
}

func (s *Service) Clear() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
