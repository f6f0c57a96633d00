package transcript

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure history dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("⚠️ failed to read history %s: %v", s.path, err)
		}
		return ""
	}
	return string(data)
}

func (s *FileStore) Append(userMsg, aiReply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	// one write per turn so a block is never split between two calls
	block := fmt.Sprintf("User: %s\nAI: %s\n\n", userMsg, aiReply)
	if _, err := f.WriteString(block); err != nil {
		_ = f.Close()
		return fmt.Errorf("write turn: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("truncate history: %w", err)
	}
	return f.Close()
}
