package pumplog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVDataset appends records to a CSV file, writing the header row when the
// file is created.
type CSVDataset struct {
	path string
	mu   sync.Mutex
}

func NewCSVDataset(path string) (*CSVDataset, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure dataset dir: %w", err)
		}
	}
	return &CSVDataset{path: path}, nil
}

func (d *CSVDataset) Append(_ context.Context, rec Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat dataset: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(Columns); err != nil {
			_ = f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush dataset: %w", err)
	}
	return f.Close()
}
