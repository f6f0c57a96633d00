package pumplog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"farm-assistant/internal/telemetry"
)

// seqSource returns readings in order, one per Fetch.
type seqSource struct {
	mu       sync.Mutex
	readings []telemetry.Reading
	err      error
	calls    int
}

func (s *seqSource) Fetch(ctx context.Context) (telemetry.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	r := s.readings[s.calls%len(s.readings)]
	s.calls++
	return r, nil
}

type fakeDataset struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (d *fakeDataset) Append(ctx context.Context, rec Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	d.records = append(d.records, rec)
	return nil
}

func pumpReadings(states ...any) []telemetry.Reading {
	out := make([]telemetry.Reading, 0, len(states))
	for _, s := range states {
		r := telemetry.Reading{"soil": 400, "humidity": 55, "temperature": 31}
		if s != nil {
			r["pump"] = s
		}
		out = append(out, r)
	}
	return out
}

func refreshAll(t *testing.T, l *Logger, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := l.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
	}
}

func TestRefresh_LogsOnlyTransitions(t *testing.T) {
	src := &seqSource{readings: pumpReadings("on", "on", "off", "off", "on")}
	ds := &fakeDataset{}
	l := NewLogger(src, ds)
	refreshAll(t, l, 5)

	if len(ds.records) != 3 {
		t.Fatalf("want 3 records, got %d: %+v", len(ds.records), ds.records)
	}
	want := []string{"on", "off", "on"}
	for i, rec := range ds.records {
		if rec.Pump != want[i] {
			t.Fatalf("record %d pump = %q, want %q", i, rec.Pump, want[i])
		}
	}
	if last, ok := l.LastRecorded(); !ok || last != "on" {
		t.Fatalf("marker = %q, %v", last, ok)
	}
}

func TestRefresh_IgnoresInvalidStates(t *testing.T) {
	src := &seqSource{readings: pumpReadings("ON", "unknown", "on", nil, "Off")}
	ds := &fakeDataset{}
	l := NewLogger(src, ds)
	refreshAll(t, l, 5)

	if len(ds.records) != 2 {
		t.Fatalf("want 2 records, got %d: %+v", len(ds.records), ds.records)
	}
	if ds.records[0].Pump != "on" || ds.records[1].Pump != "off" {
		t.Fatalf("unexpected records: %+v", ds.records)
	}
}

func TestRefresh_NoValidStateLeavesMarkerUnset(t *testing.T) {
	src := &seqSource{readings: pumpReadings(nil, "auto", "")}
	ds := &fakeDataset{}
	l := NewLogger(src, ds)
	refreshAll(t, l, 3)
	if len(ds.records) != 0 {
		t.Fatalf("want no records, got %+v", ds.records)
	}
	if _, ok := l.LastRecorded(); ok {
		t.Fatalf("marker must stay unset")
	}
}

func TestRefresh_ReturnsReadingUnchanged(t *testing.T) {
	in := telemetry.Reading{"pump": "ON", "soil": "dry", "extra": 1}
	l := NewLogger(&seqSource{readings: []telemetry.Reading{in}}, &fakeDataset{})
	out, err := l.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if out["pump"] != "ON" || out["soil"] != "dry" || out["extra"] != 1 {
		t.Fatalf("reading modified: %+v", out)
	}
}

func TestRefresh_RecordFields(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	src := &seqSource{readings: []telemetry.Reading{{"pump": "off", "soil": 700}}}
	ds := &fakeDataset{}
	l := NewLogger(src, ds)
	l.now = func() time.Time { return fixed }
	refreshAll(t, l, 1)

	rec := ds.records[0]
	if rec.Soil != 700 || rec.Humidity != nil || rec.Temperature != nil {
		t.Fatalf("sensor values not passed through: %+v", rec)
	}
	if got := rec.Row()[0]; got != "2026-03-01T11:30:00+05:30" {
		t.Fatalf("timestamp = %q", got)
	}
}

func TestRefresh_FetchErrorPropagates(t *testing.T) {
	ds := &fakeDataset{}
	l := NewLogger(&seqSource{err: telemetry.ErrUnreachable}, ds)
	if _, err := l.Refresh(context.Background()); !errors.Is(err, telemetry.ErrUnreachable) {
		t.Fatalf("want ErrUnreachable, got %v", err)
	}
	if len(ds.records) != 0 {
		t.Fatalf("no record expected on fetch failure")
	}
	if _, ok := l.LastRecorded(); ok {
		t.Fatalf("marker must stay unset")
	}
}

func TestRefresh_DatasetFailureKeepsMarker(t *testing.T) {
	src := &seqSource{readings: pumpReadings("on")}
	ds := &fakeDataset{err: errors.New("disk full")}
	l := NewLogger(src, ds)

	r, err := l.Refresh(context.Background())
	if err != nil {
		t.Fatalf("dataset failure must not fail the read: %v", err)
	}
	if r["pump"] != "on" {
		t.Fatalf("reading not returned: %+v", r)
	}
	if _, ok := l.LastRecorded(); ok {
		t.Fatalf("marker must not advance when the append failed")
	}

	// once the dataset recovers the same state is recorded
	ds.err = nil
	refreshAll(t, l, 1)
	if len(ds.records) != 1 {
		t.Fatalf("want 1 record after recovery, got %d", len(ds.records))
	}
}

func TestRefresh_ConcurrentCallsLogOnce(t *testing.T) {
	src := &seqSource{readings: pumpReadings("on")}
	ds := &fakeDataset{}
	l := NewLogger(src, ds)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Refresh(context.Background())
		}()
	}
	wg.Wait()
	if len(ds.records) != 1 {
		t.Fatalf("want exactly 1 record, got %d", len(ds.records))
	}
}

func TestRefresh_CancelledCallerStillLogs(t *testing.T) {
	src := &seqSource{readings: pumpReadings("off")}
	ds := &fakeDataset{}
	l := NewLogger(src, ds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(ds.records) != 1 {
		t.Fatalf("transition must be logged after the caller cancelled, got %d records", len(ds.records))
	}
	if last, ok := l.LastRecorded(); !ok || last != "off" {
		t.Fatalf("marker = %q, %v", last, ok)
	}
}
