package pumplog

import (
	"context"
	"log"
	"sync"
	"time"

	"farm-assistant/internal/telemetry"
)

// Logger reads the device on demand and appends a record only when the pump
// state differs from the last state it actually recorded.
type Logger struct {
	src telemetry.Source
	ds  Dataset
	now func() time.Time

	// mu covers the marker and the dataset append
	mu      sync.Mutex
	last    string
	hasLast bool
}

func NewLogger(src telemetry.Source, ds Dataset) *Logger {
	return &Logger{src: src, ds: ds, now: time.Now}
}

// Refresh fetches a reading and logs it if the pump changed state. Fetch
// errors are returned as is. Dataset failures are logged and swallowed: the
// reading is still returned and the marker stays where it was.
func (l *Logger) Refresh(ctx context.Context) (telemetry.Reading, error) {
	r, err := l.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	l.observe(ctx, r)
	return r, nil
}

func (l *Logger) observe(ctx context.Context, r telemetry.Reading) {
	pump, ok := r.Pump()
	if !ok || (pump != PumpOn && pump != PumpOff) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hasLast && l.last == pump {
		return
	}
	rec := Record{
		Timestamp:   l.now().In(IST),
		Soil:        r[telemetry.FieldSoil],
		Humidity:    r[telemetry.FieldHumidity],
		Temperature: r[telemetry.FieldTemperature],
		Pump:        pump,
	}
	// the row is written even if the caller has gone away meanwhile
	if err := l.ds.Append(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("❌ failed to log pump state %q: %v", pump, err)
		return
	}
	l.last, l.hasLast = pump, true
	log.Printf("💧 pump state recorded: %s", pump)
}

// LastRecorded returns the most recently written pump state.
func (l *Logger) LastRecorded() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.hasLast
}
