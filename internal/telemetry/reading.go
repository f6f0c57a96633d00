package telemetry

import (
	"context"
	"fmt"
	"strings"
)

// Field names of the device telemetry contract.
const (
	FieldSoil        = "soil"
	FieldHumidity    = "humidity"
	FieldTemperature = "temperature"
	FieldPump        = "pump"
)

// Reading is a loosely typed snapshot of the device state. Unknown keys pass
// through untouched; numbers are kept as json.Number so they render exactly
// as the device sent them.
type Reading map[string]any

// Pump returns the lowercased pump value. ok is false when the key is
// absent or null.
func (r Reading) Pump() (string, bool) {
	v, ok := r[FieldPump]
	if !ok || v == nil {
		return "", false
	}
	if s, isStr := v.(string); isStr {
		return strings.ToLower(s), true
	}
	return strings.ToLower(fmt.Sprint(v)), true
}

// Source is anything that can produce a Reading, normally the device Client.
type Source interface {
	Fetch(ctx context.Context) (Reading, error)
}

// Snapshot is the outcome of a best-effort fetch: either a Reading or the
// error that prevented one. Exactly one of the fields is set.
type Snapshot struct {
	Reading Reading
	Err     error
}

// Capture fetches from src and folds the outcome into a Snapshot.
func Capture(ctx context.Context, src Source) Snapshot {
	r, err := src.Fetch(ctx)
	if err != nil {
		return Snapshot{Err: err}
	}
	if r == nil {
		r = Reading{}
	}
	return Snapshot{Reading: r}
}
