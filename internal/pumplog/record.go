package pumplog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	PumpOn  = "on"
	PumpOff = "off"
)

// IST is the fixed +05:30 offset used for dataset timestamps.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// Columns is the header of the dataset, in order.
var Columns = []string{"timestamp", "soil", "humidity", "temperature", "pump"}

// Record is one logged pump transition. Sensor values are copied from the
// reading unchanged and may be nil when the device did not report them.
type Record struct {
	Timestamp   time.Time
	Soil        any
	Humidity    any
	Temperature any
	Pump        string
}

// Row renders the record as dataset cells in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Timestamp.In(IST).Format(time.RFC3339),
		cell(r.Soil),
		cell(r.Humidity),
		cell(r.Temperature),
		r.Pump,
	}
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Dataset is the durable append-only destination for records.
type Dataset interface {
	Append(ctx context.Context, rec Record) error
}
