package prompt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"farm-assistant/internal/telemetry"
)

const persona = "You are an intelligent farming assistant for Indian farmers."

const instructions = `Reply in a short, friendly, and helpful way.
Use the live sensor data when it helps answer the question. If the sensor data contains an error, do not invent readings.
Write plain text only. Do not use markdown or formatting symbols: no asterisks (*), no backticks (` + "`" + `), no underscores (_).`

// Assemble builds the model prompt from the transcript, the new message and
// the telemetry snapshot. It is deterministic for equal inputs.
func Assemble(history, message string, snap telemetry.Snapshot) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nPrevious conversation:\n")
	b.WriteString(history)
	b.WriteString("\n\nLive field sensor data (JSON):\n")
	b.WriteString(RenderSnapshot(snap))
	b.WriteString("\n\nUser's new message:\n")
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString(instructions)
	b.WriteString("\n")
	return b.String()
}

// RenderSnapshot renders the reading as indented JSON with sorted keys, or an
// {"error": reason} object when the fetch failed.
func RenderSnapshot(snap telemetry.Snapshot) string {
	var v any = snap.Reading
	if snap.Err != nil {
		v = map[string]string{"error": errorReason(snap.Err)}
	} else if snap.Reading == nil {
		v = telemetry.Reading{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		// values that cannot be encoded come only from a hand-built Reading
		return `{"error":"telemetry not serializable"}`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func errorReason(err error) string {
	var fe *telemetry.FetchError
	switch {
	case errors.As(err, &fe):
		return fe.Reason
	case errors.Is(err, telemetry.ErrNotConfigured):
		return telemetry.ErrNotConfigured.Error()
	default:
		return telemetry.ErrUnreachable.Error()
	}
}
