package transcript

// Store keeps the single global conversation as an append-only text log.
// Load returns the whole history as one block (empty if nothing was written yet).
// Append adds one turn; Clear truncates the log to empty and is idempotent.
// Implementations must be safe for concurrent use.
type Store interface {
	Load() string
	Append(userMsg, aiReply string) error
	Clear() error
}
