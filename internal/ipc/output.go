package ipc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Log levels accepted by Output.Log.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
)

// Output handles NDJSON (newline-delimited JSON) output.
// All methods are thread-safe.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

// NewOutput creates an NDJSON output handler writing to stdout.
func NewOutput() *Output {
	return NewOutputTo(os.Stdout)
}

// NewOutputTo creates an NDJSON output handler writing to w.
func NewOutputTo(w io.Writer) *Output {
	return &Output{w: w}
}

// Progress sends a progress update message.
func (o *Output) Progress(stage string, tick uint32, entries int) {
	o.writeJSON(map[string]interface{}{
		"type":    "progress",
		"stage":   stage,
		"tick":    tick,
		"entries": entries,
	})
}

// Log sends a log message.
func (o *Output) Log(level, msg string) {
	o.writeJSON(map[string]interface{}{
		"type":  "log",
		"level": level,
		"msg":   msg,
	})
}

// Logf formats and sends a log message.
func (o *Output) Logf(level, format string, args ...interface{}) {
	o.Log(level, fmt.Sprintf(format, args...))
}

// Error sends an error message.
func (o *Output) Error(msg string) {
	o.writeJSON(map[string]interface{}{
		"type": "error",
		"msg":  msg,
	})
}

// Result sends the final summary of a parse.
func (o *Output) Result(matchID string, entries int, path string) {
	o.writeJSON(map[string]interface{}{
		"type":     "result",
		"match_id": matchID,
		"entries":  entries,
		"path":     path,
	})
}

// writeJSON writes a JSON object followed by a newline.
func (o *Output) writeJSON(obj map[string]interface{}) {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(obj)
	if err != nil {
		// Fallback to stderr if JSON marshaling fails
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintf(o.w, "%s\n", data)
}
