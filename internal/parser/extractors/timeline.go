package extractors

import "math"

// pendingEntry is an entry waiting for the match start, with its absolute game time.
type pendingEntry struct {
	at    float32
	entry Entry
}

// timeline is the append-only output sequence plus the buffer of entries
// recorded before the match start is known.
type timeline struct {
	output []Entry
	buffer []pendingEntry

	started bool
	start   float32
}

// record normalizes e against the match start and appends it, or buffers it
// unchanged while the start is still unknown.
func (t *timeline) record(at float32, e Entry) {
	if !t.started {
		t.buffer = append(t.buffer, pendingEntry{at: at, entry: e})
		return
	}
	e.Time = int(math.Floor(float64(at - t.start)))
	t.output = append(t.output, e)
}

// begin fixes the match start and drains the buffer in arrival order.
// Later calls are ignored: the origin never moves once set.
func (t *timeline) begin(start float32) {
	if t.started {
		return
	}
	t.started = true
	t.start = start
	t.flush()
}

// flush drains buffered entries through record. Without a start it is a no-op.
func (t *timeline) flush() {
	if !t.started {
		return
	}
	pending := t.buffer
	t.buffer = nil
	for _, p := range pending {
		t.record(p.at, p.entry)
	}
}

// drain returns the output and resets the timeline.
// Entries still buffered are normalized against a zero origin.
func (t *timeline) drain() []Entry {
	if !t.started {
		t.begin(0)
	}
	out := t.output
	t.output = nil
	return out
}
