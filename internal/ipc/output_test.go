package ipc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestOutputMessages(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputTo(&buf)

	o.Progress("parsing", 900, 42)
	o.Logf(LevelInfo, "parsed %d entries", 7)
	o.Error("boom")
	o.Result("abc", 7, "out.json")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "progress", lines[0]["type"])
	assert.Equal(t, "parsing", lines[0]["stage"])
	assert.Equal(t, float64(900), lines[0]["tick"])
	assert.Equal(t, float64(42), lines[0]["entries"])

	assert.Equal(t, "log", lines[1]["type"])
	assert.Equal(t, "info", lines[1]["level"])
	assert.Equal(t, "parsed 7 entries", lines[1]["msg"])

	assert.Equal(t, map[string]interface{}{"type": "error", "msg": "boom"}, lines[2])
	assert.Equal(t, "abc", lines[3]["match_id"])
}

func TestOutputConcurrentWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	o := NewOutputTo(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.Progress("parsing", uint32(i), i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, decodeLines(t, &buf), 20)
}
