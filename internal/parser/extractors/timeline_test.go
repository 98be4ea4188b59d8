package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineBuffersUntilStart(t *testing.T) {
	var tl timeline

	tl.record(95.5, newEntry("a"))
	tl.record(97.2, newEntry("b"))
	assert.Empty(t, tl.output)
	assert.Len(t, tl.buffer, 2)

	tl.begin(100)
	tl.record(101.9, newEntry("c"))

	require.Equal(t, []string{"a", "b", "c"}, typesOf(tl.output))
	assert.Equal(t, -5, tl.output[0].Time)
	assert.Equal(t, -3, tl.output[1].Time)
	assert.Equal(t, 1, tl.output[2].Time)
	assert.Empty(t, tl.buffer)
}

func TestTimelineStartIsFixedOnce(t *testing.T) {
	var tl timeline

	tl.begin(10)
	tl.begin(50)
	tl.record(12, newEntry("a"))

	require.Len(t, tl.output, 1)
	assert.Equal(t, 2, tl.output[0].Time)
}

func TestTimelineDrainWithoutStartUsesZeroOrigin(t *testing.T) {
	var tl timeline

	tl.record(3.7, newEntry("a"))
	tl.record(8.1, newEntry("b"))

	out := tl.drain()
	require.Equal(t, []string{"a", "b"}, typesOf(out))
	assert.Equal(t, 3, out[0].Time)
	assert.Equal(t, 8, out[1].Time)
}

func TestTimelineFlushWithoutStartKeepsBuffer(t *testing.T) {
	var tl timeline

	tl.record(1, newEntry("a"))
	tl.flush()

	assert.Empty(t, tl.output)
	assert.Len(t, tl.buffer, 1)
}

func TestGameClockExcludesPauses(t *testing.T) {
	var c gameClock
	grp := newFakeEntity(gameRulesClass, 2).
		set("m_pGameRules.m_bGamePaused", false).
		set("m_pGameRules.m_nTotalPausedTicks", uint32(300))

	assert.False(t, c.update(grp))
	assert.Equal(t, uint32(700), c.tick(1000))

	grp.set("m_pGameRules.m_bGamePaused", true).
		set("m_pGameRules.m_nPauseStartTick", uint32(900))
	c.update(grp)
	assert.Equal(t, uint32(600), c.tick(1200))

	grp.set("m_pGameRules.m_flGameStartTime", float32(42.5))
	assert.True(t, c.update(grp))
	assert.False(t, c.update(grp))
	assert.Equal(t, float32(42.5), c.startTime)
}
