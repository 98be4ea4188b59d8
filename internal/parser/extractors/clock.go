package extractors

// ticksPerSecond is the Dota 2 server tick rate.
const ticksPerSecond = 30

const gameRulesClass = "CDOTAGamerulesProxy"

// gameClock converts engine ticks to game seconds, excluding pauses.
// It is refreshed from the game rules proxy at every tick start.
type gameClock struct {
	paused           bool
	pauseStartTick   uint32
	totalPausedTicks uint32

	started   bool
	startTime float32
}

// update refreshes pause accounting and reports true exactly once, on the
// tick where the game rules first publish a positive game start time.
func (c *gameClock) update(grp Entity) bool {
	if paused, ok := propBool(grp, "m_pGameRules.m_bGamePaused"); ok {
		c.paused = paused
	}
	if v, ok := propUint(grp, "m_pGameRules.m_nPauseStartTick"); ok {
		c.pauseStartTick = uint32(v)
	}
	if v, ok := propUint(grp, "m_pGameRules.m_nTotalPausedTicks"); ok {
		c.totalPausedTicks = uint32(v)
	}

	if c.started {
		return false
	}
	start, ok := propFloat(grp, "m_pGameRules.m_flGameStartTime")
	if !ok || start <= 0 {
		return false
	}
	c.started = true
	c.startTime = start
	return true
}

// tick returns the game tick: the net tick minus paused ticks, frozen while paused.
func (c *gameClock) tick(netTick uint32) uint32 {
	t := netTick
	if c.paused && c.pauseStartTick > 0 {
		t = c.pauseStartTick
	}
	if t < c.totalPausedTicks {
		return 0
	}
	return t - c.totalPausedTicks
}

// now returns the current game time in seconds.
func (c *gameClock) now(w World) float32 {
	return float32(c.tick(w.NetTick())) / ticksPerSecond
}
