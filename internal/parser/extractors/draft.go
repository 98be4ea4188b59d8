package extractors

import "math"

// Game rules states referenced by the timeline.
const (
	stateHeroSelection = 2
	statePostGame      = 6
)

const (
	draftBanSlots       = 14
	draftPickSlots      = 10
	draftSlots          = draftBanSlots + draftPickSlots
	draftRequiredBans   = 10
	draftBannedHeroes   = "m_pGameRules.m_BannedHeroes"
	draftSelectedHeroes = "m_pGameRules.m_SelectedHeroes"
)

// draftTracker turns the polled ban/pick arrays into one draft_timings entry per
// filled position. Positions are visited in index order, so bans always precede
// picks completed on the same tick.
type draftTracker struct {
	started   bool
	processed [draftSlots]bool
	order     uint8
}

// observe inspects the game rules during hero selection and returns new draft entries.
func (d *draftTracker) observe(grp Entity) ([]Entry, error) {
	var entries []Entry

	if !d.started {
		if inControl, ok := propUint(grp, "m_pGameRules.m_iPlayerIDsInControl"); ok && inControl != 0 {
			entries = append(entries, newEntry(TypeDraftStart))
			d.started = true
		}
	}

	heroes, err := draftHeroes(grp)
	if err != nil {
		return nil, err
	}

	for i, heroID := range heroes {
		if heroID <= 0 || d.processed[i] {
			continue
		}

		extime0, err := mustFloat(grp, "m_pGameRules.m_fExtraTimeRemaining.0000")
		if err != nil {
			return nil, err
		}
		extime1, err := mustFloat(grp, "m_pGameRules.m_fExtraTimeRemaining.0001")
		if err != nil {
			return nil, err
		}

		e := newEntry(TypeDraftTimings)
		e.DraftOrder = ptr(d.order)
		e.Pick = ptr(i >= draftBanSlots)
		e.HeroID = ptr(heroID)
		e.DraftExtime0 = ptr(roundSeconds(extime0))
		e.DraftExtime1 = ptr(roundSeconds(extime1))
		e.DraftActiveTeam = optInt[uint8](grp, "m_pGameRules.m_iActiveTeam")
		entries = append(entries, e)

		d.order++
		d.processed[i] = true
	}

	return entries, nil
}

// draftHeroes reads the 14 ban slots followed by the 10 pick slots.
// Ban slots past the tenth are not networked by every game mode and read as empty.
func draftHeroes(grp Entity) ([draftSlots]int32, error) {
	var heroes [draftSlots]int32

	for i := 0; i < draftBanSlots; i++ {
		path := indexed(draftBannedHeroes, i)
		if i >= draftRequiredBans {
			v, _ := propInt(grp, path)
			heroes[i] = int32(v)
			continue
		}
		v, err := mustInt(grp, path)
		if err != nil {
			return heroes, err
		}
		heroes[i] = int32(v)
	}

	for i := 0; i < draftPickSlots; i++ {
		v, err := mustInt(grp, indexed(draftSelectedHeroes, i))
		if err != nil {
			return heroes, err
		}
		heroes[draftBanSlots+i] = int32(v)
	}

	return heroes, nil
}

// roundSeconds rounds a remaining-time counter to whole seconds.
func roundSeconds(v float32) uint16 {
	r := math.Round(float64(v))
	if r <= 0 {
		return 0
	}
	if r > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(r)
}
