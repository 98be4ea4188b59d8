package extractors

import (
	"strconv"
	"strings"
	"unicode"
)

const playerResourceClass = "CDOTA_PlayerResource"

// Team numbers used by the player resource table.
const (
	teamRadiant      = 2
	teamDire         = 3
	teamUndetermined = 14
)

const (
	numSlots      = 10
	maxPlayerRows = 30
	direSlotBase  = 128
	heroClassPre  = "CDOTA_Unit_Hero_"
	heroNamePre   = "npc_dota_hero"
)

// identity maps the engine's identifier spaces onto output slots 0..9:
// player table row, steam id, "player_slot" encoding and combat-log hero names.
type identity struct {
	initialized bool
	players     int

	rowForSlot  [numSlots]int
	encoded     [numSlots]int32
	slotForRow  map[int]int
	slotBySteam map[uint64]int32

	slotByHero     map[string]int
	combatLogNames map[string]string
}

func newIdentity() *identity {
	return &identity{
		slotForRow:     make(map[int]int),
		slotBySteam:    make(map[uint64]int32),
		slotByHero:     make(map[string]int),
		combatLogNames: make(map[string]string),
	}
}

// resolve scans the player resource table and, once ten players are seated,
// returns one player_slot entry per player and freezes the maps. It returns
// nothing while the table is partly networked, while a row is still drafting
// and after initialization.
func (id *identity) resolve(pr Entity) ([]Entry, error) {
	if id.initialized {
		return nil, nil
	}

	type seat struct {
		row     int
		encoded int32
		steamID uint64
	}
	seats := make([]seat, 0, numSlots)

	for row := 0; len(seats) < numSlots && row < maxPlayerRows; row++ {
		team, ok := propInt(pr, indexed("m_vecPlayerData", row)+".m_iPlayerTeam")
		if !ok || team == teamUndetermined {
			// row not networked yet or still drafting
			return nil, nil
		}
		if team != teamRadiant && team != teamDire {
			continue
		}

		teamSlot, err := mustInt(pr, indexed("m_vecPlayerTeamData", row)+".m_iTeamSlot")
		if err != nil {
			return nil, err
		}
		steamID, err := mustUint(pr, indexed("m_vecPlayerData", row)+".m_iPlayerSteamID")
		if err != nil {
			return nil, err
		}

		encoded := int32(teamSlot)
		if team == teamDire {
			encoded += direSlotBase
		}
		seats = append(seats, seat{row: row, encoded: encoded, steamID: steamID})
	}
	if len(seats) < numSlots {
		return nil, nil
	}

	entries := make([]Entry, 0, len(seats))
	for slot, s := range seats {
		id.rowForSlot[slot] = s.row
		id.encoded[slot] = s.encoded
		id.slotForRow[s.row] = slot
		id.slotBySteam[s.steamID] = s.encoded

		e := newEntry(TypePlayerSlot)
		e.Key = ptr(strconv.Itoa(slot))
		e.Value = ptr(uint32(s.encoded))
		entries = append(entries, e)
	}
	id.players = len(seats)
	id.initialized = true
	return entries, nil
}

// slotForPlayerID maps an engine player id (player table row) to its output slot.
func (id *identity) slotForPlayerID(playerID int64) (int32, bool) {
	slot, ok := id.slotForRow[int(playerID)]
	return int32(slot), ok
}

// encodedForSteamID returns the player_slot encoding of a steam id.
func (id *identity) encodedForSteamID(steamID uint64) (int32, bool) {
	v, ok := id.slotBySteam[steamID]
	return v, ok
}

// heroName returns the canonical combat-log name for a hero class, memoized per
// class. Both name variants are bound to slot on first sight.
func (id *identity) heroName(class string, slot int) string {
	if name, ok := id.combatLogNames[class]; ok {
		return name
	}
	canonical, snake := combatLogHeroNames(class)
	id.slotByHero[canonical] = slot
	id.slotByHero[snake] = slot
	id.combatLogNames[class] = canonical
	return canonical
}

// combatLogHeroNames derives the two combat-log spellings of a hero entity class:
// CDOTA_Unit_Hero_AntiMage -> npc_dota_hero_antimage, npc_dota_hero_anti_mage.
func combatLogHeroNames(class string) (canonical, snake string) {
	suffix := strings.TrimPrefix(class, heroClassPre)
	canonical = heroNamePre + "_" + strings.ToLower(suffix)

	var b strings.Builder
	b.WriteString(heroNamePre)
	for i, r := range suffix {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if i == 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return canonical, b.String()
}

// playerIDOf reads the owning player id of a unit, as networked on heroes and wards.
func playerIDOf(e Entity) (int64, bool) {
	v, ok := propInt(e, "m_iPlayerID")
	if !ok {
		v, ok = propInt(e, "m_nPlayerID")
	}
	if !ok {
		return 0, false
	}
	return v >> 1, true
}
