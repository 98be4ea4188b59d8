package extractors

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const (
	wearableClass = "CDOTAWearableItem"
	// steamID64Base turns a 32-bit account id into a 64-bit steam id.
	steamID64Base = 76561197960265728
)

// summaryCollector accumulates the end-of-stream cosmetics and dota plus maps.
type summaryCollector struct {
	cosmetics map[int32]int32
	dotaPlus  map[int32]int32

	dotaPlusCollected bool
}

func newSummaryCollector() *summaryCollector {
	return &summaryCollector{
		cosmetics: make(map[int32]int32),
		dotaPlus:  make(map[int32]int32),
	}
}

// observeWearable records the owner of a cosmetic item entering the replay.
func (s *summaryCollector) observeWearable(id *identity, e Entity) {
	accountID, ok := propUint(e, "m_iAccountID")
	if !ok || accountID == 0 {
		return
	}
	itemDef, ok := propInt(e, "m_iItemDefinitionIndex")
	if !ok {
		return
	}
	owner, _ := id.encodedForSteamID(steamID64Base + accountID)
	s.cosmetics[int32(itemDef)] = owner
}

// collectDotaPlus reads the hero badge xp of every resolved player, once.
func (s *summaryCollector) collectDotaPlus(pr Entity, id *identity) {
	if s.dotaPlusCollected {
		return
	}
	s.dotaPlusCollected = true

	for slot := 0; slot < id.players; slot++ {
		row := id.rowForSlot[slot]
		steamID, ok := propUint(pr, indexed("m_vecPlayerData", row)+".m_iPlayerSteamID")
		if !ok {
			continue
		}
		xp, _ := propInt(pr, indexed("m_vecPlayerTeamData", row)+".m_unSelectedHeroBadgeXP")
		if encoded, ok := id.encodedForSteamID(steamID); ok {
			s.dotaPlus[encoded] = int32(xp)
		}
	}
}

// entries serializes the cosmetics map, the dota plus map and the file info
// message into the three closing entries.
func (s *summaryCollector) entries(info proto.Message) ([]Entry, error) {
	cosmetics, err := json.Marshal(s.cosmetics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cosmetics: %w", err)
	}
	dotaPlus, err := json.Marshal(s.dotaPlus)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dota plus xp: %w", err)
	}

	epilogue := []byte("{}")
	if info != nil {
		epilogue, err = protojson.MarshalOptions{UseProtoNames: true}.Marshal(info)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file info: %w", err)
		}
	}

	ce := newEntry(TypeCosmetics)
	ce.Key = ptr(string(cosmetics))
	de := newEntry(TypeDotaPlus)
	de.Key = ptr(string(dotaPlus))
	ee := newEntry(TypeEpilogue)
	ee.Key = ptr(string(epilogue))
	return []Entry{ce, de, ee}, nil
}
