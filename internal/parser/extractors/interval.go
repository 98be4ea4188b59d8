package extractors

const (
	dataRadiantClass = "CDOTA_DataRadiant"
	dataDireClass    = "CDOTA_DataDire"
	entityNamesTable = "EntityNames"
	abilitySlots     = 32
	inventorySlots   = 8
	direValueBase    = 123
)

type abilityKey struct {
	hero    string
	ability string
}

type ability struct {
	name  string
	level uint8
}

type item struct {
	name             string
	slot             uint8
	charges          *uint8
	secondaryCharges *uint8
}

// intervalSnapshotter emits one interval entry per player for every elapsed
// game second, plus ability level deltas and the two one-shot starting
// inventory snapshots.
type intervalSnapshotter struct {
	seeded bool
	next   int

	abilityLevels map[abilityKey]uint8

	startingItemsWritten [numSlots]bool
	purchasesWritten     [numSlots]bool
}

func newIntervalSnapshotter() *intervalSnapshotter {
	return &intervalSnapshotter{abilityLevels: make(map[abilityKey]uint8)}
}

// seed sets the first interval second the first time the game rules are seen.
func (s *intervalSnapshotter) seed(now float32) {
	if s.seeded {
		return
	}
	s.seeded = true
	s.next = int(now)
}

// due reports whether a snapshot should be taken at now.
func (s *intervalSnapshotter) due(now float32) bool {
	return s.seeded && int(now) >= s.next
}

// snapshot joins the player resource, team data and hero entities into interval
// entries for every resolved player and advances the interval by one second.
// elapsed is the whole number of seconds since match start, or -1 before it.
func (s *intervalSnapshotter) snapshot(w World, pr Entity, id *identity, elapsed int) []Entry {
	var entries []Entry

	var stage *uint8
	if grp, ok := w.EntityByClass(gameRulesClass); ok {
		stage = optInt[uint8](grp, "m_pGameRules.m_nGameState")
	}

	for slot := 0; slot < id.players; slot++ {
		row := id.rowForSlot[slot]
		teamData := indexed("m_vecPlayerTeamData", row)

		e := newEntry(TypeInterval)
		e.Slot = ptr(int32(slot))
		e.Repicked = optBool(pr, teamData+".m_bHasRepicked")
		e.Randomed = optBool(pr, teamData+".m_bHasRandomed")
		e.PredVict = optBool(pr, teamData+".m_bHasPredictedVictory")
		e.FirstbloodClaimed = optBool(pr, teamData+".m_bFirstBloodClaimed")
		e.TeamfightParticipation = optFloat(pr, teamData+".m_flTeamFightParticipation")
		e.Level = optInt[uint8](pr, teamData+".m_iLevel")
		e.Kills = optInt[uint8](pr, teamData+".m_iKills")
		e.Deaths = optInt[uint8](pr, teamData+".m_iDeaths")
		e.Assists = optInt[uint8](pr, teamData+".m_iAssists")
		e.Stage = stage

		teamSlot, ok := propInt(pr, teamData+".m_iTeamSlot")
		if ok && teamSlot >= 0 {
			if dataTeam, ok := s.dataTeam(w, pr, row); ok {
				fillTeamStats(&e, dataTeam, int(teamSlot))
			}
			entries = append(entries, s.heroSnapshot(w, pr, id, slot, row, &e, elapsed)...)
		}

		entries = append(entries, e)
	}

	s.next++
	return entries
}

// dataTeam selects the per-team stat table for a player table row.
func (s *intervalSnapshotter) dataTeam(w World, pr Entity, row int) (Entity, bool) {
	team, _ := propInt(pr, indexed("m_vecPlayerData", row)+".m_iPlayerTeam")
	if team == teamRadiant {
		return w.EntityByClass(dataRadiantClass)
	}
	return w.EntityByClass(dataDireClass)
}

func fillTeamStats(e *Entry, dataTeam Entity, teamSlot int) {
	dt := indexed("m_vecDataTeam", teamSlot)
	e.Denies = optInt[uint8](dataTeam, dt+".m_iDenyCount")
	e.ObsPlaced = optInt[uint8](dataTeam, dt+".m_iObserverWardsPlaced")
	e.SenPlaced = optInt[uint8](dataTeam, dt+".m_iSentryWardsPlaced")
	e.CreepsStacked = optInt[uint8](dataTeam, dt+".m_iCreepsStacked")
	e.CampsStacked = optInt[uint8](dataTeam, dt+".m_iCampsStacked")
	e.RunePickups = optInt[uint8](dataTeam, dt+".m_iRunePickups")
	e.TowersKilled = optInt[uint8](dataTeam, dt+".m_iTowerKills")
	e.RoshansKilled = optInt[uint8](dataTeam, dt+".m_iRoshanKills")
	e.Networth = optInt[uint32](dataTeam, dt+".m_iNetWorth")
	e.Gold = optInt[uint32](dataTeam, dt+".m_iTotalEarnedGold")
	e.LH = optInt[uint16](dataTeam, dt+".m_iLastHitCount")
	e.XP = optInt[uint16](dataTeam, dt+".m_iTotalEarnedXP")
	e.Stuns = optFloat(dataTeam, dt+".m_fStuns")
}

// heroSnapshot fills the hero fields of the interval entry and returns the
// ability and starting item entries observed on the live hero.
func (s *intervalSnapshotter) heroSnapshot(w World, pr Entity, id *identity, slot, row int, e *Entry, elapsed int) []Entry {
	teamData := indexed("m_vecPlayerTeamData", row)
	handle, ok := propUint(pr, teamData+".m_hSelectedHero")
	if !ok {
		return nil
	}
	hero, ok := w.EntityByHandle(handle)
	if !ok {
		return nil
	}
	heroID, _ := propInt(pr, teamData+".m_nSelectedHeroID")

	e.X = optInt[uint8](hero, "CBodyComponent.m_cellX")
	e.Y = optInt[uint8](hero, "CBodyComponent.m_cellY")
	e.Unit = ptr(hero.ClassName())
	e.HeroID = ptr(int32(heroID))
	e.LifeState = optInt[uint8](hero, "m_lifeState")

	if heroID <= 0 {
		return nil
	}

	var entries []Entry
	heroName := id.heroName(hero.ClassName(), slot)

	for _, a := range heroAbilities(w, hero) {
		key := abilityKey{hero: heroName, ability: a.name}
		if last, seen := s.abilityLevels[key]; seen && last == a.level {
			continue
		}
		s.abilityLevels[key] = a.level

		le := newEntry(TypeAbilityLevel)
		le.TargetName = ptr(heroName)
		le.ValueName = ptr(a.name)
		le.AbilityLevel = ptr(a.level)
		entries = append(entries, le)
	}

	value := uint32(slot)
	if slot >= numSlots/2 {
		value += direValueBase
	}

	if elapsed == 1 && !s.startingItemsWritten[slot] {
		s.startingItemsWritten[slot] = true
		for _, it := range heroInventory(w, hero) {
			se := newEntry(TypeStartingItems)
			se.TargetName = ptr(heroName)
			se.ValueName = ptr(it.name)
			se.Slot = e.Slot
			se.Value = ptr(value)
			se.ItemSlot = ptr(it.slot)
			se.Charges = it.charges
			se.SecondaryCharges = it.secondaryCharges
			entries = append(entries, se)
		}
	}

	if !s.purchasesWritten[slot] {
		s.purchasesWritten[slot] = true
		for _, it := range heroInventory(w, hero) {
			pe := newEntry(CombatLogPurchase.String())
			pe.TargetName = ptr(heroName)
			pe.ValueName = ptr(it.name)
			pe.Slot = e.Slot
			pe.Value = ptr(value)
			pe.Charges = it.charges
			entries = append(entries, pe)
		}
	}

	return entries
}

// entityName resolves an entity's name through the EntityNames string table.
func entityName(w World, e Entity) (string, bool) {
	idx, ok := propInt(e, "m_pEntity.m_nameStringableIndex")
	if !ok {
		return "", false
	}
	return w.StringByIndex(entityNamesTable, int32(idx))
}

// slotEntity follows a handle property to its entity, skipping empty slots.
func slotEntity(w World, owner Entity, path string) (Entity, bool) {
	handle, ok := propUint(owner, path)
	if !ok || handle == emptyHandle {
		return nil, false
	}
	return w.EntityByHandle(handle)
}

// heroAbilities lists the resolvable ability slots of a hero.
func heroAbilities(w World, hero Entity) []ability {
	var abilities []ability
	for i := 0; i < abilitySlots; i++ {
		ent, ok := slotEntity(w, hero, indexed("m_hAbilities", i))
		if !ok {
			continue
		}
		name, ok := entityName(w, ent)
		if !ok {
			continue
		}
		level := optInt[uint8](ent, "m_iLevel")
		if level == nil {
			continue
		}
		abilities = append(abilities, ability{name: name, level: *level})
	}
	return abilities
}

// heroInventory lists the filled inventory and backpack slots of a hero.
func heroInventory(w World, hero Entity) []item {
	var items []item
	for i := 0; i < inventorySlots; i++ {
		ent, ok := slotEntity(w, hero, indexed("m_hItems", i))
		if !ok {
			continue
		}
		name, ok := entityName(w, ent)
		if !ok {
			continue
		}
		items = append(items, item{
			name:             name,
			slot:             uint8(i),
			charges:          optInt[uint8](ent, "m_iCurrentCharges"),
			secondaryCharges: optInt[uint8](ent, "m_iSecondaryCharges"),
		})
	}
	return items
}
