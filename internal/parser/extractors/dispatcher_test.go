package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherTimeline(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	grp := w.add(newFakeEntity(gameRulesClass, 2)).set("m_pGameRules.m_nGameState", int32(4))
	w.add(playerResource())

	// pre-game: player slots and the first interval are buffered
	require.NoError(t, d.OnTickStart(w.at(10)))
	assert.Equal(t, 2*numSlots, d.Len())

	require.NoError(t, d.OnChatMessage(w, ChatMessage{ChannelType: allChatChannel, SourcePlayerID: 3, Text: "glhf"}))

	// match start
	grp.set("m_pGameRules.m_flGameStartTime", float32(30)).set("m_pGameRules.m_nGameState", int32(5))
	require.NoError(t, d.OnTickStart(w.at(35)))

	require.NoError(t, d.OnCombatLog(w, CombatLogEntry{Kind: CombatLogDamage, Timestamp: 45.5}))
	require.NoError(t, d.OnCombatLog(w, CombatLogEntry{Kind: CombatLogPickupRune, Timestamp: 46}))
	require.NoError(t, d.OnChatEvent(w.at(50), ChatEvent{Type: "ChatMessageHeroKill", Player1: 1, Player2: 6}))
	require.NoError(t, d.OnLocationPing(w, 4))
	require.NoError(t, d.OnCombatLog(w, CombatLogEntry{Kind: CombatLogGameState, Timestamp: 60, Value: ptr(uint32(statePostGame))}))

	before := d.Len()
	require.NoError(t, d.OnTickStart(w.at(61)))
	assert.Equal(t, before, d.Len(), "no intervals after the game ended")
	require.NoError(t, d.OnFileInfo(w, nil))

	entries := d.Entries()
	types := typesOf(entries)
	require.Equal(t, []string{TypeCosmetics, TypeDotaPlus, TypeEpilogue}, types[len(types)-3:])

	slots := filterType(entries, TypePlayerSlot)
	require.Len(t, slots, numSlots)
	assert.Equal(t, -20, slots[0].Time)

	chat := filterType(entries, TypeChat)
	require.Len(t, chat, 1)
	assert.Equal(t, -20, chat[0].Time)
	assert.Equal(t, "glhf", *chat[0].Key)

	intervals := filterType(entries, TypeInterval)
	require.Len(t, intervals, 2*numSlots)
	assert.Equal(t, 5, intervals[numSlots].Time)

	damage := filterType(entries, CombatLogDamage.String())
	require.Len(t, damage, 1)
	assert.Equal(t, 15, damage[0].Time)
	assert.Empty(t, filterType(entries, CombatLogPickupRune.String()))

	kills := filterType(entries, "ChatMessageHeroKill")
	require.Len(t, kills, 1)
	assert.Equal(t, 20, kills[0].Time)
	assert.Len(t, filterType(entries, TypePings), 1)
	assert.Len(t, filterType(entries, CombatLogGameState.String()), 1)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i].Time, entries[i-1].Time, "entry %d (%s)", i, entries[i].TypeName())
	}
}

func TestDispatcherMinimalReplay(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	w.add(newFakeEntity(gameRulesClass, 2)).
		set("m_pGameRules.m_nGameState", int32(5)).
		set("m_pGameRules.m_flGameStartTime", float32(30))

	require.NoError(t, d.OnTickStart(w.at(30)))
	require.NoError(t, d.OnCombatLog(w, CombatLogEntry{Kind: CombatLogDamage, Timestamp: 30.4}))
	require.NoError(t, d.OnFileInfo(w.at(31), nil))

	entries := d.Entries()
	require.Equal(t, []string{CombatLogDamage.String(), TypeCosmetics, TypeDotaPlus, TypeEpilogue}, typesOf(entries))
	assert.Equal(t, 0, entries[0].Time)
	for _, e := range entries[1:] {
		assert.Equal(t, 1, e.Time)
	}
	assert.Equal(t, "{}", *entries[1].Key)
	assert.Equal(t, "{}", *entries[3].Key)
}

func TestDispatcherDraft(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	grp := w.add(draftRules()).set("m_pGameRules.m_iPlayerIDsInControl", uint64(1))
	grp.set(indexed(draftBannedHeroes, 0), int32(12))

	require.NoError(t, d.OnTickStart(w.at(5)))
	require.NoError(t, d.OnTickStart(w.at(6)))

	entries := d.Entries()
	assert.Equal(t, []string{TypeDraftStart, TypeDraftTimings}, typesOf(entries))
	assert.Equal(t, 5, entries[1].Time)
}

func TestDispatcherDraftErrorIsWrapped(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	grp := w.add(draftRules())
	delete(grp.props, indexed(draftSelectedHeroes, 0))

	err := d.OnTickStart(w)
	require.ErrorIs(t, err, ErrPropertyMissing)
	assert.Contains(t, err.Error(), "failed to read draft")
}

func TestDispatcherWardLifecycle(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	ward := newWard(observerWardClass, 77)

	require.NoError(t, d.OnEntity(w.at(100), EntityCreated, ward))
	ward.set("m_lifeState", int32(1))
	require.NoError(t, d.OnEntity(w.at(200), EntityUpdated, ward))
	require.NoError(t, d.OnCombatLog(w, CombatLogEntry{
		Kind:         CombatLogDeath,
		Timestamp:    200,
		AttackerName: ptr("npc_dota_hero_zuus"),
		TargetName:   ptr(observerWardUnit),
	}))
	require.NoError(t, d.OnTickStart(w.at(201)))

	entries := d.Entries()
	placed := filterType(entries, TypeObserver)
	left := filterType(entries, TypeObserverLeft)
	require.Len(t, placed, 1)
	require.Len(t, left, 1)
	assert.Equal(t, 100, placed[0].Time)
	assert.Equal(t, 201, left[0].Time)
	assert.Equal(t, *placed[0].EHandle, *left[0].EHandle)
	assert.Equal(t, "npc_dota_hero_zuus", *left[0].AttackerName)
}

func TestDispatcherUnitOrdersAndWheel(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	w.byIndex[12] = newFakeEntity("CDOTA_Unit_Hero_Axe", 900).set("m_iPlayerID", int32(6))

	require.NoError(t, d.OnUnitOrder(w, 12, 4))
	require.NoError(t, d.OnUnitOrder(w, 13, 4))
	require.NoError(t, d.OnChatWheel(w, ChatWheel{PlayerID: 2, MessageID: 71}))
	require.NoError(t, d.OnChatMessage(w, ChatMessage{ChannelType: 1, SourcePlayerID: 2, Text: "mid"}))

	entries := d.Entries()
	require.Equal(t, []string{TypeActions, TypeChatWheel, "1"}, typesOf(entries))
	assert.Equal(t, int32(3), *entries[0].Slot)
	assert.Equal(t, "4", *entries[0].Key)
	assert.Equal(t, "71", *entries[1].Key)
}

func TestDispatcherCapsPings(t *testing.T) {
	d := NewDispatcher()
	w := newFakeWorld()
	for i := 0; i < maxPings+5; i++ {
		require.NoError(t, d.OnLocationPing(w, 1))
	}
	assert.Equal(t, maxPings, d.Len())
}
