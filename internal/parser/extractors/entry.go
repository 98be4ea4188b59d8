package extractors

import (
	"encoding/json"
	"fmt"
)

// Entry is one record of the match timeline.
// Time is always present. Every other field is a pointer so consumers can tell
// "not applicable for this type" (omitted) apart from a zero value.
type Entry struct {
	Time                   int      `json:"time"`
	Type                   *string  `json:"type,omitempty"`
	Team                   *int32   `json:"team,omitempty"`
	Unit                   *string  `json:"unit,omitempty"`
	Key                    *string  `json:"key,omitempty"`
	Value                  *uint32  `json:"value,omitempty"`
	Slot                   *int32   `json:"slot,omitempty"`
	PlayerSlot             *int32   `json:"player_slot,omitempty"`
	Player1                *int32   `json:"player1,omitempty"`
	Player2                *int32   `json:"player2,omitempty"`
	AttackerName           *string  `json:"attackername,omitempty"`
	TargetName             *string  `json:"targetname,omitempty"`
	SourceName             *string  `json:"sourcename,omitempty"`
	TargetSourceName       *string  `json:"targetsourcename,omitempty"`
	AttackerHero           *bool    `json:"attackerhero,omitempty"`
	TargetHero             *bool    `json:"targethero,omitempty"`
	AttackerIllusion       *bool    `json:"attackerillusion,omitempty"`
	TargetIllusion         *bool    `json:"targetillusion,omitempty"`
	AbilityLevel           *uint8   `json:"abilitylevel,omitempty"`
	Inflictor              *string  `json:"inflictor,omitempty"`
	GoldReason             *uint32  `json:"gold_reason,omitempty"`
	XPReason               *uint32  `json:"xp_reason,omitempty"`
	ValueName              *string  `json:"valuename,omitempty"`
	Gold                   *uint32  `json:"gold,omitempty"`
	LH                     *uint16  `json:"lh,omitempty"`
	XP                     *uint16  `json:"xp,omitempty"`
	X                      *uint8   `json:"x,omitempty"`
	Y                      *uint8   `json:"y,omitempty"`
	Z                      *uint8   `json:"z,omitempty"`
	Stuns                  *float32 `json:"stuns,omitempty"`
	HeroID                 *int32   `json:"hero_id,omitempty"`
	ItemSlot               *uint8   `json:"itemslot,omitempty"`
	Charges                *uint8   `json:"charges,omitempty"`
	SecondaryCharges       *uint8   `json:"secondary_charges,omitempty"`
	LifeState              *uint8   `json:"life_state,omitempty"`
	Level                  *uint8   `json:"level,omitempty"`
	Kills                  *uint8   `json:"kills,omitempty"`
	Deaths                 *uint8   `json:"deaths,omitempty"`
	Assists                *uint8   `json:"assists,omitempty"`
	Denies                 *uint8   `json:"denies,omitempty"`
	EntityLeft             *bool    `json:"entityleft,omitempty"`
	EHandle                *uint32  `json:"ehandle,omitempty"`
	ObsPlaced              *uint8   `json:"obs_placed,omitempty"`
	SenPlaced              *uint8   `json:"sen_placed,omitempty"`
	CreepsStacked          *uint8   `json:"creeps_stacked,omitempty"`
	CampsStacked           *uint8   `json:"camps_stacked,omitempty"`
	RunePickups            *uint8   `json:"rune_pickups,omitempty"`
	Repicked               *bool    `json:"repicked,omitempty"`
	Randomed               *bool    `json:"randomed,omitempty"`
	PredVict               *bool    `json:"pred_vict,omitempty"`
	StunDuration           *float32 `json:"stun_duration,omitempty"`
	SlowDuration           *float32 `json:"slow_duration,omitempty"`
	TrackedDeath           *bool    `json:"tracked_death,omitempty"`
	GreevilsGreedStack     *uint8   `json:"greevils_greed_stack,omitempty"`
	TrackedSourceName      *string  `json:"tracked_sourcename,omitempty"`
	FirstbloodClaimed      *bool    `json:"firstblood_claimed,omitempty"`
	TeamfightParticipation *float32 `json:"teamfight_participation,omitempty"`
	TowersKilled           *uint8   `json:"towers_killed,omitempty"`
	RoshansKilled          *uint8   `json:"roshans_killed,omitempty"`
	ObserversPlaced        *uint8   `json:"observers_placed,omitempty"`
	DraftOrder             *uint8   `json:"draft_order,omitempty"`
	Pick                   *bool    `json:"pick,omitempty"`
	DraftActiveTeam        *uint8   `json:"draft_active_team,omitempty"`
	DraftExtime0           *uint16  `json:"draft_extime0,omitempty"`
	DraftExtime1           *uint16  `json:"draft_extime1,omitempty"`
	Networth               *uint32  `json:"networth,omitempty"`
	Stage                  *uint8   `json:"stage,omitempty"`
}

// Entry types emitted outside of the combat log.
const (
	TypeCosmetics     = "cosmetics"
	TypeDotaPlus      = "dotaplus"
	TypeEpilogue      = "epilogue"
	TypeChatWheel     = "chatwheel"
	TypeChat          = "chat"
	TypeObserver      = "obs"
	TypeObserverLeft  = "obs_left"
	TypeSentry        = "sen"
	TypeSentryLeft    = "sen_left"
	TypePings         = "pings"
	TypeActions       = "actions"
	TypeDraftStart    = "draft_start"
	TypeDraftTimings  = "draft_timings"
	TypePlayerSlot    = "player_slot"
	TypeInterval      = "interval"
	TypeStartingItems = "StartingItems"
	TypeAbilityLevel  = "DotaAbilityLevel"
)

// newEntry returns an entry tagged with typ.
func newEntry(typ string) Entry {
	return Entry{Type: &typ}
}

// TypeName returns the entry type or an empty string for untyped entries.
func (e Entry) TypeName() string {
	if e.Type == nil {
		return ""
	}
	return *e.Type
}

// String renders the entry as indented JSON for debugging.
func (e Entry) String() string {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Sprintf("Entry{time: %d, type: %q}", e.Time, e.TypeName())
	}
	return string(data)
}

// ptr returns a pointer to a copy of v.
func ptr[T any](v T) *T {
	return &v
}
