package extractors

import "strconv"

// CombatLogKind is the ordinal of a combat-log entry type.
type CombatLogKind int32

const (
	CombatLogInvalid CombatLogKind = iota - 1
	CombatLogDamage
	CombatLogHeal
	CombatLogModifierAdd
	CombatLogModifierRemove
	CombatLogDeath
	CombatLogAbility
	CombatLogItem
	CombatLogLocation
	CombatLogGold
	CombatLogGameState
	CombatLogXP
	CombatLogPurchase
	CombatLogBuyback
	CombatLogAbilityTrigger
	CombatLogPlayerstats
	CombatLogMultikill
	CombatLogKillstreak
	CombatLogTeamBuildingKill
	CombatLogFirstBlood
	CombatLogModifierStackEvent
	CombatLogNeutralCampStack
	CombatLogPickupRune
	CombatLogRevealedInvisible
	CombatLogHeroSaved
	CombatLogManaRestored
	CombatLogHeroLevelup
	CombatLogBottleHealAlly
	CombatLogEndgameStats
	CombatLogInterruptChannel
	CombatLogAlliedGold
	CombatLogAegisTaken
	CombatLogManaDamage
	CombatLogPhysicalDamagePrevented
	CombatLogUnitSummoned
	CombatLogAttackEvade
	CombatLogTreeCut
	CombatLogSuccessfulScan
	CombatLogEndKillstreak
	CombatLogBloodstoneCharge
	CombatLogCriticalDamage
	CombatLogSpellAbsorb
	CombatLogUnitTeleported
	CombatLogKillEaterEvent
	CombatLogNeutralItemEarned
)

// maxEmittedCombatLogKind is the highest ordinal written to the timeline.
// Higher kinds are still observed for their side effects.
const maxEmittedCombatLogKind = CombatLogModifierStackEvent

var combatLogKindNames = [...]string{
	"DotaCombatlogDamage",
	"DotaCombatlogHeal",
	"DotaCombatlogModifierAdd",
	"DotaCombatlogModifierRemove",
	"DotaCombatlogDeath",
	"DotaCombatlogAbility",
	"DotaCombatlogItem",
	"DotaCombatlogLocation",
	"DotaCombatlogGold",
	"DotaCombatlogGameState",
	"DotaCombatlogXp",
	"DotaCombatlogPurchase",
	"DotaCombatlogBuyback",
	"DotaCombatlogAbilityTrigger",
	"DotaCombatlogPlayerstats",
	"DotaCombatlogMultikill",
	"DotaCombatlogKillstreak",
	"DotaCombatlogTeamBuildingKill",
	"DotaCombatlogFirstBlood",
	"DotaCombatlogModifierStackEvent",
	"DotaCombatlogNeutralCampStack",
	"DotaCombatlogPickupRune",
	"DotaCombatlogRevealedInvisible",
	"DotaCombatlogHeroSaved",
	"DotaCombatlogManaRestored",
	"DotaCombatlogHeroLevelup",
	"DotaCombatlogBottleHealAlly",
	"DotaCombatlogEndgameStats",
	"DotaCombatlogInterruptChannel",
	"DotaCombatlogAlliedGold",
	"DotaCombatlogAegisTaken",
	"DotaCombatlogManaDamage",
	"DotaCombatlogPhysicalDamagePrevented",
	"DotaCombatlogUnitSummoned",
	"DotaCombatlogAttackEvade",
	"DotaCombatlogTreeCut",
	"DotaCombatlogSuccessfulScan",
	"DotaCombatlogEndKillstreak",
	"DotaCombatlogBloodstoneCharge",
	"DotaCombatlogCriticalDamage",
	"DotaCombatlogSpellAbsorb",
	"DotaCombatlogUnitTeleported",
	"DotaCombatlogKillEaterEvent",
	"DotaCombatlogNeutralItemEarned",
}

// String returns the timeline type name of the kind.
func (k CombatLogKind) String() string {
	if k == CombatLogInvalid {
		return "DotaCombatlogInvalid"
	}
	if k < 0 || int(k) >= len(combatLogKindNames) {
		return "DotaCombatlog" + strconv.Itoa(int(k))
	}
	return combatLogKindNames[k]
}

// emitted reports whether entries of this kind are written to the timeline.
func (k CombatLogKind) emitted() bool {
	return k >= 0 && k <= maxEmittedCombatLogKind
}

// CombatLogEntry is one decoded combat-log entry with names already resolved.
// Each optional field is nil when the engine could not provide it.
type CombatLogEntry struct {
	Kind      CombatLogKind
	Timestamp float32

	AttackerName     *string
	TargetName       *string
	SourceName       *string
	TargetSourceName *string
	InflictorName    *string
	ValueName        *string

	AttackerHero     *bool
	TargetHero       *bool
	AttackerIllusion *bool
	TargetIllusion   *bool

	Value        *uint32
	StunDuration *float32
	SlowDuration *float32
	GoldReason   *uint32
	XPReason     *uint32
}

// classifyCombatLog builds the timeline entry for a combat-log entry and reports
// whether it signals the post-game state.
func classifyCombatLog(cle CombatLogEntry) (Entry, bool) {
	e := newEntry(cle.Kind.String())
	e.AttackerName = cle.AttackerName
	e.TargetName = cle.TargetName
	e.SourceName = cle.SourceName
	e.TargetSourceName = cle.TargetSourceName
	e.Inflictor = cle.InflictorName
	e.AttackerHero = cle.AttackerHero
	e.TargetHero = cle.TargetHero
	e.AttackerIllusion = cle.AttackerIllusion
	e.TargetIllusion = cle.TargetIllusion
	e.Value = cle.Value
	e.StunDuration = positive(cle.StunDuration)
	e.SlowDuration = positive(cle.SlowDuration)

	switch cle.Kind {
	case CombatLogPurchase:
		e.ValueName = cle.ValueName
	case CombatLogGold:
		e.GoldReason = cle.GoldReason
	case CombatLogXP:
		e.XPReason = cle.XPReason
	}

	postGame := cle.Kind == CombatLogGameState && cle.Value != nil && *cle.Value == statePostGame
	return e, postGame
}

// positive drops zero and negative durations.
func positive(v *float32) *float32 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
