package parser

import (
	"strings"

	"github.com/dotabuff/manta"
	"github.com/dotabuff/manta/dota"

	"dota-timeline/internal/parser/extractors"
)

const (
	// entityHandleBits is the width of the entity index inside a handle.
	entityHandleBits = 14
	combatLogNames   = "CombatLogNames"
)

// entity adapts a manta entity to extractors.Entity.
type entity struct {
	e *manta.Entity
}

func (x entity) ClassName() string { return x.e.GetClassName() }

func (x entity) Handle() uint64 {
	return entityHandle(x.e.GetIndex(), x.e.GetSerial())
}

func (x entity) Property(path string) (any, bool) {
	v := x.e.Get(path)
	return v, v != nil
}

func entityHandle(index, serial int32) uint64 {
	return uint64(serial)<<entityHandleBits | uint64(index)
}

// world adapts a running manta parser to extractors.World. Singleton entities
// are cached by class as they are created, since the engine only indexes by
// entity index and handle.
type world struct {
	p       *manta.Parser
	byClass map[string]*manta.Entity
}

func newWorld(p *manta.Parser) *world {
	return &world{p: p, byClass: make(map[string]*manta.Entity)}
}

func (w *world) NetTick() uint32 { return w.p.NetTick }

func (w *world) EntityByClass(name string) (extractors.Entity, bool) {
	e, ok := w.byClass[name]
	if !ok {
		return nil, false
	}
	return entity{e}, true
}

func (w *world) EntityByHandle(handle uint64) (extractors.Entity, bool) {
	e := w.p.FindEntityByHandle(handle)
	if e == nil {
		return nil, false
	}
	return entity{e}, true
}

func (w *world) EntityByIndex(index int32) (extractors.Entity, bool) {
	e := w.p.FindEntity(index)
	if e == nil {
		return nil, false
	}
	return entity{e}, true
}

func (w *world) StringByIndex(table string, index int32) (string, bool) {
	return w.p.LookupStringByIndex(table, index)
}

// track keeps the class cache in step with entity creation and deletion.
func (w *world) track(e *manta.Entity, op manta.EntityOp) {
	class := e.GetClassName()
	switch {
	case op.Flag(manta.EntityOpCreated):
		w.byClass[class] = e
	case op.Flag(manta.EntityOpDeleted):
		if w.byClass[class] == e {
			delete(w.byClass, class)
		}
	}
}

// combatLogName resolves a combat-log string table index. Absent fields and
// unknown indexes yield nil.
func (w *world) combatLogName(index *uint32) *string {
	if index == nil {
		return nil
	}
	name, ok := w.p.LookupStringByIndex(combatLogNames, int32(*index))
	if !ok {
		return nil
	}
	return &name
}

// combatLogEntry converts the wire message into the decoded form the extractors consume.
func (w *world) combatLogEntry(m *dota.CMsgDOTACombatLogEntry) extractors.CombatLogEntry {
	cle := extractors.CombatLogEntry{
		Kind:             extractors.CombatLogKind(m.GetType()),
		Timestamp:        m.GetTimestamp(),
		AttackerName:     w.combatLogName(m.AttackerName),
		TargetName:       w.combatLogName(m.TargetName),
		SourceName:       w.combatLogName(m.DamageSourceName),
		TargetSourceName: w.combatLogName(m.TargetSourceName),
		InflictorName:    w.combatLogName(m.InflictorName),
		AttackerHero:     m.IsAttackerHero,
		TargetHero:       m.IsTargetHero,
		AttackerIllusion: m.IsAttackerIllusion,
		TargetIllusion:   m.IsTargetIllusion,
		Value:            m.Value,
		StunDuration:     m.StunDuration,
		SlowDuration:     m.SlowDuration,
		GoldReason:       m.GoldReason,
		XPReason:         m.XpReason,
	}
	if cle.Kind == extractors.CombatLogPurchase {
		cle.ValueName = w.combatLogName(m.Value)
	}
	return cle
}

// entityOp maps manta's entity op flags onto the extractor flags.
func entityOp(op manta.EntityOp) extractors.EntityOp {
	var out extractors.EntityOp
	for _, f := range []struct {
		from manta.EntityOp
		to   extractors.EntityOp
	}{
		{manta.EntityOpCreated, extractors.EntityCreated},
		{manta.EntityOpUpdated, extractors.EntityUpdated},
		{manta.EntityOpDeleted, extractors.EntityDeleted},
		{manta.EntityOpEntered, extractors.EntityEntered},
		{manta.EntityOpLeft, extractors.EntityLeft},
	} {
		if op.Flag(f.from) {
			out |= f.to
		}
	}
	return out
}

// chatEventName turns a chat message enum name into its timeline type:
// CHAT_MESSAGE_HERO_KILL -> ChatMessageHeroKill.
func chatEventName(enum string) string {
	var b strings.Builder
	for _, word := range strings.Split(enum, "_") {
		if word == "" {
			continue
		}
		b.WriteString(word[:1])
		b.WriteString(strings.ToLower(word[1:]))
	}
	return b.String()
}
