package extractors

const (
	observerWardClass = "CDOTA_NPC_Observer_Ward"
	sentryWardClass   = "CDOTA_NPC_Observer_Ward_TrueSight"
	observerWardUnit  = "npc_dota_observer_wards"
	sentryWardUnit    = "npc_dota_sentry_wards"
)

// WardKind distinguishes observer wards from sentry wards.
type WardKind int

const (
	WardKindObserver WardKind = iota
	WardKindSentry
)

// WardEventKind is the lifecycle step a ward event reports.
type WardEventKind int

const (
	WardPlaced WardEventKind = iota
	WardExpired
	WardKilled
)

// WardEvent is a ward lifecycle event. Killer is set for WardKilled only.
type WardEvent struct {
	Kind   WardEventKind
	Killer string
}

type wardNotice struct {
	kind  WardKind
	event WardEvent
	ward  Entity
}

type trackedWard struct {
	kind    WardKind
	removed bool
}

// wardWatcher derives ward lifecycle events from entity updates and combat-log
// deaths. Removals are resolved at the next tick start so a death entry
// arriving later in the same tick can still name the killer.
type wardWatcher struct {
	live    map[uint64]*trackedWard
	pending []wardNotice
	killers [2][]string
}

func newWardWatcher() *wardWatcher {
	return &wardWatcher{live: make(map[uint64]*trackedWard)}
}

func wardKindOfClass(class string) (WardKind, bool) {
	switch class {
	case observerWardClass:
		return WardKindObserver, true
	case sentryWardClass:
		return WardKindSentry, true
	}
	return 0, false
}

func wardKindOfUnit(name string) (WardKind, bool) {
	switch name {
	case observerWardUnit:
		return WardKindObserver, true
	case sentryWardUnit:
		return WardKindSentry, true
	}
	return 0, false
}

// observeEntity returns a placement immediately and queues removals.
func (ww *wardWatcher) observeEntity(op EntityOp, e Entity) []wardNotice {
	kind, ok := wardKindOfClass(e.ClassName())
	if !ok {
		return nil
	}
	handle := e.Handle()

	if op.Has(EntityCreated) {
		ww.live[handle] = &trackedWard{kind: kind}
		return []wardNotice{{kind: kind, event: WardEvent{Kind: WardPlaced}, ward: e}}
	}

	tracked, ok := ww.live[handle]
	if !ok {
		return nil
	}

	switch {
	case op.Has(EntityDeleted):
		if !tracked.removed {
			ww.pending = append(ww.pending, wardNotice{kind: kind, ward: e})
		}
		delete(ww.live, handle)
	case op.Has(EntityUpdated):
		if life, ok := propInt(e, "m_lifeState"); ok && life != 0 && !tracked.removed {
			tracked.removed = true
			ww.pending = append(ww.pending, wardNotice{kind: kind, ward: e})
		}
	}
	return nil
}

// observeCombatLog queues the killer of a ward death.
func (ww *wardWatcher) observeCombatLog(cle CombatLogEntry) {
	if cle.Kind != CombatLogDeath || cle.TargetName == nil {
		return
	}
	kind, ok := wardKindOfUnit(*cle.TargetName)
	if !ok {
		return
	}
	killer := ""
	if cle.AttackerName != nil {
		killer = *cle.AttackerName
	}
	ww.killers[kind] = append(ww.killers[kind], killer)
}

// resolve turns queued removals into killed or expired events. Killers left
// unmatched are dropped so they cannot be attached to a later ward.
func (ww *wardWatcher) resolve() []wardNotice {
	notices := ww.pending
	ww.pending = nil
	for i := range notices {
		kind := notices[i].kind
		if queue := ww.killers[kind]; len(queue) > 0 {
			notices[i].event = WardEvent{Kind: WardKilled, Killer: queue[0]}
			ww.killers[kind] = queue[1:]
			continue
		}
		notices[i].event = WardEvent{Kind: WardExpired}
	}
	ww.killers = [2][]string{}
	return notices
}

// wardEntry builds the timeline entry for a ward event.
// The owner slot is best effort; position and handle are always present.
func wardEntry(w World, id *identity, kind WardKind, ev WardEvent, ward Entity) (Entry, error) {
	typ := TypeObserver
	if kind == WardKindSentry {
		typ = TypeSentry
	}
	left := ev.Kind != WardPlaced
	if left {
		typ += "_left"
	}

	e := newEntry(typ)
	e.EntityLeft = ptr(left)
	e.EHandle = ptr(uint32(ward.Handle()))

	for _, c := range []struct {
		path string
		dst  **uint8
	}{
		{"CBodyComponent.m_cellX", &e.X},
		{"CBodyComponent.m_cellY", &e.Y},
		{"CBodyComponent.m_cellZ", &e.Z},
	} {
		v, err := mustInt(ward, c.path)
		if err != nil {
			return Entry{}, err
		}
		*c.dst = ptr(uint8(v))
	}

	if owner, ok := slotEntity(w, ward, "m_hOwnerEntity"); ok {
		if playerID, ok := playerIDOf(owner); ok {
			if slot, ok := id.slotForPlayerID(playerID); ok {
				e.Slot = ptr(slot)
			}
		}
	}

	if ev.Kind == WardKilled {
		e.AttackerName = ptr(ev.Killer)
	}
	return e, nil
}
