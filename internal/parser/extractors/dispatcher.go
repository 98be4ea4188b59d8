package extractors

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/proto"
)

// Dispatcher receives every engine callback for one replay and owns all
// extraction state. It is not safe for concurrent use; create one per parse.
type Dispatcher struct {
	clock    gameClock
	timeline timeline

	identity  *identity
	draft     draftTracker
	intervals *intervalSnapshotter
	wards     *wardWatcher
	summary   *summaryCollector

	postGame bool
	pings    int
}

var (
	_ TickObserver        = (*Dispatcher)(nil)
	_ EntityObserver      = (*Dispatcher)(nil)
	_ CombatLogObserver   = (*Dispatcher)(nil)
	_ ChatObserver        = (*Dispatcher)(nil)
	_ WardObserver        = (*Dispatcher)(nil)
	_ UserMessageObserver = (*Dispatcher)(nil)
	_ DemoObserver        = (*Dispatcher)(nil)
)

// NewDispatcher creates a dispatcher with empty state.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		identity:  newIdentity(),
		intervals: newIntervalSnapshotter(),
		wards:     newWardWatcher(),
		summary:   newSummaryCollector(),
	}
}

// Entries returns the timeline. Call it once, after the engine reached end of stream.
func (d *Dispatcher) Entries() []Entry {
	return d.timeline.drain()
}

// Len returns the number of entries recorded so far, buffered ones included.
func (d *Dispatcher) Len() int {
	return len(d.timeline.output) + len(d.timeline.buffer)
}

func (d *Dispatcher) recordAll(at float32, entries []Entry) {
	for _, e := range entries {
		d.timeline.record(at, e)
	}
}

// OnTickStart resolves pending ward removals, advances the clock and runs the
// draft tracker, identity resolver, interval snapshotter and dota plus collector.
func (d *Dispatcher) OnTickStart(w World) error {
	for _, n := range d.wards.resolve() {
		if err := d.OnWard(w, n.kind, n.event, n.ward); err != nil {
			return err
		}
	}

	if grp, ok := w.EntityByClass(gameRulesClass); ok {
		if d.clock.update(grp) {
			d.timeline.begin(d.clock.startTime)
		}
		now := d.clock.now(w)

		if state, ok := propInt(grp, "m_pGameRules.m_nGameState"); ok && state == stateHeroSelection {
			entries, err := d.draft.observe(grp)
			if err != nil {
				return fmt.Errorf("failed to read draft: %w", err)
			}
			d.recordAll(now, entries)
		}
		d.intervals.seed(now)
	}

	pr, ok := w.EntityByClass(playerResourceClass)
	if !ok {
		return nil
	}
	now := d.clock.now(w)

	entries, err := d.identity.resolve(pr)
	if err != nil {
		return fmt.Errorf("failed to resolve players: %w", err)
	}
	d.recordAll(now, entries)

	if d.identity.initialized && !d.postGame && d.intervals.due(now) {
		elapsed := -1
		if d.clock.started {
			elapsed = int(now) - int(d.clock.startTime)
		}
		d.recordAll(now, d.intervals.snapshot(w, pr, d.identity, elapsed))
	}

	if d.postGame {
		d.summary.collectDotaPlus(pr, d.identity)
	}
	return nil
}

// OnEntity tracks cosmetics and ward lifecycles.
func (d *Dispatcher) OnEntity(w World, op EntityOp, e Entity) error {
	if op.Has(EntityEntered) && e.ClassName() == wearableClass {
		d.summary.observeWearable(d.identity, e)
		return nil
	}
	for _, n := range d.wards.observeEntity(op, e) {
		if err := d.OnWard(w, n.kind, n.event, n.ward); err != nil {
			return err
		}
	}
	return nil
}

// OnCombatLog classifies a combat-log entry, latching the post-game state.
func (d *Dispatcher) OnCombatLog(_ World, cle CombatLogEntry) error {
	e, postGame := classifyCombatLog(cle)
	d.wards.observeCombatLog(cle)
	if postGame {
		d.postGame = true
	}
	if cle.Kind.emitted() {
		d.timeline.record(cle.Timestamp, e)
	}
	return nil
}

// OnChatEvent records a game announcement.
func (d *Dispatcher) OnChatEvent(w World, ev ChatEvent) error {
	d.timeline.record(d.clock.now(w), chatEventEntry(ev))
	return nil
}

// OnChatMessage records a player chat message.
func (d *Dispatcher) OnChatMessage(w World, msg ChatMessage) error {
	d.timeline.record(d.clock.now(w), chatMessageEntry(msg))
	return nil
}

// OnChatWheel records a chat wheel phrase.
func (d *Dispatcher) OnChatWheel(w World, wheel ChatWheel) error {
	d.timeline.record(d.clock.now(w), chatWheelEntry(wheel))
	return nil
}

// OnWard records a ward placement or removal.
func (d *Dispatcher) OnWard(w World, kind WardKind, ev WardEvent, ward Entity) error {
	e, err := wardEntry(w, d.identity, kind, ev, ward)
	if err != nil {
		return fmt.Errorf("failed to read ward %d: %w", ward.Handle(), err)
	}
	d.timeline.record(d.clock.now(w), e)
	return nil
}

// OnUnitOrder records a spectated unit order. Orders for unknown entities are dropped.
func (d *Dispatcher) OnUnitOrder(w World, entIndex int32, orderType int32) error {
	unit, ok := w.EntityByIndex(entIndex)
	if !ok {
		return nil
	}
	e := newEntry(TypeActions)
	if playerID, ok := playerIDOf(unit); ok {
		e.Slot = ptr(int32(playerID))
	}
	e.Key = ptr(strconv.Itoa(int(orderType)))
	d.timeline.record(d.clock.now(w), e)
	return nil
}

// OnLocationPing records a map ping, up to maxPings per replay.
func (d *Dispatcher) OnLocationPing(w World, playerID int32) error {
	d.pings++
	if d.pings > maxPings {
		return nil
	}
	d.timeline.record(d.clock.now(w), pingEntry(playerID))
	return nil
}

// OnFileInfo handles the end of stream: buffered entries are flushed, then the
// cosmetics, dota plus and epilogue summaries are appended.
func (d *Dispatcher) OnFileInfo(w World, info proto.Message) error {
	d.timeline.flush()
	entries, err := d.summary.entries(info)
	if err != nil {
		return err
	}
	d.recordAll(d.clock.now(w), entries)
	return nil
}
