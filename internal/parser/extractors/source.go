package extractors

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// ErrPropertyMissing is returned when a property the extraction cannot do without is not networked.
var ErrPropertyMissing = errors.New("property missing")

// emptyHandle marks an unused ability or inventory slot.
const emptyHandle = 0xFFFFFF

// Entity is a decoded game entity as exposed by the replay engine.
type Entity interface {
	ClassName() string
	Handle() uint64
	// Property returns the decoded value at a dotted path such as
	// "m_vecPlayerData.0003.m_iPlayerTeam".
	Property(path string) (any, bool)
}

// World is the engine's view of the replay at the current tick.
type World interface {
	NetTick() uint32
	EntityByClass(name string) (Entity, bool)
	EntityByHandle(handle uint64) (Entity, bool)
	EntityByIndex(index int32) (Entity, bool)
	StringByIndex(table string, index int32) (string, bool)
}

// EntityOp is a bit set describing what happened to an entity.
type EntityOp uint8

const (
	EntityCreated EntityOp = 1 << iota
	EntityUpdated
	EntityDeleted
	EntityEntered
	EntityLeft
)

// Has reports whether op contains flag.
func (op EntityOp) Has(flag EntityOp) bool {
	return op&flag != 0
}

// TickObserver is notified at the start of every tick, before entity updates for that tick.
type TickObserver interface {
	OnTickStart(w World) error
}

// EntityObserver is notified of entity lifecycle changes.
type EntityObserver interface {
	OnEntity(w World, op EntityOp, e Entity) error
}

// CombatLogObserver receives decoded combat-log entries.
type CombatLogObserver interface {
	OnCombatLog(w World, cle CombatLogEntry) error
}

// ChatObserver receives chat related user messages.
type ChatObserver interface {
	OnChatEvent(w World, ev ChatEvent) error
	OnChatMessage(w World, msg ChatMessage) error
	OnChatWheel(w World, wheel ChatWheel) error
}

// WardObserver receives ward lifecycle events.
type WardObserver interface {
	OnWard(w World, kind WardKind, ev WardEvent, ward Entity) error
}

// UserMessageObserver receives the remaining user messages the timeline records.
type UserMessageObserver interface {
	OnUnitOrder(w World, entIndex int32, orderType int32) error
	OnLocationPing(w World, playerID int32) error
}

// DemoObserver receives demo level commands. The file info message marks end of stream.
type DemoObserver interface {
	OnFileInfo(w World, info proto.Message) error
}

// asInt64 converts any integral decoder value to int64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= 1<<63-1
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= 1<<63-1
	default:
		return 0, false
	}
}

// asUint64 converts any non-negative integral decoder value to uint64.
func asUint64(v any) (uint64, bool) {
	if n, ok := v.(uint64); ok {
		return n, true
	}
	if n, ok := v.(uint); ok {
		return uint64(n), true
	}
	i, ok := asInt64(v)
	if !ok || i < 0 {
		return 0, false
	}
	return uint64(i), true
}

// asFloat32 converts floating point and integral decoder values to float32.
func asFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	}
	i, ok := asInt64(v)
	return float32(i), ok
}

func propInt(e Entity, path string) (int64, bool) {
	v, ok := e.Property(path)
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

func propUint(e Entity, path string) (uint64, bool) {
	v, ok := e.Property(path)
	if !ok {
		return 0, false
	}
	return asUint64(v)
}

func propFloat(e Entity, path string) (float32, bool) {
	v, ok := e.Property(path)
	if !ok {
		return 0, false
	}
	return asFloat32(v)
}

func propBool(e Entity, path string) (bool, bool) {
	v, ok := e.Property(path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// mustInt is propInt for lookups the caller cannot continue without.
func mustInt(e Entity, path string) (int64, error) {
	v, ok := propInt(e, path)
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", path, e.ClassName(), ErrPropertyMissing)
	}
	return v, nil
}

// mustUint is propUint for lookups the caller cannot continue without.
func mustUint(e Entity, path string) (uint64, error) {
	v, ok := propUint(e, path)
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", path, e.ClassName(), ErrPropertyMissing)
	}
	return v, nil
}

// mustFloat is propFloat for lookups the caller cannot continue without.
func mustFloat(e Entity, path string) (float32, error) {
	v, ok := propFloat(e, path)
	if !ok {
		return 0, fmt.Errorf("%s on %s: %w", path, e.ClassName(), ErrPropertyMissing)
	}
	return v, nil
}

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
}

// optInt reads an integral property narrowed to T.
// Missing properties and values that do not fit T yield nil.
func optInt[T integer](e Entity, path string) *T {
	v, ok := propInt(e, path)
	if !ok {
		return nil
	}
	t := T(v)
	if int64(t) != v {
		return nil
	}
	return &t
}

func optFloat(e Entity, path string) *float32 {
	v, ok := propFloat(e, path)
	if !ok {
		return nil
	}
	return &v
}

func optBool(e Entity, path string) *bool {
	v, ok := propBool(e, path)
	if !ok {
		return nil
	}
	return &v
}

// indexed formats an engine array path segment, e.g. indexed("m_hItems", 3) = "m_hItems.0003".
func indexed(prefix string, i int) string {
	return fmt.Sprintf("%s.%04d", prefix, i)
}
