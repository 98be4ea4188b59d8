package extractors

import "fmt"

type fakeEntity struct {
	class  string
	handle uint64
	props  map[string]any
}

func newFakeEntity(class string, handle uint64) *fakeEntity {
	return &fakeEntity{class: class, handle: handle, props: make(map[string]any)}
}

func (e *fakeEntity) ClassName() string { return e.class }
func (e *fakeEntity) Handle() uint64    { return e.handle }

func (e *fakeEntity) Property(path string) (any, bool) {
	v, ok := e.props[path]
	return v, ok
}

func (e *fakeEntity) set(path string, v any) *fakeEntity {
	e.props[path] = v
	return e
}

type fakeWorld struct {
	tick     uint32
	byClass  map[string]Entity
	byHandle map[uint64]Entity
	byIndex  map[int32]Entity
	strings  map[string]map[int32]string
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		byClass:  make(map[string]Entity),
		byHandle: make(map[uint64]Entity),
		byIndex:  make(map[int32]Entity),
		strings:  make(map[string]map[int32]string),
	}
}

func (w *fakeWorld) NetTick() uint32 { return w.tick }

func (w *fakeWorld) EntityByClass(name string) (Entity, bool) {
	e, ok := w.byClass[name]
	return e, ok
}

func (w *fakeWorld) EntityByHandle(handle uint64) (Entity, bool) {
	e, ok := w.byHandle[handle]
	return e, ok
}

func (w *fakeWorld) EntityByIndex(index int32) (Entity, bool) {
	e, ok := w.byIndex[index]
	return e, ok
}

func (w *fakeWorld) StringByIndex(table string, index int32) (string, bool) {
	s, ok := w.strings[table][index]
	return s, ok
}

// at sets the world clock to the given game second.
func (w *fakeWorld) at(seconds float32) *fakeWorld {
	w.tick = uint32(seconds * ticksPerSecond)
	return w
}

func (w *fakeWorld) add(e *fakeEntity) *fakeEntity {
	w.byClass[e.class] = e
	w.byHandle[e.handle] = e
	return e
}

func (w *fakeWorld) name(index int32, name string) {
	if w.strings[entityNamesTable] == nil {
		w.strings[entityNamesTable] = make(map[int32]string)
	}
	w.strings[entityNamesTable][index] = name
}

// playerResource builds a player table with five radiant and five dire players
// on rows 0..9. Steam ids are 1000+row.
func playerResource() *fakeEntity {
	pr := newFakeEntity(playerResourceClass, 1)
	for row := 0; row < numSlots; row++ {
		team := int32(teamRadiant)
		teamSlot := int32(row)
		if row >= 5 {
			team = teamDire
			teamSlot = int32(row - 5)
		}
		setPlayer(pr, row, team, teamSlot, uint64(1000+row))
	}
	return pr
}

func setPlayer(pr *fakeEntity, row int, team, teamSlot int32, steamID uint64) {
	pr.set(fmt.Sprintf("m_vecPlayerData.%04d.m_iPlayerTeam", row), team)
	pr.set(fmt.Sprintf("m_vecPlayerTeamData.%04d.m_iTeamSlot", row), teamSlot)
	pr.set(fmt.Sprintf("m_vecPlayerData.%04d.m_iPlayerSteamID", row), steamID)
}

func typesOf(entries []Entry) []string {
	types := make([]string, 0, len(entries))
	for _, e := range entries {
		types = append(types, e.TypeName())
	}
	return types
}

func filterType(entries []Entry, typ string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.TypeName() == typ {
			out = append(out, e)
		}
	}
	return out
}
