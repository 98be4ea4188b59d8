package extractors

import "strconv"

// allChatChannel is the channel type of all-chat messages.
const allChatChannel = 11

// maxPings caps the number of location pings written to the timeline.
const maxPings = 100000

// ChatEvent is a game announcement such as a kill streak or a tower deny.
// Type carries the event name, e.g. "ChatMessageHeroKill".
type ChatEvent struct {
	Type    string
	Player1 int32
	Player2 int32
	Value   uint32
}

// ChatMessage is a typed player chat message.
type ChatMessage struct {
	ChannelType    uint32
	SourcePlayerID int32
	Text           string
}

// ChatWheel is a chat wheel phrase used by a player.
type ChatWheel struct {
	PlayerID  uint32
	MessageID uint32
}

func chatEventEntry(ev ChatEvent) Entry {
	e := newEntry(ev.Type)
	e.Player1 = ptr(ev.Player1)
	e.Player2 = ptr(ev.Player2)
	e.Value = ptr(ev.Value)
	return e
}

func chatMessageEntry(msg ChatMessage) Entry {
	typ := TypeChat
	if msg.ChannelType != allChatChannel {
		typ = strconv.FormatUint(uint64(msg.ChannelType), 10)
	}
	e := newEntry(typ)
	e.Slot = ptr(msg.SourcePlayerID)
	e.Key = ptr(msg.Text)
	return e
}

func chatWheelEntry(wheel ChatWheel) Entry {
	e := newEntry(TypeChatWheel)
	e.Slot = ptr(int32(wheel.PlayerID))
	e.Key = ptr(strconv.FormatUint(uint64(wheel.MessageID), 10))
	return e
}

func pingEntry(playerID int32) Entry {
	e := newEntry(TypePings)
	e.Slot = ptr(playerID)
	return e
}
