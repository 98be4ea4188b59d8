package parser

import (
	"context"
	"fmt"

	"github.com/dotabuff/manta"
	"github.com/dotabuff/manta/dota"

	"dota-timeline/internal/parser/extractors"
)

// ProgressCallback is called during parsing to report progress.
// tick is the engine's net tick; entries counts the timeline records so far.
type ProgressCallback func(stage string, tick uint32, entries int)

// Stages reported to a ProgressCallback.
const (
	StageParsing    = "parsing"
	StageFinalizing = "finalizing"
)

// ParseReplay decodes a whole replay and returns its timeline.
// Each call owns its own engine and dispatcher, so calls may run concurrently.
func ParseReplay(ctx context.Context, data []byte, callback ProgressCallback) (entries []extractors.Entry, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("replay is empty")
	}

	// The engine panics on some truncated or corrupted replays
	defer func() {
		if r := recover(); r != nil {
			entries = nil
			err = fmt.Errorf("parser crashed during parsing (replay may be corrupted, incomplete, or incompatible): %v", r)
		}
	}()

	p, err := manta.NewParser(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}

	d := extractors.NewDispatcher()
	register(ctx, p, d, callback)

	if callback != nil {
		callback(StageParsing, 0, 0)
	}

	if err := p.Start(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to parse replay: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries = d.Entries()
	if callback != nil {
		callback(StageFinalizing, p.NetTick, len(entries))
	}
	return entries, nil
}

// register wires every engine callback the dispatcher observes.
func register(ctx context.Context, p *manta.Parser, d *extractors.Dispatcher, callback ProgressCallback) {
	w := newWorld(p)

	p.Callbacks.OnCNETMsg_Tick(func(m *dota.CNETMsg_Tick) error {
		if err := ctx.Err(); err != nil {
			p.Stop()
			return err
		}
		if err := d.OnTickStart(w); err != nil {
			return fmt.Errorf("tick %d: %w", p.NetTick, err)
		}
		if callback != nil {
			callback(StageParsing, p.NetTick, d.Len())
		}
		return nil
	})

	p.OnEntity(func(e *manta.Entity, op manta.EntityOp) error {
		w.track(e, op)
		return d.OnEntity(w, entityOp(op), entity{e})
	})

	p.Callbacks.OnCMsgDOTACombatLogEntry(func(m *dota.CMsgDOTACombatLogEntry) error {
		return d.OnCombatLog(w, w.combatLogEntry(m))
	})

	p.Callbacks.OnCDOTAUserMsg_ChatEvent(func(m *dota.CDOTAUserMsg_ChatEvent) error {
		return d.OnChatEvent(w, extractors.ChatEvent{
			Type:    chatEventName(m.GetType().String()),
			Player1: m.GetPlayerid_1(),
			Player2: m.GetPlayerid_2(),
			Value:   m.GetValue(),
		})
	})

	p.Callbacks.OnCDOTAUserMsg_ChatMessage(func(m *dota.CDOTAUserMsg_ChatMessage) error {
		return d.OnChatMessage(w, extractors.ChatMessage{
			ChannelType:    m.GetChannelType(),
			SourcePlayerID: m.GetSourcePlayerId(),
			Text:           m.GetMessageText(),
		})
	})

	p.Callbacks.OnCDOTAUserMsg_ChatWheel(func(m *dota.CDOTAUserMsg_ChatWheel) error {
		return d.OnChatWheel(w, extractors.ChatWheel{
			PlayerID:  m.GetPlayerId(),
			MessageID: m.GetChatMessageId(),
		})
	})

	p.Callbacks.OnCDOTAUserMsg_SpectatorPlayerUnitOrders(func(m *dota.CDOTAUserMsg_SpectatorPlayerUnitOrders) error {
		return d.OnUnitOrder(w, m.GetEntindex(), m.GetOrderType())
	})

	p.Callbacks.OnCDOTAUserMsg_LocationPing(func(m *dota.CDOTAUserMsg_LocationPing) error {
		return d.OnLocationPing(w, int32(m.GetPlayerId()))
	})

	p.Callbacks.OnCDemoFileInfo(func(m *dota.CDemoFileInfo) error {
		return d.OnFileInfo(w, m)
	})
}
