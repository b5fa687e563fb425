package main

import (
	"context"
	"time"
)

// EventType identifies one kind of multiworld occurrence.
type EventType string

const (
	EventItemReceived       EventType = "item_received"
	EventItemSent           EventType = "item_sent"
	EventLocationChecked    EventType = "location_checked"
	EventPlayerJoined       EventType = "player_joined"
	EventPlayerLeft         EventType = "player_left"
	EventGoalCompleted      EventType = "goal_completed"
	EventHint               EventType = "hint"
	EventChat               EventType = "chat"
	EventServerMessage      EventType = "server_message"
	EventRelease            EventType = "release"
	EventCollect            EventType = "collect"
	EventCountdown          EventType = "countdown"
	EventServerConnected    EventType = "server_connected"
	EventRoomInfo           EventType = "room_info"
	EventRoomUpdate         EventType = "room_update"
	EventDataPackageUpdated EventType = "data_package_updated"
	EventConnectionRefused  EventType = "connection_refused"
	EventDisconnected       EventType = "disconnected"
	EventRawMessage         EventType = "raw_message"
)

// Event is the canonical record of one occurrence in the multiworld,
// regardless of which ingestion strategy produced it. Text is never empty;
// numeric ids are resolved to names before an Event is emitted.
type Event struct {
	Type       EventType
	Text       string // human-readable summary
	TickerText string // short-form display text, optional
	Time       time.Time
	Fields     map[string]string // type-specific attributes
}

// Field returns a named attribute, or "" when absent.
func (e *Event) Field(key string) string {
	return e.Fields[key]
}

// DisplayText returns the ticker text, falling back to the full text.
func (e *Event) DisplayText() string {
	if e.TickerText != "" {
		return e.TickerText
	}
	return e.Text
}

// EventSubscriber receives canonical events from an ingestion source.
type EventSubscriber interface {
	OnEvent(event Event)
}

// LineSubscriber receives raw output lines from a text-based source.
type LineSubscriber interface {
	OnLine(line string)
}

// Source is one ingestion strategy (protocol client, subprocess scraper or
// log tailer). Run blocks until the source is exhausted or ctx is cancelled;
// a non-nil error means the session ended abnormally.
type Source interface {
	Run(ctx context.Context) error
}
