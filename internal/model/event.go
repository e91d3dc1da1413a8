package model

import (
	"fmt"
	"strings"
	"time"
)

// EventType is the closed set of insider-purchase event classifications.
// The string values are the historical names and are what gets serialized.
type EventType string

const (
	EventHolyGrail     EventType = "holy-grail"
	EventSlumpRecovery EventType = "slump-recovery"
	EventClamp         EventType = "clamp"
	EventRestock       EventType = "restock"
	EventMidRise       EventType = "mid-rise"
	EventDisqualified  EventType = "disqualified"
	EventPlateau       EventType = "plateau"
)

// EventTypes lists every EventType in display order.
var EventTypes = []EventType{
	EventHolyGrail,
	EventSlumpRecovery,
	EventClamp,
	EventRestock,
	EventMidRise,
	EventDisqualified,
	EventPlateau,
}

// EventDisplay is presentation metadata for an EventType.
type EventDisplay struct {
	Name       string `json:"name"` // renamed identifier used by newer stored output
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	ColorClass string `json:"color_class"`
	Tooltip    string `json:"tooltip"`
}

var eventDisplays = map[EventType]EventDisplay{
	EventHolyGrail: {
		Name: "breakout-accumulation", Label: "Breakout Accumulation", Icon: "🚀", ColorClass: "event-breakout",
		Tooltip: "Clustered insider buying followed by a 10%+ move within 7 days",
	},
	EventSlumpRecovery: {
		Name: "bottom-catch", Label: "Bottom Catch", Icon: "🎣", ColorClass: "event-bottom",
		Tooltip: "Clustered buying after a 15%+ slump, followed by a 10%+ rebound",
	},
	EventClamp: {
		Name: "cluster-pending", Label: "Cluster Pending", Icon: "⏳", ColorClass: "event-pending",
		Tooltip: "Recent insider buying awaiting a forward price outcome",
	},
	EventRestock: {
		Name: "slow-burn", Label: "Slow Burn", Icon: "🔥", ColorClass: "event-slowburn",
		Tooltip: "3+ purchases within 30 days that are not one tight cluster",
	},
	EventMidRise: {
		Name: "late-chase", Label: "Late Chase", Icon: "📈", ColorClass: "event-latechase",
		Tooltip: "Single purchase made during an existing 10-30% monthly uptrend",
	},
	EventDisqualified: {
		Name: "failed-support", Label: "Failed Support", Icon: "⛔", ColorClass: "event-failed",
		Tooltip: "Forward price action after the purchase was negative",
	},
	EventPlateau: {
		Name: "stabilizing", Label: "Stabilizing", Icon: "➖", ColorClass: "event-neutral",
		Tooltip: "Flat pre-trade price with neutral or positive follow-through",
	},
}

// eventAliases maps every accepted name, legacy or renamed, to its EventType.
var eventAliases = func() map[string]EventType {
	m := make(map[string]EventType, 2*len(eventDisplays)+2)
	for t, d := range eventDisplays {
		m[string(t)] = t
		m[d.Name] = t
	}
	m["cluster"] = EventClamp
	m["breakout"] = EventHolyGrail
	return m
}()

// ParseEventType resolves a legacy or renamed event name.
func ParseEventType(s string) (EventType, error) {
	if t, ok := eventAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// Display returns the presentation metadata for t.
func (t EventType) Display() EventDisplay {
	return eventDisplays[t]
}

func (t EventType) Valid() bool {
	_, ok := eventDisplays[t]
	return ok
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText accepts both naming schemes so old snapshot files decode.
func (t *EventType) UnmarshalText(text []byte) error {
	parsed, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ClassifiedEvent is a single classification emitted for one purchase date.
type ClassifiedEvent struct {
	Type EventType `json:"type"`
	Date Date      `json:"date"`
}

// EventSummary aggregates all events of one type.
type EventSummary struct {
	Type  EventType `json:"type"`
	Count int       `json:"count"`
	Dates []Date    `json:"dates"`
}

// PrimaryEvent is the single highest-priority event, with display metadata.
type PrimaryEvent struct {
	Type       EventType `json:"type"`
	Label      string    `json:"label"`
	Icon       string    `json:"icon"`
	ColorClass string    `json:"color_class"`
	Tooltip    string    `json:"tooltip"`
}

// TickerReport is the enrichment output for one ticker.
type TickerReport struct {
	Ticker       string         `json:"ticker"`
	Events       []EventSummary `json:"events"`
	Primary      *PrimaryEvent  `json:"primary,omitempty"`
	Error        string         `json:"error,omitempty"`
	AsOf         Date           `json:"as_of"`
	ClassifiedAt time.Time      `json:"classified_at"`
}
