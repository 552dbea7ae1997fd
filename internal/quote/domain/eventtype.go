package domain

import "strings"

type EventType string

const (
	EventTypeWedding   EventType = "wedding"
	EventTypeCorporate EventType = "corporate"
	EventTypeFestival  EventType = "festival"
	EventTypePrivate   EventType = "private"
	EventTypeOther     EventType = "other"
)

var eventTypeSynonyms = map[string]EventType{
	"wedding":     EventTypeWedding,
	"marriage":    EventTypeWedding,
	"reception":   EventTypeWedding,
	"corporate":   EventTypeCorporate,
	"business":    EventTypeCorporate,
	"company":     EventTypeCorporate,
	"conference":  EventTypeCorporate,
	"office":      EventTypeCorporate,
	"festival":    EventTypeFestival,
	"concert":     EventTypeFestival,
	"fair":        EventTypeFestival,
	"private":     EventTypePrivate,
	"birthday":    EventTypePrivate,
	"party":       EventTypePrivate,
	"anniversary": EventTypePrivate,
	"family":      EventTypePrivate,
	"other":       EventTypeOther,
}

// NormalizeEventType coerces free text onto the fixed set. Unknown values
// become other; nothing is rejected.
func NormalizeEventType(raw string) EventType {
	if t, ok := eventTypeSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return EventTypeOther
}
