package eventstore

import (
	"encoding/json"
	"time"
)

// Event is one journaled lifecycle fact.
type Event struct {
	ID        int64
	BuildID   string
	Type      EventType
	Subject   string // output path (or page path) for page events, empty otherwise
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}

// EventType names a lifecycle fact.
type EventType string

const (
	TypePreBuild       EventType = "pre_build"
	TypePageTranslated EventType = "page_translated"
	TypePageSkipped    EventType = "page_skipped"
	TypePostBuild      EventType = "post_build"
)

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return wrap(ErrUnmarshalPayloadFailed, err).WithContext("event_type", string(e.Type)).Build()
	}
	return nil
}
