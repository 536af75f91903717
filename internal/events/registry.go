package events

import (
	"encoding/json"
	"fmt"
)

// EventFactory creates a new zero-value event of a specific type.
type EventFactory func() Event

// Registry maps event types to their factories for deserialization.
type Registry struct {
	factories map[string]EventFactory
}

// NewRegistry creates a new event registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]EventFactory),
	}
}

// Register adds an event type to the registry.
func (r *Registry) Register(eventType string, factory EventFactory) {
	r.factories[eventType] = factory
}

// Unmarshal deserializes a raw event into its concrete type.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}

	event := factory()
	if err := json.Unmarshal([]byte(raw.Payload), event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}

	return event, nil
}

// DefaultRegistry returns a registry with all run event types registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EventRunStarted, func() Event { return &RunStarted{} })
	r.Register(EventConfigurationLoaded, func() Event { return &ConfigurationLoaded{} })
	r.Register(EventEntryAppended, func() Event { return &EntryAppended{} })
	r.Register(EventRunReady, func() Event { return &RunReady{} })
	r.Register(EventRunFailed, func() Event { return &RunFailed{} })
	r.Register(EventRunCancelled, func() Event { return &RunCancelled{} })
	return r
}

// UnmarshalAll decodes raw events in order. Unknown types are skipped so
// logs written by newer versions can still be read.
func (r *Registry) UnmarshalAll(raws []RawEvent) ([]Event, error) {
	out := make([]Event, 0, len(raws))
	for _, raw := range raws {
		if _, ok := r.factories[raw.EventType]; !ok {
			continue
		}
		e, err := r.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", raw.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}
