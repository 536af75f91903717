package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Unmarshal(t *testing.T) {
	registry := DefaultRegistry()

	raw := RawEvent{
		EventType: EventConfigurationLoaded,
		Payload:   `{"type":"catalog.configuration.loaded","entity_type":"run","entity_id":9,"occurred_at":"2024-01-01T00:00:00Z","image_base_url":"https://image.tmdb.org/t/p/","poster_size":"w342","backdrop_size":"w780"}`,
	}

	event, err := registry.Unmarshal(raw)
	require.NoError(t, err)

	loaded, ok := event.(*ConfigurationLoaded)
	require.True(t, ok)
	assert.Equal(t, int64(9), loaded.EntityID())
	assert.Equal(t, "w342", loaded.PosterSize)
	assert.Equal(t, "w780", loaded.BackdropSize)
}

func TestRegistry_UnmarshalUnknownType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Unmarshal(RawEvent{EventType: "unknown.event", Payload: `{}`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestRegistry_UnmarshalInvalidPayload(t *testing.T) {
	registry := DefaultRegistry()

	_, err := registry.Unmarshal(RawEvent{EventType: EventRunReady, Payload: `{not json`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal event payload")
}

func TestRegistry_UnmarshalAll(t *testing.T) {
	registry := DefaultRegistry()

	events, err := registry.UnmarshalAll([]RawEvent{
		{ID: 1, EventType: EventRunStarted, Payload: `{"type":"run.started","entity_id":1,"orientation":"portrait"}`},
		{ID: 2, EventType: "future.event", Payload: `{}`},
		{ID: 3, EventType: EventEntryAppended, Payload: `{"type":"catalog.entry.appended","entity_id":1,"index":0,"title":"Dune"}`},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "portrait", events[0].(*RunStarted).Orientation)
	assert.Equal(t, "Dune", events[1].(*EntryAppended).Title)

	_, err = registry.UnmarshalAll([]RawEvent{{ID: 4, EventType: EventRunReady, Payload: `[`}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 4")
}
