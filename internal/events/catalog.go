package events

// EntityRun identifies a single pipeline run.
const EntityRun = "run"

// Event type constants
const (
	EventRunStarted          = "run.started"
	EventConfigurationLoaded = "catalog.configuration.loaded"
	EventEntryAppended       = "catalog.entry.appended"
	EventRunReady            = "run.ready"
	EventRunFailed           = "run.failed"
	EventRunCancelled        = "run.cancelled"
)

// RunStarted is emitted when a session starts its pipeline.
type RunStarted struct {
	BaseEvent
	Orientation string `json:"orientation"`
}

// ConfigurationLoaded is emitted once the image configuration is parsed.
type ConfigurationLoaded struct {
	BaseEvent
	ImageBaseURL string `json:"image_base_url"`
	PosterSize   string `json:"poster_size"`
	BackdropSize string `json:"backdrop_size"`
}

// EntryAppended is emitted for each movie published to the list.
type EntryAppended struct {
	BaseEvent
	Index int    `json:"index"`
	Title string `json:"title"`
}

// RunReady is emitted after the last entry was published.
type RunReady struct {
	BaseEvent
	Count int `json:"count"`
}

// RunFailed is emitted when a run ends in failure.
type RunFailed struct {
	BaseEvent
	Message  string `json:"message"`
	Cause    string `json:"cause,omitempty"`
	Severity string `json:"severity"`
}

// RunCancelled is emitted when a run is abandoned before finishing.
type RunCancelled struct {
	BaseEvent
}
