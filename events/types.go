package events

import "time"

// Event types recorded by the visualizer
const (
	FileLoaded       = "file_loaded"
	LoadFailed       = "load_failed"
	ParamsApplied    = "params_applied"
	PlaybackStarted  = "playback_started"
	PlaybackStopped  = "playback_stopped"
	PlaybackFinished = "playback_finished"
)

type Event struct {
	Type      string    `json:"type"`             // one of the constants above
	Source    string    `json:"source"`           // file or module the event concerns
	Detail    string    `json:"detail,omitempty"` // free text, e.g. the error message
	Timestamp time.Time `json:"timestamp"`        // when the event occurred
}
