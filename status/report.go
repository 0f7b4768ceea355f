package status

// Report mirrors engine.PlayReport without importing the engine
// package, so status can stay a leaf dependency of it instead of
// forming an import cycle.
type Report struct {
	SessionID        string  `json:"session_id"`
	StartedAt        string  `json:"started_at"`
	FileCount        int     `json:"file_count"`
	DurationSec      int     `json:"duration_sec"`
	JSONProcessingMs float64 `json:"json_processing_ms"`
	TotalValidated   int     `json:"total_validated"`
	TotalIncorrect   int     `json:"total_incorrect"`
	TotalDragMs      float64 `json:"total_drag_ms"`
	TotalDelayMs     float64 `json:"total_delay_ms"`
	MaximumDelayMs   float64 `json:"maximum_delay_ms"`
	MinimumDelayMs   float64 `json:"minimum_delay_ms"`
	AverageDelayMs   float64 `json:"average_delay_ms"`
	SDDelayMs        float64 `json:"sd_delay_ms"`
}

// PinEvent is one frame of the live event stream (A6): one per pin as
// it is emitted by the player loop.
type PinEvent struct {
	PinID   int     `json:"pin_id"`
	Device  string  `json:"device"`
	TimeMs  float64 `json:"time_ms"`
	DelayMs float64 `json:"delay_ms"`
}
