package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// SolveStartedData contains data for SolveStarted events
type SolveStartedData struct {
	RequestID string `json:"request_id"`
	Mode      string `json:"mode"`
	Dimension int    `json:"dimension"`
	Backend   string `json:"backend"`
}

// EventType returns the event type for SolveStartedData
func (d *SolveStartedData) EventType() EventType {
	return SolveStarted
}

// SolveProgressData contains data for SolveProgress events
type SolveProgressData struct {
	RequestID string `json:"request_id"`
	Stage     string `json:"stage"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
}

// EventType returns the event type for SolveProgressData
func (d *SolveProgressData) EventType() EventType {
	return SolveProgress
}

// SolveCompletedData contains data for SolveCompleted events
type SolveCompletedData struct {
	RequestID string   `json:"request_id"`
	Mode      string   `json:"mode"`
	Backend   string   `json:"backend"`
	Duration  float64  `json:"duration_seconds"`
	Fidelity  *float64 `json:"fidelity,omitempty"`
}

// EventType returns the event type for SolveCompletedData
func (d *SolveCompletedData) EventType() EventType {
	return SolveCompleted
}

// SolveFailedData contains data for SolveFailed events
type SolveFailedData struct {
	RequestID string `json:"request_id"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}

// EventType returns the event type for SolveFailedData
func (d *SolveFailedData) EventType() EventType {
	return SolveFailed
}

// MarketDataRefreshedData contains data for MarketDataRefreshed events
type MarketDataRefreshedData struct {
	Provider  string   `json:"provider"`
	Tickers   []string `json:"tickers"`
	Days      int      `json:"days"`
	FromCache bool     `json:"from_cache"`
}

// EventType returns the event type for MarketDataRefreshedData
func (d *MarketDataRefreshedData) EventType() EventType {
	return MarketDataRefreshed
}

// SystemStatusChangedData contains data for SystemStatusChanged events
type SystemStatusChangedData struct {
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

// EventType returns the event type for SystemStatusChangedData
func (d *SystemStatusChangedData) EventType() EventType {
	return SystemStatusChanged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// JobProgressInfo contains progress information for a job.
// Supports hierarchical progress with Phase, SubPhase, and Details for rich progress reporting.
type JobProgressInfo struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`

	// Phase identifies the current high-level operation (e.g., "assembly",
	// "execution", "tomography")
	Phase string `json:"phase,omitempty"`

	// SubPhase identifies the specific sub-operation within a phase (e.g.,
	// a basis setting label or a ticker symbol)
	SubPhase string `json:"sub_phase,omitempty"`

	// Details contains arbitrary key-value metrics for the current phase.
	// Common keys include:
	// - For tomography: settings_total, settings_done, workers_active, shots
	// - For market refresh: tickers_total, tickers_done, provider
	Details map[string]interface{} `json:"details,omitempty"`
}

// JobStatusData contains data for job lifecycle events
type JobStatusData struct {
	JobID       string                 `json:"job_id"`
	JobType     string                 `json:"job_type"`
	Status      string                 `json:"status"` // "started", "progress", "completed", "failed"
	Description string                 `json:"description"`
	Progress    *JobProgressInfo       `json:"progress,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Duration    float64                `json:"duration,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// EventType returns the event type for JobStatusData
// Note: The actual event type is determined by the Status field
func (d *JobStatusData) EventType() EventType {
	switch d.Status {
	case "started":
		return JobStarted
	case "progress":
		return JobProgress
	case "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	default:
		return JobStarted
	}
}

// EventWithData represents an event with typed data
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	// Marshal the data separately
	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	// Unmarshal data based on event type
	if len(aux.Data) > 0 {
		var eventData EventData
		switch aux.Type {
		case SolveStarted:
			eventData = &SolveStartedData{}
		case SolveProgress:
			eventData = &SolveProgressData{}
		case SolveCompleted:
			eventData = &SolveCompletedData{}
		case SolveFailed:
			eventData = &SolveFailedData{}
		case MarketDataRefreshed:
			eventData = &MarketDataRefreshedData{}
		case SystemStatusChanged:
			eventData = &SystemStatusChangedData{}
		case ErrorOccurred:
			eventData = &ErrorEventData{}
		case JobStarted, JobProgress, JobCompleted, JobFailed:
			eventData = &JobStatusData{}
		default:
			// For unknown types, use raw map
			var rawData map[string]interface{}
			if err := json.Unmarshal(aux.Data, &rawData); err != nil {
				return err
			}
			// Convert to generic data type
			eventData = &GenericEventData{Data: rawData}
		}

		if eventData != nil {
			if err := json.Unmarshal(aux.Data, eventData); err != nil {
				return err
			}
			e.Data = eventData
		}
	}

	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
