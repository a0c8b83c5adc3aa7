package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSolveStartedData tests SolveStartedData struct
func TestSolveStartedData(t *testing.T) {
	data := SolveStartedData{
		RequestID: "req_123",
		Mode:      "evaluate",
		Dimension: 4,
		Backend:   "statevector_simulator",
	}

	// Test JSON marshaling
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "req_123")
	assert.Contains(t, string(jsonData), "evaluate")
	assert.Contains(t, string(jsonData), "statevector_simulator")

	// Test JSON unmarshaling
	var unmarshaled SolveStartedData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.RequestID, unmarshaled.RequestID)
	assert.Equal(t, data.Mode, unmarshaled.Mode)
	assert.Equal(t, data.Dimension, unmarshaled.Dimension)
	assert.Equal(t, data.Backend, unmarshaled.Backend)
}

// TestSolveCompletedData tests SolveCompletedData struct
func TestSolveCompletedData(t *testing.T) {
	fidelity := 0.997
	data := SolveCompletedData{
		RequestID: "req_456",
		Mode:      "evaluate",
		Backend:   "sampling_simulator",
		Duration:  1.25,
		Fidelity:  &fidelity,
	}

	// Test JSON marshaling
	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "req_456")
	assert.Contains(t, string(jsonData), "0.997")
	assert.Contains(t, string(jsonData), "1.25")

	// Test JSON unmarshaling
	var unmarshaled SolveCompletedData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.RequestID, unmarshaled.RequestID)
	assert.Equal(t, data.Duration, unmarshaled.Duration)
	require.NotNil(t, unmarshaled.Fidelity)
	assert.Equal(t, fidelity, *unmarshaled.Fidelity)
}

// TestSolveCompletedData_WithoutFidelity tests fidelity omission in circuit mode
func TestSolveCompletedData_WithoutFidelity(t *testing.T) {
	data := SolveCompletedData{
		RequestID: "req_789",
		Mode:      "circuit",
		Backend:   "statevector_simulator",
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.NotContains(t, string(jsonData), "fidelity")
}

// TestSolveFailedData tests SolveFailedData struct
func TestSolveFailedData(t *testing.T) {
	data := SolveFailedData{
		RequestID: "req_bad",
		Stage:     "decode",
		Error:     "backend returned no statevector",
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "req_bad")
	assert.Contains(t, string(jsonData), "decode")
	assert.Contains(t, string(jsonData), "backend returned no statevector")

	var unmarshaled SolveFailedData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.Stage, unmarshaled.Stage)
	assert.Equal(t, data.Error, unmarshaled.Error)
}

// TestMarketDataRefreshedData tests MarketDataRefreshedData struct
func TestMarketDataRefreshedData(t *testing.T) {
	data := MarketDataRefreshedData{
		Provider:  "wikipedia",
		Tickers:   []string{"GOOG", "AAPL"},
		Days:      30,
		FromCache: true,
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "wikipedia")
	assert.Contains(t, string(jsonData), "GOOG")
	assert.Contains(t, string(jsonData), "true")

	var unmarshaled MarketDataRefreshedData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.Provider, unmarshaled.Provider)
	assert.Equal(t, data.Tickers, unmarshaled.Tickers)
	assert.Equal(t, data.FromCache, unmarshaled.FromCache)
}

// TestSystemStatusChangedData tests SystemStatusChangedData struct
func TestSystemStatusChangedData(t *testing.T) {
	data := SystemStatusChangedData{
		Status: "healthy",
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "healthy")

	var unmarshaled SystemStatusChangedData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.Status, unmarshaled.Status)
}

// TestJobProgressInfo tests JobProgressInfo struct
func TestJobProgressInfo(t *testing.T) {
	progress := JobProgressInfo{
		Current: 45,
		Total:   100,
		Message: "Processing items",
	}

	jsonData, err := json.Marshal(progress)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "45")
	assert.Contains(t, string(jsonData), "100")
	assert.Contains(t, string(jsonData), "Processing items")

	var unmarshaled JobProgressInfo
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, progress.Current, unmarshaled.Current)
	assert.Equal(t, progress.Total, unmarshaled.Total)
	assert.Equal(t, progress.Message, unmarshaled.Message)
}

// TestJobProgressInfo_WithHierarchicalProgress tests JobProgressInfo with Phase, SubPhase, Details
func TestJobProgressInfo_WithHierarchicalProgress(t *testing.T) {
	progress := JobProgressInfo{
		Current:  12,
		Total:    27,
		Message:  "Measuring basis settings",
		Phase:    "tomography",
		SubPhase: "XYZ",
		Details: map[string]interface{}{
			"settings_total": 27,
			"settings_done":  11,
			"workers_active": 4,
			"shots":          8192,
		},
	}

	jsonData, err := json.Marshal(progress)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"phase":"tomography"`)
	assert.Contains(t, string(jsonData), `"sub_phase":"XYZ"`)
	assert.Contains(t, string(jsonData), `"workers_active"`)

	var unmarshaled JobProgressInfo
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, progress.Phase, unmarshaled.Phase)
	assert.Equal(t, progress.SubPhase, unmarshaled.SubPhase)

	// JSON numbers unmarshal as float64
	assert.Equal(t, float64(27), unmarshaled.Details["settings_total"])
	assert.Equal(t, float64(4), unmarshaled.Details["workers_active"])
}

// TestJobProgressInfo_WithPhaseOnly tests JobProgressInfo with just Phase (no SubPhase or Details)
func TestJobProgressInfo_WithPhaseOnly(t *testing.T) {
	progress := JobProgressInfo{
		Current: 3,
		Total:   6,
		Message: "Refreshing market data",
		Phase:   "market_refresh",
	}

	jsonData, err := json.Marshal(progress)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), `"phase":"market_refresh"`)
	// SubPhase and Details should be omitted when empty
	assert.NotContains(t, string(jsonData), `"sub_phase"`)
	assert.NotContains(t, string(jsonData), `"details"`)

	var unmarshaled JobProgressInfo
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, progress.Phase, unmarshaled.Phase)
	assert.Equal(t, "", unmarshaled.SubPhase)
	assert.Nil(t, unmarshaled.Details)
}

// TestJobStatusData tests JobStatusData struct
func TestJobStatusData(t *testing.T) {
	now := time.Now()
	progress := &JobProgressInfo{
		Current: 5,
		Total:   10,
		Message: "Step 5 of 10",
	}

	data := JobStatusData{
		JobID:       "job_123",
		JobType:     "market_refresh",
		Status:      "progress",
		Description: "Refreshing market data series",
		Progress:    progress,
		Duration:    15.5,
		Metadata: map[string]interface{}{
			"provider": "random",
		},
		Timestamp: now,
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "job_123")
	assert.Contains(t, string(jsonData), "market_refresh")
	assert.Contains(t, string(jsonData), "progress")
	assert.Contains(t, string(jsonData), "15.5")

	var unmarshaled JobStatusData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.JobID, unmarshaled.JobID)
	assert.Equal(t, data.JobType, unmarshaled.JobType)
	assert.Equal(t, data.Status, unmarshaled.Status)
	assert.Equal(t, data.Duration, unmarshaled.Duration)
	require.NotNil(t, unmarshaled.Progress)
	assert.Equal(t, progress.Current, unmarshaled.Progress.Current)
}

// TestJobStatusData_EventType tests EventType() returns correct type based on Status
func TestJobStatusData_EventType(t *testing.T) {
	testCases := []struct {
		status       string
		expectedType EventType
	}{
		{"started", JobStarted},
		{"progress", JobProgress},
		{"completed", JobCompleted},
		{"failed", JobFailed},
		{"unknown", JobStarted}, // Fallback to JobStarted
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			data := &JobStatusData{Status: tc.status}
			assert.Equal(t, tc.expectedType, data.EventType())
		})
	}
}

// TestJobStatusData_WithError tests JobStatusData with error field
func TestJobStatusData_WithError(t *testing.T) {
	data := JobStatusData{
		JobID:       "job_456",
		JobType:     "cache_cleanup",
		Status:      "failed",
		Description: "Removing expired cache entries",
		Error:       "database is locked",
		Duration:    5.2,
		Timestamp:   time.Now(),
	}

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "job_456")
	assert.Contains(t, string(jsonData), "failed")
	assert.Contains(t, string(jsonData), "database is locked")

	var unmarshaled JobStatusData
	err = json.Unmarshal(jsonData, &unmarshaled)
	require.NoError(t, err)
	assert.Equal(t, data.Error, unmarshaled.Error)
}

// TestEventWithData_RoundTrip tests typed round-trip through EventWithData
func TestEventWithData_RoundTrip(t *testing.T) {
	event := &EventWithData{
		Type:      SolveFailed,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Module:    "solver",
		Data: &SolveFailedData{
			RequestID: "req_1",
			Stage:     "resolve",
			Error:     "eigenvalue estimator not found: nope",
		},
	}

	jsonData, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded EventWithData
	err = json.Unmarshal(jsonData, &decoded)
	require.NoError(t, err)
	assert.Equal(t, SolveFailed, decoded.Type)

	data, ok := decoded.Data.(*SolveFailedData)
	require.True(t, ok, "data should decode to SolveFailedData")
	assert.Equal(t, "resolve", data.Stage)
}

// TestEventWithData_UnknownType falls back to generic data
func TestEventWithData_UnknownType(t *testing.T) {
	raw := []byte(`{"type":"mystery","timestamp":"2026-01-02T03:04:05Z","module":"x","data":{"k":"v"}}`)

	var decoded EventWithData
	err := json.Unmarshal(raw, &decoded)
	require.NoError(t, err)

	generic, ok := decoded.Data.(*GenericEventData)
	require.True(t, ok)
	assert.Equal(t, "v", generic.Data["k"])
}
