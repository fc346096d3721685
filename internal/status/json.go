package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event            string           `json:"event,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	Mode             string           `json:"mode"`
	MenuIndex        int              `json:"menu_index"`
	MenuItem         string           `json:"menu_item"`
	SchedulerRunning bool             `json:"scheduler_running"`
	UptimeSeconds    int64            `json:"uptime_seconds"`
	StartTime        string           `json:"start_time"`
	Timestamp        string           `json:"timestamp"`
	Reading          *ReadingJSON     `json:"reading,omitempty"`
	Counts           CountsJSON       `json:"counts"`
	History          []TransitionJSON `json:"history,omitempty"`
	HistoryTruncated bool             `json:"history_truncated,omitempty"`
	Config           ConfigJSON       `json:"config"`
}

// ReadingJSON is the JSON representation of the last sensor reading.
type ReadingJSON struct {
	TemperatureC     float64 `json:"temperature_c"`
	TemperatureF     float64 `json:"temperature_f"`
	RelativeHumidity float64 `json:"relative_humidity"`
	At               string  `json:"at"`
}

// CountsJSON is the JSON representation of the counters.
type CountsJSON struct {
	Toggles       int `json:"toggles"`
	Transitions   int `json:"transitions"`
	ClockFrames   int `json:"clock_frames"`
	RTCErrors     int `json:"rtc_errors"`
	SensorReads   int `json:"sensor_reads"`
	SensorErrors  int `json:"sensor_errors"`
	DisplayErrors int `json:"display_errors"`
}

// TransitionJSON is the JSON representation of one transition.
type TransitionJSON struct {
	At     string `json:"at"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	RefreshMs   int64  `json:"refresh_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	SensorKind  string `json:"sensor_kind"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func buildInner(snap Snapshot) StatusInner {
	mode := snap.Mode
	if mode == "" {
		mode = "UNKNOWN"
	}

	inner := StatusInner{
		Mode:             mode,
		MenuIndex:        snap.MenuIndex,
		MenuItem:         snap.MenuItem,
		SchedulerRunning: snap.SchedulerRunning,
		UptimeSeconds:    int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:        snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:        snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Toggles:       snap.Counts.Toggles,
			Transitions:   snap.Counts.Transitions,
			ClockFrames:   snap.Counts.ClockFrames,
			RTCErrors:     snap.Counts.RTCErrors,
			SensorReads:   snap.Counts.SensorReads,
			SensorErrors:  snap.Counts.SensorErrors,
			DisplayErrors: snap.Counts.DisplayErrors,
		},
		HistoryTruncated: snap.HistoryDropped,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			RefreshMs:   snap.Config.RefreshMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			SensorKind:  snap.Config.SensorKind,
		},
	}

	if r := snap.Reading; r != nil {
		inner.Reading = &ReadingJSON{
			TemperatureC:     round1(r.TemperatureC),
			TemperatureF:     round1(r.TemperatureC*9/5 + 32),
			RelativeHumidity: round1(r.RelativeHumidity),
			At:               r.At.UTC().Format(time.RFC3339),
		}
	}
	for _, tr := range snap.History {
		inner.History = append(inner.History, TransitionJSON{
			At:     tr.At.UTC().Format(time.RFC3339),
			From:   tr.From,
			To:     tr.To,
			Reason: tr.Reason,
		})
	}
	return inner
}

// FormatJSON returns the indented JSON status for --print-state.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for a logged system
// event such as STARTUP, HEARTBEAT or SHUTDOWN. History is omitted.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	inner.History = nil
	inner.HistoryTruncated = false

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
