package remote

import (
	"time"

	"storyview/internal/library"
	"storyview/internal/playback"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StateResponse mirrors playback.Snapshot. Active is -1 when idle.
type StateResponse struct {
	Title       string    `json:"title,omitempty"`
	State       string    `json:"state"`
	Active      int       `json:"active"`
	Fraction    float64   `json:"fraction"`
	Bars        []float64 `json:"bars"`
	Shown       []bool    `json:"shown"`
	Repeat      bool      `json:"repeat"`
	Indicator   string    `json:"indicator"`
	PauseSource string    `json:"pause_source"`
}

func newStateResponse(title string, s playback.Snapshot) StateResponse {
	return StateResponse{
		Title:       title,
		State:       s.State.String(),
		Active:      s.Active,
		Fraction:    s.Fraction,
		Bars:        s.Bars,
		Shown:       s.Shown,
		Repeat:      s.Repeat,
		Indicator:   s.Indicator.String(),
		PauseSource: s.PauseSource.String(),
	}
}

type StorySummary struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration_ns"`
	Updated  time.Time     `json:"updated"`
}

type StoriesResponse struct {
	Stories []StorySummary `json:"stories"`
}

func newStorySummary(rec library.Record) StorySummary {
	return StorySummary{
		ID:       rec.ID,
		Title:    rec.Document.Title,
		Items:    len(rec.Document.Items),
		Duration: rec.Document.TotalDuration(),
		Updated:  rec.Updated,
	}
}
