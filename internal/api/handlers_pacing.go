package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dfarrow0/readpace/internal/fixation"
	"github.com/dfarrow0/readpace/internal/timing"
)

// Saccade length bounds; out-of-range inputs saturate.
const (
	minSaccadeLength = 1
	maxSaccadeLength = 40
)

func clampSaccade(n int) int {
	switch {
	case n < minSaccadeLength:
		return minSaccadeLength
	case n > maxSaccadeLength:
		return maxSaccadeLength
	default:
		return n
	}
}

type fixationsRequest struct {
	Line          string `json:"line"`
	SaccadeLength int    `json:"saccade_length,omitempty"`
}

func (s *Server) handleFixations(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req fixationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SaccadeLength == 0 {
		req.SaccadeLength = s.cfg.DefaultSaccadeLength
	}
	saccade := clampSaccade(req.SaccadeLength)

	fixations := fixation.LineFixations(req.Line, saccade)
	if fixations == nil {
		fixations = []int{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"fixations":      fixations,
		"saccade_length": saccade,
	})
}

// rampSpec is the wire form of a WPM ramp.
type rampSpec struct {
	Rate         float64 `json:"rate"`
	IntervalSec  float64 `json:"interval_sec"`
	Curve        string  `json:"curve,omitempty"`
	StartPercent float64 `json:"start_percent,omitempty"`
}

func (r rampSpec) toRamp() timing.Ramp {
	return timing.Ramp{
		Rate:         r.Rate,
		Interval:     time.Duration(r.IntervalSec * float64(time.Second)),
		Curve:        timing.Curve(r.Curve),
		StartPercent: r.StartPercent,
	}
}

type timingRequest struct {
	CharCount     int       `json:"char_count"`
	WPM           float64   `json:"wpm,omitempty"`
	ElapsedPlayMs float64   `json:"elapsed_play_ms,omitempty"`
	Ramp          *rampSpec `json:"ramp,omitempty"`
}

func (s *Server) handleTiming(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req timingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.WPM == 0 {
		req.WPM = s.cfg.DefaultWPM
	}

	wpm := timing.ClampWPM(req.WPM)
	if req.Ramp != nil {
		elapsed := time.Duration(req.ElapsedPlayMs * float64(time.Millisecond))
		wpm = timing.EffectiveWPM(wpm, elapsed, req.Ramp.toRamp())
	}
	duration := timing.SaccadeLineDuration(req.CharCount, wpm)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"duration_ms":   duration.Milliseconds(),
		"effective_wpm": wpm,
	})
}
