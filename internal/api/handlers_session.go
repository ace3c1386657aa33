package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dfarrow0/readpace/internal/session"
	"github.com/dfarrow0/readpace/internal/timing"
	"github.com/go-chi/chi/v5"
)

// createSessionRequest lays out an article and binds a playback session to
// its flattened chunk sequence.
type createSessionRequest struct {
	layoutRequest

	Article       string    `json:"article,omitempty"`
	WPM           float64   `json:"wpm,omitempty"`
	SaccadeLength int       `json:"saccade_length,omitempty"`
	Ramp          *rampSpec `json:"ramp,omitempty"`
	Autoplay      bool      `json:"autoplay,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.layoutRequest = s.applyDefaults(req.layoutRequest)
	if req.WPM == 0 {
		req.WPM = s.cfg.DefaultWPM
	}
	if req.SaccadeLength == 0 {
		req.SaccadeLength = s.cfg.DefaultSaccadeLength
	}

	layout, err := s.runLayout(req.layoutRequest)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ramp := s.defaultRamp()
	if req.Ramp != nil {
		ramp = req.Ramp.toRamp()
	}

	sess := session.New(session.Params{
		Article:        req.Article,
		Chunks:         layout.Chunks,
		WPM:            req.WPM,
		Ramp:           ramp,
		SaccadeLength:  clampSaccade(req.SaccadeLength),
		MinDelayFactor: s.cfg.MinDelayFactor,
		Reporter:       s.reporter,
		Log:            s.log,
	})
	s.sessions.Put(sess)
	if req.Autoplay {
		sess.Play()
	}

	snap := sess.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"session":  snap,
		"pages":    layout.Pages,
		"poll_url": fmt.Sprintf("/api/sessions/%s", snap.ID),
	})
}

func (s *Server) defaultRamp() timing.Ramp {
	return timing.Ramp{
		Rate:         s.cfg.RampRate,
		Interval:     s.cfg.RampInterval,
		Curve:        timing.Curve(s.cfg.RampCurve),
		StartPercent: s.cfg.RampStartPercent,
	}
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleSessionPlay(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	sess.Play()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleSessionPause(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	sess.Pause()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleSessionSeek(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	var req struct {
		ChunkIndex int `json:"chunk_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	sess.Seek(req.ChunkIndex)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.Delete(id) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deleted": id})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sessions":          s.sessions.Snapshot(),
		"layout_cache_size": s.layoutCache.ItemCount(),
	})
}
