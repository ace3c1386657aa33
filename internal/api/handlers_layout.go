package api

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dfarrow0/readpace/internal/ingest"
	"github.com/dfarrow0/readpace/internal/paginate"
	"github.com/dfarrow0/readpace/internal/textflow"
	cache "github.com/patrickmn/go-cache"
)

// layoutRequest carries article text plus layout parameters. Zero-valued
// parameters fall back to the configured defaults.
type layoutRequest struct {
	Text          string `json:"text"`
	Format        string `json:"format,omitempty"` // text | markdown | html
	LineWidth     int    `json:"line_width,omitempty"`
	LinesPerPage  int    `json:"lines_per_page,omitempty"`
	Mode          string `json:"mode,omitempty"` // line | word | recall
	FigureBaseURL string `json:"figure_base_url,omitempty"`
	SourcePath    string `json:"source_path,omitempty"`
}

type layoutResponse struct {
	Pages       []paginate.Page  `json:"pages"`
	Chunks      []paginate.Chunk `json:"chunks"`
	TotalChunks int              `json:"total_chunks"`
	TotalLines  int              `json:"total_lines"`
}

// applyDefaults resolves unset request fields against the service config.
func (s *Server) applyDefaults(req layoutRequest) layoutRequest {
	if req.LineWidth <= 0 {
		req.LineWidth = s.cfg.DefaultLineWidth
	}
	if req.LinesPerPage <= 0 {
		req.LinesPerPage = s.cfg.DefaultLinesPerPage
	}
	if req.Format == "" {
		req.Format = "text"
	}
	req.Mode = string(paginate.ParseMode(req.Mode))
	return req
}

// runLayout flattens, flows, paginates and chunks one article. Shared by the
// layout handler and session creation.
func (s *Server) runLayout(req layoutRequest) (layoutResponse, error) {
	flattener, err := ingest.ForFormat(req.Format)
	if err != nil {
		return layoutResponse{}, err
	}
	text, err := flattener.Flatten(strings.NewReader(req.Text))
	if err != nil {
		return layoutResponse{}, fmt.Errorf("flatten %s: %w", req.Format, err)
	}

	lines := textflow.Flow(text, textflow.Options{
		Width:        req.LineWidth,
		AssetBaseURL: req.FigureBaseURL,
		SourcePath:   req.SourcePath,
	})
	pages := paginate.Layout(lines, paginate.Options{
		LinesPerPage:    req.LinesPerPage,
		FigureSpanRatio: s.cfg.FigureSpanRatio,
		FigureSpanFloor: s.cfg.FigureSpanFloor,
		CaptionExtraCap: s.cfg.CaptionExtraCap,
		LineWidth:       req.LineWidth,
	}, paginate.ParseMode(req.Mode))

	totalLines := 0
	for _, p := range pages {
		totalLines += len(p.Lines)
	}
	chunks := paginate.Flatten(pages)
	return layoutResponse{
		Pages:       pages,
		Chunks:      chunks,
		TotalChunks: len(chunks),
		TotalLines:  totalLines,
	}, nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req = s.applyDefaults(req)

	// Layout is pure in its inputs, so identical requests share a cached
	// response.
	key := layoutCacheKey(req)
	if cached, ok := s.layoutCache.Get(key); ok {
		writeJSONBytes(w, cached.([]byte))
		return
	}

	resp, err := s.runLayout(req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		jsonError(w, "encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.layoutCache.Set(key, body, cache.DefaultExpiration)
	writeJSONBytes(w, body)
}

func layoutCacheKey(req layoutRequest) string {
	canonical, _ := json.Marshal(req)
	return fmt.Sprintf("layout:%x", sha256.Sum256(canonical))
}

func writeJSONBytes(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
