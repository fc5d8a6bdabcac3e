package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/escherba/phraser/internal/analysis"
	"github.com/escherba/phraser/internal/engine"
)

const maxBodyBytes = 1 << 20

// Analyzer is the engine surface the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts analysis.Options) (*analysis.Result, error)
	Describe() engine.Dump
	Status() engine.Status
}

type AnalyzeHandler struct {
	Eng      Analyzer
	Defaults analysis.Options
}

func NewAnalyzeHandler(eng Analyzer, defaults analysis.Options) *AnalyzeHandler {
	return &AnalyzeHandler{Eng: eng, Defaults: defaults}
}

type analyzeRequest struct {
	Text    *string        `json:"text"`
	Options map[string]any `json:"options"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, errors.New(`missing "text"`))
		return
	}
	opts, err := analysis.OptionsFromMap(h.Defaults, req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Eng.Analyze(r.Context(), *req.Text, opts)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, analysis.ErrTextTooLong):
		writeError(w, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, engine.ErrNotInitialized),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		log.Error().Err(err).Msg("analyze")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (h *AnalyzeHandler) Phrases(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Eng.Describe())
}

func (h *AnalyzeHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	st := h.Eng.Status()
	if !st.Initialized {
		writeJSON(w, http.StatusServiceUnavailable, st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
