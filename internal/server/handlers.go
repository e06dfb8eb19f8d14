package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/logging"
)

// SumRequest is the body of POST /sum.
type SumRequest struct {
	Grid    grid.Grid `json:"grid"`
	Workers int       `json:"workers,omitempty"`
	Policy  string    `json:"policy,omitempty"`
}

// PartitionResponse describes one partition of a SumResponse.
type PartitionResponse struct {
	Index      int     `json:"index"`
	Start      int     `json:"start"`
	Length     int     `json:"length"`
	Sum        float64 `json:"sum"`
	DurationUS int64   `json:"duration_us"`
}

// SumResponse is the body of a successful POST /sum.
type SumResponse struct {
	Sum        float64             `json:"sum"`
	Workers    int                 `json:"workers"`
	Policy     string              `json:"policy"`
	Elements   int                 `json:"elements"`
	Partitions []PartitionResponse `json:"partitions"`
	DurationMS float64             `json:"duration_ms"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version,omitempty"`
	Policies []string `json:"policies"`
}

func (s *Server) handleSum(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SumRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	policy := req.Policy
	if policy == "" {
		policy = grid.PolicyBalanced
	}
	reducer, ok := s.reducers[policy]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown policy %q", policy))
		return
	}

	workers := req.Workers
	if workers == 0 {
		workers = s.cfg.DefaultWorkers
	}
	if limit := s.cfg.Security.MaxWorkers; limit > 0 && workers > limit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("workers %d exceeds limit %d", workers, limit))
		return
	}
	if limit := s.cfg.Security.MaxElements; limit > 0 && req.Grid.Len() > limit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("grid has %d elements, limit is %d", req.Grid.Len(), limit))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	res, err := reducer.Reduce(ctx, req.Grid, workers, nil)
	if err != nil {
		err = apperrors.WrapTimeout(err, "sum", s.cfg.RequestTimeout)
		writeError(w, statusForError(err), err.Error())
		return
	}

	resp := SumResponse{
		Sum:        res.Sum,
		Workers:    res.Workers,
		Policy:     res.Policy,
		Elements:   res.Elements,
		Partitions: make([]PartitionResponse, len(res.Partials)),
		DurationMS: float64(res.Duration) / float64(time.Millisecond),
	}
	for i, p := range res.Partials {
		resp.Partitions[i] = PartitionResponse{
			Index:      p.Partition.Index,
			Start:      p.Partition.Start,
			Length:     p.Partition.Length,
			Sum:        p.Sum,
			DurationUS: p.Duration.Microseconds(),
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  s.cfg.Version,
		Policies: grid.Policies(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

// statusForError maps a reduction error to an HTTP status.
func statusForError(err error) int {
	switch {
	case apperrors.IsValidationError(err):
		return http.StatusBadRequest
	case apperrors.IsContextError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", err, logging.Int("status", code))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
