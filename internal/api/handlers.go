// internal/api/handlers.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmtrader/pairsweep/internal/api/response"
	"github.com/mmtrader/pairsweep/internal/coordinator"
	"github.com/mmtrader/pairsweep/internal/core"
	"github.com/mmtrader/pairsweep/internal/job"
	"github.com/mmtrader/pairsweep/internal/sweep"
)

// handleCreateBacktest starts a new backtest job.
func (s *Server) handleCreateBacktest(w http.ResponseWriter, r *http.Request) {
	var payload coordinator.CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Fail(w, core.WrapError(core.ErrValidation, err))
		return
	}

	result, err := s.coord.Submit(payload)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, result)
}

// handleListBacktests returns all tracked jobs, newest first.
func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, s.coord.List())
}

// handleGetBacktest returns one job record.
func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	result, err := s.coord.Get(r.PathValue("id"))
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// handlePatchBacktest applies a metadata patch to a non-running job and
// returns the updated request.
func (s *Server) handlePatchBacktest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch job.RequestPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Fail(w, core.WrapError(core.ErrValidation, err))
		return
	}

	if err := s.coord.UpdateMetadata(id, patch); err != nil {
		response.Fail(w, err)
		return
	}

	req, err := s.coord.Request(id)
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, req)
}

// handleDeleteBacktest removes a job, cancelling it first if needed.
func (s *Server) handleDeleteBacktest(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.Delete(r.Context(), r.PathValue("id")); err != nil {
		response.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCancelBacktest requests cancellation of an in-flight job. The
// transition is asynchronous; the response carries the current record.
func (s *Server) handleCancelBacktest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := s.coord.Get(id)
	if err != nil {
		response.Fail(w, err)
		return
	}

	s.coord.Cancel(id)
	response.JSON(w, http.StatusAccepted, result)
}

// SweepAccepted is the response body for an accepted sweep.
type SweepAccepted struct {
	JobIDs []string `json:"jobIds"`
	Count  int      `json:"count"`
}

// handleCreateSweep expands a sweep document and submits every
// permutation as a job. The resolution query parameter overrides the
// minute-bar default.
func (s *Server) handleCreateSweep(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.Fail(w, core.WrapError(core.ErrValidation, err))
		return
	}

	spec, err := sweep.Parse(body)
	if err != nil {
		response.Fail(w, err)
		return
	}

	resolution := core.Resolution1m
	if raw := r.URL.Query().Get("resolution"); raw != "" {
		resolution = core.Resolution(raw)
		if !resolution.IsValid() {
			response.Fail(w, core.Validationf("unknown resolution %q", raw))
			return
		}
	}

	ids, err := s.coord.SubmitSweep(spec, resolution)
	if err != nil {
		response.Fail(w, err)
		return
	}

	s.logger.Info("sweep accepted",
		zap.Int("jobs", len(ids)),
		zap.String("resolution", string(resolution)),
	)
	response.JSON(w, http.StatusAccepted, SweepAccepted{JobIDs: ids, Count: len(ids)})
}

// handleListDatasets lists the datasets the configured provider can see.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	descriptors, err := s.datasets.List(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, descriptors)
}
