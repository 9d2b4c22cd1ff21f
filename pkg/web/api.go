package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dbehnke/rsc-bcjr/pkg/database"
	"github.com/dbehnke/rsc-bcjr/pkg/logger"
	"github.com/dbehnke/rsc-bcjr/pkg/vectors"
)

const defaultListLimit = 50

// API handles REST API endpoints
type API struct {
	repo   *database.VectorRepository
	runner *vectors.Runner
	logger *logger.Logger
}

// NewAPI creates a new API instance
func NewAPI(repo *database.VectorRepository, runner *vectors.Runner, log *logger.Logger) *API {
	return &API{
		repo:   repo,
		runner: runner,
		logger: log,
	}
}

// Register mounts the API routes on mux
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", a.HandleStatus)
	mux.HandleFunc("GET /api/sets", a.HandleListSets)
	mux.HandleFunc("POST /api/sets", a.HandleGenerate)
	mux.HandleFunc("GET /api/sets/{id}", a.HandleGetSet)
	mux.HandleFunc("DELETE /api/sets/{id}", a.HandleDeleteSet)
	mux.HandleFunc("POST /api/sets/{id}/verify", a.HandleVerify)
}

// verifyResponse is the body returned by /api/sets/{id}/verify
type verifyResponse struct {
	Set     string    `json:"set"`
	Code    string    `json:"code"`
	OK      bool      `json:"ok"`
	Checked int       `json:"checked"`
	Failed  int       `json:"failed"`
	MaxDiff float64   `json:"max_diff"`
	Worst   int       `json:"worst"`
	Diffs   []float64 `json:"diffs"`
	Error   string    `json:"error,omitempty"`
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := a.repo.Count()
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "running",
		"service": "bcjr-vectors",
		"build":   GetBuildInfo(),
		"sets":    count,
	})
}

// HandleListSets handles GET /api/sets, newest first, without vectors
func (a *API) HandleListSets(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	sets, err := a.repo.List(limit)
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	if sets == nil {
		sets = []database.VectorSet{}
	}
	a.writeJSON(w, http.StatusOK, sets)
}

// HandleGetSet handles GET /api/sets/{id}
func (a *API) HandleGetSet(w http.ResponseWriter, r *http.Request) {
	set, err := a.repo.Get(r.PathValue("id"))
	if err != nil {
		a.fail(w, statusFor(err), err)
		return
	}
	a.writeJSON(w, http.StatusOK, set)
}

// HandleDeleteSet handles DELETE /api/sets/{id}
func (a *API) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	if err := a.repo.Delete(r.PathValue("id")); err != nil {
		a.fail(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGenerate handles POST /api/sets using the configured code and channel
func (a *API) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	set, err := a.runner.Generate(r.Context())
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	set.Vectors = nil
	a.writeJSON(w, http.StatusCreated, set)
}

// HandleVerify handles POST /api/sets/{id}/verify. A mismatch is a
// successful request with ok=false.
func (a *API) HandleVerify(w http.ResponseWriter, r *http.Request) {
	set, rep, err := a.runner.Verify(r.Context(), r.PathValue("id"))
	if err != nil && !errors.Is(err, vectors.ErrMismatch) {
		a.fail(w, statusFor(err), err)
		return
	}
	resp := verifyResponse{
		Set:     set.ID,
		Code:    set.Code(),
		OK:      err == nil,
		Checked: rep.Checked,
		Failed:  rep.Failed,
		MaxDiff: rep.MaxDiff,
		Worst:   rep.Worst,
		Diffs:   rep.Diffs,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	if errors.Is(err, database.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (a *API) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		a.logger.Error("API request failed", logger.Error(err))
	}
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("Failed to encode response", logger.Error(err))
	}
}
