package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/store"
)

// ExerciseHandler serves the exercise catalog and its targets.
type ExerciseHandler struct {
	store *store.Store
}

// NewExerciseHandler creates a new ExerciseHandler backed by s.
func NewExerciseHandler(s *store.Store) *ExerciseHandler {
	return &ExerciseHandler{store: s}
}

type listExercisesResponse struct {
	Exercises []exercise.Info `json:"exercises"`
}

type updateTargetsRequest struct {
	Reps int `json:"reps"`
	Sets int `json:"sets"`
}

// List handles GET /api/exercises.
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.Exercises().List()
	if err != nil {
		log.Errorf("list exercises: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list exercises")
		return
	}
	if infos == nil {
		infos = []exercise.Info{}
	}
	writeJSON(w, http.StatusOK, listExercisesResponse{Exercises: infos})
}

// Get handles GET /api/exercises/{type}.
func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	typ, ok := exerciseFromRequest(w, r)
	if !ok {
		return
	}

	info, err := h.store.Exercises().Get(typ)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Exercise not found")
			return
		}
		log.Errorf("get exercise %s: %v", typ, err)
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Update handles PUT /api/exercises/{type}, changing the rep and set targets.
func (h *ExerciseHandler) Update(w http.ResponseWriter, r *http.Request) {
	typ, ok := exerciseFromRequest(w, r)
	if !ok {
		return
	}

	var req updateTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	repo := h.store.Exercises()
	if err := repo.UpdateTargets(typ, req.Reps, req.Sets); err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidTargets):
			writeError(w, http.StatusBadRequest, "Reps and sets must be positive")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Exercise not found")
		default:
			log.Errorf("update exercise %s: %v", typ, err)
			writeError(w, http.StatusInternalServerError, "Failed to update exercise")
		}
		return
	}

	info, err := repo.Get(typ)
	if err != nil {
		log.Errorf("get exercise %s: %v", typ, err)
		writeError(w, http.StatusInternalServerError, "Failed to get exercise")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func exerciseFromRequest(w http.ResponseWriter, r *http.Request) (exercise.Type, bool) {
	typ, err := exercise.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Exercise not found")
		return "", false
	}
	return typ, true
}
