package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/store"
	"github.com/ayusman/formcoach/internal/tracker"
)

// SessionConfig configures a SessionHandler.
type SessionConfig struct {
	Manager *session.Manager

	// Settings, when set, remembers the last exercise started.
	Settings *store.SettingsRepository

	// OnCreate runs after a session is created and before it starts.
	OnCreate func(s *session.Session)
}

// SessionHandler starts, inspects and stops tracking sessions.
type SessionHandler struct {
	config SessionConfig
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(config SessionConfig) *SessionHandler {
	return &SessionHandler{config: config}
}

type createSessionRequest struct {
	Exercise string `json:"exercise"`
	Camera   int    `json:"camera"`
	Video    string `json:"video,omitempty"`
}

type sessionResponse struct {
	ID        string         `json:"id"`
	Exercise  exercise.Info  `json:"exercise"`
	StartedAt time.Time      `json:"started_at"`
	Running   bool           `json:"running"`
	Error     string         `json:"error,omitempty"`
	Result    tracker.Result `json:"result"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID.String(),
		Exercise:  s.Info,
		StartedAt: s.StartedAt,
		Running:   s.Running(),
		Result:    s.Latest(),
	}
	if err := s.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	typ, err := exercise.ParseType(req.Exercise)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown exercise: "+req.Exercise)
		return
	}
	if req.Camera < 0 {
		writeError(w, http.StatusBadRequest, "Camera must not be negative")
		return
	}

	m := h.config.Manager
	s, err := m.Create(typ, session.Source{Camera: req.Camera, Video: req.Video})
	if err != nil {
		if errors.Is(err, exercise.ErrUnknownType) || errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Unknown exercise: "+req.Exercise)
			return
		}
		log.Errorf("create session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if h.config.OnCreate != nil {
		h.config.OnCreate(s)
	}

	if err := s.Start(); err != nil {
		log.Warnf("start session %s: %v", s.ID, err)
		m.Stop(s.ID)
		writeError(w, http.StatusInternalServerError, "Failed to open frame source")
		return
	}

	if h.config.Settings != nil {
		if err := h.config.Settings.Set(store.SettingLastExercise, string(typ)); err != nil {
			log.Warnf("remember last exercise: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// List handles GET /api/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.config.Manager.List()

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// Delete handles DELETE /api/sessions/{id}, stopping the session.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Lookup(w, r)
	if !ok {
		return
	}

	if err := h.config.Manager.Stop(s.ID); err != nil {
		// Stopped concurrently by another request.
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /api/sessions/{id}/reset, clearing the counts.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Lookup(w, r)
	if !ok {
		return
	}

	s.Reset()
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// Lookup resolves the {id} URL parameter to a session, writing an error
// response and returning false when it cannot.
func (h *SessionHandler) Lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid session ID")
		return nil, false
	}

	s, err := h.config.Manager.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, false
	}

	return s, true
}
