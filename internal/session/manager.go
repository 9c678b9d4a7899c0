package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcoach/internal/capture"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/metrics"
	"github.com/ayusman/formcoach/internal/overlay"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("session not found")

// InfoLookup provides exercise metadata.
type InfoLookup interface {
	Get(t exercise.Type) (exercise.Info, error)
}

// Source selects the frame source for a new session. A non-empty Video
// takes precedence over Camera.
type Source struct {
	Camera int    `json:"camera"`
	Video  string `json:"video,omitempty"`
}

// ManagerConfig wires the collaborators shared by every session.
type ManagerConfig struct {
	Exercises     InfoLookup
	NewCamera     func(src Source) capture.Camera
	NewDetector   func() (detector.Detector, error)
	Renderer      *overlay.Renderer
	Metrics       *metrics.Manager
	MinVisibility float64
}

// Manager creates, tracks and stops sessions.
type Manager struct {
	cfg      ManagerConfig
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// DefaultCamera opens a video file or a camera device.
func DefaultCamera(src Source) capture.Camera {
	if src.Video != "" {
		return capture.NewVideoFile(src.Video)
	}
	return capture.NewCamera(src.Camera)
}

// NewManager creates a Manager. A nil NewCamera uses DefaultCamera.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.NewCamera == nil {
		cfg.NewCamera = DefaultCamera
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create builds a session for typ without starting it, so the caller can
// register frame hooks first.
func (m *Manager) Create(typ exercise.Type, src Source) (*Session, error) {
	info, err := m.cfg.Exercises.Get(typ)
	if err != nil {
		return nil, err
	}

	det, err := m.cfg.NewDetector()
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}

	s, err := New(Config{
		Info:          info,
		Camera:        m.cfg.NewCamera(src),
		Detector:      det,
		Renderer:      m.cfg.Renderer,
		Metrics:       m.cfg.Metrics,
		MinVisibility: m.cfg.MinVisibility,
	})
	if err != nil {
		det.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.WithField("session", s.ID.String()).Infof("created %s session", typ)
	return s, nil
}

// Launch creates and starts a session.
func (m *Manager) Launch(typ exercise.Type, src Source) (*Session, error) {
	s, err := m.Create(typ, src)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		m.remove(s.ID)
		s.Stop()
		return nil, err
	}
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List returns all sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Stop stops and forgets the session with the given ID.
func (m *Manager) Stop(id uuid.UUID) error {
	s := m.remove(id)
	if s == nil {
		return ErrNotFound
	}
	s.Stop()
	return nil
}

// StopAll stops every session.
func (m *Manager) StopAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Stop()
	}
}

func (m *Manager) remove(id uuid.UUID) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	delete(m.sessions, id)
	return s
}
