package dashboard

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/maplemetrics/housing-dashboard/internal/dataset"
)

// ErrSessionNotFound reports a lookup for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// Manager is the registry of live sessions over the shared read-only
// dataset. Sessions are independent of each other.
type Manager struct {
	ds       *dataset.Dataset
	binWidth float64
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager(ds *dataset.Dataset, binWidth float64, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		ds:       ds,
		binWidth: binWidth,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with default constraints and registers it.
func (m *Manager) Create() *Session {
	s := NewSession(uuid.NewString(), m.ds, m.binWidth, m.logger)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session", s.ID))
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close removes a session from the registry. Returns true if it existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}
