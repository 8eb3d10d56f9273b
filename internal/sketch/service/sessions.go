package service

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"floorplan-sketch/internal/sketch/session"
)

// ============================================================
// Session Store
// ============================================================

var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	state session.State
	scene session.Scene
}

// SessionStore хранит открытые сессии рисования в памяти.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entry // id -> state + scene
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entry),
	}
}

// Open создаёт сессию с пустой сценой.
func (s *SessionStore) Open(mode session.Mode, threshold float64) (string, error) {
	st, err := session.NewState(mode, threshold)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.sessions[id] = &entry{state: st}
	return id, nil
}

func (s *SessionStore) Get(id string) (session.State, session.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return session.State{}, session.Scene{}, ErrSessionNotFound
	}
	return e.state, e.scene, nil
}

// Apply атомарно заменяет состояние и сцену результатом fn.
func (s *SessionStore) Apply(id string, fn func(session.State, session.Scene) (session.State, session.Scene)) (session.State, session.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return session.State{}, session.Scene{}, ErrSessionNotFound
	}
	e.state, e.scene = fn(e.state, e.scene)
	return e.state, e.scene, nil
}

func (s *SessionStore) Close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
