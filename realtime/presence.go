package realtime

import "sync"

// PresenceStore tracks which sessions are online per user. The in-memory
// implementation is process-local; a multi-process deployment must swap in
// a shared-store implementation to keep presence views consistent.
type PresenceStore interface {
	// Add registers a session under a user
	Add(userID uint, sessionID string)

	// Remove deregisters a session; the user entry is dropped entirely
	// once its last session is gone
	Remove(userID uint, sessionID string)

	// IsOnline reports whether the user has at least one live session
	IsOnline(userID uint) bool

	// OnlineUsers returns the IDs of all users with live sessions
	OnlineUsers() []uint

	// SessionCount returns the number of live sessions for a user
	SessionCount(userID uint) int
}

// MemoryPresenceStore is the in-process PresenceStore implementation
type MemoryPresenceStore struct {
	mu       sync.RWMutex
	sessions map[uint]map[string]struct{}
}

// NewMemoryPresenceStore creates an empty in-memory presence store
func NewMemoryPresenceStore() *MemoryPresenceStore {
	return &MemoryPresenceStore{
		sessions: make(map[uint]map[string]struct{}),
	}
}

// Add registers a session under a user
func (s *MemoryPresenceStore) Add(userID uint, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[userID] == nil {
		s.sessions[userID] = make(map[string]struct{})
	}
	s.sessions[userID][sessionID] = struct{}{}
}

// Remove deregisters a session, dropping the user entry when empty
func (s *MemoryPresenceStore) Remove(userID uint, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sessions[userID]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(s.sessions, userID)
	}
}

// IsOnline reports whether the user has at least one live session
func (s *MemoryPresenceStore) IsOnline(userID uint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[userID]) > 0
}

// OnlineUsers returns the IDs of all users with live sessions
func (s *MemoryPresenceStore) OnlineUsers() []uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]uint, 0, len(s.sessions))
	for id := range s.sessions {
		users = append(users, id)
	}
	return users
}

// SessionCount returns the number of live sessions for a user
func (s *MemoryPresenceStore) SessionCount(userID uint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[userID])
}
