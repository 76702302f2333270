package state

import "sync"

type userLock struct {
	mu   sync.Mutex
	refs int
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session

	locksMu sync.Mutex
	locks   map[int64]*userLock
}

// NewMemoryStore returns a process-local Store. Sessions are lost on restart.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*userLock),
	}
}

// Get returns the session for a user, or an idle one.
func (m *memoryStore) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	return Session{State: StateIdle}
}

// Set stores the session; an idle session removes the entry.
func (m *memoryStore) Set(userID int64, s Session) {
	if s.Idle() {
		m.Clear(userID)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// Clear removes the session for a user.
func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len returns the number of non-idle sessions.
func (m *memoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Lock acquires the per-user mutex. Lock entries are dropped once no
// goroutine holds or waits on them.
func (m *memoryStore) Lock(userID int64) func() {
	m.locksMu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			m.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(m.locks, userID)
			}
			m.locksMu.Unlock()
		})
	}
}
