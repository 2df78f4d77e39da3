package inventory

import (
	"sync"
	"time"
)

// SessionStore guarda las sesiones abiertas entre peticiones HTTP.
// Las sesiones más viejas que el TTL se descartan, salvo las que están confirmando.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ImportSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore crea el almacén; ttl <= 0 desactiva la expiración.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*ImportSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put registra la sesión y aprovecha para purgar las vencidas.
func (st *SessionStore) Put(s *ImportSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.pruneLocked()
	st.sessions[s.ID] = s
}

// Get busca una sesión vigente.
func (st *SessionStore) Get(id string) (*ImportSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok || st.expired(s) {
		return nil, false
	}
	return s, true
}

// Delete quita la sesión del almacén.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Prune purga las sesiones vencidas y devuelve cuántas quitó.
func (st *SessionStore) Prune() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.pruneLocked()
}

// Len sesiones guardadas.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) pruneLocked() int {
	n := 0
	for id, s := range st.sessions {
		if st.expired(s) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *SessionStore) expired(s *ImportSession) bool {
	if st.ttl <= 0 || s.State() == StateCommitting {
		return false
	}
	return st.now().Sub(s.CreatedAt) > st.ttl
}
