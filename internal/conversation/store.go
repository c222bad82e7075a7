package conversation

import (
	"sync"
	"time"
)

// Store хранит сессии анкет в памяти процесса с истечением по TTL
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]*Session
}

// NewStore создает хранилище; ttl <= 0 отключает истечение
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, sessions: make(map[int64]*Session)}
}

// Get возвращает копию живой сессии владельца; истекшая удаляется.
// Сохраненная сессия меняется только под блокировкой через Put.
func (s *Store) Get(owner int64, now time.Time) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[owner]
	if !ok {
		return nil, false
	}
	if s.expired(sess, now) {
		delete(s.sessions, owner)
		return nil, false
	}
	return sess.clone(), true
}

// Put сохраняет сессию по владельцу
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Owner] = sess
}

// Delete удаляет сессию и сообщает, была ли она
func (s *Store) Delete(owner int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[owner]
	delete(s.sessions, owner)
	return ok
}

// Sweep удаляет все истекшие сессии и возвращает их число
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for owner, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, owner)
			removed++
		}
	}
	return removed
}

// Len возвращает число сессий, включая еще не вычищенные
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl
}
