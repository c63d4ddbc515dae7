package handler

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionCookie - имя cookie с токеном сессии веб-панели.
const sessionCookie = "session"

type session struct {
	userID  int
	expires time.Time
}

// SessionStore хранит активные сессии веб-панели в памяти процесса.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
}

// NewSessionStore создает хранилище сессий с заданным временем жизни.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, sessions: make(map[string]session)}
}

// Create открывает новую сессию для сотрудника и возвращает токен.
func (s *SessionStore) Create(userID int) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = session{userID: userID, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return token
}

// UserID возвращает сотрудника по токену сессии.
// Просроченные сессии удаляются при обращении.
func (s *SessionStore) UserID(token string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}
	if time.Now().After(sess.expires) {
		delete(s.sessions, token)
		return 0, false
	}
	return sess.userID, true
}

// Delete закрывает сессию по токену.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
