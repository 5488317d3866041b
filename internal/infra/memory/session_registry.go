package memory

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/PippinJewel/quiz-platform/internal/app"
	"github.com/PippinJewel/quiz-platform/internal/domain"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
// Codes are 6-digit numeric PINs; the space is large enough that
// regenerating on collision terminates quickly.
type SessionRegistry struct {
	mu       sync.RWMutex
	rnd      *rand.Rand
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Create(questions []domain.Question) *app.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.freeCodeLocked()
	session := app.NewSession(code, questions)
	r.sessions[code] = session
	return session
}

func (r *SessionRegistry) Get(code string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[code]
	return session, ok
}

// Remove is idempotent; removing an absent code is a no-op.
func (r *SessionRegistry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, code)
}

func (r *SessionRegistry) freeCodeLocked() string {
	for {
		code := fmt.Sprintf("%06d", 100000+r.rnd.Intn(900000))
		if _, taken := r.sessions[code]; !taken {
			return code
		}
	}
}
