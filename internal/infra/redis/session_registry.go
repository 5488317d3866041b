package redis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/PippinJewel/quiz-platform/internal/app"
	"github.com/PippinJewel/quiz-platform/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - It still keeps a local in-memory map of sessions to reuse the
//     in-process broadcast logic.
//   - Redis marks code liveness, so two server instances sharing the
//     same Redis never hand out the same PIN while a game is live.
//   - For true distribution you'd pair this with a pub/sub projector
//     that fans out updates across instances.
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	rnd      *rand.Rand
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Create(questions []domain.Question) *app.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.claimCodeLocked()
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

func (r *SessionRegistry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[code]; !ok {
		return
	}
	delete(r.sessions, code)
	_ = r.client.Del(context.Background(), r.key(code)).Err()
}

// claimCodeLocked regenerates until a PIN is free both locally and in
// Redis. The SetNX claim is best-effort: if Redis is unreachable the
// local map still guarantees in-process uniqueness.
func (r *SessionRegistry) claimCodeLocked() string {
	for {
		code := fmt.Sprintf("%06d", 100000+r.rnd.Intn(900000))
		if _, taken := r.sessions[code]; taken {
			continue
		}
		claimed, err := r.client.SetNX(context.Background(), r.key(code), "1", r.ttl).Result()
		if err != nil || claimed {
			return code
		}
	}
}

func (r *SessionRegistry) key(code string) string {
	return "quiz:session:" + code
}
