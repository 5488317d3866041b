package app

import (
	"context"

	"github.com/PippinJewel/quiz-platform/internal/domain"
)

// SessionRegistry abstracts how live sessions are tracked (in-memory,
// Redis-mirrored, etc). Create must allocate a code that no live
// session currently holds.
type SessionRegistry interface {
	Create(questions []domain.Question) *Session
	Get(code string) (*Session, bool)
	Remove(code string)
}

// QuestionRepository loads question sets (from cache/backing store).
type QuestionRepository interface {
	GetSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// GameService contains the quiz coordination use cases. Hosts drive
// question progression; the service never runs timers of its own.
type GameService struct {
	sessions SessionRegistry
	sets     QuestionRepository
}

func NewGameService(registry SessionRegistry, sets QuestionRepository) *GameService {
	return &GameService{sessions: registry, sets: sets}
}

// CreateSession loads the question set, allocates a session under a
// fresh code and returns the code for players to join with.
func (s *GameService) CreateSession(ctx context.Context, setID string) (string, error) {
	set, err := s.sets.GetSet(ctx, setID)
	if err != nil {
		return "", err
	}
	session := s.sessions.Create(set.Questions)
	return session.Code(), nil
}

// Join registers a player in a session at any lifecycle stage; late
// joiners simply start at zero. Returns the player's id and the updated
// participant count.
func (s *GameService) Join(_ context.Context, code, displayName string) (string, int, error) {
	session, ok := s.sessions.Get(code)
	if !ok {
		return "", 0, domain.ErrSessionNotFound
	}
	id, count := session.join(displayName)
	return id, count, nil
}

// Start moves the session onto its first question.
func (s *GameService) Start(_ context.Context, code string) error {
	session, ok := s.sessions.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.start()
}

// Advance moves the session onto the next question. Past the final
// question it fails with ErrNoMoreQuestions and leaves state unchanged;
// the host ends the game instead.
func (s *GameService) Advance(_ context.Context, code string) error {
	session, ok := s.sessions.Get(code)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.advance()
}

// SubmitAnswer scores one submission against the current question. The
// result goes back to the submitter only.
func (s *GameService) SubmitAnswer(_ context.Context, code, playerID string, chosenIndex int) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(code)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.submit(playerID, chosenIndex)
}

// Leaderboard snapshots the current ranking and pushes it to every
// subscriber of the session.
func (s *GameService) Leaderboard(_ context.Context, code string) (domain.Leaderboard, error) {
	session, ok := s.sessions.Get(code)
	if !ok {
		return domain.Leaderboard{}, domain.ErrSessionNotFound
	}
	return session.leaderboard(), nil
}

// End terminates a session and discards all participant state. Ending
// an unknown or already-ended code is a no-op so duplicate end signals
// are harmless.
func (s *GameService) End(_ context.Context, code string) {
	session, ok := s.sessions.Get(code)
	if !ok {
		return
	}
	session.end()
	s.sessions.Remove(code)
}

// Subscribe returns a channel of session notifications. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, code string) (<-chan Event, func(), error) {
	session, ok := s.sessions.Get(code)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}
