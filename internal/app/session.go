package app

import (
	"sync"
	"time"

	"github.com/PippinJewel/quiz-platform/internal/domain"
	"github.com/google/uuid"
)

// Session is one live quiz game. All state transitions happen under its
// mutex, so operations against a single session are serialized while
// different sessions proceed independently.
type Session struct {
	code      string
	questions []domain.Question
	createdAt time.Time
	now       func() time.Time

	mu                sync.Mutex
	current           int // -1 until started, then only increases
	questionStartedAt time.Time
	joinSeq           int
	participants      map[string]*domain.Participant
	subscribers       map[chan Event]struct{}
}

// NewSession is exported for registry implementations that need to seed
// sessions under a generated code.
func NewSession(code string, questions []domain.Question) *Session {
	return newSessionWithClock(code, questions, time.Now)
}

// NewSessionWithClock is test-only for deterministic timing.
func NewSessionWithClock(code string, questions []domain.Question, now func() time.Time) *Session {
	return newSessionWithClock(code, questions, now)
}

func newSessionWithClock(code string, questions []domain.Question, now func() time.Time) *Session {
	return &Session{
		code:         code,
		questions:    questions,
		createdAt:    now(),
		now:          now,
		current:      -1,
		participants: make(map[string]*domain.Participant),
		subscribers:  make(map[chan Event]struct{}),
	}
}

// Code returns the session's join code.
func (s *Session) Code() string {
	return s.code
}

func (s *Session) join(displayName string) (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.participants[id] = &domain.Participant{
		ID:          id,
		DisplayName: displayName,
		JoinSeq:     s.joinSeq,
	}
	s.joinSeq++

	count := len(s.participants)
	s.broadcastLocked(Event{Type: EventPlayerJoined, PlayerCount: count})
	return id, count
}

func (s *Session) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != -1 {
		return domain.ErrAlreadyStarted
	}
	s.current = 0
	s.questionStartedAt = s.now()

	view := s.questions[0].View()
	s.broadcastLocked(Event{Type: EventGameStarted, Question: &view, QuestionIndex: 0})
	return nil
}

func (s *Session) advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == -1 {
		return domain.ErrNotInProgress
	}
	if s.current >= len(s.questions)-1 {
		return domain.ErrNoMoreQuestions
	}
	s.current++
	s.questionStartedAt = s.now()

	view := s.questions[s.current].View()
	s.broadcastLocked(Event{Type: EventNextQuestion, Question: &view, QuestionIndex: s.current})
	return nil
}

func (s *Session) submit(playerID string, chosenIndex int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == -1 {
		return domain.AnswerResult{}, domain.ErrNotInProgress
	}
	participant, ok := s.participants[playerID]
	if !ok {
		return domain.AnswerResult{}, domain.ErrParticipantNotFound
	}
	for _, record := range participant.Answers {
		if record.QuestionIndex == s.current {
			return domain.AnswerResult{}, domain.ErrAlreadyAnswered
		}
	}

	question := s.questions[s.current]
	remaining := timeLimit(question) - s.now().Sub(s.questionStartedAt).Seconds()
	if remaining < 0 {
		return domain.AnswerResult{}, domain.ErrTooLate
	}

	correct, awarded := ScoreAnswer(question, chosenIndex, remaining)
	participant.Answers = append(participant.Answers, domain.AnswerRecord{
		QuestionIndex: s.current,
		ChosenIndex:   chosenIndex,
		Correct:       correct,
		Awarded:       awarded,
	})
	participant.Score += awarded

	return domain.AnswerResult{
		Correct:    correct,
		Awarded:    awarded,
		TotalScore: participant.Score,
		Rank:       s.rankLocked(playerID),
	}, nil
}

func (s *Session) leaderboard() domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	lb := s.snapshotLocked()
	s.broadcastLocked(Event{Type: EventLeaderboard, Leaderboard: &lb})
	return lb
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(Event{Type: EventGameEnded})
}

func (s *Session) playerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

func (s *Session) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := Event{Type: EventPlayerJoined, PlayerCount: len(s.participants)}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest pending event so a slow reader never
			// blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) snapshotLocked() domain.Leaderboard {
	participants := make([]*domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	return BuildLeaderboard(s.code, participants)
}

func (s *Session) rankLocked(playerID string) int {
	for _, entry := range s.snapshotLocked().Entries {
		if entry.PlayerID == playerID {
			return entry.Rank
		}
	}
	return 0
}
