package app

import "github.com/PippinJewel/quiz-platform/internal/domain"

// EventType tags session notifications fanned out to subscribers.
type EventType string

const (
	EventPlayerJoined EventType = "player_joined"
	EventGameStarted  EventType = "game_started"
	EventNextQuestion EventType = "next_question"
	EventLeaderboard  EventType = "leaderboard_update"
	EventGameEnded    EventType = "game_ended"
)

// Event is a state-change notification for one session. Only the fields
// relevant to the Type are populated.
type Event struct {
	Type          EventType
	PlayerCount   int
	Question      *domain.QuestionView
	QuestionIndex int
	Leaderboard   *domain.Leaderboard
}
