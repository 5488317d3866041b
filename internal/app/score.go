package app

import (
	"math"

	"github.com/PippinJewel/quiz-platform/internal/domain"
)

// Scoring constants. These must stay identical across deployments so
// recorded scores stay comparable.
const (
	// BasePoints is awarded for any correct answer.
	BasePoints = 1000
	// SpeedBonusMax is the additional award for an instant correct answer,
	// scaled linearly down to zero as the time limit runs out.
	SpeedBonusMax = 500
	// DefaultTimeLimitSeconds applies when a question carries no limit.
	DefaultTimeLimitSeconds = 20
)

// ScoreAnswer computes the award for a submission. secondsRemaining is
// measured by the session clock, never taken from the client.
func ScoreAnswer(q domain.Question, chosenIndex int, secondsRemaining float64) (correct bool, awarded int) {
	if chosenIndex != q.CorrectIndex {
		return false, 0
	}

	limit := timeLimit(q)
	fraction := secondsRemaining / limit
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	return true, BasePoints + int(math.Floor(SpeedBonusMax*fraction))
}

func timeLimit(q domain.Question) float64 {
	if q.TimeLimitSeconds > 0 {
		return float64(q.TimeLimitSeconds)
	}
	return DefaultTimeLimitSeconds
}
