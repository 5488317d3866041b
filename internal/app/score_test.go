package app_test

import (
	"testing"

	"github.com/PippinJewel/quiz-platform/internal/app"
	"github.com/PippinJewel/quiz-platform/internal/domain"
)

func TestScoreAnswer(t *testing.T) {
	question := domain.Question{
		Prompt:           "Pick the third option",
		Answers:          []string{"A", "B", "C", "D"},
		CorrectIndex:     2,
		TimeLimitSeconds: 20,
	}

	cases := []struct {
		name        string
		chosen      int
		remaining   float64
		wantCorrect bool
		wantAwarded int
	}{
		{"correct instantly", 2, 20, true, 1500},
		{"correct at the buzzer", 2, 0, true, 1000},
		{"correct halfway", 2, 10, true, 1250},
		{"wrong answer", 1, 20, false, 0},
		{"remaining clamped high", 2, 45, true, 1500},
		{"remaining clamped low", 2, -3, true, 1000},
		{"chosen out of range", 7, 20, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			correct, awarded := app.ScoreAnswer(question, tc.chosen, tc.remaining)
			if correct != tc.wantCorrect || awarded != tc.wantAwarded {
				t.Fatalf("got correct=%v awarded=%d, want correct=%v awarded=%d",
					correct, awarded, tc.wantCorrect, tc.wantAwarded)
			}
		})
	}
}

func TestScoreAnswerDefaultsTimeLimit(t *testing.T) {
	question := domain.Question{
		Answers:      []string{"A", "B"},
		CorrectIndex: 0,
	}
	correct, awarded := app.ScoreAnswer(question, 0, app.DefaultTimeLimitSeconds)
	if !correct || awarded != app.BasePoints+app.SpeedBonusMax {
		t.Fatalf("expected full award with default limit, got correct=%v awarded=%d", correct, awarded)
	}
}
