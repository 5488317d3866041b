package domain

// Question is a single quiz item. Questions are loaded once and never
// mutated; sessions hold a snapshot of the set they were created from.
type Question struct {
	Prompt           string   `json:"prompt"`
	Answers          []string `json:"answers"`
	CorrectIndex     int      `json:"correctIndex"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"` // defaults to 20 if zero
}

// QuestionSet is an ordered, immutable sequence of questions.
type QuestionSet struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// QuestionView is the player-facing shape of a question. It never
// carries the correct index.
type QuestionView struct {
	Prompt           string   `json:"prompt"`
	Answers          []string `json:"answers"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// View strips the answer key from a question for broadcast.
func (q Question) View() QuestionView {
	return QuestionView{
		Prompt:           q.Prompt,
		Answers:          q.Answers,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
}

// AnswerRecord is one scored submission in a participant's log.
type AnswerRecord struct {
	QuestionIndex int  `json:"questionIndex"`
	ChosenIndex   int  `json:"chosenIndex"`
	Correct       bool `json:"correct"`
	Awarded       int  `json:"awarded"`
}

// Participant is a joined player within a session. JoinSeq records the
// join order and breaks leaderboard ties.
type Participant struct {
	ID          string
	DisplayName string
	Score       int
	JoinSeq     int
	Answers     []AnswerRecord
}

// LeaderboardEntry is a rank-ordered view of one participant.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"id"`
	DisplayName string `json:"name"`
	Score       int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard for a session.
type Leaderboard struct {
	Code    string             `json:"code"`
	Entries []LeaderboardEntry `json:"entries"`
}

// AnswerResult summarizes the outcome of a submission for the submitter.
type AnswerResult struct {
	Correct    bool `json:"isCorrect"`
	Awarded    int  `json:"pointsEarned"`
	TotalScore int  `json:"totalScore"`
	Rank       int  `json:"rank"`
}
