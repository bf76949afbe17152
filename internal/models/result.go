package models

import "time"

// GameResult is a completed game as stored in the history.
type GameResult struct {
	ID             int64      `json:"id"`
	PlayerID       string     `json:"player_id"`
	SessionID      string     `json:"session_id"`
	Mode           Mode       `json:"mode"`
	Difficulty     Difficulty `json:"difficulty"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalProblems  int        `json:"total_problems"`
	Accuracy       float64    `json:"accuracy"`
	TimeElapsed    int        `json:"time_elapsed"`
	Score          int        `json:"score"`
	Rank           string     `json:"rank"`
	CompletedAt    time.Time  `json:"completed_at"`
}

// NewGameResult builds a history row from a finished session.
func NewGameResult(playerID string, session *GameSession, score GameScore) GameResult {
	completedAt := time.Now()
	if session.EndTime != nil {
		completedAt = *session.EndTime
	}
	return GameResult{
		PlayerID:       playerID,
		SessionID:      session.ID,
		Mode:           session.Mode,
		Difficulty:     session.Difficulty,
		CorrectAnswers: score.CorrectAnswers,
		TotalProblems:  score.TotalProblems,
		Accuracy:       score.Accuracy,
		TimeElapsed:    score.TimeElapsed,
		Score:          score.Score,
		Rank:           score.Rank,
		CompletedAt:    completedAt,
	}
}

type ResultFilter struct {
	PlayerID   string
	Mode       *Mode
	Difficulty *Difficulty
	Limit      int
	Offset     int
}

type ResultStats struct {
	TotalGames      int                `json:"total_games"`
	TotalCorrect    int                `json:"total_correct"`
	TotalProblems   int                `json:"total_problems"`
	AverageAccuracy float64            `json:"average_accuracy"`
	BestScores      map[string]int     `json:"best_scores"` // key: difficulty
	AverageScores   map[string]float64 `json:"average_scores"`
}

type BestScore struct {
	Difficulty  Difficulty `json:"difficulty"`
	Score       int        `json:"score"`
	CompletedAt time.Time  `json:"completed_at"`
}
