package models

import "time"

// NoAnswer marks a problem that timed out without a submission.
const NoAnswer = -1

// GameState is the top-level screen the player is on.
type GameState string

const (
	StateStart    GameState = "start"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
)

// Problem is one multiplication question.
type Problem struct {
	ID      int   `json:"id"`
	Factor1 int   `json:"factor1"`
	Factor2 int   `json:"factor2"`
	Answer  int   `json:"answer"`
	Choices []int `json:"choices,omitempty"`
}

// GameSession is the mutable aggregate for one play-through.
type GameSession struct {
	ID                      string      `json:"id"`
	Problems                []Problem   `json:"problems"`
	CurrentProblemIndex     int         `json:"current_problem_index"`
	StartTime               time.Time   `json:"start_time"`
	CurrentProblemStartTime time.Time   `json:"current_problem_start_time"`
	EndTime                 *time.Time  `json:"end_time,omitempty"`
	TimePerProblem          int         `json:"time_per_problem"`
	UserAnswers             map[int]int `json:"user_answers"`
	CorrectAnswers          int         `json:"correct_answers"`
	TotalProblems           int         `json:"total_problems"`
	Mode                    Mode        `json:"mode"`
	Difficulty              Difficulty  `json:"difficulty"`
}

// Clone returns a deep copy so callers can't mutate engine state.
func (s *GameSession) Clone() *GameSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Problems = make([]Problem, len(s.Problems))
	for i, p := range s.Problems {
		out.Problems[i] = p
		if p.Choices != nil {
			out.Problems[i].Choices = append([]int(nil), p.Choices...)
		}
	}
	out.UserAnswers = make(map[int]int, len(s.UserAnswers))
	for k, v := range s.UserAnswers {
		out.UserAnswers[k] = v
	}
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return &out
}

// CurrentProblem returns nil once every problem has been resolved.
func (s *GameSession) CurrentProblem() *Problem {
	if s == nil || s.CurrentProblemIndex >= len(s.Problems) {
		return nil
	}
	return &s.Problems[s.CurrentProblemIndex]
}

// Complete reports whether every problem has been resolved.
func (s *GameSession) Complete() bool {
	return s != nil && s.CurrentProblemIndex >= s.TotalProblems
}

// GameScore is derived once when the session completes.
type GameScore struct {
	CorrectAnswers int     `json:"correct_answers"`
	TotalProblems  int     `json:"total_problems"`
	Accuracy       float64 `json:"accuracy"`
	TimeElapsed    int     `json:"time_elapsed"`
	Score          int     `json:"score"`
	Rank           string  `json:"rank"`
	Message        string  `json:"message"`
}

type Progress struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
