package models

import "github.com/vytor/timestrainer/internal/errors"

const (
	// MaxProblems caps the length of a single game.
	MaxProblems = 100
	// MaxFactorLimit keeps every answer within six typed digits.
	MaxFactorLimit = 999
)

// GameSettings configures one play-through.
type GameSettings struct {
	NumberOfProblems int        `json:"number_of_problems"`
	MinFactor        int        `json:"min_factor"`
	MaxFactor        int        `json:"max_factor"`
	Mode             Mode       `json:"mode"`
	Difficulty       Difficulty `json:"difficulty"`
}

// DefaultGameSettings matches the start screen defaults.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		NumberOfProblems: 10,
		MinFactor:        2,
		MaxFactor:        10,
		Mode:             ModeInput,
		Difficulty:       DifficultyEasy,
	}
}

// Validate rejects settings that would produce degenerate problems.
func (s GameSettings) Validate() error {
	if s.NumberOfProblems <= 0 {
		return errors.NewValidationError("number_of_problems", "must be greater than 0")
	}
	if s.NumberOfProblems > MaxProblems {
		return errors.NewValidationError("number_of_problems", "must be at most 100")
	}
	if s.MinFactor < 1 {
		return errors.NewValidationError("min_factor", "must be at least 1")
	}
	if s.MaxFactor < s.MinFactor {
		return errors.NewValidationError("max_factor", "must be greater than or equal to min_factor")
	}
	if s.MaxFactor > MaxFactorLimit {
		return errors.NewValidationError("max_factor", "must be at most 999")
	}
	if !s.Mode.Valid() {
		return errors.NewValidationError("mode", "must be 'input' or 'multiple-choice'")
	}
	if !s.Difficulty.Valid() {
		return errors.NewValidationError("difficulty", "must be 'easy', 'medium', 'hard', or 'expert'")
	}
	return nil
}

// Preferences is the part of GameSettings remembered between visits.
type Preferences struct {
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
}

func DefaultPreferences() Preferences {
	return Preferences{Mode: ModeInput, Difficulty: DifficultyEasy}
}

// Preferences extracts the remembered pair.
func (s GameSettings) Preferences() Preferences {
	return Preferences{Mode: s.Mode, Difficulty: s.Difficulty}
}
