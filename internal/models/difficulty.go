package models

import "fmt"

// Difficulty controls the per-problem time budget.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
	DifficultyExpert

	difficultyCount
)

// DifficultyInfo is the display metadata and timing for one difficulty.
type DifficultyInfo struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	TimePerProblem int    `json:"time_per_problem"` // seconds, 0 = unlimited
}

var difficultyTable = [difficultyCount]DifficultyInfo{
	DifficultyEasy: {
		Key:            "easy",
		Name:           "Easy",
		Description:    "Unlimited time - Take your time to think",
		Icon:           "🐌",
		TimePerProblem: 0,
	},
	DifficultyMedium: {
		Key:            "medium",
		Name:           "Medium",
		Description:    "20 seconds per problem - Moderate pressure",
		Icon:           "🚶",
		TimePerProblem: 20,
	},
	DifficultyHard: {
		Key:            "hard",
		Name:           "Hard",
		Description:    "15 seconds per problem - Getting challenging!",
		Icon:           "🏃",
		TimePerProblem: 15,
	},
	DifficultyExpert: {
		Key:            "expert",
		Name:           "Expert",
		Description:    "10 seconds per problem - Lightning fast!",
		Icon:           "⚡",
		TimePerProblem: 10,
	},
}

// Difficulties lists every difficulty from easiest to hardest.
func Difficulties() []Difficulty {
	out := make([]Difficulty, 0, difficultyCount)
	for d := Difficulty(0); d < difficultyCount; d++ {
		out = append(out, d)
	}
	return out
}

func (d Difficulty) Valid() bool {
	return d >= 0 && d < difficultyCount
}

func (d Difficulty) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyTable[d].Key
}

// Info returns the display metadata. Invalid values get the zero DifficultyInfo.
func (d Difficulty) Info() DifficultyInfo {
	if !d.Valid() {
		return DifficultyInfo{}
	}
	return difficultyTable[d]
}

// TimePerProblem returns the seconds allotted per problem; 0 means unlimited.
func (d Difficulty) TimePerProblem() int {
	return d.Info().TimePerProblem
}

func ParseDifficulty(s string) (Difficulty, error) {
	for i, info := range difficultyTable {
		if info.Key == s {
			return Difficulty(i), nil
		}
	}
	return DifficultyEasy, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(difficultyTable[d].Key), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
