package scoring

import (
	"math"

	"github.com/vytor/timestrainer/internal/models"
)

const (
	maxBaseScore      = 1000
	maxTimeBonus      = 500
	bonusLossPerSec   = 2
	quickThresholdSec = 30
	accurateThreshold = 80.0
)

// Rank is one tier of the results ladder.
type Rank struct {
	MinScore int    `json:"min_score"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
}

func (r Rank) String() string {
	return r.Icon + " " + r.Label + "!"
}

// ranks is ordered from the highest threshold down.
var ranks = []Rank{
	{MinScore: 1200, Label: "Math Genius", Icon: "🏆"},
	{MinScore: 1000, Label: "Excellent", Icon: "🌟"},
	{MinScore: 800, Label: "Great Job", Icon: "👍"},
	{MinScore: 600, Label: "Good Work", Icon: "😊"},
	{MinScore: 400, Label: "Keep Practicing", Icon: "📚"},
	{MinScore: 0, Label: "You Can Do Better", Icon: "💪"},
}

// Ranks returns the tiers from best to worst.
func Ranks() []Rank {
	out := make([]Rank, len(ranks))
	copy(out, ranks)
	return out
}

// RankFor maps a score onto its tier.
func RankFor(score int) Rank {
	for _, r := range ranks {
		if score >= r.MinScore {
			return r
		}
	}
	return ranks[len(ranks)-1]
}

// TimeBonus loses two points per elapsed second, floored at zero.
func TimeBonus(elapsedSeconds int) float64 {
	return math.Max(0, float64(maxTimeBonus-elapsedSeconds*bonusLossPerSec))
}

// CalculateScore derives the final score. totalProblems must be positive;
// a zero total yields an empty score in the lowest tier.
func CalculateScore(correctAnswers, totalProblems, elapsedSeconds int) models.GameScore {
	if totalProblems <= 0 {
		return models.GameScore{
			TimeElapsed: elapsedSeconds,
			Rank:        RankFor(0).Label,
			Message:     MotivationalMessage(0, elapsedSeconds),
		}
	}

	ratio := float64(correctAnswers) / float64(totalProblems)
	accuracy := ratio * 100
	score := int(math.Round(ratio*maxBaseScore + TimeBonus(elapsedSeconds)))

	return models.GameScore{
		CorrectAnswers: correctAnswers,
		TotalProblems:  totalProblems,
		Accuracy:       accuracy,
		TimeElapsed:    elapsedSeconds,
		Score:          score,
		Rank:           RankFor(score).Label,
		Message:        MotivationalMessage(accuracy, elapsedSeconds),
	}
}

// IsAnswerCorrect is exact integer equality.
func IsAnswerCorrect(p models.Problem, answer int) bool {
	return p.Answer == answer
}

// MotivationalMessage is independent of the rank tiers.
func MotivationalMessage(accuracy float64, elapsedSeconds int) string {
	quick := elapsedSeconds < quickThresholdSec
	accurate := accuracy >= accurateThreshold

	switch {
	case quick && accurate:
		return "Lightning fast and accurate! You're on fire! 🔥"
	case accurate:
		return "Great accuracy! Try to go faster next time! ⚡"
	case quick:
		return "Super speedy! Focus on accuracy for an even better score! 🎯"
	default:
		return "Keep practicing! Speed and accuracy come with time! 💪"
	}
}
