package problems

import (
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/vytor/timestrainer/internal/models"
)

const (
	// Every factor gets baseWeight except 10, which shows up a tenth as often.
	baseWeight = 10
	tenWeight  = 1

	distractorCount       = 2
	maxDistractorAttempts = 100
	fallbackOffset        = 11
)

// Generator produces multiplication problems. It is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator drawing from src. Tests pass a fixed seed.
func New(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// NewDefault creates a Generator seeded from the clock.
func NewDefault() *Generator {
	return New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateProblems materializes the whole problem list for a session, ids 0..n-1.
func (g *Generator) GenerateProblems(settings models.GameSettings) []models.Problem {
	problems := make([]models.Problem, 0, settings.NumberOfProblems)
	for i := 0; i < settings.NumberOfProblems; i++ {
		problems = append(problems, g.GenerateProblem(i, settings.MinFactor, settings.MaxFactor, settings.Mode))
	}
	return problems
}

// GenerateProblem draws both factors from the weighted pool and, for
// multiple-choice mode, attaches three shuffled options.
func (g *Generator) GenerateProblem(id, minFactor, maxFactor int, mode models.Mode) models.Problem {
	f1 := g.weightedFactor(minFactor, maxFactor)
	f2 := g.weightedFactor(minFactor, maxFactor)

	p := models.Problem{
		ID:      id,
		Factor1: f1,
		Factor2: f2,
		Answer:  f1 * f2,
	}
	if mode == models.ModeMultipleChoice {
		p.Choices = g.GenerateChoices(p.Answer)
	}
	return p
}

// weightedFactor draws from [minFactor, maxFactor]. When 10 is in range it is
// its own bucket of weight tenWeight against baseWeight for every other value.
func (g *Generator) weightedFactor(minFactor, maxFactor int) int {
	if maxFactor <= minFactor {
		return minFactor
	}
	span := maxFactor - minFactor + 1
	if minFactor > 10 || maxFactor < 10 {
		return minFactor + g.rng.Intn(span)
	}

	pick := g.rng.Intn((span-1)*baseWeight + tenWeight)
	if pick < tenWeight {
		return 10
	}
	n := minFactor + (pick-tenWeight)/baseWeight
	if n >= 10 {
		n++
	}
	return n
}

// GenerateChoices returns the correct answer plus two distinct, positive
// distractors in random order.
func (g *Generator) GenerateChoices(answer int) []int {
	choices := make([]int, 0, distractorCount+1)
	choices = append(choices, answer)
	for len(choices) < distractorCount+1 {
		choices = append(choices, g.freshDistractor(answer, choices))
	}
	g.shuffle(choices)
	return choices
}

func (g *Generator) freshDistractor(answer int, taken []int) int {
	for attempt := 0; attempt < maxDistractorAttempts; attempt++ {
		if c := g.distractor(answer); !slices.Contains(taken, c) {
			return c
		}
	}
	c := max(1, answer+fallbackOffset)
	for slices.Contains(taken, c) {
		c++
	}
	return c
}

// distractor imitates a plausible mistake: a small slip, a rough estimate,
// or landing on the wrong row of the table.
func (g *Generator) distractor(answer int) int {
	var c int
	switch g.rng.Intn(3) {
	case 0:
		c = answer + g.sign()*(g.rng.Intn(10)+1)
	case 1:
		c = int(math.Floor(float64(answer) * (0.8 + g.rng.Float64()*0.4)))
	default:
		c = answer + g.sign()*10*(g.rng.Intn(3)+1)
	}
	return max(1, c)
}

func (g *Generator) sign() int {
	if g.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// shuffle is Fisher–Yates.
func (g *Generator) shuffle(s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
