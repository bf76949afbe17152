package game

import (
	"time"

	"github.com/vytor/timestrainer/internal/models"
)

// View is the read-only snapshot handed to the presentation layer.
type View struct {
	State             models.GameState    `json:"state"`
	Phase             Phase               `json:"phase"`
	Generation        uint64              `json:"generation"`
	Session           *models.GameSession `json:"session,omitempty"`
	CurrentProblem    *models.Problem     `json:"current_problem,omitempty"`
	CurrentAnswer     string              `json:"current_answer"`
	Score             *models.GameScore   `json:"score,omitempty"`
	TimeElapsed       int                 `json:"time_elapsed"`
	ProblemTimeLeft   int                 `json:"problem_time_left"`
	Unlimited         bool                `json:"unlimited"`
	ShowingFeedback   bool                `json:"showing_feedback"`
	ShowCorrectAnswer bool                `json:"show_correct_answer"`
	LastResult        *Resolution         `json:"last_result,omitempty"`
	Progress          models.Progress     `json:"progress"`
}

// View derives the snapshot at now. It does not advance the machine; call
// Tick first for an up to date picture.
func (e *Engine) View(now time.Time) View {
	v := View{
		State:             e.state,
		Phase:             e.Phase(),
		Generation:        e.generation,
		Session:           e.session.Clone(),
		CurrentAnswer:     e.currentAnswer,
		Score:             e.Score(),
		TimeElapsed:       e.elapsedSeconds(now),
		ProblemTimeLeft:   e.problemTimeLeft(now),
		Unlimited:         e.session != nil && e.session.TimePerProblem <= 0,
		ShowingFeedback:   e.window.kind == windowFeedback,
		ShowCorrectAnswer: e.window.kind == windowTimeout,
		Progress:          e.progress(),
	}
	if e.state == models.StatePlaying && e.session != nil {
		if p := e.session.CurrentProblem(); p != nil {
			cp := *p
			cp.Choices = append([]int(nil), p.Choices...)
			v.CurrentProblem = &cp
		}
	}
	if e.last != nil {
		last := *e.last
		v.LastResult = &last
	}
	return v
}
