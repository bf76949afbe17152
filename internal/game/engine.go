package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/problems"
	"github.com/vytor/timestrainer/internal/scoring"
)

const (
	// FeedbackDuration is how long the correct/incorrect flash stays up.
	FeedbackDuration = 500 * time.Millisecond
	// TimeoutRevealDuration is how long the answer to an expired problem is shown.
	TimeoutRevealDuration = 2 * time.Second
)

// ErrInvalidAnswer is returned when typed input is not a whole number.
var ErrInvalidAnswer = errors.New("answer must be a non-negative whole number")

// Phase refines StatePlaying into its sub-states.
type Phase string

const (
	PhaseIdle      Phase = "start"
	PhaseAnswering Phase = "playing"
	PhaseFeedback  Phase = "feedback"
	PhaseExpired   Phase = "expired"
	PhaseFinished  Phase = "finished"
)

type windowKind int

const (
	windowNone windowKind = iota
	windowFeedback
	windowTimeout
)

// window is a pending timed transition. It belongs to the generation that
// opened it.
type window struct {
	kind       windowKind
	until      time.Time
	generation uint64
	timeLeft   int
}

// Resolution describes how the most recent problem was resolved.
type Resolution struct {
	Problem   models.Problem `json:"problem"`
	Submitted int            `json:"submitted"`
	Correct   bool           `json:"correct"`
	TimedOut  bool           `json:"timed_out"`
}

// Outcome reports what a submit did. Applied is false for ignored submits.
type Outcome struct {
	Applied  bool `json:"applied"`
	Correct  bool `json:"correct"`
	Finished bool `json:"finished"`
}

// Engine is the session state machine. Every method takes the current time
// explicitly; nothing inside it sleeps or schedules. Not safe for concurrent use.
type Engine struct {
	gen   *problems.Generator
	newID func() string

	state         models.GameState
	session       *models.GameSession
	score         *models.GameScore
	pause         PauseClock
	window        window
	last          *Resolution
	currentAnswer string
	generation    uint64
}

type Option func(*Engine)

// WithGenerator replaces the clock-seeded problem generator.
func WithGenerator(g *problems.Generator) Option {
	return func(e *Engine) { e.gen = g }
}

// WithIDFunc replaces the session id source.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state: models.StateStart,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gen == nil {
		e.gen = problems.NewDefault()
	}
	return e
}

// Start begins a fresh session, discarding any previous one.
func (e *Engine) Start(settings models.GameSettings, now time.Time) (View, error) {
	if err := settings.Validate(); err != nil {
		return e.View(now), err
	}

	list := e.gen.GenerateProblems(settings)
	e.generation++
	e.session = &models.GameSession{
		ID:                      e.newID(),
		Problems:                list,
		StartTime:               now,
		CurrentProblemStartTime: now,
		TimePerProblem:          settings.Difficulty.TimePerProblem(),
		UserAnswers:             make(map[int]int, len(list)),
		TotalProblems:           len(list),
		Mode:                    settings.Mode,
		Difficulty:              settings.Difficulty,
	}
	e.score = nil
	e.pause = PauseClock{}
	e.window = window{}
	e.last = nil
	e.currentAnswer = ""
	e.state = models.StatePlaying

	return e.View(now), nil
}

// SubmitAnswer resolves the current problem with typed input. Blank input and
// submits during a feedback or timeout window are ignored.
func (e *Engine) SubmitAnswer(raw string, now time.Time) (Outcome, error) {
	e.Tick(now)
	raw = strings.TrimSpace(raw)
	if raw == "" || !e.accepting() {
		return Outcome{}, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidAnswer, raw)
	}
	return e.resolve(value, now), nil
}

// SubmitChoice resolves the current problem with a clicked option.
func (e *Engine) SubmitChoice(value int, now time.Time) (Outcome, error) {
	e.Tick(now)
	if !e.accepting() {
		return Outcome{}, nil
	}
	return e.resolve(value, now), nil
}

// HandleTimeExpired opens the timeout reveal if the current problem has run out
// of time. It reports whether it did.
func (e *Engine) HandleTimeExpired(now time.Time) bool {
	deadline, ok := e.deadline()
	if !ok || !e.accepting() || now.Before(deadline) {
		return false
	}
	e.expire(now)
	return true
}

// Tick fires every transition that is due at now, each at its own deadline,
// so the result does not depend on how often Tick is called.
func (e *Engine) Tick(now time.Time) {
	for e.state == models.StatePlaying && e.session != nil {
		if e.window.kind != windowNone {
			if e.window.generation != e.generation {
				e.window = window{}
				continue
			}
			if now.Before(e.window.until) {
				return
			}
			e.closeWindow()
			continue
		}
		deadline, ok := e.deadline()
		if !ok || now.Before(deadline) {
			return
		}
		e.expire(deadline)
	}
}

// Reset returns to the start screen. Calling it repeatedly is harmless.
func (e *Engine) Reset() {
	e.generation++
	e.state = models.StateStart
	e.session = nil
	e.score = nil
	e.pause = PauseClock{}
	e.window = window{}
	e.last = nil
	e.currentAnswer = ""
}

func (e *Engine) SetCurrentAnswer(text string) {
	e.currentAnswer = text
}

func (e *Engine) CurrentAnswer() string {
	return e.currentAnswer
}

func (e *Engine) State() models.GameState {
	return e.state
}

// Generation changes on every Start and Reset.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// Session returns a copy of the active session, or nil.
func (e *Engine) Session() *models.GameSession {
	return e.session.Clone()
}

// Score is nil until the session finishes.
func (e *Engine) Score() *models.GameScore {
	if e.score == nil {
		return nil
	}
	s := *e.score
	return &s
}

func (e *Engine) Phase() Phase {
	switch e.state {
	case models.StatePlaying:
		switch e.window.kind {
		case windowFeedback:
			return PhaseFeedback
		case windowTimeout:
			return PhaseExpired
		}
		return PhaseAnswering
	case models.StateFinished:
		return PhaseFinished
	default:
		return PhaseIdle
	}
}

func (e *Engine) accepting() bool {
	return e.state == models.StatePlaying &&
		e.window.kind == windowNone &&
		e.session != nil &&
		!e.session.Complete()
}

// deadline is when the current problem runs out of time.
func (e *Engine) deadline() (time.Time, bool) {
	if e.session == nil || e.session.TimePerProblem <= 0 {
		return time.Time{}, false
	}
	limit := time.Duration(e.session.TimePerProblem) * time.Second
	return e.session.CurrentProblemStartTime.Add(limit), true
}

func (e *Engine) resolve(value int, now time.Time) Outcome {
	p := *e.session.CurrentProblem()
	correct := scoring.IsAnswerCorrect(p, value)

	e.session = advance(e.session, p.ID, value, correct, now)
	e.last = &Resolution{Problem: p, Submitted: value, Correct: correct}
	e.currentAnswer = ""

	if e.session.Complete() {
		e.finish(now)
		return Outcome{Applied: true, Correct: correct, Finished: true}
	}
	e.open(windowFeedback, now, FeedbackDuration)
	return Outcome{Applied: true, Correct: correct}
}

func (e *Engine) expire(at time.Time) {
	e.open(windowTimeout, at, TimeoutRevealDuration)
}

func (e *Engine) open(kind windowKind, at time.Time, d time.Duration) {
	left := e.problemTimeLeft(at)
	e.window = window{kind: kind, until: at.Add(d), generation: e.generation, timeLeft: left}
	e.pause = e.pause.Begin(at)
}

// closeWindow settles the pending window at its own deadline.
func (e *Engine) closeWindow() {
	w := e.window
	e.window = window{}
	e.pause = e.pause.End(w.until)

	switch w.kind {
	case windowFeedback:
		next := *e.session
		next.CurrentProblemStartTime = w.until
		e.session = &next
	case windowTimeout:
		p := *e.session.CurrentProblem()
		e.session = advance(e.session, p.ID, models.NoAnswer, false, w.until)
		e.last = &Resolution{Problem: p, Submitted: models.NoAnswer, TimedOut: true}
		e.currentAnswer = ""
		if e.session.Complete() {
			e.finish(w.until)
		}
	}
}

func (e *Engine) finish(at time.Time) {
	e.pause = e.pause.End(at)
	end := at
	next := *e.session
	next.EndTime = &end
	e.session = &next

	score := scoring.CalculateScore(next.CorrectAnswers, next.TotalProblems, e.elapsedSeconds(at))
	e.score = &score
	e.window = window{}
	e.state = models.StateFinished
}

// advance builds the session that follows resolving problem id with answer.
// The receiver is left untouched.
func advance(s *models.GameSession, id, answer int, correct bool, at time.Time) *models.GameSession {
	next := *s
	next.UserAnswers = make(map[int]int, len(s.UserAnswers)+1)
	for k, v := range s.UserAnswers {
		next.UserAnswers[k] = v
	}
	next.UserAnswers[id] = answer
	if correct {
		next.CorrectAnswers++
	}
	next.CurrentProblemIndex++
	next.CurrentProblemStartTime = at
	return &next
}

func (e *Engine) problemTimeLeft(now time.Time) int {
	if e.session == nil || e.session.TimePerProblem <= 0 || e.state != models.StatePlaying {
		return 0
	}
	if e.window.kind != windowNone {
		return e.window.timeLeft
	}
	spent := now.Sub(e.session.CurrentProblemStartTime)
	if spent < 0 {
		spent = 0
	}
	return max(0, e.session.TimePerProblem-int(spent/time.Second))
}

func (e *Engine) elapsedSeconds(now time.Time) int {
	if e.session == nil {
		return 0
	}
	end := now
	if e.session.EndTime != nil {
		end = *e.session.EndTime
	}
	d := end.Sub(e.session.StartTime) - e.pause.Total(end)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (e *Engine) progress() models.Progress {
	if e.session == nil || e.session.TotalProblems == 0 {
		return models.Progress{}
	}
	done := e.session.CurrentProblemIndex
	return models.Progress{
		Current:    done,
		Total:      e.session.TotalProblems,
		Percentage: float64(done) / float64(e.session.TotalProblems) * 100,
	}
}
