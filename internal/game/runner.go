package game

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
)

// DefaultTickInterval matches the refresh rate of the on-screen timers.
const DefaultTickInterval = 100 * time.Millisecond

// FinishFunc receives a copy of every session that reaches the finished state.
type FinishFunc func(session *models.GameSession, score models.GameScore)

// Runner serialises access to one Engine and drives its timers.
type Runner struct {
	mu       sync.Mutex
	engine   *Engine
	clock    Clock
	interval time.Duration
	onFinish FinishFunc
	log      *logger.Logger

	reported    uint64
	lastTouched time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

type RunnerOption func(*Runner)

func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// OnFinish registers the completion hook. It runs outside the lock.
func OnFinish(fn FinishFunc) RunnerOption {
	return func(r *Runner) { r.onFinish = fn }
}

func WithLogger(l *logger.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

func NewRunner(engine *Engine, clock Clock, opts ...RunnerOption) *Runner {
	if clock == nil {
		clock = SystemClock()
	}
	r := &Runner{
		engine:      engine,
		clock:       clock,
		interval:    DefaultTickInterval,
		log:         logger.Default(),
		stop:        make(chan struct{}),
		lastTouched: clock.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type finished struct {
	session *models.GameSession
	score   models.GameScore
}

// act runs fn under the lock after settling due transitions, then reports a
// newly finished session once.
func (r *Runner) act(touch bool, fn func(now time.Time) error) (View, error) {
	r.mu.Lock()
	now := r.clock.Now()
	if touch {
		r.lastTouched = now
	}
	r.engine.Tick(now)
	err := fn(now)
	view := r.engine.View(now)
	done := r.takeFinished()
	r.mu.Unlock()

	if done != nil && r.onFinish != nil {
		r.onFinish(done.session, done.score)
	}
	return view, err
}

func (r *Runner) takeFinished() *finished {
	gen := r.engine.Generation()
	if r.engine.State() != models.StateFinished || r.reported == gen {
		return nil
	}
	r.reported = gen
	score := r.engine.Score()
	return &finished{session: r.engine.Session(), score: *score}
}

func (r *Runner) Start(settings models.GameSettings) (View, error) {
	return r.act(true, func(now time.Time) error {
		_, err := r.engine.Start(settings, now)
		if err == nil {
			r.log.Debug("session started: problems=%d mode=%s difficulty=%s",
				settings.NumberOfProblems, settings.Mode, settings.Difficulty)
		}
		return err
	})
}

// SubmitAnswer submits raw, or the stored answer text when raw is empty.
func (r *Runner) SubmitAnswer(raw string) (View, Outcome, error) {
	var out Outcome
	view, err := r.act(true, func(now time.Time) error {
		if raw == "" {
			raw = r.engine.CurrentAnswer()
		}
		var err error
		out, err = r.engine.SubmitAnswer(raw, now)
		return err
	})
	return view, out, err
}

func (r *Runner) SubmitChoice(value int) (View, Outcome, error) {
	var out Outcome
	view, err := r.act(true, func(now time.Time) error {
		var err error
		out, err = r.engine.SubmitChoice(value, now)
		return err
	})
	return view, out, err
}

func (r *Runner) SetCurrentAnswer(text string) View {
	view, _ := r.act(true, func(time.Time) error {
		r.engine.SetCurrentAnswer(text)
		return nil
	})
	return view
}

func (r *Runner) Reset() View {
	view, _ := r.act(true, func(time.Time) error {
		r.engine.Reset()
		return nil
	})
	return view
}

// View settles due transitions and returns the snapshot.
func (r *Runner) View() View {
	view, _ := r.act(false, func(time.Time) error { return nil })
	return view
}

// tick settles due transitions. Start and Reset replace the engine's window,
// so a tick never acts on a session that has since been replaced.
func (r *Runner) tick() {
	r.mu.Lock()
	r.engine.Tick(r.clock.Now())
	done := r.takeFinished()
	r.mu.Unlock()

	if done != nil && r.onFinish != nil {
		r.onFinish(done.session, done.score)
	}
}

func (r *Runner) LastTouched() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastTouched
}

// Run ticks the engine until ctx is done or Stop is called.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
