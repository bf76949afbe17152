package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/game"
	"github.com/vytor/timestrainer/internal/jobs"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/settings"
)

const (
	DefaultIdleTTL = 30 * time.Minute
	maxAnswerLen   = 6
)

// StartRequest overrides parts of the default settings. Mode and difficulty
// fall back to the player's remembered preferences.
type StartRequest struct {
	NumberOfProblems *int               `json:"number_of_problems,omitempty"`
	MinFactor        *int               `json:"min_factor,omitempty"`
	MaxFactor        *int               `json:"max_factor,omitempty"`
	Mode             *models.Mode       `json:"mode,omitempty"`
	Difficulty       *models.Difficulty `json:"difficulty,omitempty"`
}

// GameService handles live game sessions, one per player
type GameService interface {
	Start(ctx context.Context, playerID string, req StartRequest) (game.View, error)
	Current(ctx context.Context, playerID string) game.View
	SetAnswer(ctx context.Context, playerID, text string) (game.View, error)
	SubmitAnswer(ctx context.Context, playerID, raw string) (game.View, game.Outcome, error)
	SubmitChoice(ctx context.Context, playerID string, value int) (game.View, game.Outcome, error)
	Reset(ctx context.Context, playerID string) game.View
	Preferences(ctx context.Context, playerID string) models.Preferences
	ActiveSessions() int
	Run(ctx context.Context)
	Close()
}

// GameServiceOptions tunes the runners a GameService creates.
type GameServiceOptions struct {
	Clock        game.Clock
	TickInterval time.Duration
	IdleTTL      time.Duration
	// EngineOptions are passed to every new engine.
	EngineOptions []game.Option
}

type playerRunner struct {
	runner *game.Runner
}

type gameService struct {
	store *settings.Store
	queue jobs.JobQueue
	opts  GameServiceOptions
	log   *logger.Logger

	mu      sync.Mutex
	runners map[string]*playerRunner
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewGameService creates a new GameService
func NewGameService(store *settings.Store, queue jobs.JobQueue, opts GameServiceOptions) GameService {
	if opts.Clock == nil {
		opts.Clock = game.SystemClock()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = game.DefaultTickInterval
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &gameService{
		store:   store,
		queue:   queue,
		opts:    opts,
		log:     logger.Default().WithPrefix("game"),
		runners: make(map[string]*playerRunner),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// runnerFor returns the player's runner, creating it on first use.
func (s *gameService) runnerFor(playerID string) *game.Runner {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pr, ok := s.runners[playerID]; ok {
		return pr.runner
	}

	log := s.log.WithField("player_id", playerID)
	r := game.NewRunner(game.NewEngine(s.opts.EngineOptions...), s.opts.Clock,
		game.WithTickInterval(s.opts.TickInterval),
		game.WithLogger(log),
		game.OnFinish(func(session *models.GameSession, score models.GameScore) {
			s.finished(log, playerID, session, score)
		}),
	)
	s.runners[playerID] = &playerRunner{runner: r}
	go r.Run(s.ctx)

	log.Debug("runner created, active=%d", len(s.runners))
	return r
}

func (s *gameService) finished(log *logger.Logger, playerID string, session *models.GameSession, score models.GameScore) {
	log.Info("game finished: session=%s score=%d rank=%s correct=%d/%d time=%ds",
		session.ID, score.Score, score.Rank, score.CorrectAnswers, score.TotalProblems, score.TimeElapsed)

	result := models.NewGameResult(playerID, session, score)
	if err := s.queue.EnqueueSaveResult(result); err != nil {
		log.Error("failed to enqueue result for session %s: %v", session.ID, err)
	}
}

func (s *gameService) Start(ctx context.Context, playerID string, req StartRequest) (game.View, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting game: player_id=%s", playerID)

	prefs := s.store.Load(ctx, playerID)
	cfg := models.DefaultGameSettings()
	cfg.Mode = prefs.Mode
	cfg.Difficulty = prefs.Difficulty
	if req.NumberOfProblems != nil {
		cfg.NumberOfProblems = *req.NumberOfProblems
	}
	if req.MinFactor != nil {
		cfg.MinFactor = *req.MinFactor
	}
	if req.MaxFactor != nil {
		cfg.MaxFactor = *req.MaxFactor
	}
	if req.Mode != nil {
		cfg.Mode = *req.Mode
	}
	if req.Difficulty != nil {
		cfg.Difficulty = *req.Difficulty
	}

	if err := cfg.Validate(); err != nil {
		log.Debug("rejected settings: %v", err)
		return game.View{}, err
	}

	view, err := s.runnerFor(playerID).Start(cfg)
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return view, err
		}
		log.Error("failed to start game: %v", err)
		return view, errors.NewInternalError(err)
	}

	if err := s.queue.EnqueueSavePreferences(playerID, cfg.Preferences()); err != nil {
		log.Warn("failed to enqueue preferences: %v", err)
	}

	log.Info("game started: session=%s problems=%d mode=%s difficulty=%s",
		view.Session.ID, cfg.NumberOfProblems, cfg.Mode, cfg.Difficulty)
	return view, nil
}

func (s *gameService) Current(ctx context.Context, playerID string) game.View {
	return s.runnerFor(playerID).View()
}

// SetAnswer stores the in-progress typed answer. Only digits are accepted.
func (s *gameService) SetAnswer(ctx context.Context, playerID, text string) (game.View, error) {
	if err := ValidateAnswerText(text); err != nil {
		return game.View{}, err
	}
	return s.runnerFor(playerID).SetCurrentAnswer(text), nil
}

// SubmitAnswer submits raw, or the stored answer text when raw is empty. The
// text is held to the same digits-only rule as SetAnswer.
func (s *gameService) SubmitAnswer(ctx context.Context, playerID, raw string) (game.View, game.Outcome, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting answer: player_id=%s", playerID)

	if err := ValidateAnswerText(raw); err != nil {
		return game.View{}, game.Outcome{}, err
	}

	view, out, err := s.runnerFor(playerID).SubmitAnswer(raw)
	if err != nil {
		if stderrors.Is(err, game.ErrInvalidAnswer) {
			return view, out, errors.NewBadRequestError("answer must be a whole number")
		}
		log.Error("failed to submit answer: %v", err)
		return view, out, errors.NewInternalError(err)
	}
	return view, out, s.checkActive(view, out)
}

func (s *gameService) SubmitChoice(ctx context.Context, playerID string, value int) (game.View, game.Outcome, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting choice: player_id=%s value=%d", playerID, value)

	view, out, err := s.runnerFor(playerID).SubmitChoice(value)
	if err != nil {
		log.Error("failed to submit choice: %v", err)
		return view, out, errors.NewInternalError(err)
	}
	return view, out, s.checkActive(view, out)
}

// checkActive turns a submit with no game running into a conflict. Submits
// ignored during feedback are not errors.
func (s *gameService) checkActive(view game.View, out game.Outcome) error {
	if out.Applied || view.State == models.StatePlaying {
		return nil
	}
	return errors.NewConflictError("no game in progress")
}

func (s *gameService) Reset(ctx context.Context, playerID string) game.View {
	logger.FromContext(ctx).Debug("resetting game: player_id=%s", playerID)
	return s.runnerFor(playerID).Reset()
}

func (s *gameService) Preferences(ctx context.Context, playerID string) models.Preferences {
	return s.store.Load(ctx, playerID)
}

func (s *gameService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runners)
}

// Run evicts runners nobody has touched for IdleTTL until ctx is done.
func (s *gameService) Run(ctx context.Context) {
	interval := s.opts.IdleTTL / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *gameService) sweep() int {
	cutoff := s.opts.Clock.Now().Add(-s.opts.IdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, pr := range s.runners {
		if pr.runner.LastTouched().After(cutoff) {
			continue
		}
		pr.runner.Stop()
		delete(s.runners, id)
		evicted++
	}
	if evicted > 0 {
		s.log.Info("evicted %d idle sessions, active=%d", evicted, len(s.runners))
	}
	return evicted
}

// Close stops every runner.
func (s *gameService) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pr := range s.runners {
		pr.runner.Stop()
		delete(s.runners, id)
	}
}

// ValidateAnswerText accepts an empty string or up to six digits.
func ValidateAnswerText(text string) error {
	if len(text) > maxAnswerLen {
		return errors.NewValidationError("answer", "must be at most 6 digits")
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return errors.NewValidationError("answer", "must contain digits only")
		}
	}
	return nil
}
