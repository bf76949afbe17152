package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/timestrainer/internal/errors"
	"github.com/vytor/timestrainer/internal/game"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/vytor/timestrainer/internal/repository"
	"github.com/vytor/timestrainer/internal/settings"
	"github.com/vytor/timestrainer/internal/testutil/mocks"
)

type gameFixture struct {
	svc   *gameService
	clock *game.ManualClock
	repo  *mocks.MockSettingsRepository
	queue *mocks.MockJobQueue
}

func newGameFixture(t *testing.T) *gameFixture {
	t.Helper()
	f := &gameFixture{
		clock: game.NewManualClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)),
		repo:  new(mocks.MockSettingsRepository),
		queue: new(mocks.MockJobQueue),
	}
	f.svc = NewGameService(settings.NewStore(f.repo), f.queue, GameServiceOptions{
		Clock:         f.clock,
		TickInterval:  time.Hour,
		IdleTTL:       30 * time.Minute,
		EngineOptions: []game.Option{game.WithIDFunc(func() string { return "sess-1" })},
	}).(*gameService)
	t.Cleanup(f.svc.Close)
	return f
}

func intPtr(v int) *int { return &v }

func answerOf(v game.View) string {
	return strconv.Itoa(v.CurrentProblem.Answer)
}

func TestGameService_StartUsesStoredPreferences(t *testing.T) {
	f := newGameFixture(t)
	f.repo.On("Get", mock.Anything, settings.Key("p1")).Return(`{"mode":"multiple-choice","difficulty":"hard"}`, nil)
	f.queue.On("EnqueueSavePreferences", "p1",
		models.Preferences{Mode: models.ModeMultipleChoice, Difficulty: models.DifficultyHard}).Return(nil)

	view, err := f.svc.Start(context.Background(), "p1", StartRequest{NumberOfProblems: intPtr(3)})
	require.NoError(t, err)

	assert.Equal(t, models.StatePlaying, view.State)
	assert.Equal(t, models.ModeMultipleChoice, view.Session.Mode)
	assert.Equal(t, models.DifficultyHard, view.Session.Difficulty)
	assert.Equal(t, 3, view.Session.TotalProblems)
	assert.Len(t, view.CurrentProblem.Choices, 3)
	f.queue.AssertExpectations(t)
}

func TestGameService_StartRequestOverridesPreferences(t *testing.T) {
	f := newGameFixture(t)
	f.repo.On("Get", mock.Anything, mock.Anything).Return("", repository.ErrNotFound)
	f.queue.On("EnqueueSavePreferences", "p1",
		models.Preferences{Mode: models.ModeInput, Difficulty: models.DifficultyExpert}).Return(errors.New("queue full"))

	expert := models.DifficultyExpert
	view, err := f.svc.Start(context.Background(), "p1", StartRequest{Difficulty: &expert})

	require.NoError(t, err, "a failed preference save does not fail the start")
	assert.Equal(t, 10, view.ProblemTimeLeft)
	f.queue.AssertExpectations(t)
}

func TestGameService_StartRejectsInvalidSettings(t *testing.T) {
	f := newGameFixture(t)
	f.repo.On("Get", mock.Anything, mock.Anything).Return("", repository.ErrNotFound)

	_, err := f.svc.Start(context.Background(), "p1", StartRequest{MinFactor: intPtr(9), MaxFactor: intPtr(3)})

	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	f.queue.AssertNotCalled(t, "EnqueueSavePreferences", mock.Anything, mock.Anything)
}

func TestGameService_PlayThroughEnqueuesResult(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	f.repo.On("Get", mock.Anything, mock.Anything).Return("", repository.ErrNotFound)
	f.queue.On("EnqueueSavePreferences", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("EnqueueSaveResult", mock.MatchedBy(func(r models.GameResult) bool {
		return r.PlayerID == "p1" && r.SessionID == "sess-1" && r.CorrectAnswers == 2 && r.TotalProblems == 2
	})).Return(nil).Once()

	view, err := f.svc.Start(ctx, "p1", StartRequest{NumberOfProblems: intPtr(2)})
	require.NoError(t, err)
	first := answerOf(view)

	f.clock.Advance(2 * time.Second)
	view, out, err := f.svc.SubmitAnswer(ctx, "p1", first)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.True(t, view.ShowingFeedback)

	_, out, err = f.svc.SubmitAnswer(ctx, "p1", first)
	require.NoError(t, err, "submits during feedback are ignored, not rejected")
	assert.False(t, out.Applied)

	f.clock.Advance(game.FeedbackDuration)
	view = f.svc.Current(ctx, "p1")
	require.False(t, view.ShowingFeedback)

	view, out, err = f.svc.SubmitAnswer(ctx, "p1", answerOf(view))
	require.NoError(t, err)
	assert.True(t, out.Finished)
	assert.Equal(t, models.StateFinished, view.State)
	f.queue.AssertExpectations(t)

	_, _, err = f.svc.SubmitAnswer(ctx, "p1", "1")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
}

func TestGameService_SubmitErrors(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.SubmitAnswer(ctx, "p1", "12")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict), "no game started")

	_, _, err = f.svc.SubmitChoice(ctx, "p1", 12)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))

	f.repo.On("Get", mock.Anything, mock.Anything).Return("", repository.ErrNotFound)
	f.queue.On("EnqueueSavePreferences", mock.Anything, mock.Anything).Return(nil)
	_, err = f.svc.Start(ctx, "p1", StartRequest{})
	require.NoError(t, err)

	for _, raw := range []string{"twelve", "-1", "+7", " 12", "1234567"} {
		_, _, err = f.svc.SubmitAnswer(ctx, "p1", raw)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation), "answer %q", raw)
	}

	view := f.svc.Current(ctx, "p1")
	assert.Zero(t, view.Session.CurrentProblemIndex, "rejected answers leave the game untouched")
	assert.Empty(t, view.Session.UserAnswers)
}

func TestGameService_SetAnswer(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	view, err := f.svc.SetAnswer(ctx, "p1", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", view.CurrentAnswer)

	_, err = f.svc.SetAnswer(ctx, "p1", "4a")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	assert.Equal(t, "42", f.svc.Current(ctx, "p1").CurrentAnswer)
}

func TestGameService_PlayersAreIsolated(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()
	f.repo.On("Get", mock.Anything, mock.Anything).Return("", repository.ErrNotFound)
	f.queue.On("EnqueueSavePreferences", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Start(ctx, "p1", StartRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.StatePlaying, f.svc.Current(ctx, "p1").State)
	assert.Equal(t, models.StateStart, f.svc.Current(ctx, "p2").State)
	assert.Equal(t, 2, f.svc.ActiveSessions())

	assert.Equal(t, models.StateStart, f.svc.Reset(ctx, "p1").State)
}

func TestGameService_SweepEvictsIdleRunners(t *testing.T) {
	f := newGameFixture(t)
	ctx := context.Background()

	f.svc.Current(ctx, "idle")
	f.clock.Advance(20 * time.Minute)
	_, err := f.svc.SetAnswer(ctx, "busy", "7")
	require.NoError(t, err)

	f.clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, f.svc.sweep())
	assert.Equal(t, 1, f.svc.ActiveSessions())
	assert.Equal(t, "7", f.svc.Current(ctx, "busy").CurrentAnswer)
}

func TestValidateAnswerText(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"", true},
		{"0", true},
		{"123456", true},
		{"1234567", false},
		{"-5", false},
		{"1.5", false},
		{" 12", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateAnswerText(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
			}
		})
	}
}
