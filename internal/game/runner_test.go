package game_test

import (
	"bytes"
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/timestrainer/internal/game"
	"github.com/vytor/timestrainer/internal/logger"
	"github.com/vytor/timestrainer/internal/models"
)

type finishRecorder struct {
	mu     sync.Mutex
	scores []models.GameScore
	ids    []string
}

func (f *finishRecorder) record(s *models.GameSession, score models.GameScore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, s.ID)
	f.scores = append(f.scores, score)
}

func (f *finishRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scores)
}

func newRunner(clock *game.ManualClock, rec *finishRecorder) *game.Runner {
	quiet := logger.New(logger.WithOutput(&bytes.Buffer{}))
	return game.NewRunner(newEngine(31), clock,
		game.OnFinish(rec.record),
		game.WithLogger(quiet),
		game.WithTickInterval(time.Millisecond),
	)
}

func TestRunner_PlaysThroughAndReportsOnce(t *testing.T) {
	clock := game.NewManualClock(t0)
	rec := &finishRecorder{}
	r := newRunner(clock, rec)

	v, err := r.Start(settingsWith(3, models.ModeInput, models.DifficultyEasy))
	require.NoError(t, err)
	require.Equal(t, models.StatePlaying, v.State)

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		v = r.View()
		require.NotNil(t, v.CurrentProblem)
		r.SetCurrentAnswer(strconv.Itoa(v.CurrentProblem.Answer))
		_, out, err := r.SubmitAnswer("")
		require.NoError(t, err)
		assert.True(t, out.Correct, "stored answer text is submitted when none is given")
	}

	v = r.View()
	assert.Equal(t, models.StateFinished, v.State)
	r.View()
	r.Reset()

	require.Equal(t, 1, rec.count())
	assert.Equal(t, 3, rec.scores[0].CorrectAnswers)
	assert.Equal(t, "session-1", rec.ids[0])
}

func TestRunner_ViewSettlesTimeouts(t *testing.T) {
	clock := game.NewManualClock(t0)
	rec := &finishRecorder{}
	r := newRunner(clock, rec)

	_, err := r.Start(settingsWith(2, models.ModeMultipleChoice, models.DifficultyExpert))
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	assert.True(t, r.View().ShowCorrectAnswer)

	clock.Advance(time.Minute)
	v := r.View()
	assert.Equal(t, models.StateFinished, v.State)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 0, rec.scores[0].CorrectAnswers)
}

func TestRunner_InvalidAnswer(t *testing.T) {
	clock := game.NewManualClock(t0)
	r := newRunner(clock, &finishRecorder{})
	_, err := r.Start(models.DefaultGameSettings())
	require.NoError(t, err)

	v, out, err := r.SubmitAnswer("seven")

	require.ErrorIs(t, err, game.ErrInvalidAnswer)
	assert.False(t, out.Applied)
	assert.Equal(t, models.StatePlaying, v.State)
}

func TestRunner_StartErrorKeepsState(t *testing.T) {
	clock := game.NewManualClock(t0)
	r := newRunner(clock, &finishRecorder{})
	bad := models.DefaultGameSettings()
	bad.NumberOfProblems = 0

	v, err := r.Start(bad)

	require.Error(t, err)
	assert.Equal(t, models.StateStart, v.State)
}

func TestRunner_LastTouchedIgnoresReads(t *testing.T) {
	clock := game.NewManualClock(t0)
	r := newRunner(clock, &finishRecorder{})

	clock.Advance(time.Minute)
	_, err := r.Start(models.DefaultGameSettings())
	require.NoError(t, err)
	clock.Advance(time.Minute)
	r.View()

	assert.Equal(t, at(time.Minute), r.LastTouched())
}

func TestRunner_RunDrivesTimers(t *testing.T) {
	clock := game.NewManualClock(t0)
	rec := &finishRecorder{}
	r := newRunner(clock, rec)
	_, err := r.Start(settingsWith(1, models.ModeInput, models.DifficultyExpert))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	r.Stop()
	r.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_TicksAfterRestartIgnoreOldReveal(t *testing.T) {
	clock := game.NewManualClock(t0)
	rec := &finishRecorder{}
	r := newRunner(clock, rec)
	_, err := r.Start(settingsWith(2, models.ModeInput, models.DifficultyExpert))
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	require.True(t, r.View().ShowCorrectAnswer, "first problem timed out")

	r.Reset()
	_, err = r.Start(settingsWith(2, models.ModeInput, models.DifficultyExpert))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	// past the old reveal deadline, well inside the new problem's budget
	clock.Advance(2500 * time.Millisecond)
	assert.Never(t, func() bool {
		v := r.View()
		return v.Session.CurrentProblemIndex != 0 || len(v.Session.UserAnswers) != 0 || v.ShowCorrectAnswer
	}, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, 8, r.View().ProblemTimeLeft)
	assert.Zero(t, rec.count())
	r.Stop()
}

func TestRunner_ConcurrentUse(t *testing.T) {
	clock := game.NewManualClock(t0)
	rec := &finishRecorder{}
	r := newRunner(clock, rec)
	_, err := r.Start(settingsWith(50, models.ModeMultipleChoice, models.DifficultyHard))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				clock.Advance(50 * time.Millisecond)
				_, _, err := r.SubmitChoice(w + i)
				assert.NoError(t, err)
				r.View()
			}
		}(w)
	}
	wg.Wait()

	s := r.View().Session
	require.NotNil(t, s)
	assert.Len(t, s.UserAnswers, s.CurrentProblemIndex)
	assert.LessOrEqual(t, rec.count(), 1)
}
