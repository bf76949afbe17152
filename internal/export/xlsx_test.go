package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/timestrainer/internal/models"
	"github.com/xuri/excelize/v2"
)

func TestWriteResults(t *testing.T) {
	results := []models.GameResult{
		{
			Mode: models.ModeMultipleChoice, Difficulty: models.DifficultyExpert,
			CorrectAnswers: 7, TotalProblems: 10, Accuracy: 70, TimeElapsed: 60,
			Score: 1080, Rank: "Excellent",
			CompletedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
		},
		{
			Mode: models.ModeInput, Difficulty: models.DifficultyEasy,
			CorrectAnswers: 2, TotalProblems: 3, Accuracy: 66.6666, TimeElapsed: 9,
			Score: 1149, Rank: "=HYPERLINK(\"x\")",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Completed At", rows[0][0])
	assert.Equal(t, "Rank", rows[0][8])

	assert.Equal(t, []string{"2025-02-03 04:05:06", "multiple-choice", "Expert", "7", "10", "70", "60", "1080", "Excellent"}, rows[1])
	assert.Equal(t, "66.7", rows[2][5])
	assert.Equal(t, "'=HYPERLINK(\"x\")", rows[2][8])
}

func TestWriteResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSanitizeForExcel(t *testing.T) {
	assert.Equal(t, "", sanitizeForExcel(""))
	assert.Equal(t, "Great Job", sanitizeForExcel("Great Job"))
	assert.Equal(t, "'+1", sanitizeForExcel("+1"))
	assert.Equal(t, "'@sum", sanitizeForExcel("@sum"))
}
