package feedback

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduniti/guidance/engine/config"
	"github.com/eduniti/guidance/engine/store"
	"github.com/eduniti/guidance/engine/types"
)

// newTestSystem creates a feedback system over a throwaway data directory
// with the stock configuration.
func newTestSystem(t *testing.T) *System {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err, "store creation should succeed")
	s, err := New(st, config.Default())
	require.NoError(t, err, "feedback system creation should succeed")
	return s
}

func submit(t *testing.T, s *System, feedbackType string, rating int, comment string) string {
	t.Helper()
	id, err := s.Submit("user-1", "session-1", feedbackType, rating, comment, nil)
	require.NoError(t, err)
	return id
}

func TestSubmit_ValidatesRating(t *testing.T) {
	s := newTestSystem(t)

	for _, rating := range []int{-1, 0, 6, 100} {
		_, err := s.Submit("user-1", "session-1", "general", rating, "", nil)
		assert.ErrorIs(t, err, types.ErrValidation, "rating %d must be rejected", rating)
	}

	feedbackCount, _ := s.Counts()
	assert.Zero(t, feedbackCount, "rejected feedback must not be stored")
}

func TestSubmit_StoresRecord(t *testing.T) {
	s := newTestSystem(t)

	id, err := s.Submit("user-1", "session-1", "recommendation", 4, "Great recommendations!",
		types.Document{"feature": "stream_recs"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	feedbackCount, analyses := s.Counts()
	assert.Equal(t, 1, feedbackCount)
	assert.Zero(t, analyses)
}

func TestSubmit_NilContextBecomesEmpty(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "general", 3, "")

	require.Len(t, s.feedback, 1)
	assert.NotNil(t, s.feedback[0].Context, "nil context must be stored as an empty document")
}

func TestSubmit_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(dir)
	require.NoError(t, err)
	s, err := New(st, config.Default())
	require.NoError(t, err)

	_, err = s.Submit("user-1", "session-1", "quiz", 5, "Very helpful quiz", nil)
	require.NoError(t, err)

	st2, err := store.New(dir)
	require.NoError(t, err)
	reloaded, err := New(st2, config.Default())
	require.NoError(t, err)

	feedbackCount, _ := reloaded.Counts()
	assert.Equal(t, 1, feedbackCount)
	assert.Equal(t, "quiz", reloaded.feedback[0].Type)
	assert.Equal(t, 5, reloaded.feedback[0].Rating)
}

func TestSummary_Empty(t *testing.T) {
	s := newTestSystem(t)

	summary := s.Summary("", 30)

	assert.Zero(t, summary.TotalFeedback)
	assert.Zero(t, summary.AverageRating)
	assert.NotNil(t, summary.RatingDistribution)
	assert.Empty(t, summary.RatingDistribution)
	assert.NotNil(t, summary.FeedbackTypes)
	assert.Nil(t, summary.DateRange)
}

func TestSummary_Aggregates(t *testing.T) {
	s := newTestSystem(t)

	submit(t, s, "recommendation", 5, "")
	submit(t, s, "recommendation", 3, "")
	submit(t, s, "quiz", 4, "")

	summary := s.Summary("", 30)

	assert.Equal(t, 3, summary.TotalFeedback)
	assert.InDelta(t, 4.0, summary.AverageRating, 1e-9)

	// Distribution is pre-seeded with every rating bucket.
	require.Len(t, summary.RatingDistribution, 5)
	assert.Equal(t, 1, summary.RatingDistribution[3])
	assert.Equal(t, 1, summary.RatingDistribution[4])
	assert.Equal(t, 1, summary.RatingDistribution[5])
	assert.Zero(t, summary.RatingDistribution[1])

	assert.Equal(t, map[string]int{"recommendation": 2, "quiz": 1}, summary.FeedbackTypes)

	// All feedback just arrived, so the 7-day view equals the window view.
	assert.Equal(t, 3, summary.RecentTrends.RecentCount)
	assert.InDelta(t, 4.0, summary.RecentTrends.RecentAverage, 1e-9)
	assert.Equal(t, "declining", summary.RecentTrends.TrendDirection,
		"a flat trend is reported as declining")

	require.NotNil(t, summary.DateRange)
	assert.True(t, summary.DateRange.Start.Before(summary.DateRange.End))
}

func TestSummary_FiltersByType(t *testing.T) {
	s := newTestSystem(t)

	submit(t, s, "recommendation", 5, "")
	submit(t, s, "quiz", 1, "")

	summary := s.Summary("quiz", 30)

	assert.Equal(t, 1, summary.TotalFeedback)
	assert.InDelta(t, 1.0, summary.AverageRating, 1e-9)
	assert.Equal(t, map[string]int{"quiz": 1}, summary.FeedbackTypes)
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	s := newTestSystem(t)

	_, err := s.Export("xml")
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestExport_WritesFiles(t *testing.T) {
	s := newTestSystem(t)
	for i := 0; i < 3; i++ {
		submit(t, s, "general", 3+i%2, fmt.Sprintf("comment %d", i))
	}

	jsonPath, err := s.Export("json")
	require.NoError(t, err)
	assert.FileExists(t, jsonPath)

	csvPath, err := s.Export("csv")
	require.NoError(t, err)
	assert.FileExists(t, csvPath)
}
