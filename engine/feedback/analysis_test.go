package feedback

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_EmptyTypeIsNotPersisted(t *testing.T) {
	s := newTestSystem(t)

	analysis, err := s.Analyze("recommendation")
	require.NoError(t, err)

	assert.Equal(t, "recommendation", analysis.Type)
	assert.Zero(t, analysis.TotalFeedback)
	assert.Zero(t, analysis.AverageRating)
	assert.NotNil(t, analysis.CommonIssues)
	assert.Empty(t, analysis.CommonIssues)
	assert.NotNil(t, analysis.ImprovementSuggestions)

	_, analyses := s.Counts()
	assert.Zero(t, analyses, "empty analyses must not enter history")
}

func TestAnalyze_OnlyCoversRequestedType(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "recommendation", 5, "")
	submit(t, s, "quiz", 1, "")

	analysis, err := s.Analyze("recommendation")
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.TotalFeedback)
	assert.InDelta(t, 5.0, analysis.AverageRating, 1e-9)
}

func TestAnalyze_NegativeSentiment(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "recommendation", 1, "this is terrible and confusing")

	analysis, err := s.Analyze("recommendation")
	require.NoError(t, err)

	// Rating sentiment (1-3)/2 = -1; both keyword hits are negative.
	assert.InDelta(t, -1.0, analysis.SentimentScore, 1e-9)
	assert.Less(t, analysis.SentimentScore, -0.3)

	assert.Contains(t, analysis.CommonIssues, "High number of low ratings")
	assert.Contains(t, analysis.CommonIssues, "Usability Issues",
		"the word 'confusing' should flag the usability theme")
}

func TestAnalyze_PositiveSentiment(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "quiz", 5, "great and helpful")

	analysis, err := s.Analyze("quiz")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, analysis.SentimentScore, 1e-9)
	assert.Empty(t, analysis.CommonIssues)
}

func TestAnalyze_CommentlessFeedbackUsesRatingsOnly(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "general", 3, "")
	submit(t, s, "general", 3, "")

	analysis, err := s.Analyze("general")
	require.NoError(t, err)

	// Neutral ratings, no comment signal: sentiment is exactly zero.
	assert.Zero(t, analysis.SentimentScore)
}

func TestAnalyze_LowRatingThresholdIsStrict(t *testing.T) {
	s := newTestSystem(t)
	// Exactly 20% low ratings: 1 of 5. The threshold is strictly greater.
	submit(t, s, "college", 1, "")
	for i := 0; i < 4; i++ {
		submit(t, s, "college", 5, "")
	}

	analysis, err := s.Analyze("college")
	require.NoError(t, err)
	assert.NotContains(t, analysis.CommonIssues, "High number of low ratings")

	// One more low rating pushes the share past 20%.
	submit(t, s, "college", 2, "")
	analysis, err = s.Analyze("college")
	require.NoError(t, err)
	assert.Contains(t, analysis.CommonIssues, "High number of low ratings")
}

func TestAnalyze_ThemeThresholdCountsAllFeedback(t *testing.T) {
	s := newTestSystem(t)
	// 1 slow-loading comment out of 10 total = exactly 10%, which qualifies.
	submit(t, s, "career", 3, "loading takes forever")
	for i := 0; i < 9; i++ {
		submit(t, s, "career", 4, "")
	}

	analysis, err := s.Analyze("career")
	require.NoError(t, err)
	assert.Contains(t, analysis.CommonIssues, "Performance Issues")
}

func TestAnalyze_SuggestionTiersAndTruncation(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "recommendation", 1, "slow and confusing and wrong")

	analysis, err := s.Analyze("recommendation")
	require.NoError(t, err)

	require.NotEmpty(t, analysis.ImprovementSuggestions)
	assert.Equal(t, "Overall user satisfaction is low - consider major improvements",
		analysis.ImprovementSuggestions[0], "low-rating framing comes first")
	assert.LessOrEqual(t, len(analysis.ImprovementSuggestions), 5,
		"the suggestion list is capped")
}

func TestAnalyze_ModerateRatingFraming(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "quiz", 3, "")
	submit(t, s, "quiz", 4, "")

	analysis, err := s.Analyze("quiz")
	require.NoError(t, err)

	require.NotEmpty(t, analysis.ImprovementSuggestions)
	assert.Equal(t, "User satisfaction is moderate - focus on key pain points",
		analysis.ImprovementSuggestions[0])
}

func TestAnalyze_MarksRecordsProcessed(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "general", 4, "")
	submit(t, s, "quiz", 4, "")

	_, err := s.Analyze("general")
	require.NoError(t, err)

	for _, fb := range s.feedback {
		if fb.Type == "general" {
			assert.True(t, fb.Processed, "analyzed records must be marked processed")
		} else {
			assert.False(t, fb.Processed, "other types must stay untouched")
		}
	}
}

func TestAnalyze_AppendsToHistory(t *testing.T) {
	s := newTestSystem(t)
	submit(t, s, "general", 4, "")

	for i := 0; i < 3; i++ {
		_, err := s.Analyze("general")
		require.NoError(t, err, "analysis run %d should succeed", i)
	}

	_, analyses := s.Counts()
	assert.Equal(t, 3, analyses, "each run appends, history is never pruned")
}

func TestCountHits(t *testing.T) {
	keywords := []string{"slow", "loading"}

	tests := []struct {
		comment string
		want    int
	}{
		{"the page is slow", 1},
		{"slow loading everywhere", 2},
		{"all good", 0},
		{"SLOWLY", 0}, // caller lowercases; raw match is substring-based
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			assert.Equal(t, tt.want, countHits(tt.comment, keywords))
		})
	}
}

func TestAnalyze_SentimentBlendsCommentPolarity(t *testing.T) {
	s := newTestSystem(t)
	// Rating 5 (+1.0) with an all-negative comment (-1.0):
	// 0.7*1.0 + 0.3*(-1.0) = 0.4
	submit(t, s, "career", 5, "awful and useless")

	analysis, err := s.Analyze("career")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, analysis.SentimentScore, 1e-9)
}

func TestAnalyze_ManyEntries(t *testing.T) {
	s := newTestSystem(t)
	for i := 0; i < 20; i++ {
		submit(t, s, "general", 1+i%5, fmt.Sprintf("entry %d", i))
	}

	analysis, err := s.Analyze("general")
	require.NoError(t, err)

	assert.Equal(t, 20, analysis.TotalFeedback)
	assert.InDelta(t, 3.0, analysis.AverageRating, 1e-9)
}
