package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduniti/guidance/engine/types"
)

func TestRoadmap_NoData(t *testing.T) {
	s := newTestSystem(t)

	roadmap := s.Roadmap()

	assert.Equal(t, "No data available", roadmap.OverallHealth)
	assert.Empty(t, roadmap.PriorityAreas)
	assert.Empty(t, roadmap.QuickWins)
	assert.Empty(t, roadmap.LongTermGoals)
}

// seedAnalyses injects analysis history directly so roadmap inputs are exact.
func seedAnalyses(s *System, analyses ...*types.FeedbackAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses = append(s.analyses, analyses...)
}

func TestRoadmap_HealthBands(t *testing.T) {
	tests := []struct {
		name      string
		rating    float64
		sentiment float64
		want      string
	}{
		{"excellent", 4.2, 0.6, "Excellent"},
		{"good", 3.7, 0.3, "Good"},
		{"fair", 3.2, -0.1, "Fair"},
		{"poor rating", 2.5, 0.6, "Needs Improvement"},
		{"poor sentiment", 4.5, -0.5, "Needs Improvement"},
		{"high rating but mild sentiment falls through", 4.2, 0.3, "Good"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSystem(t)
			seedAnalyses(s, &types.FeedbackAnalysis{
				Type:           "general",
				AverageRating:  tt.rating,
				SentimentScore: tt.sentiment,
			})

			assert.Equal(t, tt.want, s.Roadmap().OverallHealth)
		})
	}
}

func TestRoadmap_PriorityAreas(t *testing.T) {
	s := newTestSystem(t)
	seedAnalyses(s,
		&types.FeedbackAnalysis{Type: "recommendation", AverageRating: 4.5},
		&types.FeedbackAnalysis{Type: "quiz", AverageRating: 2.1},
		&types.FeedbackAnalysis{Type: "college", AverageRating: 3.0},
		&types.FeedbackAnalysis{Type: "career", AverageRating: 3.8},
	)

	roadmap := s.Roadmap()

	require.Len(t, roadmap.PriorityAreas, 3, "priority areas are capped at three")
	assert.Equal(t, "quiz", roadmap.PriorityAreas[0].Type, "lowest rated first")
	assert.Equal(t, "college", roadmap.PriorityAreas[1].Type)
	assert.Equal(t, "career", roadmap.PriorityAreas[2].Type)
}

func TestRoadmap_QuickWins(t *testing.T) {
	s := newTestSystem(t)
	seedAnalyses(s,
		&types.FeedbackAnalysis{
			Type:         "recommendation",
			CommonIssues: []string{"Performance Issues", "Accuracy Issues"},
		},
		&types.FeedbackAnalysis{
			Type:         "quiz",
			CommonIssues: []string{"Usability Issues"},
		},
	)

	roadmap := s.Roadmap()

	assert.Equal(t, []string{
		"Fix performance issues in recommendation",
		"Fix usability issues in quiz",
	}, roadmap.QuickWins, "only performance and usability issues produce quick wins")
}

func TestRoadmap_QuickWinsCapped(t *testing.T) {
	s := newTestSystem(t)
	for i := 0; i < 4; i++ {
		seedAnalyses(s, &types.FeedbackAnalysis{
			Type:         "general",
			CommonIssues: []string{"Performance Issues", "Usability Issues"},
		})
	}

	roadmap := s.Roadmap()
	assert.Len(t, roadmap.QuickWins, 5)
}

func TestRoadmap_IncludesLongTermGoals(t *testing.T) {
	s := newTestSystem(t)
	seedAnalyses(s, &types.FeedbackAnalysis{Type: "general", AverageRating: 4.0, SentimentScore: 0.6})

	roadmap := s.Roadmap()
	assert.NotEmpty(t, roadmap.LongTermGoals)
	assert.Contains(t, roadmap.LongTermGoals,
		"Implement advanced ML models for better recommendations")
}

func TestRoadmap_AveragesWholeHistory(t *testing.T) {
	s := newTestSystem(t)
	seedAnalyses(s,
		&types.FeedbackAnalysis{Type: "general", AverageRating: 2.0, SentimentScore: -0.5},
		&types.FeedbackAnalysis{Type: "general", AverageRating: 4.0, SentimentScore: 0.5},
	)

	roadmap := s.Roadmap()
	assert.InDelta(t, 3.0, roadmap.OverallRating, 1e-9)
	assert.InDelta(t, 0.0, roadmap.OverallSentiment, 1e-9)
	assert.Equal(t, "Fair", roadmap.OverallHealth)
}
