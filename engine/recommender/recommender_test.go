package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduniti/guidance/engine/types"
)

func TestNewEngine_NilDatasetUsesSeedData(t *testing.T) {
	e := NewEngine(nil)

	require.NotNil(t, e.dataset)
	assert.NotEmpty(t, e.dataset.Colleges)
	assert.NotEmpty(t, e.dataset.Careers)
	assert.NotEmpty(t, e.dataset.Streams)
}

func TestStreamRecommendations_RanksByInterestOverlap(t *testing.T) {
	e := NewEngine(nil)

	profile := types.UserProfile{
		UserID:    "user-1",
		Interests: []string{"Physics", "Doctor"},
		QuizScores: map[string]float64{
			"Mathematics": 8,
		},
	}

	recs := e.StreamRecommendations(profile)
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 3, "at most three streams are returned")

	// Physics subject (+2), Doctor career (+3) and the Mathematics quiz
	// score (+4) all point at science.
	assert.Equal(t, "science", recs[0].Stream)
	assert.Greater(t, recs[0].Confidence, 0.0)
	assert.LessOrEqual(t, recs[0].Confidence, 1.0)
	assert.Contains(t, recs[0].Reasoning, "Physics")
	assert.NotEmpty(t, recs[0].CareerPaths)
	assert.NotEmpty(t, recs[0].RequiredSubjects)
}

func TestStreamRecommendations_ConfidenceCapped(t *testing.T) {
	e := NewEngine(nil)

	profile := types.UserProfile{
		UserID: "user-1",
		Interests: []string{
			"Physics", "Chemistry", "Mathematics", "Biology",
			"Engineer", "Doctor", "Scientist", "Researcher",
		},
	}

	recs := e.StreamRecommendations(profile)
	require.NotEmpty(t, recs)
	assert.Equal(t, 1.0, recs[0].Confidence, "confidence never exceeds 1.0")
}

func TestCollegeRecommendations_ScoresAndSorts(t *testing.T) {
	e := NewEngine(nil)

	profile := types.UserProfile{
		UserID:    "user-1",
		Stream:    "engineering",
		Location:  types.Document{"state": "Delhi"},
		Interests: []string{"B.Tech"},
		QuizScores: map[string]float64{
			"Mathematics": 90,
		},
	}

	recs := e.CollegeRecommendations(profile, 10)
	require.NotEmpty(t, recs)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].MatchScore, recs[i].MatchScore,
			"recommendations must be sorted strongest first")
	}
	for _, rec := range recs {
		assert.Greater(t, rec.MatchScore, 0.0, "zero-score colleges are omitted")
		assert.NotEmpty(t, rec.Reasons)
	}
}

func TestCollegeRecommendations_LocationMatch(t *testing.T) {
	e := NewEngine(nil)

	profile := types.UserProfile{
		UserID:   "user-1",
		Location: types.Document{"state": "Delhi"},
	}

	recs := e.CollegeRecommendations(profile, 10)
	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.InDelta(t, locationWeight, rec.MatchScore, 1e-9,
			"location is the only matching criterion here")
		assert.Contains(t, rec.Reasons, "Located in your preferred state")
	}
}

func TestCollegeRecommendations_NoMatches(t *testing.T) {
	e := NewEngine(nil)

	profile := types.UserProfile{
		UserID:   "user-1",
		Location: types.Document{"state": "Kerala"},
	}

	recs := e.CollegeRecommendations(profile, 10)
	assert.Empty(t, recs)
}

func TestCollegeRecommendations_Limit(t *testing.T) {
	e := NewEngine(nil)

	profile := types.UserProfile{
		UserID:   "user-1",
		Location: types.Document{"state": "Delhi"},
	}

	recs := e.CollegeRecommendations(profile, 2)
	assert.Len(t, recs, 2)
}

func TestCareerRecommendations_FiltersByStream(t *testing.T) {
	e := NewEngine(nil)

	recs := e.CareerRecommendations(types.UserProfile{UserID: "u", Stream: "engineering"})
	require.Len(t, recs, 1)
	assert.Equal(t, "Software Engineer", recs[0].Career)
	assert.NotEmpty(t, recs[0].EducationPath)
	assert.NotEmpty(t, recs[0].SkillsRequired)

	all := e.CareerRecommendations(types.UserProfile{UserID: "u"})
	assert.Len(t, all, 3, "no stream filter returns every career")
}

func TestScoreQuiz(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name      string
		answers   []int
		wantLevel string
	}{
		{"high performance", []int{4, 4, 5}, "High"},
		{"medium performance", []int{3, 2, 3}, "Medium"},
		{"low performance", []int{1, 2, 2}, "Low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := make([]types.QuizResponse, len(tt.answers))
			for i, a := range tt.answers {
				responses[i] = types.QuizResponse{
					UserID:         "user-1",
					QuestionID:     string(rune('a' + i)),
					SelectedAnswer: a,
					TimeTaken:      30,
				}
			}

			report := e.ScoreQuiz(responses)
			require.NotNil(t, report)

			assert.Equal(t, tt.wantLevel, report.PerformanceLevel)
			assert.Len(t, report.Scores, len(tt.answers))
			assert.Equal(t, 30*len(tt.answers), report.TotalTime)
			assert.NotEmpty(t, report.Recommendations)
		})
	}
}

func TestLogObservation_RequiresFramework(t *testing.T) {
	e := NewEngine(nil)

	err := e.LogObservation("test-1", types.UserProfile{UserID: "u"}, nil,
		map[string]float64{"ctr": 0.1})
	assert.Error(t, err)
}

func TestContainsFold(t *testing.T) {
	list := []string{"Physics", "Chemistry"}
	assert.True(t, containsFold(list, "physics"))
	assert.True(t, containsFold(list, "CHEMISTRY"))
	assert.False(t, containsFold(list, "Biology"))
}
