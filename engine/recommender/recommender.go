// Package recommender computes weighted-sum match scores between student
// profiles and streams, colleges and careers. The scoring is a flat
// heuristic; observed engagement metrics feed back into the experiment
// framework for variant comparison.
package recommender

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/experiment"
	"github.com/eduniti/guidance/engine/types"
)

// College match score weights.
const (
	locationWeight = 0.3
	streamWeight   = 0.4
	interestWeight = 0.1
	cutoffWeight   = 0.2

	// Academic profiles within 80% of a college's cut-off count as a match.
	cutoffSlack = 0.8
)

// Engine scores user profiles against the loaded datasets.
type Engine struct {
	dataset   *Dataset
	framework *experiment.Framework
	log       logrus.FieldLogger
}

// NewEngine creates a recommender over the given dataset. A nil dataset uses
// the built-in seed data.
func NewEngine(dataset *Dataset) *Engine {
	if dataset == nil {
		dataset = DefaultDataset()
	}
	return &Engine{
		dataset: dataset,
		log:     logrus.WithField("component", "recommender"),
	}
}

// SetFramework attaches the experiment framework so observed metrics can be
// logged against a user's assigned variant.
func (e *Engine) SetFramework(f *experiment.Framework) {
	e.framework = f
}

// StreamRecommendations scores academic streams for a profile and returns
// the top three.
func (e *Engine) StreamRecommendations(profile types.UserProfile) []types.StreamRecommendation {
	type scored struct {
		row   Stream
		score float64
	}

	scoredStreams := make([]scored, 0, len(e.dataset.Streams))
	for _, row := range e.dataset.Streams {
		var score float64

		for _, interest := range profile.Interests {
			if containsFold(row.Subjects, interest) {
				score += 2
			}
			if containsFold(row.Careers, interest) {
				score += 3
			}
		}

		for subject, quizScore := range profile.QuizScores {
			if containsFold(row.Subjects, subject) {
				score += quizScore * 0.5
			}
		}

		scoredStreams = append(scoredStreams, scored{row: row, score: score})
	}

	sort.SliceStable(scoredStreams, func(i, j int) bool {
		return scoredStreams[i].score > scoredStreams[j].score
	})
	if len(scoredStreams) > 3 {
		scoredStreams = scoredStreams[:3]
	}

	recs := make([]types.StreamRecommendation, 0, len(scoredStreams))
	for _, sc := range scoredStreams {
		confidence := sc.score / 10
		if confidence > 1 {
			confidence = 1
		}
		interests := profile.Interests
		if len(interests) > 3 {
			interests = interests[:3]
		}
		recs = append(recs, types.StreamRecommendation{
			Stream:     sc.row.Stream,
			Confidence: confidence,
			Reasoning: fmt.Sprintf("Based on your interests in %s and academic strengths",
				strings.Join(interests, ", ")),
			CareerPaths:      sc.row.Careers,
			RequiredSubjects: sc.row.Subjects,
		})
	}
	return recs
}

// CollegeRecommendations scores colleges for a profile and returns the top
// matches, strongest first. Colleges with a zero score are omitted.
func (e *Engine) CollegeRecommendations(profile types.UserProfile, limit int) []types.CollegeRecommendation {
	recs := make([]types.CollegeRecommendation, 0, len(e.dataset.Colleges))

	for _, college := range e.dataset.Colleges {
		var score float64
		var reasons []string

		if state, ok := profile.Location["state"].(string); ok && state != "" {
			if collegeState, ok := college.Location["state"].(string); ok && collegeState == state {
				score += locationWeight
				reasons = append(reasons, "Located in your preferred state")
			}
		}

		if profile.Stream != "" && containsFold(college.Streams, profile.Stream) {
			score += streamWeight
			reasons = append(reasons, fmt.Sprintf("Offers %s programs", profile.Stream))
		}

		allPrograms := strings.ToLower(strings.Join(college.Programs, " "))
		for _, interest := range profile.Interests {
			if strings.Contains(allPrograms, strings.ToLower(interest)) {
				score += interestWeight
				reasons = append(reasons, fmt.Sprintf("Programs align with your interest in %s", interest))
			}
		}

		if len(profile.QuizScores) > 0 {
			var sum float64
			for _, v := range profile.QuizScores {
				sum += v
			}
			avg := sum / float64(len(profile.QuizScores))
			if avg >= college.CutOff*cutoffSlack {
				score += cutoffWeight
				reasons = append(reasons, "Your academic profile matches the college requirements")
			}
		}

		if score > 0 {
			recs = append(recs, types.CollegeRecommendation{
				CollegeID:  college.ID,
				Name:       college.Name,
				MatchScore: score,
				Reasons:    reasons,
				Programs:   college.Programs,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// CareerRecommendations returns career pathways, filtered by the profile's
// stream when one is set.
func (e *Engine) CareerRecommendations(profile types.UserProfile) []types.CareerPathway {
	var recs []types.CareerPathway
	for _, career := range e.dataset.Careers {
		if profile.Stream != "" && !strings.EqualFold(career.Stream, profile.Stream) {
			continue
		}
		recs = append(recs, types.CareerPathway{
			Career:           career.Career,
			EducationPath:    career.EducationPath,
			SkillsRequired:   career.Skills,
			JobOpportunities: []string{career.Career},
			SalaryRange:      career.SalaryRange,
			GrowthProspects:  career.Growth,
		})
	}
	return recs
}

// ScoreQuiz summarizes a batch of quiz responses.
func (e *Engine) ScoreQuiz(responses []types.QuizResponse) *types.QuizReport {
	scores := make(map[string]int, len(responses))
	totalTime := 0
	for _, r := range responses {
		scores[r.QuestionID] = r.SelectedAnswer
		totalTime += r.TimeTaken
	}

	var avg float64
	if len(scores) > 0 {
		sum := 0
		for _, v := range scores {
			sum += v
		}
		avg = float64(sum) / float64(len(scores))
	}

	level := "Low"
	if avg > 3 {
		level = "High"
	} else if avg > 2 {
		level = "Medium"
	}

	return &types.QuizReport{
		Scores:           scores,
		AverageScore:     avg,
		TotalTime:        totalTime,
		PerformanceLevel: level,
		Recommendations: []string{
			"Focus on areas with lower scores",
			"Consider additional practice",
		},
	}
}

// LogObservation records observed engagement metrics for a user into the
// experiment framework, attaching the profile and recommendations for audit.
// The user must already hold a variant assignment in the test.
func (e *Engine) LogObservation(
	testID string,
	profile types.UserProfile,
	recommendations interface{},
	metrics map[string]float64,
) error {
	if e.framework == nil {
		return fmt.Errorf("no experiment framework attached")
	}
	_, err := e.framework.RecordResult(testID, profile.UserID, metrics,
		types.Document{"profile": profile},
		types.Document{"recommendations": recommendations},
	)
	return err
}

// containsFold reports whether list contains s, case-insensitively.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
