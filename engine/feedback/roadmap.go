package feedback

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eduniti/guidance/engine/types"
)

// Health band thresholds on (overall rating, overall sentiment).
const (
	healthExcellent = "Excellent"
	healthGood      = "Good"
	healthFair      = "Fair"
	healthPoor      = "Needs Improvement"
)

// maxQuickWins caps the quick-win list in a roadmap.
const maxQuickWins = 5

// maxPriorityAreas caps how many low-rated feedback types a roadmap surfaces.
const maxPriorityAreas = 3

// Roadmap synthesizes all stored analyses into an improvement plan. Overall
// averages span the full analysis history without deduplication, so repeated
// analyses of the same type weight it accordingly.
func (s *System) Roadmap() *types.Roadmap {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.analyses) == 0 {
		return &types.Roadmap{
			PriorityAreas: []types.PriorityArea{},
			QuickWins:     []string{},
			LongTermGoals: []string{},
			OverallHealth: "No data available",
		}
	}

	var ratingSum, sentimentSum float64
	for _, a := range s.analyses {
		ratingSum += a.AverageRating
		sentimentSum += a.SentimentScore
	}
	overallRating := ratingSum / float64(len(s.analyses))
	overallSentiment := sentimentSum / float64(len(s.analyses))

	var health string
	switch {
	case overallRating >= 4.0 && overallSentiment >= 0.5:
		health = healthExcellent
	case overallRating >= 3.5 && overallSentiment >= 0.2:
		health = healthGood
	case overallRating >= 3.0 && overallSentiment >= -0.2:
		health = healthFair
	default:
		health = healthPoor
	}

	areas := make([]types.PriorityArea, 0, len(s.analyses))
	for _, a := range s.analyses {
		areas = append(areas, types.PriorityArea{Type: a.Type, Rating: a.AverageRating})
	}
	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].Rating < areas[j].Rating
	})
	if len(areas) > maxPriorityAreas {
		areas = areas[:maxPriorityAreas]
	}

	// Quick wins: performance and usability issues are addressable fast.
	quickWins := []string{}
	for _, a := range s.analyses {
		for _, issue := range a.CommonIssues {
			if issue == "Performance Issues" || issue == "Usability Issues" {
				quickWins = append(quickWins, fmt.Sprintf("Fix %s in %s", strings.ToLower(issue), a.Type))
			}
		}
	}
	if len(quickWins) > maxQuickWins {
		quickWins = quickWins[:maxQuickWins]
	}

	return &types.Roadmap{
		PriorityAreas:    areas,
		QuickWins:        quickWins,
		LongTermGoals:    append([]string(nil), s.advice.LongTermGoals...),
		OverallHealth:    health,
		OverallRating:    overallRating,
		OverallSentiment: overallSentiment,
	}
}
