package feedback

import (
	"time"

	"github.com/eduniti/guidance/engine/types"
)

// Summary computes a rolling view over feedback, optionally filtered by type,
// within the last windowDays days. The recent-trend sub-summary compares the
// last 7 days against the full window.
func (s *System) Summary(feedbackType string, windowDays int) *types.FeedbackSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.AddDate(0, 0, -windowDays)

	var filtered []*types.Feedback
	for _, fb := range s.feedback {
		if fb.Timestamp.Before(cutoff) {
			continue
		}
		if feedbackType != "" && fb.Type != feedbackType {
			continue
		}
		filtered = append(filtered, fb)
	}

	if len(filtered) == 0 {
		return &types.FeedbackSummary{
			RatingDistribution: map[int]int{},
			FeedbackTypes:      map[string]int{},
		}
	}

	var ratingSum int
	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	byType := make(map[string]int)
	for _, fb := range filtered {
		ratingSum += fb.Rating
		distribution[fb.Rating]++
		byType[fb.Type]++
	}
	average := float64(ratingSum) / float64(len(filtered))

	recentCutoff := now.AddDate(0, 0, -7)
	var recentSum, recentCount int
	for _, fb := range filtered {
		if !fb.Timestamp.Before(recentCutoff) {
			recentSum += fb.Rating
			recentCount++
		}
	}

	trends := types.RecentTrends{
		RecentCount:    recentCount,
		TrendDirection: "declining",
	}
	if recentCount > 0 {
		trends.RecentAverage = float64(recentSum) / float64(recentCount)
	}
	if trends.RecentAverage > average {
		trends.TrendDirection = "improving"
	}

	return &types.FeedbackSummary{
		TotalFeedback:      len(filtered),
		AverageRating:      average,
		RatingDistribution: distribution,
		FeedbackTypes:      byType,
		RecentTrends:       trends,
		DateRange:          &types.DateRange{Start: cutoff, End: now},
	}
}
