package feedback

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/types"
)

// Sentiment blend weights: ratings carry most of the signal, comment keyword
// polarity refines it.
const (
	ratingSentimentWeight  = 0.7
	commentSentimentWeight = 0.3
)

// Issue detection thresholds.
const (
	lowRatingShare  = 0.2 // share of ratings <= 2 that flags "High number of low ratings"
	themeShare      = 0.1 // share of all feedback a comment theme must reach to be flagged
	lowRatingCutoff = 2
)

// Analyze examines all feedback of one type and produces a FeedbackAnalysis:
// average rating, blended sentiment, recurring issues and improvement
// suggestions. The analysis is appended to history (never pruned) and the
// analyzed records are marked processed.
func (s *System) Analyze(feedbackType string) (*types.FeedbackAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var typed []*types.Feedback
	for _, fb := range s.feedback {
		if fb.Type == feedbackType {
			typed = append(typed, fb)
		}
	}

	if len(typed) == 0 {
		return &types.FeedbackAnalysis{
			ID:                     uuid.New().String(),
			Type:                   feedbackType,
			CommonIssues:           []string{},
			ImprovementSuggestions: []string{},
			Timestamp:              time.Now(),
		}, nil
	}

	var ratingSum int
	for _, fb := range typed {
		ratingSum += fb.Rating
	}
	averageRating := float64(ratingSum) / float64(len(typed))

	issues := s.detectIssues(typed)

	analysis := &types.FeedbackAnalysis{
		ID:                     uuid.New().String(),
		Type:                   feedbackType,
		TotalFeedback:          len(typed),
		AverageRating:          averageRating,
		SentimentScore:         s.sentimentScore(typed),
		CommonIssues:           issues,
		ImprovementSuggestions: s.suggestions(feedbackType, averageRating, issues),
		Timestamp:              time.Now(),
	}

	s.analyses = append(s.analyses, analysis)
	if err := s.saveAnalyses(); err != nil {
		s.analyses = s.analyses[:len(s.analyses)-1]
		return nil, err
	}

	// Mark the records covered by this analysis as processed.
	changed := false
	for _, fb := range typed {
		if !fb.Processed {
			fb.Processed = true
			changed = true
		}
	}
	if changed {
		if err := s.saveFeedback(); err != nil {
			s.log.WithError(err).Warn("Failed to persist processed flags")
		}
	}

	s.log.WithFields(logrus.Fields{
		"type":      feedbackType,
		"total":     analysis.TotalFeedback,
		"rating":    analysis.AverageRating,
		"sentiment": analysis.SentimentScore,
		"issues":    len(issues),
	}).Info("Analyzed feedback")
	s.publish(EventAnalysisComplete, analysis)

	return analysis, nil
}

// sentimentScore blends rating sentiment with comment keyword polarity into
// a score in [-1,1]. Ratings map linearly from [1,5] to [-1,1]; each comment
// contributes (positive-negative)/(positive+negative) keyword hits, averaged
// only over comments with at least one hit.
func (s *System) sentimentScore(feedback []*types.Feedback) float64 {
	var ratingSentiment float64
	for _, fb := range feedback {
		ratingSentiment += float64(fb.Rating-3) / 2
	}
	ratingSentiment /= float64(len(feedback))

	var commentSentiment float64
	commentCount := 0
	for _, fb := range feedback {
		if fb.Comment == "" {
			continue
		}
		lower := strings.ToLower(fb.Comment)
		positive := countHits(lower, s.sentiment.PositiveKeywords)
		negative := countHits(lower, s.sentiment.NegativeKeywords)
		if positive+negative > 0 {
			commentSentiment += float64(positive-negative) / float64(positive+negative)
			commentCount++
		}
	}
	if commentCount > 0 {
		commentSentiment /= float64(commentCount)
	}

	return ratingSentiment*ratingSentimentWeight + commentSentiment*commentSentimentWeight
}

// detectIssues flags a low-rating problem and recurring comment themes.
// Theme thresholds are computed against the full feedback set, not just the
// records that carry comments.
func (s *System) detectIssues(feedback []*types.Feedback) []string {
	issues := []string{}

	lowCount := 0
	for _, fb := range feedback {
		if fb.Rating <= lowRatingCutoff {
			lowCount++
		}
	}
	if float64(lowCount) > float64(len(feedback))*lowRatingShare {
		issues = append(issues, "High number of low ratings")
	}

	for _, theme := range s.sentiment.IssueThemes {
		count := 0
		for _, fb := range feedback {
			if fb.Comment == "" {
				continue
			}
			lower := strings.ToLower(fb.Comment)
			for _, kw := range theme.Keywords {
				if strings.Contains(lower, kw) {
					count++
					break
				}
			}
		}
		if float64(count) >= float64(len(feedback))*themeShare {
			issues = append(issues, theme.Name)
		}
	}

	return issues
}

// suggestions assembles improvement advice: rating-tier framing first, then
// one suggestion per detected theme, then type-specific canned suggestions.
// The combined list is truncated, which can silently drop the type-specific
// tail when many issues fired.
func (s *System) suggestions(feedbackType string, averageRating float64, issues []string) []string {
	suggestions := []string{}

	if averageRating < 3.0 {
		suggestions = append(suggestions, "Overall user satisfaction is low - consider major improvements")
	} else if averageRating < 4.0 {
		suggestions = append(suggestions, "User satisfaction is moderate - focus on key pain points")
	}

	flagged := make(map[string]bool, len(issues))
	for _, issue := range issues {
		flagged[issue] = true
	}
	for _, theme := range s.sentiment.IssueThemes {
		if flagged[theme.Name] && theme.Suggestion != "" {
			suggestions = append(suggestions, theme.Suggestion)
		}
	}

	suggestions = append(suggestions, s.advice.TypeSuggestions[feedbackType]...)

	if len(suggestions) > s.advice.MaxSuggestions {
		suggestions = suggestions[:s.advice.MaxSuggestions]
	}
	return suggestions
}

// countHits counts how many keywords occur in the comment.
func countHits(comment string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(comment, kw) {
			hits++
		}
	}
	return hits
}
