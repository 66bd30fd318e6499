package types

import "time"

// MetricSummary holds per-variant summary statistics for one metric.
// Std is the population standard deviation (divide by N).
type MetricSummary struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// VariantReport aggregates all results recorded for one variant.
type VariantReport struct {
	UserCount int                      `json:"user_count"`
	Metrics   map[string]MetricSummary `json:"metrics"`
}

// TestReport is the aggregated view of a test's recorded results. Every
// declared variant is present, zero-result variants with an empty metrics map.
type TestReport struct {
	TestID          string                   `json:"test_id"`
	Status          TestStatus               `json:"status"`
	TotalUsers      int                      `json:"total_users"`
	Variants        map[string]VariantReport `json:"variants"`
	SuccessCriteria map[string]float64       `json:"success_criteria,omitempty"`
}

// Analysis outcome statuses.
const (
	AnalysisCompleted            = "completed"
	AnalysisInconclusive         = "inconclusive"
	AnalysisInsufficientData     = "insufficient_data"
	AnalysisInsufficientVariants = "insufficient_variants"
)

// AnalysisReport is the winner determination for a test. Confidence is a
// sample-size heuristic capped at 0.95, not a statistical significance test.
// Winner is empty unless the leading variant meets the success criteria.
type AnalysisReport struct {
	TestID        string             `json:"test_id"`
	Status        string             `json:"status"`
	Winner        string             `json:"winner,omitempty"`
	Confidence    float64            `json:"confidence"`
	VariantScores map[string]float64 `json:"variant_scores,omitempty"`
	Analysis      string             `json:"analysis"`
}

// RecentTrends compares the last 7 days of feedback against the full window.
type RecentTrends struct {
	RecentAverage  float64 `json:"recent_average"`
	RecentCount    int     `json:"recent_count"`
	TrendDirection string  `json:"trend_direction"`
}

// DateRange bounds the window a summary was computed over.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FeedbackSummary is a rolling view over submitted feedback.
type FeedbackSummary struct {
	TotalFeedback      int            `json:"total_feedback"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[int]int    `json:"rating_distribution"`
	FeedbackTypes      map[string]int `json:"feedback_types"`
	RecentTrends       RecentTrends   `json:"recent_trends"`
	DateRange          *DateRange     `json:"date_range,omitempty"`
}

// PriorityArea is a feedback type ranked by its average rating.
type PriorityArea struct {
	Type   string  `json:"type"`
	Rating float64 `json:"rating"`
}

// Roadmap synthesizes all stored analyses into an improvement plan.
type Roadmap struct {
	PriorityAreas    []PriorityArea `json:"priority_areas"`
	QuickWins        []string       `json:"quick_wins"`
	LongTermGoals    []string       `json:"long_term_goals"`
	OverallHealth    string         `json:"overall_health"`
	OverallRating    float64        `json:"overall_rating,omitempty"`
	OverallSentiment float64        `json:"overall_sentiment,omitempty"`
}
