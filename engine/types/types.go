package types

import (
	"time"
)

// TestStatus represents the lifecycle state of an A/B test.
type TestStatus string

const (
	StatusDraft     TestStatus = "draft"
	StatusRunning   TestStatus = "running"
	StatusPaused    TestStatus = "paused"
	StatusCompleted TestStatus = "completed"
)

// Document is an open-ended JSON payload (variant descriptors, feedback context,
// user profiles, recommendation snapshots). The engine stores these pass-through
// and never inspects them beyond the fields it needs.
type Document map[string]interface{}

// ABTest is a named experiment splitting traffic across variants.
type ABTest struct {
	ID              string             `json:"test_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Variants        []Document         `json:"variants"`
	TrafficSplit    []float64          `json:"traffic_split"`
	StartDate       time.Time          `json:"start_date"`
	EndDate         time.Time          `json:"end_date"`
	Status          TestStatus         `json:"status"`
	Metrics         []string           `json:"metrics"`
	SuccessCriteria map[string]float64 `json:"success_criteria"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// VariantName extracts the name field of a variant descriptor.
func VariantName(v Document) string {
	name, _ := v["name"].(string)
	return name
}

// VariantNames returns the declared variant names in declared order.
func (t *ABTest) VariantNames() []string {
	names := make([]string, 0, len(t.Variants))
	for _, v := range t.Variants {
		names = append(names, VariantName(v))
	}
	return names
}

// TestResult is a single per-user metric observation, tagged with the
// user's assigned variant. Append-only.
type TestResult struct {
	ID                 string             `json:"result_id"`
	TestID             string             `json:"test_id"`
	UserID             string             `json:"user_id"`
	Variant            string             `json:"variant"`
	Timestamp          time.Time          `json:"timestamp"`
	Metrics            map[string]float64 `json:"metrics"`
	UserProfile        Document           `json:"user_profile"`
	RecommendationData Document           `json:"recommendation_data"`
}

// Feedback is a single user feedback event.
type Feedback struct {
	ID        string    `json:"feedback_id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Type      string    `json:"feedback_type"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Context   Document  `json:"context"`
	Timestamp time.Time `json:"timestamp"`
	Processed bool      `json:"processed"`
}

// FeedbackAnalysis is a derived artifact summarizing feedback patterns for
// one feedback type. Regenerated on demand and appended to a history list.
type FeedbackAnalysis struct {
	ID                     string    `json:"analysis_id"`
	Type                   string    `json:"feedback_type"`
	TotalFeedback          int       `json:"total_feedback"`
	AverageRating          float64   `json:"average_rating"`
	SentimentScore         float64   `json:"sentiment_score"`
	CommonIssues           []string  `json:"common_issues"`
	ImprovementSuggestions []string  `json:"improvement_suggestions"`
	Timestamp              time.Time `json:"timestamp"`
}
