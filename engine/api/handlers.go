package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/eduniti/guidance/engine/sysinfo"
	"github.com/eduniti/guidance/engine/types"
)

// maxBodySize caps request bodies at 1MB.
const maxBodySize = 1 << 20

// createTestRequest is the POST /api/tests body.
type createTestRequest struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Variants        []types.Document   `json:"variants"`
	TrafficSplit    []float64          `json:"traffic_split"`
	DurationDays    int                `json:"duration_days"`
	Metrics         []string           `json:"metrics"`
	SuccessCriteria map[string]float64 `json:"success_criteria"`
}

// assignRequest is the POST /api/tests/{testId}/assignments body.
type assignRequest struct {
	UserID string `json:"user_id"`
}

// recordResultRequest is the POST /api/tests/{testId}/results body.
type recordResultRequest struct {
	UserID             string             `json:"user_id"`
	Metrics            map[string]float64 `json:"metrics"`
	UserProfile        types.Document     `json:"user_profile"`
	RecommendationData types.Document     `json:"recommendation_data"`
}

// submitFeedbackRequest is the POST /api/feedback body.
type submitFeedbackRequest struct {
	UserID       string         `json:"user_id"`
	SessionID    string         `json:"session_id"`
	FeedbackType string         `json:"feedback_type"`
	Rating       int            `json:"rating"`
	Comment      string         `json:"comment"`
	Context      types.Document `json:"context"`
}

// exportRequest is the POST /api/feedback/export body.
type exportRequest struct {
	Format string `json:"format"`
}

// quizRequest is the POST /api/quiz body.
type quizRequest struct {
	UserID    string               `json:"user_id"`
	Responses []types.QuizResponse `json:"responses"`
}

// statusForError maps engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, types.ErrNotAssigned):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError translates an engine error into an HTTP error response,
// logging unexpected failures.
func (s *server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).Error("Internal error handling request")
		s.writeErrorResponse(w, status, "Internal server error")
		return
	}
	s.writeErrorResponse(w, status, err.Error())
}

// readBody reads a capped request body.
func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

// decodeJSON decodes a request body into v.
func (s *server) decodeJSON(w http.ResponseWriter, body []byte, v interface{}) bool {
	if err := json.Unmarshal(body, v); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// Experiment handlers

// handleCreateTest registers a new A/B test in draft status
func (s *server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if violations := s.validator.ValidateCreateTest(body); violations != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, strings.Join(violations, "; "))
		return
	}

	var req createTestRequest
	if !s.decodeJSON(w, body, &req) {
		return
	}
	if req.DurationDays <= 0 {
		req.DurationDays = 30
	}

	testID, err := s.framework.Create(
		req.Name, req.Description,
		req.Variants, req.TrafficSplit,
		req.DurationDays, req.Metrics, req.SuccessCriteria,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"test_id": testID,
		"status":  string(types.StatusDraft),
	})
}

// handleListTests lists all registered tests, newest first
func (s *server) handleListTests(w http.ResponseWriter, r *http.Request) {
	tests := s.framework.List()
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"tests": tests,
		"count": len(tests),
	})
}

// handleGetTest retrieves a single test
func (s *server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	testID := mux.Vars(r)["testId"]

	test, err := s.framework.Get(testID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, test)
}

// handleStartTest transitions a draft test to running
func (s *server) handleStartTest(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.framework.Start, types.StatusRunning)
}

// handleStopTest transitions a running test to completed
func (s *server) handleStopTest(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.framework.Stop, types.StatusCompleted)
}

// handlePauseTest transitions a running test to paused
func (s *server) handlePauseTest(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.framework.Pause, types.StatusPaused)
}

// handleResumeTest transitions a paused test back to running
func (s *server) handleResumeTest(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.framework.Resume, types.StatusRunning)
}

// handleTransition applies a lifecycle transition and reports the new status.
func (s *server) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	transition func(string) error,
	target types.TestStatus,
) {
	testID := mux.Vars(r)["testId"]

	if err := transition(testID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"test_id": testID,
		"status":  string(target),
	})
}

// handleAssignUser assigns a user to a variant of a running test
func (s *server) handleAssignUser(w http.ResponseWriter, r *http.Request) {
	testID := mux.Vars(r)["testId"]

	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req assignRequest
	if !s.decodeJSON(w, body, &req) {
		return
	}
	if req.UserID == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	variant, err := s.framework.Assign(req.UserID, testID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	assignmentsTotal.WithLabelValues(testID, variant).Inc()

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"test_id": testID,
		"variant": variant,
	})
}

// handleRecordResult records observed metrics for an assigned user
func (s *server) handleRecordResult(w http.ResponseWriter, r *http.Request) {
	testID := mux.Vars(r)["testId"]

	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req recordResultRequest
	if !s.decodeJSON(w, body, &req) {
		return
	}
	if req.UserID == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	result, err := s.framework.RecordResult(
		testID, req.UserID, req.Metrics, req.UserProfile, req.RecommendationData,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resultsTotal.WithLabelValues(testID).Inc()

	s.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"result_id": result.ID,
		"test_id":   testID,
		"variant":   result.Variant,
	})
}

// handleGetResults returns the aggregated per-variant metric report
func (s *server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	testID := mux.Vars(r)["testId"]

	report, err := s.framework.Results(testID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, report)
}

// handleAnalyzeTest runs winner analysis over a test's recorded results
func (s *server) handleAnalyzeTest(w http.ResponseWriter, r *http.Request) {
	testID := mux.Vars(r)["testId"]

	report, err := s.framework.Analyze(testID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, report)
}

// Feedback handlers

// handleSubmitFeedback records a new feedback entry
func (s *server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if violations := s.validator.ValidateSubmitFeedback(body); violations != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, strings.Join(violations, "; "))
		return
	}

	var req submitFeedbackRequest
	if !s.decodeJSON(w, body, &req) {
		return
	}

	feedbackID, err := s.feedback.Submit(
		req.UserID, req.SessionID, req.FeedbackType,
		req.Rating, req.Comment, req.Context,
	)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	feedbackTotal.WithLabelValues(req.FeedbackType, strconv.Itoa(req.Rating)).Inc()

	s.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"feedback_id": feedbackID,
	})
}

// handleFeedbackSummary returns aggregate feedback statistics over a window
func (s *server) handleFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	feedbackType := r.URL.Query().Get("type")

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			s.writeErrorResponse(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	summary := s.feedback.Summary(feedbackType, days)
	s.writeJSONResponse(w, http.StatusOK, summary)
}

// handleAnalyzeFeedback runs sentiment and issue analysis for a feedback type
func (s *server) handleAnalyzeFeedback(w http.ResponseWriter, r *http.Request) {
	feedbackType := mux.Vars(r)["feedbackType"]

	analysis, err := s.feedback.Analyze(feedbackType)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, analysis)
}

// handleFeedbackRoadmap builds the improvement roadmap from stored analyses
func (s *server) handleFeedbackRoadmap(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, s.feedback.Roadmap())
}

// handleExportFeedback writes all feedback to a file in the data directory
func (s *server) handleExportFeedback(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req exportRequest
	if !s.decodeJSON(w, body, &req) {
		return
	}

	path, err := s.feedback.Export(req.Format)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"path":   path,
		"format": req.Format,
	})
}

// Recommendation handlers

// handleStreamRecommendations scores academic streams for a profile
func (s *server) handleStreamRecommendations(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	recs := s.recommender.StreamRecommendations(profile)
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user_id":         profile.UserID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleCollegeRecommendations scores colleges for a profile
func (s *server) handleCollegeRecommendations(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recs := s.recommender.CollegeRecommendations(profile, limit)
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user_id":         profile.UserID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleCareerRecommendations lists career pathways for a profile's stream
func (s *server) handleCareerRecommendations(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.decodeProfile(w, r)
	if !ok {
		return
	}

	recs := s.recommender.CareerRecommendations(profile)
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user_id":         profile.UserID,
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleScoreQuiz summarizes a batch of quiz responses
func (s *server) handleScoreQuiz(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var req quizRequest
	if !s.decodeJSON(w, body, &req) {
		return
	}
	if len(req.Responses) == 0 {
		s.writeErrorResponse(w, http.StatusBadRequest, "responses must not be empty")
		return
	}

	report := s.recommender.ScoreQuiz(req.Responses)
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"report":  report,
	})
}

// decodeProfile reads and decodes a user profile request body.
func (s *server) decodeProfile(w http.ResponseWriter, r *http.Request) (types.UserProfile, bool) {
	var profile types.UserProfile

	body, err := readBody(r)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return profile, false
	}
	if !s.decodeJSON(w, body, &profile) {
		return profile, false
	}
	if profile.UserID == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return profile, false
	}
	return profile, true
}

// Health and status handlers

// handleHealth returns a basic liveness response
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// handleStatus reports engine state counts and host environment info
func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	tests, results, assignments := s.framework.Counts()
	feedbackCount, analyses := s.feedback.Counts()

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"environment":    sysinfo.Collect(),
		"collections": map[string]int{
			"tests":       tests,
			"results":     results,
			"assignments": assignments,
			"feedback":    feedbackCount,
			"analyses":    analyses,
		},
		"websocket_clients": s.hub.ClientCount(),
	})
}
