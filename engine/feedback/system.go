// Package feedback implements the user feedback loop: submission, rolling
// summaries, sentiment and issue analysis, and improvement roadmap synthesis.
package feedback

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/config"
	"github.com/eduniti/guidance/engine/store"
	"github.com/eduniti/guidance/engine/types"
)

// Collection names in the backing store.
const (
	feedbackCollection = "feedback"
	analysesCollection = "feedback_analyses"
)

// Event names published to the notifier.
const (
	EventFeedbackReceived = "feedback_received"
	EventAnalysisComplete = "feedback_analysis_complete"
)

// Notifier receives feedback events for real-time consumers. Implementations
// must not block.
type Notifier func(event string, payload interface{})

// System owns all feedback state. A single mutex serializes every public
// operation; collections are rewritten wholesale on save.
type System struct {
	mu        sync.Mutex
	store     *store.Store
	archive   *store.Archive
	sentiment config.SentimentConfig
	advice    config.SuggestionsConfig
	notify    Notifier
	log       logrus.FieldLogger

	feedback []*types.Feedback
	analyses []*types.FeedbackAnalysis
}

// New creates a feedback system backed by the given store, loading any
// existing collections from disk.
func New(st *store.Store, cfg *config.Config) (*System, error) {
	s := &System{
		store:     st,
		sentiment: cfg.Sentiment,
		advice:    cfg.Suggestions,
		log:       logrus.WithField("component", "feedback"),
	}

	if err := st.Load(feedbackCollection, &s.feedback); err != nil {
		return nil, err
	}
	if err := st.Load(analysesCollection, &s.analyses); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"feedback": len(s.feedback),
		"analyses": len(s.analyses),
	}).Info("Loaded feedback state")

	return s, nil
}

// SetArchive attaches an optional PostgreSQL archive sink for submitted feedback.
func (s *System) SetArchive(a *store.Archive) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = a
}

// SetNotifier attaches an event notifier for real-time consumers.
func (s *System) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = n
}

// Counts returns the number of feedback records and stored analyses.
func (s *System) Counts() (feedback, analyses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.feedback), len(s.analyses)
}

// Submit appends a new feedback record. Rating must be in [1,5].
func (s *System) Submit(
	userID, sessionID, feedbackType string,
	rating int,
	comment string,
	context types.Document,
) (string, error) {
	if rating < 1 || rating > 5 {
		return "", fmt.Errorf("%w: rating must be between 1 and 5", types.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if context == nil {
		context = types.Document{}
	}

	fb := &types.Feedback{
		ID:        uuid.New().String(),
		UserID:    userID,
		SessionID: sessionID,
		Type:      feedbackType,
		Rating:    rating,
		Comment:   comment,
		Context:   context,
		Timestamp: time.Now(),
	}

	s.feedback = append(s.feedback, fb)
	if err := s.saveFeedback(); err != nil {
		s.feedback = s.feedback[:len(s.feedback)-1]
		return "", err
	}

	if s.archive != nil {
		if err := s.archive.InsertFeedback(fb); err != nil {
			s.log.WithError(err).Warn("Failed to archive feedback")
		}
	}

	s.log.WithFields(logrus.Fields{
		"feedback_id": fb.ID,
		"type":        feedbackType,
		"rating":      rating,
	}).Debug("Feedback submitted")
	s.publish(EventFeedbackReceived, fb)

	return fb.ID, nil
}

// publish emits an event if a notifier is attached. Callers hold s.mu.
func (s *System) publish(event string, payload interface{}) {
	if s.notify != nil {
		s.notify(event, payload)
	}
}

// saveFeedback persists the feedback collection. Callers hold s.mu.
func (s *System) saveFeedback() error {
	return s.store.Save(feedbackCollection, s.feedback)
}

// saveAnalyses persists the analyses collection. Callers hold s.mu.
func (s *System) saveAnalyses() error {
	return s.store.Save(analysesCollection, s.analyses)
}
