package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/config"
	"github.com/eduniti/guidance/engine/types"
)

// Archive mirrors recorded results and feedback into PostgreSQL for
// dashboarding. The JSON file store remains the source of truth; archive
// failures are logged by callers and never fail the originating operation.
type Archive struct {
	db  *sql.DB
	cfg *config.PostgreSQLConfig
	log logrus.FieldLogger
}

// NewArchive creates an archive for the given database configuration.
func NewArchive(cfg *config.PostgreSQLConfig) *Archive {
	return &Archive{
		cfg: cfg,
		log: logrus.WithField("component", "archive"),
	}
}

// Connect establishes the database connection and ensures the schema exists.
func (a *Archive) Connect() error {
	db, err := sql.Open("postgres", a.cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(a.cfg.MaxOpenConns)
	db.SetMaxIdleConns(a.cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	if err := a.migrate(); err != nil {
		return err
	}

	a.log.Info("Connected to PostgreSQL archive")
	return nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// migrate creates the archive tables if they do not exist.
func (a *Archive) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ab_results (
			result_id TEXT PRIMARY KEY,
			test_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			variant TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			metrics JSONB,
			user_profile JSONB,
			recommendation_data JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ab_results_test_id ON ab_results(test_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ab_results_variant ON ab_results(test_id, variant)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			feedback_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			feedback_type TEXT NOT NULL,
			rating INT NOT NULL,
			comment TEXT,
			context JSONB,
			submitted_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_type ON feedback(feedback_type)`,
	}

	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run archive migration: %w", err)
		}
	}
	return nil
}

// InsertResult archives a recorded test result.
func (a *Archive) InsertResult(r *types.TestResult) error {
	query := `
		INSERT INTO ab_results (
			result_id, test_id, user_id, variant, recorded_at,
			metrics, user_profile, recommendation_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (result_id) DO NOTHING`

	metricsJSON, _ := json.Marshal(r.Metrics)
	profileJSON, _ := json.Marshal(r.UserProfile)
	recJSON, _ := json.Marshal(r.RecommendationData)

	_, err := a.db.Exec(query,
		r.ID, r.TestID, r.UserID, r.Variant, r.Timestamp,
		metricsJSON, profileJSON, recJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to archive result: %w", err)
	}

	a.log.WithField("result_id", r.ID).Debug("Archived test result")
	return nil
}

// InsertFeedback archives a submitted feedback record.
func (a *Archive) InsertFeedback(f *types.Feedback) error {
	query := `
		INSERT INTO feedback (
			feedback_id, user_id, session_id, feedback_type,
			rating, comment, context, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (feedback_id) DO NOTHING`

	contextJSON, _ := json.Marshal(f.Context)

	_, err := a.db.Exec(query,
		f.ID, f.UserID, f.SessionID, f.Type,
		f.Rating, f.Comment, contextJSON, f.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to archive feedback: %w", err)
	}

	a.log.WithField("feedback_id", f.ID).Debug("Archived feedback")
	return nil
}
