package feedback

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eduniti/guidance/engine/types"
)

// Export writes all feedback records to a timestamped file in the data
// directory for external analysis. Supported formats are "json" and "csv";
// anything else fails with a validation error.
func (s *System) Export(format string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := time.Now().Format("20060102_150405")

	switch format {
	case "json":
		path := filepath.Join(s.store.Dir(), fmt.Sprintf("feedback_export_%s.json", stamp))
		data, err := json.MarshalIndent(s.feedback, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal feedback export: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write feedback export: %w", err)
		}
		s.log.WithField("path", path).Info("Exported feedback data")
		return path, nil

	case "csv":
		path := filepath.Join(s.store.Dir(), fmt.Sprintf("feedback_export_%s.csv", stamp))
		file, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("failed to create feedback export: %w", err)
		}
		defer file.Close()

		w := csv.NewWriter(file)
		header := []string{
			"feedback_id", "user_id", "session_id", "feedback_type",
			"rating", "comment", "timestamp", "processed",
		}
		if err := w.Write(header); err != nil {
			return "", fmt.Errorf("failed to write export header: %w", err)
		}
		for _, fb := range s.feedback {
			row := []string{
				fb.ID, fb.UserID, fb.SessionID, fb.Type,
				strconv.Itoa(fb.Rating), fb.Comment,
				fb.Timestamp.Format(time.RFC3339Nano),
				strconv.FormatBool(fb.Processed),
			}
			if err := w.Write(row); err != nil {
				return "", fmt.Errorf("failed to write export row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return "", fmt.Errorf("failed to flush feedback export: %w", err)
		}
		s.log.WithField("path", path).Info("Exported feedback data")
		return path, nil

	default:
		return "", fmt.Errorf("%w: format must be 'json' or 'csv'", types.ErrValidation)
	}
}
