package experiment

import (
	"fmt"

	"github.com/eduniti/guidance/engine/types"
)

// defaultPrimaryMetric is used when a test declares no metrics.
const defaultPrimaryMetric = "click_through_rate"

// Analyze aggregates a test's results and determines a winning variant by its
// primary metric (the first declared metric). The confidence figure is a
// monotonically increasing sample-size heuristic capped at 0.95; it is not a
// statistical significance test.
func (f *Framework) Analyze(testID string) (*types.AnalysisReport, error) {
	report, err := f.Results(testID)
	if err != nil {
		return nil, err
	}
	test, err := f.Get(testID)
	if err != nil {
		return nil, err
	}

	if report.TotalUsers == 0 {
		return &types.AnalysisReport{
			TestID:   testID,
			Status:   types.AnalysisInsufficientData,
			Analysis: "No data available for analysis",
		}, nil
	}

	variantsWithData := 0
	for _, vr := range report.Variants {
		if vr.UserCount > 0 {
			variantsWithData++
		}
	}
	if variantsWithData < 2 {
		return &types.AnalysisReport{
			TestID:   testID,
			Status:   types.AnalysisInsufficientVariants,
			Analysis: "Need at least 2 variants for comparison",
		}, nil
	}

	primaryMetric := defaultPrimaryMetric
	if len(test.Metrics) > 0 {
		primaryMetric = test.Metrics[0]
	}

	// Score each variant by its primary metric mean, walking declared order
	// so ties resolve deterministically to the earlier variant.
	scores := make(map[string]float64, len(report.Variants))
	var winner string
	var winnerScore float64
	for i, name := range test.VariantNames() {
		var score float64
		if vr, ok := report.Variants[name]; ok {
			if summary, ok := vr.Metrics[primaryMetric]; ok {
				score = summary.Mean
			}
		}
		scores[name] = score
		if i == 0 || score > winnerScore {
			winner = name
			winnerScore = score
		}
	}

	confidence := 0.5 + float64(report.TotalUsers)/1000*0.45
	if confidence > 0.95 {
		confidence = 0.95
	}

	meetsCriteria := winnerScore >= test.SuccessCriteria[primaryMetric]

	analysis := &types.AnalysisReport{
		TestID:        testID,
		Confidence:    confidence,
		VariantScores: scores,
	}
	if meetsCriteria {
		analysis.Status = types.AnalysisCompleted
		analysis.Winner = winner
		analysis.Analysis = fmt.Sprintf("Winner: %s with %s: %.4f", winner, primaryMetric, winnerScore)
	} else {
		analysis.Status = types.AnalysisInconclusive
		analysis.Analysis = fmt.Sprintf("No variant met success criteria. Best: %s with %s: %.4f",
			winner, primaryMetric, winnerScore)
	}

	f.log.WithFields(map[string]interface{}{
		"test_id":    testID,
		"status":     analysis.Status,
		"winner":     analysis.Winner,
		"confidence": confidence,
	}).Info("Analyzed A/B test")

	f.mu.Lock()
	f.publish(EventAnalysisComplete, analysis)
	f.mu.Unlock()

	return analysis, nil
}
