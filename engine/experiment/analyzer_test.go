package experiment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduniti/guidance/engine/types"
)

// populateBothVariants assigns users until each variant has at least minPer
// results, recording the given per-variant metric value for each user.
func populateBothVariants(
	t *testing.T,
	f *Framework,
	testID string,
	metric string,
	valueByVariant map[string]float64,
	minPer int,
) int {
	t.Helper()

	counts := make(map[string]int)
	total := 0
	for i := 0; total < 500; i++ {
		userID := fmt.Sprintf("user-%d", i)
		variant, err := f.Assign(userID, testID)
		require.NoError(t, err)

		_, err = f.RecordResult(testID, userID,
			map[string]float64{metric: valueByVariant[variant]}, nil, nil)
		require.NoError(t, err)

		counts[variant]++
		total++

		if len(counts) == 2 && counts["control"] >= minPer && counts["treatment"] >= minPer {
			break
		}
	}

	require.GreaterOrEqual(t, counts["control"], minPer, "control needs data")
	require.GreaterOrEqual(t, counts["treatment"], minPer, "treatment needs data")
	return total
}

func TestAnalyze_InsufficientData(t *testing.T) {
	f := newTestFramework(t)
	testID := createRunningTest(t, f, []float64{0.5, 0.5}, []string{"ctr"}, nil)

	report, err := f.Analyze(testID)
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisInsufficientData, report.Status)
	assert.Empty(t, report.Winner)
	assert.Equal(t, "No data available for analysis", report.Analysis)
}

func TestAnalyze_InsufficientVariants(t *testing.T) {
	f := newTestFramework(t)
	// All traffic lands on the first variant, so only one variant has data.
	testID := createRunningTest(t, f, []float64{1.0, 0.0}, []string{"ctr"}, nil)

	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("user-%d", i)
		_, err := f.Assign(userID, testID)
		require.NoError(t, err)
		_, err = f.RecordResult(testID, userID, map[string]float64{"ctr": 0.5}, nil, nil)
		require.NoError(t, err)
	}

	report, err := f.Analyze(testID)
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisInsufficientVariants, report.Status)
	assert.Equal(t, "Need at least 2 variants for comparison", report.Analysis)
}

func TestAnalyze_WinnerMeetsCriteria(t *testing.T) {
	f := newTestFramework(t)
	testID := createRunningTest(t, f, []float64{0.5, 0.5}, []string{"score"},
		map[string]float64{"score": 0.8})

	total := populateBothVariants(t, f, testID, "score",
		map[string]float64{"control": 0.9, "treatment": 0.5}, 1)

	report, err := f.Analyze(testID)
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisCompleted, report.Status)
	assert.Equal(t, "control", report.Winner)
	assert.InDelta(t, 0.9, report.VariantScores["control"], 1e-9)
	assert.InDelta(t, 0.5, report.VariantScores["treatment"], 1e-9)
	assert.Contains(t, report.Analysis, "Winner: control with score: 0.9000")

	expectedConfidence := 0.5 + float64(total)/1000*0.45
	assert.InDelta(t, expectedConfidence, report.Confidence, 1e-9)
	assert.LessOrEqual(t, report.Confidence, 0.95)
}

func TestAnalyze_NoWinnerWhenCriteriaUnmet(t *testing.T) {
	f := newTestFramework(t)
	testID := createRunningTest(t, f, []float64{0.5, 0.5}, []string{"score"},
		map[string]float64{"score": 0.95})

	populateBothVariants(t, f, testID, "score",
		map[string]float64{"control": 0.9, "treatment": 0.5}, 1)

	report, err := f.Analyze(testID)
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisInconclusive, report.Status)
	assert.Empty(t, report.Winner, "no winner may be declared when criteria are unmet")
	assert.Contains(t, report.Analysis, "No variant met success criteria. Best: control with score: 0.9000")
}

func TestAnalyze_MissingCriterionDefaultsToZero(t *testing.T) {
	f := newTestFramework(t)
	// No success criteria at all: any positive score wins.
	testID := createRunningTest(t, f, []float64{0.5, 0.5}, []string{"score"}, nil)

	populateBothVariants(t, f, testID, "score",
		map[string]float64{"control": 0.1, "treatment": 0.2}, 1)

	report, err := f.Analyze(testID)
	require.NoError(t, err)

	assert.Equal(t, types.AnalysisCompleted, report.Status)
	assert.Equal(t, "treatment", report.Winner)
}

func TestAnalyze_UnknownTest(t *testing.T) {
	f := newTestFramework(t)
	_, err := f.Analyze("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
