package experiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduniti/guidance/engine/types"
)

// createOneSidedTest routes all traffic to the first variant so recorded
// results land deterministically.
func createOneSidedTest(t *testing.T, f *Framework, metrics []string) string {
	t.Helper()
	return createRunningTest(t, f, []float64{1.0, 0.0}, metrics, nil)
}

func TestRecordResult_RequiresAssignment(t *testing.T) {
	f := newTestFramework(t)
	testID := createOneSidedTest(t, f, []string{"ctr"})

	_, err := f.RecordResult(testID, "stranger", map[string]float64{"ctr": 0.2}, nil, nil)
	assert.ErrorIs(t, err, types.ErrNotAssigned)

	_, err = f.RecordResult("missing", "stranger", nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRecordResult_TagsStoredVariant(t *testing.T) {
	f := newTestFramework(t)
	testID := createOneSidedTest(t, f, []string{"ctr"})

	variant, err := f.Assign("user-1", testID)
	require.NoError(t, err)
	require.Equal(t, "control", variant)

	result, err := f.RecordResult(testID, "user-1", map[string]float64{"ctr": 0.25},
		types.Document{"age": 18}, types.Document{"items": []string{"x"}})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "control", result.Variant)
	assert.Equal(t, 0.25, result.Metrics["ctr"])
	assert.False(t, result.Timestamp.IsZero())
}

func TestResults_EmptyTest(t *testing.T) {
	f := newTestFramework(t)
	testID := createOneSidedTest(t, f, []string{"ctr"})

	report, err := f.Results(testID)
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalUsers)
	require.Len(t, report.Variants, 2, "all declared variants must appear")
	for name, vr := range report.Variants {
		assert.Zero(t, vr.UserCount)
		assert.Empty(t, vr.Metrics, "variant %s should have an empty metrics map", name)
		assert.NotNil(t, vr.Metrics)
	}

	_, err = f.Results("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResults_Aggregation(t *testing.T) {
	f := newTestFramework(t)
	testID := createOneSidedTest(t, f, []string{"ctr", "time_spent"})

	values := []float64{1, 2, 3}
	for i, v := range values {
		userID := string(rune('a' + i))
		_, err := f.Assign(userID, testID)
		require.NoError(t, err)
		_, err = f.RecordResult(testID, userID, map[string]float64{"ctr": v, "time_spent": v * 10}, nil, nil)
		require.NoError(t, err)
	}

	report, err := f.Results(testID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalUsers)

	control := report.Variants["control"]
	require.Equal(t, 3, control.UserCount)

	ctr := control.Metrics["ctr"]
	assert.Equal(t, 3, ctr.Count)
	assert.InDelta(t, 2.0, ctr.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(2.0/3.0), ctr.Std, 1e-9, "std must be the population deviation")
	assert.Equal(t, 1.0, ctr.Min)
	assert.Equal(t, 3.0, ctr.Max)

	// The unassigned variant still appears, with no metrics.
	treatment := report.Variants["treatment"]
	assert.Zero(t, treatment.UserCount)
	assert.Empty(t, treatment.Metrics)
}

func TestResults_ZeroFillsMissingMetrics(t *testing.T) {
	f := newTestFramework(t)
	testID := createOneSidedTest(t, f, []string{"ctr", "conversion_rate"})

	_, err := f.Assign("user-1", testID)
	require.NoError(t, err)
	_, err = f.RecordResult(testID, "user-1", map[string]float64{"ctr": 0.4}, nil, nil)
	require.NoError(t, err)

	report, err := f.Results(testID)
	require.NoError(t, err)

	conversion := report.Variants["control"].Metrics["conversion_rate"]
	assert.Equal(t, 1, conversion.Count, "missing metric still contributes a zero sample")
	assert.Zero(t, conversion.Mean)
}

func TestResults_IgnoresUndeclaredMetrics(t *testing.T) {
	f := newTestFramework(t)
	testID := createOneSidedTest(t, f, []string{"ctr"})

	_, err := f.Assign("user-1", testID)
	require.NoError(t, err)
	_, err = f.RecordResult(testID, "user-1",
		map[string]float64{"ctr": 0.4, "surprise_metric": 99}, nil, nil)
	require.NoError(t, err)

	report, err := f.Results(testID)
	require.NoError(t, err)

	_, ok := report.Variants["control"].Metrics["surprise_metric"]
	assert.False(t, ok, "undeclared metrics are stored but never aggregated")
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{4, 4, 4})
	assert.Equal(t, 4.0, s.Mean)
	assert.Zero(t, s.Std)
	assert.Equal(t, 4.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 3, s.Count)

	single := summarize([]float64{7})
	assert.Equal(t, 7.0, single.Mean)
	assert.Zero(t, single.Std)
}
