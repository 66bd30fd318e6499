package experiment

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/eduniti/guidance/engine/types"
)

// RecordResult appends a metric observation for a user. The user must already
// hold an assignment for the test; the result is tagged with that variant.
// Unknown metric keys are stored but never aggregated.
func (f *Framework) RecordResult(
	testID, userID string,
	metrics map[string]float64,
	userProfile, recommendationData types.Document,
) (*types.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tests[testID]; !ok {
		return nil, fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}

	variant, ok := f.assignments[assignmentKey(userID, testID)]
	if !ok {
		return nil, fmt.Errorf("%w: user %s has no assignment in test %s", types.ErrNotAssigned, userID, testID)
	}

	result := &types.TestResult{
		ID:                 uuid.New().String(),
		TestID:             testID,
		UserID:             userID,
		Variant:            variant,
		Timestamp:          time.Now(),
		Metrics:            metrics,
		UserProfile:        userProfile,
		RecommendationData: recommendationData,
	}

	f.results = append(f.results, result)
	if err := f.saveResults(); err != nil {
		f.results = f.results[:len(f.results)-1]
		return nil, err
	}

	if f.archive != nil {
		if err := f.archive.InsertResult(result); err != nil {
			f.log.WithError(err).Warn("Failed to archive result")
		}
	}

	f.publish(EventResultRecorded, result)
	return result, nil
}

// Results aggregates all recorded results for a test by variant. Every
// declared variant appears in the report, zero-result variants with an empty
// metrics map. A result missing a declared metric contributes 0 for it.
func (f *Framework) Results(testID string) (*types.TestReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return nil, fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}

	report := &types.TestReport{
		TestID:   testID,
		Status:   test.Status,
		Variants: make(map[string]types.VariantReport, len(test.Variants)),
	}

	byVariant := make(map[string][]*types.TestResult)
	for _, r := range f.results {
		if r.TestID == testID {
			byVariant[r.Variant] = append(byVariant[r.Variant], r)
			report.TotalUsers++
		}
	}

	if report.TotalUsers == 0 {
		for _, name := range test.VariantNames() {
			report.Variants[name] = types.VariantReport{Metrics: map[string]types.MetricSummary{}}
		}
		return report, nil
	}

	for _, name := range test.VariantNames() {
		variantResults := byVariant[name]
		vr := types.VariantReport{
			UserCount: len(variantResults),
			Metrics:   make(map[string]types.MetricSummary),
		}
		if len(variantResults) > 0 {
			for _, metric := range test.Metrics {
				values := make([]float64, 0, len(variantResults))
				for _, r := range variantResults {
					values = append(values, r.Metrics[metric])
				}
				vr.Metrics[metric] = summarize(values)
			}
		}
		report.Variants[name] = vr
	}

	report.SuccessCriteria = test.SuccessCriteria
	return report, nil
}

// summarize computes summary statistics over a non-empty value slice.
// Std is the population standard deviation.
func summarize(values []float64) types.MetricSummary {
	s := types.MetricSummary{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(values))

	var sqDiff float64
	for _, v := range values {
		d := v - s.Mean
		sqDiff += d * d
	}
	s.Std = math.Sqrt(sqDiff / float64(len(values)))

	return s
}
