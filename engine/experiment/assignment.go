package experiment

import (
	"fmt"

	"github.com/eduniti/guidance/engine/types"
)

// Assign buckets a user into a variant of a running test. Assignments are
// idempotent: once a user is bucketed the stored variant is returned for the
// lifetime of the test, regardless of later traffic split changes.
func (f *Framework) Assign(userID, testID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return "", fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}
	if test.Status != types.StatusRunning {
		return "", fmt.Errorf("%w: test %s is not running", types.ErrInvalidState, testID)
	}

	key := assignmentKey(userID, testID)
	if variant, ok := f.assignments[key]; ok {
		return variant, nil
	}

	variant := pickVariant(test, f.rng.Float64())
	f.assignments[key] = variant

	if err := f.saveAssignments(); err != nil {
		delete(f.assignments, key)
		return "", err
	}

	f.log.WithFields(map[string]interface{}{
		"test_id": testID,
		"user_id": userID,
		"variant": variant,
	}).Debug("Assigned user to variant")
	f.publish(EventAssignmentMade, map[string]string{
		"test_id": testID,
		"user_id": userID,
		"variant": variant,
	})

	return variant, nil
}

// Assignment returns the stored variant for a (user, test) pair, if any.
func (f *Framework) Assignment(userID, testID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	variant, ok := f.assignments[assignmentKey(userID, testID)]
	return variant, ok
}

// pickVariant partitions [0,1) into contiguous intervals sized by the split
// weights, in declared variant order, and selects the interval containing r.
// When rounding leaves r above the final cumulative sum the last variant is
// selected, so slightly-under-1.0 splits never skew toward the first variant.
func pickVariant(test *types.ABTest, r float64) string {
	cumulative := 0.0
	index := len(test.TrafficSplit) - 1
	for i, split := range test.TrafficSplit {
		cumulative += split
		if r <= cumulative {
			index = i
			break
		}
	}
	return types.VariantName(test.Variants[index])
}
