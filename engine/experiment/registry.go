package experiment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eduniti/guidance/engine/types"
)

// trafficSplitTolerance is how far the split weights may deviate from
// summing to exactly 1.0.
const trafficSplitTolerance = 0.01

// Create registers a new test in draft status and persists it.
func (f *Framework) Create(
	name, description string,
	variants []types.Document,
	trafficSplit []float64,
	durationDays int,
	metrics []string,
	successCriteria map[string]float64,
) (string, error) {
	var sum float64
	for _, split := range trafficSplit {
		sum += split
	}
	if math.Abs(sum-1.0) > trafficSplitTolerance {
		return "", fmt.Errorf("%w: traffic split must sum to 1.0", types.ErrValidation)
	}
	if len(variants) != len(trafficSplit) {
		return "", fmt.Errorf("%w: number of variants must match traffic split length", types.ErrValidation)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	test := &types.ABTest{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     description,
		Variants:        variants,
		TrafficSplit:    trafficSplit,
		StartDate:       now,
		EndDate:         now.AddDate(0, 0, durationDays),
		Status:          types.StatusDraft,
		Metrics:         metrics,
		SuccessCriteria: successCriteria,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	f.tests[test.ID] = test
	if err := f.saveTests(); err != nil {
		delete(f.tests, test.ID)
		return "", err
	}

	f.log.WithFields(map[string]interface{}{
		"test_id":  test.ID,
		"name":     name,
		"variants": len(variants),
	}).Info("Created A/B test")
	f.publish(EventTestCreated, cloneTest(test))

	return test.ID, nil
}

// Start transitions a draft test to running and resets its start date.
func (f *Framework) Start(testID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}
	if test.Status != types.StatusDraft {
		return fmt.Errorf("%w: test %s is not in draft status", types.ErrInvalidState, testID)
	}

	now := time.Now()
	test.Status = types.StatusRunning
	test.StartDate = now
	test.UpdatedAt = now

	if err := f.saveTests(); err != nil {
		return err
	}

	f.log.WithField("test_id", testID).Info("Started A/B test")
	f.publish(EventTestStarted, cloneTest(test))
	return nil
}

// Stop transitions a running test to completed and closes its end date.
func (f *Framework) Stop(testID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}
	if test.Status != types.StatusRunning {
		return fmt.Errorf("%w: test %s is not running", types.ErrInvalidState, testID)
	}

	now := time.Now()
	test.Status = types.StatusCompleted
	test.EndDate = now
	test.UpdatedAt = now

	if err := f.saveTests(); err != nil {
		return err
	}

	f.log.WithField("test_id", testID).Info("Stopped A/B test")
	f.publish(EventTestStopped, cloneTest(test))
	return nil
}

// Pause suspends a running test. Paused tests reject new assignments until
// resumed.
func (f *Framework) Pause(testID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}
	if test.Status != types.StatusRunning {
		return fmt.Errorf("%w: test %s is not running", types.ErrInvalidState, testID)
	}

	test.Status = types.StatusPaused
	test.UpdatedAt = time.Now()

	if err := f.saveTests(); err != nil {
		return err
	}

	f.log.WithField("test_id", testID).Info("Paused A/B test")
	return nil
}

// Resume returns a paused test to running.
func (f *Framework) Resume(testID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}
	if test.Status != types.StatusPaused {
		return fmt.Errorf("%w: test %s is not paused", types.ErrInvalidState, testID)
	}

	test.Status = types.StatusRunning
	test.UpdatedAt = time.Now()

	if err := f.saveTests(); err != nil {
		return err
	}

	f.log.WithField("test_id", testID).Info("Resumed A/B test")
	return nil
}

// Get returns a snapshot of one test.
func (f *Framework) Get(testID string) (*types.ABTest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	test, ok := f.tests[testID]
	if !ok {
		return nil, fmt.Errorf("%w: test %s", types.ErrNotFound, testID)
	}
	return cloneTest(test), nil
}

// List returns snapshots of all tests, newest first.
func (f *Framework) List() []*types.ABTest {
	f.mu.Lock()
	defer f.mu.Unlock()

	tests := make([]*types.ABTest, 0, len(f.tests))
	for _, t := range f.tests {
		tests = append(tests, cloneTest(t))
	}
	sort.Slice(tests, func(i, j int) bool {
		return tests[i].CreatedAt.After(tests[j].CreatedAt)
	})
	return tests
}
