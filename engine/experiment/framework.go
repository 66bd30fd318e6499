// Package experiment implements the A/B testing framework: test lifecycle,
// deterministic variant assignment, result aggregation and winner analysis.
package experiment

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eduniti/guidance/engine/store"
	"github.com/eduniti/guidance/engine/types"
)

// Collection names in the backing store.
const (
	testsCollection       = "ab_tests"
	resultsCollection     = "ab_results"
	assignmentsCollection = "user_assignments"
)

// Event names published to the notifier.
const (
	EventTestCreated      = "test_created"
	EventTestStarted      = "test_started"
	EventTestStopped      = "test_stopped"
	EventAssignmentMade   = "assignment_created"
	EventResultRecorded   = "result_recorded"
	EventAnalysisComplete = "analysis_complete"
)

// Notifier receives framework events for real-time consumers. Implementations
// must not block.
type Notifier func(event string, payload interface{})

// Framework owns all experiment state. A single mutex serializes every public
// operation: collections are rewritten wholesale on save, so concurrent
// unsynchronized writers would lose updates.
type Framework struct {
	mu      sync.Mutex
	store   *store.Store
	archive *store.Archive
	rng     *rand.Rand
	notify  Notifier
	log     logrus.FieldLogger

	tests       map[string]*types.ABTest
	results     []*types.TestResult
	assignments map[string]string // "{userID}_{testID}" -> variant name
}

// New creates a framework backed by the given store, loading any existing
// collections from disk.
func New(st *store.Store) (*Framework, error) {
	f := &Framework{
		store:       st,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		log:         logrus.WithField("component", "ab-framework"),
		tests:       make(map[string]*types.ABTest),
		assignments: make(map[string]string),
	}

	var tests []*types.ABTest
	if err := st.Load(testsCollection, &tests); err != nil {
		return nil, err
	}
	for _, t := range tests {
		f.tests[t.ID] = t
	}

	if err := st.Load(resultsCollection, &f.results); err != nil {
		return nil, err
	}
	if err := st.Load(assignmentsCollection, &f.assignments); err != nil {
		return nil, err
	}

	f.log.WithFields(logrus.Fields{
		"tests":       len(f.tests),
		"results":     len(f.results),
		"assignments": len(f.assignments),
	}).Info("Loaded experiment state")

	return f, nil
}

// SetArchive attaches an optional PostgreSQL archive sink for recorded results.
func (f *Framework) SetArchive(a *store.Archive) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archive = a
}

// SetNotifier attaches an event notifier for real-time consumers.
func (f *Framework) SetNotifier(n Notifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notify = n
}

// Counts returns the number of tests, results and assignments held.
func (f *Framework) Counts() (tests, results, assignments int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tests), len(f.results), len(f.assignments)
}

// publish emits an event if a notifier is attached. Callers hold f.mu.
func (f *Framework) publish(event string, payload interface{}) {
	if f.notify != nil {
		f.notify(event, payload)
	}
}

// saveTests persists the tests collection. Callers hold f.mu.
func (f *Framework) saveTests() error {
	tests := make([]*types.ABTest, 0, len(f.tests))
	for _, t := range f.tests {
		tests = append(tests, t)
	}
	return f.store.Save(testsCollection, tests)
}

// saveResults persists the results collection. Callers hold f.mu.
func (f *Framework) saveResults() error {
	return f.store.Save(resultsCollection, f.results)
}

// saveAssignments persists the assignments collection. Callers hold f.mu.
func (f *Framework) saveAssignments() error {
	return f.store.Save(assignmentsCollection, f.assignments)
}

// assignmentKey builds the durable key for a (user, test) pair.
func assignmentKey(userID, testID string) string {
	return userID + "_" + testID
}

// cloneTest returns a snapshot safe to hand to callers.
func cloneTest(t *types.ABTest) *types.ABTest {
	c := *t
	c.Variants = append([]types.Document(nil), t.Variants...)
	c.TrafficSplit = append([]float64(nil), t.TrafficSplit...)
	c.Metrics = append([]string(nil), t.Metrics...)
	c.SuccessCriteria = make(map[string]float64, len(t.SuccessCriteria))
	for k, v := range t.SuccessCriteria {
		c.SuccessCriteria[k] = v
	}
	return &c
}
