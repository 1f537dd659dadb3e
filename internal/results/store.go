package results

import "fmt"

// Store accumulates the results of one run, append-only. The verification
// status is the only field that may change after a result is appended.
//
// A Store is not safe for concurrent use; the engine runs sequentially.
type Store struct {
	results []BenchmarkResult
}

func NewStore() *Store {
	return &Store{}
}

// Append adds r and returns its position.
func (s *Store) Append(r BenchmarkResult) int {
	s.results = append(s.results, r)
	return len(s.results) - 1
}

// SetVerification back-patches the verification status of result i.
func (s *Store) SetVerification(i int, st Status) error {
	if i < 0 || i >= len(s.results) {
		return fmt.Errorf("result %d out of range (have %d)", i, len(s.results))
	}
	if !s.results[i].OK() {
		return fmt.Errorf("result %d is an error placeholder", i)
	}
	s.results[i].Verification = st
	return nil
}

func (s *Store) Len() int {
	return len(s.results)
}

// Results returns a copy of the stored results in append order.
func (s *Store) Results() []BenchmarkResult {
	return append([]BenchmarkResult(nil), s.results...)
}

// Since returns a copy of the results appended at or after position from.
func (s *Store) Since(from int) []BenchmarkResult {
	if from < 0 {
		from = 0
	}
	if from >= len(s.results) {
		return nil
	}
	return append([]BenchmarkResult(nil), s.results[from:]...)
}
