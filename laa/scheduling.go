package laa

import (
	"fmt"
	"sort"
)

// Scheduling assigns jobs to identical machines to keep the makespan low.
//
// Jobs are visited in ascending order of predicted length (stable, ties by
// original index) and each goes to the machine with the lowest accumulated
// true load (ties by lowest machine index). Loads accumulate true lengths, so
// prediction error only changes the visiting order.
type Scheduling struct {
	numMachines int
}

// NewScheduling creates a scheduling engine.
// Returns ErrInvalidConfiguration if numMachines <= 0.
func NewScheduling(numMachines int) (*Scheduling, error) {
	if numMachines <= 0 {
		return nil, fmt.Errorf("num_machines must be positive, got %d: %w", numMachines, ErrInvalidConfiguration)
	}
	return &Scheduling{numMachines: numMachines}, nil
}

// NumMachines returns the configured machine count.
func (s *Scheduling) NumMachines() int {
	return s.numMachines
}

// Decide returns, for each job i, the machine index in [0, NumMachines) it
// is assigned to. Returns ErrLengthMismatch if the inputs differ in length.
func (s *Scheduling) Decide(jobLengths, predictions []int) ([]int, error) {
	if len(jobLengths) != len(predictions) {
		return nil, fmt.Errorf("%d job lengths but %d predictions: %w",
			len(jobLengths), len(predictions), ErrLengthMismatch)
	}

	order := make([]int, len(jobLengths))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return predictions[order[a]] < predictions[order[b]]
	})

	assignments := make([]int, len(jobLengths))
	loads := make([]int, s.numMachines)
	for _, job := range order {
		m := leastLoaded(loads)
		assignments[job] = m
		loads[m] += jobLengths[job]
	}
	return assignments, nil
}

// Loads returns the per-machine sum of true job lengths under assignment.
// Returns ErrLengthMismatch if the inputs differ in length and
// ErrInvalidConfiguration if an assignment is out of range.
func (s *Scheduling) Loads(jobLengths, assignment []int) ([]int, error) {
	if len(jobLengths) != len(assignment) {
		return nil, fmt.Errorf("%d job lengths but %d assignments: %w",
			len(jobLengths), len(assignment), ErrLengthMismatch)
	}
	loads := make([]int, s.numMachines)
	for job, m := range assignment {
		if m < 0 || m >= s.numMachines {
			return nil, fmt.Errorf("job %d assigned to machine %d of %d: %w",
				job, m, s.numMachines, ErrInvalidConfiguration)
		}
		loads[m] += jobLengths[job]
	}
	return loads, nil
}

// Makespan schedules the jobs and returns the maximum machine load.
func (s *Scheduling) Makespan(jobLengths, predictions []int) (int, error) {
	assignment, err := s.Decide(jobLengths, predictions)
	if err != nil {
		return 0, err
	}
	loads, err := s.Loads(jobLengths, assignment)
	if err != nil {
		return 0, err
	}
	makespan := loads[0]
	for _, l := range loads[1:] {
		makespan = max(makespan, l)
	}
	return makespan, nil
}

// leastLoaded returns the index of the smallest load, lowest index on ties.
func leastLoaded(loads []int) int {
	best := 0
	for i := 1; i < len(loads); i++ {
		if loads[i] < loads[best] {
			best = i
		}
	}
	return best
}
