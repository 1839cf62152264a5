package engine

import (
	"time"
)

// TimeManager tracks the time and node budgets of one search.
type TimeManager struct {
	optimumTime time.Duration // no new iteration starts past this point
	maximumTime time.Duration // hard limit, checked during the search
	maxNodes    uint64
	startTime   time.Time
}

// Init initializes the time manager for a new search. A zero moveTime or
// maxNodes means that budget is unlimited.
func (tm *TimeManager) Init(moveTime time.Duration, maxNodes uint64) {
	tm.startTime = time.Now()
	tm.maxNodes = maxNodes
	tm.maximumTime = moveTime
	// If we've used more than half the time, don't start another iteration
	tm.optimumTime = moveTime / 2
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the soft limit for starting iterations.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// Exceeded reports whether the hard time limit or the node ceiling is hit.
func (tm *TimeManager) Exceeded(nodes uint64) bool {
	if tm.maxNodes > 0 && nodes >= tm.maxNodes {
		return true
	}
	return tm.maximumTime > 0 && tm.Elapsed() >= tm.maximumTime
}

// CanStartIteration reports whether there is time left for another depth.
func (tm *TimeManager) CanStartIteration(nodes uint64) bool {
	if tm.maxNodes > 0 && nodes >= tm.maxNodes {
		return false
	}
	return tm.maximumTime == 0 || tm.Elapsed() < tm.optimumTime
}
