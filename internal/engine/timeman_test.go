package engine

import (
	"testing"
	"time"
)

func TestTimeManager(t *testing.T) {
	var tm TimeManager

	tm.Init(0, 0)
	if tm.Exceeded(1 << 40) {
		t.Error("Expected no limit with zero budgets")
	}
	if !tm.CanStartIteration(1 << 40) {
		t.Error("Expected iterations to start with zero budgets")
	}

	tm.Init(time.Nanosecond, 0)
	time.Sleep(time.Millisecond)
	if !tm.Exceeded(0) {
		t.Error("Expected a 1ns budget to be exceeded")
	}
	if tm.CanStartIteration(0) {
		t.Error("Expected no new iteration past the budget")
	}

	tm.Init(time.Hour, 500)
	if tm.OptimumTime() != 30*time.Minute {
		t.Errorf("Expected half the move time as the soft limit, got %s", tm.OptimumTime())
	}
	if tm.Exceeded(499) || !tm.Exceeded(500) {
		t.Error("Expected the node ceiling to apply at exactly 500 nodes")
	}
	if tm.CanStartIteration(500) {
		t.Error("Expected no new iteration at the node ceiling")
	}
}
