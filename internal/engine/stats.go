package engine

import (
	"fmt"
	"math"
)

// Stats are the diagnostics of one search. They never influence the score.
type Stats struct {
	Depth           int
	Nodes           uint64 // all nodes, quiescence included
	QNodes          uint64
	BetaCutoffs     uint64
	NullMoveCutoffs uint64
	LMRReductions   uint64
	LMRReSearches   uint64
	PVSReSearches   uint64
	TTHits          uint64
	TTCutoffs       uint64

	// IterationNodes[i] is the total node count when depth i+1 completed.
	IterationNodes []uint64
}

// BranchingFactor returns the effective branching factor, nodes^(1/depth).
func (s Stats) BranchingFactor() float64 {
	if s.Depth <= 0 || s.Nodes == 0 {
		return 0
	}
	return math.Pow(float64(s.Nodes), 1/float64(s.Depth))
}

func (s Stats) String() string {
	return fmt.Sprintf("depth %d nodes %d qnodes %d beta %d null %d lmr %d/%d pvs-re %d tt %d/%d ebf %.2f",
		s.Depth, s.Nodes, s.QNodes, s.BetaCutoffs, s.NullMoveCutoffs,
		s.LMRReSearches, s.LMRReductions, s.PVSReSearches, s.TTCutoffs, s.TTHits, s.BranchingFactor())
}
