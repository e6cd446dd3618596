package miner

import (
	"sync"

	"github.com/screa/create2-vanity-miner/pkg/types"
)

// Snapshot is a consistent copy of the shared state.
type Snapshot struct {
	Best          types.Candidate
	HasBest       bool
	TotalAttempts uint64
	TotalRounds   uint64
}

// FoldOutcome describes what a single fold changed.
type FoldOutcome struct {
	Snapshot
	Improved bool // Best was replaced
	Periodic bool // not improved and TotalRounds is a multiple of types.StatusInterval
}

// BestState holds the best candidate found so far and the run counters.
// It is only changed through Fold.
type BestState struct {
	mu   sync.Mutex
	snap Snapshot
}

// Fold records one completed round. attempts is the number of salts the
// round evaluated; ok is false when it produced no candidate. The best is
// replaced only by a strictly smaller address. fn, if not nil, runs before
// the lock is released and sees the state exactly as this fold left it.
func (s *BestState) Fold(c types.Candidate, ok bool, attempts uint64, fn func(FoldOutcome)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.TotalRounds++
	s.snap.TotalAttempts += attempts

	out := FoldOutcome{}
	if ok && (!s.snap.HasBest || c.Less(s.snap.Best)) {
		s.snap.Best = c
		s.snap.HasBest = true
		out.Improved = true
	} else if s.snap.TotalRounds%types.StatusInterval == 0 {
		out.Periodic = true
	}
	out.Snapshot = s.snap

	if fn != nil {
		fn(out)
	}
}

// Best returns the best candidate, if any.
func (s *BestState) Best() (types.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Best, s.snap.HasBest
}

// Snapshot returns a copy of the current state.
func (s *BestState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
