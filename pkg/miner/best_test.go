package miner

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/screa/create2-vanity-miner/pkg/types"
)

func candidate(addr string, salt uint64) types.Candidate {
	return types.Candidate{
		Address: common.HexToAddress(addr),
		Salt:    *uint256.NewInt(salt),
	}
}

func TestCandidateLess(t *testing.T) {
	addr1 := candidate("0x0000000000000000000000000000000000000001", 1)
	addr2 := candidate("0x0000000000000000000000000000000000000002", 2)
	tests := []struct {
		name     string
		newC     types.Candidate
		oldC     types.Candidate
		expected bool
	}{
		{
			name:     "new address is better",
			newC:     addr1,
			oldC:     addr2,
			expected: true,
		},
		{
			name:     "old address is better",
			newC:     addr2,
			oldC:     addr1,
			expected: false,
		},
		{
			name:     "addresses are equal",
			newC:     addr1,
			oldC:     addr1,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.newC.Less(tt.oldC); got != tt.expected {
				t.Errorf("Less() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFoldKeepsFirstOnTie(t *testing.T) {
	var s BestState
	first := candidate("0x00000000000000000000000000000000000000aa", 1)
	second := candidate("0x00000000000000000000000000000000000000aa", 2)

	s.Fold(first, true, 10, nil)
	var improved bool
	s.Fold(second, true, 10, func(out FoldOutcome) { improved = out.Improved })

	best, ok := s.Best()
	if !ok {
		t.Fatal("Best() reported no candidate")
	}
	if best.Salt.Uint64() != 1 {
		t.Errorf("Best().Salt = %d, want 1", best.Salt.Uint64())
	}
	if improved {
		t.Error("equal address reported as improvement")
	}
}

func TestFoldOrderIndependent(t *testing.T) {
	cands := []types.Candidate{
		candidate("0x9000000000000000000000000000000000000000", 1),
		candidate("0x00000f0000000000000000000000000000000000", 2),
		candidate("0x0001000000000000000000000000000000000000", 3),
		candidate("0x00000f0000000000000000000000000000000000", 2), // duplicate round result
		candidate("0xffffffffffffffffffffffffffffffffffffffff", 4),
		candidate("0x00000e0000000000000000000000000000000001", 5),
		candidate("0x1000000000000000000000000000000000000000", 6),
	}
	want := cands[5]

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		var s BestState
		for _, j := range rng.Perm(len(cands)) {
			s.Fold(cands[j], true, 1, nil)
		}
		got, _ := s.Best()
		if got != want {
			t.Fatalf("permutation %d: best = %s, want %s", i, got.Address.Hex(), want.Address.Hex())
		}
	}
}

func TestFoldCounters(t *testing.T) {
	var s BestState
	c := candidate("0x1000000000000000000000000000000000000000", 1)
	for i := 0; i < 5; i++ {
		s.Fold(c, true, 1000, nil)
	}
	s.Fold(types.Candidate{}, false, 0, nil)

	snap := s.Snapshot()
	if snap.TotalRounds != 6 {
		t.Errorf("TotalRounds = %d, want 6", snap.TotalRounds)
	}
	if snap.TotalAttempts != 5000 {
		t.Errorf("TotalAttempts = %d, want 5000", snap.TotalAttempts)
	}
}

func TestFoldEmptyRoundDoesNotSetBest(t *testing.T) {
	var s BestState
	s.Fold(types.Candidate{}, false, 0, nil)
	if _, ok := s.Best(); ok {
		t.Error("empty round produced a best candidate")
	}
}

func TestFoldPeriodic(t *testing.T) {
	var s BestState
	best := candidate("0x0000000000000000000000000000000000000001", 0)
	worse := candidate("0x1000000000000000000000000000000000000000", 1)

	var periodic []uint64
	record := func(out FoldOutcome) {
		if out.Periodic {
			periodic = append(periodic, out.TotalRounds)
		}
	}
	s.Fold(best, true, 1, record)
	for i := 0; i < 249; i++ {
		s.Fold(worse, true, 1, record)
	}

	if len(periodic) != 2 || periodic[0] != 100 || periodic[1] != 200 {
		t.Errorf("periodic rounds = %v, want [100 200]", periodic)
	}
}

func TestFoldPeriodicSkippedOnImprovement(t *testing.T) {
	var s BestState
	var last FoldOutcome
	for i := 100; i > 0; i-- {
		// Strictly decreasing addresses: every fold improves.
		c := types.Candidate{Address: common.BigToAddress(uint256.NewInt(uint64(i)).ToBig())}
		s.Fold(c, true, 1, func(out FoldOutcome) { last = out })
	}
	if last.TotalRounds != 100 {
		t.Fatalf("TotalRounds = %d, want 100", last.TotalRounds)
	}
	if !last.Improved || last.Periodic {
		t.Errorf("round 100: Improved=%v Periodic=%v, want true/false", last.Improved, last.Periodic)
	}
}

func TestFoldConcurrent(t *testing.T) {
	var s BestState
	var wg sync.WaitGroup
	const goroutines, folds = 8, 500

	var prevRounds, prevAttempts uint64
	prevZeros := -1
	monotonic := true
	check := func(out FoldOutcome) {
		// Runs under the state lock, so these reads and writes are serialized.
		if out.TotalRounds < prevRounds || out.TotalAttempts < prevAttempts {
			monotonic = false
		}
		if z := out.Best.LeadingZeros(); z < prevZeros {
			monotonic = false
		} else {
			prevZeros = z
		}
		prevRounds, prevAttempts = out.TotalRounds, out.TotalAttempts
	}

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(g)))
			for i := 0; i < folds; i++ {
				var addr common.Address
				rng.Read(addr[:])
				s.Fold(types.Candidate{Address: addr}, true, 3, check)
			}
		}(g)
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.TotalRounds != goroutines*folds {
		t.Errorf("TotalRounds = %d, want %d", snap.TotalRounds, goroutines*folds)
	}
	if snap.TotalAttempts != 3*goroutines*folds {
		t.Errorf("TotalAttempts = %d, want %d", snap.TotalAttempts, 3*goroutines*folds)
	}
	if !monotonic {
		t.Error("counters or best zeros decreased between folds")
	}
}
