package miner

import (
	"errors"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/remeh/sizedwaitgroup"

	"github.com/screa/create2-vanity-miner/pkg/progress"
	"github.com/screa/create2-vanity-miner/pkg/types"
	"github.com/screa/create2-vanity-miner/pkg/worker"
)

// Errors
var (
	ErrNoWorkers    = errors.New("worker count must be at least 1")
	ErrSaltOverflow = errors.New("salt range exceeds 256 bits")
	ErrNoCandidate  = errors.New("no salt was evaluated")
)

// Options configures a Miner.
type Options struct {
	Workers  int
	Notifier types.Notifier // optional
}

// Miner splits a search into rounds and runs them on a fixed pool of
// workers, folding every round into a shared BestState.
type Miner struct {
	params   types.SearchParameters
	workers  int
	notifier types.Notifier
	state    BestState

	clock func() time.Time
	start time.Time

	done chan struct{}
	once sync.Once
}

// New validates the parameters and returns a miner ready to Run.
func New(params types.SearchParameters, opts Options) (*Miner, error) {
	if opts.Workers < 1 {
		return nil, ErrNoWorkers
	}
	if _, err := LastSalt(params); err != nil {
		return nil, err
	}

	return &Miner{
		params:   params,
		workers:  opts.Workers,
		notifier: opts.Notifier,
		clock:    time.Now,
		done:     make(chan struct{}),
	}, nil
}

// RoundStart returns the first salt of round r: initial + roundSize*r.
func RoundStart(initial *uint256.Int, roundSize, r uint64) *uint256.Int {
	off := new(uint256.Int).Mul(uint256.NewInt(roundSize), uint256.NewInt(r))
	return off.Add(off, initial)
}

// LastSalt returns the highest salt a run of params evaluates. It fails with
// ErrSaltOverflow when that salt does not fit in 256 bits. An empty run
// returns the initial salt.
func LastSalt(params types.SearchParameters) (*uint256.Int, error) {
	last := new(uint256.Int).Set(&params.InitialSalt)
	if params.RoundSize == 0 || params.NumRounds == 0 {
		return last, nil
	}
	// 64x64 bit product, cannot overflow 256 bits
	span := new(uint256.Int).Mul(uint256.NewInt(params.RoundSize), uint256.NewInt(params.NumRounds))
	span.SubUint64(span, 1)
	if _, overflow := last.AddOverflow(last, span); overflow {
		return nil, ErrSaltOverflow
	}
	return last, nil
}

// Run scans all rounds and blocks until every dispatched round has been
// folded. It returns ErrNoCandidate if no salt was evaluated. Run must only
// be called once.
func (m *Miner) Run() (types.Result, error) {
	m.start = m.clock()

	rounds := make(chan uint64, m.workers)
	swg := sizedwaitgroup.New(m.workers)
	for i := 0; i < m.workers; i++ {
		swg.Add()
		go m.worker(rounds, &swg)
	}

feed:
	for r := uint64(0); r < m.params.NumRounds; r++ {
		select {
		case <-m.done:
			break feed
		default:
		}
		select {
		case <-m.done:
			break feed
		case rounds <- r:
		}
	}
	close(rounds)
	swg.Wait()

	snap := m.state.Snapshot()
	if !snap.HasBest {
		return types.Result{}, ErrNoCandidate
	}
	return types.Result{
		Candidate: snap.Best,
		Zeros:     snap.Best.LeadingZeros(),
		Attempts:  snap.TotalAttempts,
		Rounds:    snap.TotalRounds,
		Duration:  m.clock().Sub(m.start),
	}, nil
}

// worker runs rounds from the queue until it is closed.
func (m *Miner) worker(rounds <-chan uint64, swg *sizedwaitgroup.SizedWaitGroup) {
	defer swg.Done()

	w := worker.NewWorker(m.params.Deployer, m.params.InitCodeHash)
	for r := range rounds {
		start := RoundStart(&m.params.InitialSalt, m.params.RoundSize, r)
		c, ok := w.ScanRound(start, m.params.RoundSize)
		m.state.Fold(c, ok, m.params.RoundSize, m.notify)
	}
}

// notify turns a fold outcome into notifications. It runs under the state lock.
func (m *Miner) notify(out FoldOutcome) {
	if m.notifier == nil {
		return
	}

	elapsed := m.clock().Sub(m.start)
	n := types.Notification{
		Best:          out.Best,
		TotalRounds:   out.TotalRounds,
		TotalAttempts: out.TotalAttempts,
		Elapsed:       elapsed,
	}
	if out.HasBest {
		n.Zeros = out.Best.LeadingZeros()
	}

	switch {
	case out.Improved:
		n.Kind = types.Improvement
		m.notifier.Notify(n)
	case out.Periodic && out.HasBest:
		n.Kind = types.Status
		m.notifier.Notify(n)
	}

	rate, ok := progress.Rate(out.TotalAttempts, elapsed)
	if !ok || rate == 0 {
		return
	}
	n.Kind = types.Progress
	n.Rate = rate
	n.NextZeros = n.Zeros + 1
	n.ETA = progress.ETA(n.NextZeros, rate, elapsed)
	m.notifier.Notify(n)
}

// Stop stops dispatching new rounds. Rounds already being scanned finish
// and are folded before Run returns.
func (m *Miner) Stop() {
	m.once.Do(func() { close(m.done) })
}

// Best returns the current best candidate
func (m *Miner) Best() (types.Candidate, bool) {
	return m.state.Best()
}

// Snapshot returns the current counters and best candidate.
func (m *Miner) Snapshot() Snapshot {
	return m.state.Snapshot()
}
