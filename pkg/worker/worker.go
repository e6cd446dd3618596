package worker

import (
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/screa/create2-vanity-miner/internal/crypto"
	"github.com/screa/create2-vanity-miner/pkg/types"
)

// Worker scans rounds of consecutive salts. A Worker is not safe for
// concurrent use; each goroutine owns one.
type Worker struct {
	hasher hash.Hash

	// Pre-allocated buffers for performance
	input   [crypto.Create2InputLen]byte // prefix and init code hash fixed, salt rewritten per attempt
	hashBuf [32]byte
	addr    common.Address
	salt    uint256.Int
}

// NewWorker creates a new worker instance
func NewWorker(deployer common.Address, initCodeHash common.Hash) *Worker {
	return &Worker{
		hasher: crypto.NewHasher(),
		input:  crypto.Create2Input(deployer, new(uint256.Int), initCodeHash),
	}
}

// ScanRound evaluates size consecutive salts starting at start and returns
// the candidate with the smallest address. Ties keep the lowest salt.
// ok is false when size is 0, in which case nothing is hashed.
func (w *Worker) ScanRound(start *uint256.Int, size uint64) (best types.Candidate, ok bool) {
	return w.scan(start, size, nil)
}

// scan is ScanRound with an optional hook observing every evaluated salt.
func (w *Worker) scan(start *uint256.Int, size uint64, visit func(salt *uint256.Int, addr common.Address)) (best types.Candidate, ok bool) {
	if size == 0 {
		return best, false
	}

	w.salt.Set(start)
	for i := uint64(0); i < size; i++ {
		if i > 0 {
			w.salt.AddUint64(&w.salt, 1)
		}
		crypto.PutSalt(w.input[:], &w.salt)
		crypto.Create2AddressInto(w.hasher, w.input[:], w.hashBuf[:], w.addr[:])
		if visit != nil {
			visit(&w.salt, w.addr)
		}

		if i == 0 || w.addr.Cmp(best.Address) < 0 {
			best.Address = w.addr
			best.Salt = w.salt
		}
	}
	return best, true
}
