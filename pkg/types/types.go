package types

import (
	"math/bits"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/screa/create2-vanity-miner/internal/crypto"
)

// SearchParameters describes one search. It is built once by the caller and
// only read afterwards.
type SearchParameters struct {
	Deployer     common.Address
	InitialSalt  uint256.Int
	InitCodeHash common.Hash
	RoundSize    uint64 // salts evaluated per round
	NumRounds    uint64
}

// TotalAttempts returns the number of salts a full run evaluates. ok is false
// when the product does not fit in a uint64.
func (p *SearchParameters) TotalAttempts() (total uint64, ok bool) {
	hi, lo := bits.Mul64(p.RoundSize, p.NumRounds)
	return lo, hi == 0
}

// Candidate is a derived address together with the salt that produced it.
// Candidates are ordered by address, read as a big-endian integer.
type Candidate struct {
	Address common.Address
	Salt    uint256.Int
}

// Less reports whether c has a strictly smaller address than other.
func (c Candidate) Less(other Candidate) bool {
	return c.Address.Cmp(other.Address) < 0
}

// LeadingZeros returns the number of leading zero hex digits of the address.
func (c Candidate) LeadingZeros() int {
	return crypto.LeadingZeroNibbles(c.Address)
}

// SaltHex returns the salt as 0x-prefixed 32 byte hex.
func (c Candidate) SaltHex() string {
	return crypto.SaltHex(&c.Salt)
}

// NotificationKind identifies what a Notification reports.
type NotificationKind int

const (
	// Improvement is sent when a round produced a new global best.
	Improvement NotificationKind = iota
	// Status re-announces the current best every StatusInterval rounds.
	Status
	// Progress carries throughput and the time estimate for the next zero.
	Progress
)

// StatusInterval is how many folded rounds separate Status notifications.
const StatusInterval = 100

// String returns the kind name.
func (k NotificationKind) String() string {
	switch k {
	case Improvement:
		return "improvement"
	case Status:
		return "status"
	case Progress:
		return "progress"
	default:
		return "unknown"
	}
}

// Notification is emitted by the miner while rounds are folded. It holds
// everything needed to render a log line.
type Notification struct {
	Kind          NotificationKind
	Best          Candidate
	Zeros         int // leading zeros of Best
	TotalRounds   uint64
	TotalAttempts uint64
	Elapsed       time.Duration

	// Progress only
	Rate      float64 // attempts per second
	NextZeros int
	ETA       string
}

// Notifier receives notifications. Notify is called while the miner's
// shared state is locked, so implementations should return quickly.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Result represents a mining result
type Result struct {
	Candidate
	Zeros    int
	Attempts uint64
	Rounds   uint64
	Duration time.Duration
}
