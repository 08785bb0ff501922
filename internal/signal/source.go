// Package signal isolates every score the analyses consume that does not
// come from a group profile. Production deployments feed real communication
// records through the Kafka ingestor; everywhere else the seeded source
// produces deterministic stand-in signals that are a pure function of the
// keys, so repeated calls and concurrent callers always agree.
package signal

import (
	"hash/fnv"
	"strconv"
)

// Source supplies raw signal values keyed by arbitrary string tuples.
// Implementations must be deterministic per key tuple and safe for
// concurrent use.
type Source interface {
	// Score returns a value in [0,1) for the key tuple.
	Score(keys ...string) float64
	// Count returns an integer in [0,n) for the key tuple. n must be > 0.
	Count(n int, keys ...string) int
	// Pick returns one of options, chosen by the key tuple. options must be
	// non-empty.
	Pick(options []string, keys ...string) string
}

// SeededSource derives every signal from an FNV hash of the seed and keys.
type SeededSource struct {
	seed uint64
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{seed: seed}
}

func (s *SeededSource) hash(keys []string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatUint(s.seed, 16)))
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
	}
	return h.Sum64()
}

// Score returns a value in [0,1).
func (s *SeededSource) Score(keys ...string) float64 {
	return float64(s.hash(keys)>>11) / (1 << 53)
}

// Count returns an integer in [0,n).
func (s *SeededSource) Count(n int, keys ...string) int {
	if n <= 0 {
		return 0
	}
	return int(s.hash(keys) % uint64(n))
}

// Pick selects one of options by hash.
func (s *SeededSource) Pick(options []string, keys ...string) string {
	if len(options) == 0 {
		return ""
	}
	return options[s.hash(keys)%uint64(len(options))]
}

// PairKey returns a canonical ordering of two entity ids so that signals for
// the pair (a,b) and (b,a) are identical.
func PairKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
