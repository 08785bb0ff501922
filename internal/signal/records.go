package signal

import (
	"sync"
	"time"
)

// CommunicationRecord is one observed communication event between two
// entities, as published on the records topic.
type CommunicationRecord struct {
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	Channel   string    `json:"channel"`
	Topic     string    `json:"topic"`
	Sentiment string    `json:"sentiment"` // positive | neutral | negative
	Timestamp time.Time `json:"timestamp"`
}

type pairStats struct {
	count     int
	channels  map[string]int
	topics    map[string]int
	sentiment map[string]int
}

// RecordSource scores communication signals from ingested records and falls
// back to a deterministic source for signals no record covers. It is the
// production-path Source: real where data exists, reproducible elsewhere.
type RecordSource struct {
	mu       sync.RWMutex
	pairs    map[[2]string]*pairStats
	total    int
	fallback Source
}

// NewRecordSource returns an empty record-backed source with the given
// fallback for uncovered signals.
func NewRecordSource(fallback Source) *RecordSource {
	return &RecordSource{
		pairs:    make(map[[2]string]*pairStats),
		fallback: fallback,
	}
}

// Observe folds one communication record into the pair statistics.
func (r *RecordSource) Observe(rec CommunicationRecord) {
	a, b := PairKey(rec.SourceID, rec.TargetID)
	key := [2]string{a, b}

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.pairs[key]
	if !ok {
		st = &pairStats{
			channels:  make(map[string]int),
			topics:    make(map[string]int),
			sentiment: make(map[string]int),
		}
		r.pairs[key] = st
	}
	st.count++
	r.total++
	if rec.Channel != "" {
		st.channels[rec.Channel]++
	}
	if rec.Topic != "" {
		st.topics[rec.Topic]++
	}
	if rec.Sentiment != "" {
		st.sentiment[rec.Sentiment]++
	}
}

// PairVolume returns the number of observed records for the pair.
func (r *RecordSource) PairVolume(a, b string) int {
	ka, kb := PairKey(a, b)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.pairs[[2]string{ka, kb}]; ok {
		return st.count
	}
	return 0
}

// Score returns an observed frequency for pair-frequency keys when records
// exist, otherwise the fallback score. Pair-frequency keys have the shape
// ("comm_frequency", a, b).
func (r *RecordSource) Score(keys ...string) float64 {
	if len(keys) == 3 && keys[0] == "comm_frequency" {
		ka, kb := PairKey(keys[1], keys[2])
		r.mu.RLock()
		var count int
		if st, ok := r.pairs[[2]string{ka, kb}]; ok {
			count = st.count
		}
		total := r.total
		r.mu.RUnlock()
		if count > 0 && total > 0 {
			// Normalise against the busiest plausible pair share.
			v := float64(count) / float64(total) * 4
			if v > 1 {
				v = 0.999
			}
			return v
		}
	}
	return r.fallback.Score(keys...)
}

// Count delegates to the fallback source.
func (r *RecordSource) Count(n int, keys ...string) int {
	return r.fallback.Count(n, keys...)
}

// Pick returns the dominant observed sentiment for pair-sentiment keys when
// records exist, otherwise delegates to the fallback.
func (r *RecordSource) Pick(options []string, keys ...string) string {
	if len(keys) == 3 && keys[0] == "comm_sentiment" {
		ka, kb := PairKey(keys[1], keys[2])
		r.mu.RLock()
		best, bestN := "", 0
		if st, ok := r.pairs[[2]string{ka, kb}]; ok {
			for _, opt := range options {
				if n := st.sentiment[opt]; n > bestN {
					best, bestN = opt, n
				}
			}
		}
		r.mu.RUnlock()
		if bestN > 0 {
			return best
		}
	}
	return r.fallback.Pick(options, keys...)
}
