// Package engine implements the stakeholder relationship analyses: coalition
// formation detection, evolution tracking, action prediction, influence and
// network analysis, and leadership/messaging monitoring. Every operation is
// a synchronous pure computation over the profile registry and the signal
// source; no operation calls another and no state is kept across calls.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stakewatch/stakewatch/internal/registry"
	"github.com/stakewatch/stakewatch/internal/signal"
)

// Options tunes engine resource bounds.
type Options struct {
	// MaxNetworkNodes caps BFS node count on dense graphs. Default 500.
	MaxNetworkNodes int
	// MaxWorkers bounds per-entity fan-out concurrency. Default 8.
	MaxWorkers int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine runs the analyses against an injected registry and signal source.
type Engine struct {
	registry *registry.Registry
	signals  signal.Source

	maxNetworkNodes int
	maxWorkers      int
	now             func() time.Time
}

// New creates an engine with the given collaborators.
func New(reg *registry.Registry, signals signal.Source, opts Options) *Engine {
	e := &Engine{
		registry:        reg,
		signals:         signals,
		maxNetworkNodes: opts.MaxNetworkNodes,
		maxWorkers:      opts.MaxWorkers,
		now:             opts.Now,
	}
	if e.maxNetworkNodes <= 0 {
		e.maxNetworkNodes = 500
	}
	if e.maxWorkers <= 0 {
		e.maxWorkers = 8
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Registry exposes the profile registry for callers that manage profiles
// directly (CLI seeding, status).
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// parseTimeframe turns a compact window string like "30d", "6w" or "12h" into
// a duration. fallback is used for empty or malformed input.
func parseTimeframe(tf string, fallback time.Duration) time.Duration {
	tf = strings.TrimSpace(strings.ToLower(tf))
	if tf == "" {
		return fallback
	}
	unit := tf[len(tf)-1]
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return fallback
	}
	switch unit {
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour
	case 'm':
		return time.Duration(n) * 30 * 24 * time.Hour
	default:
		return fallback
	}
}

// levelFromScore buckets a 0-1 score into low/medium/high with the given
// cut points.
func levelFromScore(v, mediumAt, highAt float64) string {
	switch {
	case v > highAt:
		return "high"
	case v > mediumAt:
		return "medium"
	default:
		return "low"
	}
}

// dedupe returns ss with duplicates removed, preserving first-seen order.
func dedupe(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// containsFold reports whether text contains any of the needles, case
// insensitively.
func containsFold(text string, needles ...string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

// partialWarning formats a note for a sub-step failure that did not abort
// the operation.
func partialWarning(step, subject string, err error) string {
	return fmt.Sprintf("%s failed for %s: %v", step, subject, err)
}
