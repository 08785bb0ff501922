package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
)

// evolutionAspects is the full aspect vocabulary; the default request
// covers the first four.
var evolutionAspects = []string{"membership", "objectives", "influence", "relationships", "actions"}

// aspectEventTypes maps each aspect to its event taxonomy.
var aspectEventTypes = map[string][]string{
	"membership":    {"member_joined", "member_left"},
	"objectives":    {"objective_added", "objective_shifted"},
	"influence":     {"influence_increase", "influence_decrease"},
	"relationships": {"alliance_formed", "opposition_emerged"},
	"actions":       {"action_taken", "campaign_launched"},
}

// EvolutionRequest asks for timeline reconstruction of one coalition and/or
// several groups.
type EvolutionRequest struct {
	CoalitionID string   `json:"coalition_id,omitempty"`
	GroupIDs    []string `json:"group_ids,omitempty"`
	Aspects     []string `json:"evolution_aspects,omitempty"`
	Timeframe   string   `json:"timeframe,omitempty"` // default "90d"
}

// AspectTrend summarises one aspect's movement over the window.
type AspectTrend struct {
	Trend           string `json:"trend"`
	EventCount      int    `json:"event_count"`
	AlliancesFormed int    `json:"alliances_formed,omitempty"`
	NetworkExpanded bool   `json:"network_expanded,omitempty"`
}

// EvolutionPrediction projects one aspect forward with stability-derived
// confidence.
type EvolutionPrediction struct {
	Aspect              string   `json:"aspect"`
	Direction           string   `json:"direction"`
	Confidence          float64  `json:"confidence"` // 0-100
	ContributingFactors []string `json:"contributing_factors,omitempty"`
	ConstrainingFactors []string `json:"constraining_factors,omitempty"`
}

// SubjectEvolution is the reconstructed history for one tracked subject.
type SubjectEvolution struct {
	SubjectID          string                 `json:"subject_id"`
	Timeline           []model.EvolutionEvent `json:"timeline"`
	SignificantChanges []model.EvolutionEvent `json:"significant_changes"`
	Trends             map[string]AspectTrend `json:"trend_analysis"`
	StabilityScore     float64                `json:"stability_score"` // 0-1
	StabilityLevel     string                 `json:"stability_level"`
	Predictions        []EvolutionPrediction  `json:"predictions"`
}

// EvolutionResult is the full tracking response.
type EvolutionResult struct {
	Subjects    []SubjectEvolution `json:"subjects"`
	Aspects     []string           `json:"evolution_aspects"`
	Timeframe   string             `json:"timeframe"`
	Warnings    []string           `json:"warnings,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// PartialWarnings reports the sub-step failures the analysis survived.
func (r *EvolutionResult) PartialWarnings() []string { return r.Warnings }

// TrackEvolution reconstructs bounded event timelines for the requested
// subjects and computes trends, stability and forward predictions.
func (e *Engine) TrackEvolution(ctx context.Context, req EvolutionRequest) (*EvolutionResult, error) {
	aspects := normalizeAspects(req.Aspects)
	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "90d"
	}
	window := parseTimeframe(timeframe, 90*24*time.Hour)

	result := &EvolutionResult{
		Subjects:    []SubjectEvolution{},
		Aspects:     aspects,
		Timeframe:   timeframe,
		GeneratedAt: e.now().UTC(),
	}

	var subjects []string
	if req.CoalitionID != "" {
		subjects = append(subjects, req.CoalitionID)
	}
	for _, id := range dedupe(req.GroupIDs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := e.registry.Profile(ctx, id); err != nil {
			// Strict-mode miss: note it and keep tracking the rest.
			result.Warnings = append(result.Warnings,
				partialWarning("profile lookup", id, err))
			continue
		}
		subjects = append(subjects, id)
	}

	for _, subject := range subjects {
		result.Subjects = append(result.Subjects,
			e.trackSubject(subject, aspects, timeframe, window))
	}
	return result, nil
}

func normalizeAspects(requested []string) []string {
	if len(requested) == 0 {
		return append([]string{}, evolutionAspects[:4]...)
	}
	var out []string
	for _, a := range requested {
		if _, ok := aspectEventTypes[a]; ok {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return append([]string{}, evolutionAspects[:4]...)
	}
	return dedupe(out)
}

func (e *Engine) trackSubject(subject string, aspects []string, timeframe string, window time.Duration) SubjectEvolution {
	now := e.now().UTC()
	var timeline []model.EvolutionEvent
	trends := make(map[string]AspectTrend, len(aspects))

	for _, aspect := range aspects {
		types := aspectEventTypes[aspect]
		count := 1 + e.signals.Count(4, "evolution_count", subject, aspect, timeframe)
		events := make([]model.EvolutionEvent, 0, count)
		for i := 0; i < count; i++ {
			idx := itoa(i)
			eventType := e.signals.Pick(types, "evolution_type", subject, aspect, idx)
			// Spread events chronologically across the window.
			ts := now.Add(-window + time.Duration(i+1)*window/time.Duration(count+1))
			events = append(events, model.EvolutionEvent{
				Timestamp: ts,
				SubjectID: subject,
				EventType: eventType,
				Description: fmt.Sprintf("%s observed for %s",
					eventType, subject),
				ImpactLevel: model.Level(e.signals.Pick(
					[]string{"low", "medium", "high"}, "evolution_impact", subject, aspect, idx)),
				AffectedAspect: aspect,
			})
		}
		timeline = append(timeline, events...)
		trends[aspect] = aspectTrend(aspect, events)
	}

	var significant []model.EvolutionEvent
	majorChanges, significantChanges := 0, 0
	for _, ev := range timeline {
		switch ev.ImpactLevel {
		case model.LevelHigh:
			significant = append(significant, ev)
			majorChanges++
		case model.LevelMedium:
			significantChanges++
		}
	}

	stability := model.Clip01(1.0 - 0.2*float64(majorChanges) - 0.1*float64(significantChanges))
	level := levelFromScore(stability, 0.5, 0.8)

	return SubjectEvolution{
		SubjectID:          subject,
		Timeline:           timeline,
		SignificantChanges: significant,
		Trends:             trends,
		StabilityScore:     stability,
		StabilityLevel:     level,
		Predictions:        evolutionPredictions(trends, stability),
	}
}

func aspectTrend(aspect string, events []model.EvolutionEvent) AspectTrend {
	t := AspectTrend{Trend: "stable", EventCount: len(events)}
	switch aspect {
	case "membership":
		if len(events) > 2 {
			t.Trend = "expanding"
		}
	case "influence":
		increases := 0
		for _, ev := range events {
			if ev.EventType == "influence_increase" {
				increases++
			}
		}
		if increases*2 > len(events) {
			t.Trend = "increasing"
		}
	case "relationships":
		for _, ev := range events {
			if ev.EventType == "alliance_formed" {
				t.AlliancesFormed++
			}
		}
		t.NetworkExpanded = t.AlliancesFormed > 0
		if t.NetworkExpanded {
			t.Trend = "expanding"
		}
	case "objectives":
		if len(events) > 1 {
			t.Trend = "shifting"
		}
	case "actions":
		if len(events) > 2 {
			t.Trend = "active"
		}
	}
	return t
}

func evolutionPredictions(trends map[string]AspectTrend, stability float64) []EvolutionPrediction {
	confidence := stability * 100
	var out []EvolutionPrediction
	for _, aspect := range evolutionAspects {
		trend, ok := trends[aspect]
		if !ok {
			continue
		}
		direction := "continued stability"
		if trend.Trend != "stable" {
			direction = "continued " + trend.Trend
		}
		pred := EvolutionPrediction{
			Aspect:     aspect,
			Direction:  direction,
			Confidence: confidence,
			ContributingFactors: []string{
				fmt.Sprintf("%d %s events in window", trend.EventCount, aspect),
			},
		}
		if stability <= 0.5 {
			pred.ConstrainingFactors = append(pred.ConstrainingFactors,
				"low stability reduces forecast confidence")
		}
		if trend.AlliancesFormed > 0 {
			pred.ContributingFactors = append(pred.ContributingFactors,
				fmt.Sprintf("%d alliances formed", trend.AlliancesFormed))
		}
		out = append(out, pred)
	}
	return out
}
