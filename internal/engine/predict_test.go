package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/registry"
)

func TestPredictUrgentScenarioRaisesLikelihood(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	routine, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "alpha",
		Scenario: "routine quarterly policy review",
	})
	if err != nil {
		t.Fatalf("PredictActions(routine): %v", err)
	}
	urgent, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "alpha",
		Scenario: "urgent regulatory deadline next week",
	})
	if err != nil {
		t.Fatalf("PredictActions(urgent): %v", err)
	}

	routineByType := make(map[string]float64)
	for _, p := range routine.Predictions {
		routineByType[p.ActionType] = p.SuccessLikelihood
	}
	compared := 0
	for _, p := range urgent.Predictions {
		base, ok := routineByType[p.ActionType]
		if !ok {
			continue
		}
		compared++
		if p.SuccessLikelihood <= base {
			t.Errorf("%s: urgent likelihood %v <= routine %v",
				p.ActionType, p.SuccessLikelihood, base)
		}
	}
	if compared == 0 {
		t.Fatal("no shared action types between scenarios")
	}
}

func TestPredictSortedDescending(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	result, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "alpha",
		Scenario: "pending legislation",
	})
	if err != nil {
		t.Fatalf("PredictActions: %v", err)
	}
	if len(result.Predictions) < 2 {
		t.Fatalf("predictions = %d, want several for a medium-activity group", len(result.Predictions))
	}
	for i := 1; i < len(result.Predictions); i++ {
		if result.Predictions[i].SuccessLikelihood > result.Predictions[i-1].SuccessLikelihood {
			t.Errorf("predictions not sorted at %d: %v after %v", i,
				result.Predictions[i].SuccessLikelihood, result.Predictions[i-1].SuccessLikelihood)
		}
	}
}

func TestPredictFiltersImprobableActions(t *testing.T) {
	src := newStubSource()
	// A low-activity, underfunded regulatory body only plausibly issues
	// statements.
	group := testGroup("reg", func(g *model.StakeholderGroup) {
		g.Type = model.GroupRegulatory
		g.ActivityLevel = model.LevelLow
		g.Resources.FundingTier = model.LevelLow
	})
	e := newTestEngine(t, src, registry.ModeStrict, group)

	result, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "reg",
		Scenario: "industry consultation",
	})
	if err != nil {
		t.Fatalf("PredictActions: %v", err)
	}
	if len(result.Predictions) != 1 || result.Predictions[0].ActionType != "statement" {
		types := make([]string, 0, len(result.Predictions))
		for _, p := range result.Predictions {
			types = append(types, p.ActionType)
		}
		t.Errorf("retained actions = %v, want [statement]", types)
	}
}

func TestPredictUnknownActionTypesIgnored(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	result, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:     "alpha",
		Scenario:    "pending legislation",
		ActionTypes: []string{"statement", "sabotage"},
	})
	if err != nil {
		t.Fatalf("PredictActions: %v", err)
	}
	if len(result.Predictions) != 1 || result.Predictions[0].ActionType != "statement" {
		t.Errorf("predictions = %v, want only the known statement type", result.Predictions)
	}
}

func TestPredictTimelineAndResources(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	result, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "alpha",
		Scenario: "pending legislation",
	})
	if err != nil {
		t.Fatalf("PredictActions: %v", err)
	}

	// Medium activity keeps base lead times: statement lands immediately,
	// lobbying and coalition_building short term, the rest medium term.
	if len(result.Timeline.Immediate) != 1 || result.Timeline.Immediate[0] != "statement" {
		t.Errorf("immediate bucket = %v, want [statement]", result.Timeline.Immediate)
	}
	if len(result.Timeline.LongTerm) != 0 {
		t.Errorf("long term bucket = %v, want empty inside 90 days", result.Timeline.LongTerm)
	}

	total := 0
	for _, p := range result.Predictions {
		total += p.ResourcesRequired.StaffHours
	}
	if result.Resources.TotalStaffHours != total {
		t.Errorf("total staff hours = %d, want %d", result.Resources.TotalStaffHours, total)
	}
	// All five candidate actions against a 20-person staff exceed
	// sustained capacity.
	if result.Resources.Strain != "high" {
		t.Errorf("strain = %q, want high at %d hours for 20 staff",
			result.Resources.Strain, total)
	}
	if result.Impact.CumulativeEffect != "significant" {
		t.Errorf("cumulative effect = %q, want significant for %d actions",
			result.Impact.CumulativeEffect, len(result.Predictions))
	}
}

func TestPredictUnknownGroupStrict(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict)

	_, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "ghost",
		Scenario: "anything",
	})
	if !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound in strict mode", err)
	}
}

func TestPredictSandboxSynthesizesProfile(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeSandbox)

	result, err := e.PredictActions(context.Background(), PredictionRequest{
		GroupID:  "never-seen",
		Scenario: "pending legislation",
	})
	if err != nil {
		t.Fatalf("PredictActions: %v", err)
	}
	if !result.Synthesized {
		t.Error("sandbox result not flagged as synthesized")
	}
}
