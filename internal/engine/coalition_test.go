package engine

import (
	"context"
	"testing"

	"github.com/stakewatch/stakewatch/internal/registry"
)

func TestDetectCoalitionSharedObjective(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"), testGroup("gamma"))

	result, err := e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
		Entities: []string{"alpha", "beta", "gamma"},
	})
	if err != nil {
		t.Fatalf("DetectCoalitionFormation: %v", err)
	}

	if len(result.SharedObjectives) != 1 {
		t.Fatalf("shared objectives = %d, want 1", len(result.SharedObjectives))
	}
	al := result.SharedObjectives[0]
	if al.Objective != "policy_reform" {
		t.Errorf("objective = %q, want policy_reform", al.Objective)
	}
	if len(al.SupportingEntities) != 3 {
		t.Errorf("supporters = %v, want all three groups", al.SupportingEntities)
	}

	// One coalition per central entity behind the shared objective.
	if len(result.Coalitions) != 3 {
		t.Fatalf("coalitions = %d, want 3", len(result.Coalitions))
	}
	for _, c := range result.Coalitions {
		if c.FormationLikelihood < 0 || c.FormationLikelihood > 1 {
			t.Errorf("likelihood %v out of [0,1]", c.FormationLikelihood)
		}
		if len(c.PotentialMembers) < 3 {
			t.Errorf("coalition %s has %d members, want >= 3", c.ID, len(c.PotentialMembers))
		}
		for _, id := range []string{"alpha", "beta", "gamma"} {
			if !contains(c.PotentialMembers, id) {
				t.Errorf("coalition %s missing member %s", c.ID, id)
			}
		}
	}

	if result.RiskAssessment.OverallRisk != "low" {
		t.Errorf("risk = %q, want low with moderate signals", result.RiskAssessment.OverallRisk)
	}
}

func TestDetectCoalitionRiskContract(t *testing.T) {
	// High risk needs a likely coalition and an urgent trigger together.
	src := newStubSource()
	src.defaultScore = 0.95
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"), testGroup("gamma"))

	result, err := e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
		Entities: []string{"alpha", "beta", "gamma"},
	})
	if err != nil {
		t.Fatalf("DetectCoalitionFormation: %v", err)
	}
	if got := result.RiskAssessment.OverallRisk; got != "high" {
		t.Errorf("risk = %q, want high with likely coalition and urgent trigger", got)
	}

	// Same coalition signals but calm triggers: only medium.
	src.scores["trigger/regulatory_change/alpha/beta/gamma/30d"] = 0.2
	src.scores["trigger/market_disruption/alpha/beta/gamma/30d"] = 0.2
	result, err = e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
		Entities: []string{"alpha", "beta", "gamma"},
	})
	if err != nil {
		t.Fatalf("DetectCoalitionFormation: %v", err)
	}
	if got := result.RiskAssessment.OverallRisk; got != "medium" {
		t.Errorf("risk = %q, want medium without an urgent trigger", got)
	}
}

func TestDetectCoalitionTooFewEntities(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	result, err := e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
		Entities: []string{"alpha"},
	})
	if err != nil {
		t.Fatalf("DetectCoalitionFormation: %v", err)
	}
	if len(result.Signals) != 0 || len(result.Coalitions) != 0 {
		t.Errorf("single entity produced signals=%d coalitions=%d, want none",
			len(result.Signals), len(result.Coalitions))
	}
}

func TestDetectCoalitionUnknownEntityWarns(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"), testGroup("gamma"))

	result, err := e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
		Entities: []string{"alpha", "beta", "gamma", "ghost"},
	})
	if err != nil {
		t.Fatalf("DetectCoalitionFormation: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one for the unknown entity", result.Warnings)
	}
	// Known entities are still analysed.
	if len(result.SharedObjectives) == 0 {
		t.Error("unknown entity aborted analysis of the known ones")
	}
	for _, c := range result.Coalitions {
		if contains(c.PotentialMembers, "ghost") {
			t.Errorf("coalition %s includes unknown entity", c.ID)
		}
	}
}

func TestDetectCoalitionSensitivity(t *testing.T) {
	src := newStubSource()
	src.scores["comm_frequency/alpha/beta"] = 0.4
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"))

	for _, tc := range []struct {
		sensitivity string
		want        int
	}{
		{"medium", 0}, // 0.4 <= 0.5 threshold
		{"high", 1},   // 0.4 > 0.3 threshold
	} {
		result, err := e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
			Entities:    []string{"alpha", "beta"},
			Sensitivity: tc.sensitivity,
		})
		if err != nil {
			t.Fatalf("DetectCoalitionFormation(%s): %v", tc.sensitivity, err)
		}
		if len(result.Signals) != tc.want {
			t.Errorf("sensitivity %s: signals = %d, want %d",
				tc.sensitivity, len(result.Signals), tc.want)
		}
	}
}

func TestDetectCoalitionIssueTriggers(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"))

	result, err := e.DetectCoalitionFormation(context.Background(), CoalitionRequest{
		Entities: []string{"alpha", "beta"},
		Issues:   []string{"data_privacy", "data_privacy", "tariffs"},
	})
	if err != nil {
		t.Fatalf("DetectCoalitionFormation: %v", err)
	}
	// Two baseline triggers plus one per distinct issue.
	if len(result.Triggers) != 4 {
		t.Fatalf("triggers = %d, want 4", len(result.Triggers))
	}
	escalations := 0
	for _, tr := range result.Triggers {
		if tr.Type == "issue_escalation" {
			escalations++
		}
		if tr.Likelihood < 0 || tr.Likelihood > 1 {
			t.Errorf("trigger %s likelihood %v out of [0,1]", tr.Type, tr.Likelihood)
		}
	}
	if escalations != 2 {
		t.Errorf("issue_escalation triggers = %d, want 2", escalations)
	}
}
