package ops

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stakewatch/stakewatch/internal/engine"
	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/registry"
	"github.com/stakewatch/stakewatch/internal/signal"
)

func newTestRegistry(t *testing.T, mode registry.Mode, profiles ...*model.StakeholderGroup) *Registry {
	t.Helper()
	store := registry.NewMemoryStore()
	for _, p := range profiles {
		if err := store.Put(context.Background(), p); err != nil {
			t.Fatalf("seeding profile %s: %v", p.ID, err)
		}
	}
	reg := registry.New(registry.Options{
		Store:   store,
		Signals: signal.NewSeededSource(42),
		Mode:    mode,
	})
	e := engine.New(reg, signal.NewSeededSource(42), engine.Options{
		Now: func() time.Time {
			return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
		},
	})

	ops := NewRegistry()
	ops.Register(NewDetectCoalitionFormation(e))
	ops.Register(NewTrackCoalitionEvolution(e))
	ops.Register(NewPredictGroupActions(e))
	ops.Register(NewAnalyzeGroupInfluence(e))
	ops.Register(NewMapStakeholderNetworks(e))
	ops.Register(NewIdentifyGroupLeaders(e))
	ops.Register(NewMonitorGroupMessaging(e))
	return ops
}

func opsGroup(id string) *model.StakeholderGroup {
	return &model.StakeholderGroup{
		ID:             id,
		Name:           "Group " + id,
		Type:           model.GroupAdvocacy,
		Objectives:     []string{"policy_reform"},
		InfluenceScore: 50,
		ActivityLevel:  model.LevelMedium,
		Members: []model.Member{
			{ID: id + "-m0", Name: "Lead", Role: model.RoleLeader, InfluenceLevel: 80,
				CommitmentLevel: model.LevelHigh},
		},
		Resources: model.Resources{FundingTier: model.LevelMedium, StaffCount: 15},
		Status:    "active",
	}
}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var opErr *Error
	if !errors.As(err, &opErr) {
		t.Fatalf("err = %v (%T), want *Error", err, err)
	}
	return opErr.Kind
}

func TestRegistryListsOperationsInOrder(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeSandbox)
	list := ops.List()
	if len(list) != 7 {
		t.Fatalf("operations = %d, want 7", len(list))
	}
	if list[0].Name() != "detect_coalition_formation" {
		t.Errorf("first operation = %q, want registration order preserved", list[0].Name())
	}
	for _, op := range list {
		if op.Description() == "" {
			t.Errorf("operation %s has no description", op.Name())
		}
		schema := op.Parameters()
		if schema["type"] != "object" {
			t.Errorf("operation %s schema type = %v, want object", op.Name(), schema["type"])
		}
	}
}

func TestUnknownOperation(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeSandbox)
	_, err := ops.Execute(context.Background(), "summon_demons", nil)
	if kindOf(t, err) != KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", kindOf(t, err))
	}
}

func TestValidationErrors(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeSandbox)

	cases := []struct {
		op     string
		params map[string]any
	}{
		{"detect_coalition_formation", map[string]any{}},
		{"detect_coalition_formation", map[string]any{"entities": []any{}}},
		{"track_coalition_evolution", map[string]any{}},
		{"predict_group_actions", map[string]any{"group_id": "x"}},
		{"predict_group_actions", map[string]any{"scenario": "merger"}},
		{"analyze_group_influence", map[string]any{}},
		{"map_stakeholder_networks", map[string]any{}},
		{"map_stakeholder_networks", map[string]any{
			"central_entity": "x", "network_depth": -1}},
		{"identify_group_leaders", map[string]any{}},
		{"monitor_group_messaging", map[string]any{}},
	}
	for _, tc := range cases {
		_, err := ops.Execute(context.Background(), tc.op, tc.params)
		if err == nil {
			t.Errorf("%s(%v) succeeded, want validation error", tc.op, tc.params)
			continue
		}
		if got := kindOf(t, err); got != KindValidation {
			t.Errorf("%s(%v) kind = %v, want validation_error", tc.op, tc.params, got)
		}
	}
}

func TestMalformedArguments(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeSandbox)
	_, err := ops.Execute(context.Background(), "predict_group_actions", map[string]any{
		"group_id": 17, "scenario": "merger",
	})
	if kindOf(t, err) != KindValidation {
		t.Fatalf("kind = %v, want validation_error for a non-string group_id", kindOf(t, err))
	}
}

func TestStrictModeNotFound(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeStrict)
	_, err := ops.Execute(context.Background(), "predict_group_actions", map[string]any{
		"group_id": "ghost", "scenario": "merger",
	})
	if kindOf(t, err) != KindNotFound {
		t.Fatalf("kind = %v, want not_found in strict mode", kindOf(t, err))
	}
}

func TestExecuteReturnsJSON(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeStrict, opsGroup("acme"))
	out, err := ops.Execute(context.Background(), "analyze_group_influence", map[string]any{
		"group_id": "acme",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var decoded struct {
		GroupID      string  `json:"group_id"`
		OverallScore float64 `json:"overall_score"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded.GroupID != "acme" {
		t.Errorf("group_id = %q, want acme", decoded.GroupID)
	}
	if decoded.OverallScore < 0 || decoded.OverallScore > 100 {
		t.Errorf("overall_score = %v, out of [0,100]", decoded.OverallScore)
	}
}

func TestPartialFailureTagging(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeStrict, opsGroup("alpha"), opsGroup("beta"))

	out, err := ops.Execute(context.Background(), "detect_coalition_formation", map[string]any{
		"entities": []any{"alpha", "beta", "ghost"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	var decoded struct {
		ErrorKind string   `json:"error_kind"`
		Warnings  []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if decoded.ErrorKind != string(KindPartialFailure) {
		t.Errorf("error_kind = %q, want partial_failure when a lookup fails", decoded.ErrorKind)
	}
	if len(decoded.Warnings) != 1 || !strings.Contains(decoded.Warnings[0], "ghost") {
		t.Errorf("warnings = %v, want the failed entity noted", decoded.Warnings)
	}

	clean, err := ops.Execute(context.Background(), "detect_coalition_formation", map[string]any{
		"entities": []any{"alpha", "beta"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.Contains(clean, "error_kind") {
		t.Errorf("fully successful result carried error_kind:\n%s", clean)
	}
}

func TestSandboxOperationsNeverFailOnUnknownIDs(t *testing.T) {
	ops := newTestRegistry(t, registry.ModeSandbox)
	calls := map[string]map[string]any{
		"detect_coalition_formation": {"entities": []any{"a", "b", "c"}},
		"track_coalition_evolution":  {"group_ids": []any{"a"}},
		"predict_group_actions":      {"group_id": "a", "scenario": "merger"},
		"analyze_group_influence":    {"group_id": "a"},
		"map_stakeholder_networks":   {"central_entity": "a"},
		"identify_group_leaders":     {"group_id": "a"},
		"monitor_group_messaging":    {"group_ids": []any{"a", "b"}},
	}
	for name, params := range calls {
		if _, err := ops.Execute(context.Background(), name, params); err != nil {
			t.Errorf("%s failed in sandbox mode: %v", name, err)
		}
	}
}

type panickyOp struct{}

func (panickyOp) Name() string               { return "panicky" }
func (panickyOp) Description() string        { return "always panics" }
func (panickyOp) Parameters() map[string]any { return map[string]any{"type": "object"} }
func (panickyOp) Execute(context.Context, map[string]any) (string, error) {
	panic("boom")
}

func TestPanicRecovery(t *testing.T) {
	ops := NewRegistry()
	ops.Register(panickyOp{})

	out, err := ops.Execute(context.Background(), "panicky", nil)
	if out != "" {
		t.Errorf("out = %q, want empty on panic", out)
	}
	if kindOf(t, err) != KindInternal {
		t.Fatalf("kind = %v, want internal_error on panic", kindOf(t, err))
	}
}

func TestErrorEnvelope(t *testing.T) {
	e := &Error{Kind: KindValidation, Message: "entities is required"}
	var decoded struct {
		Err struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Envelope()), &decoded); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if decoded.Err.Kind != "validation_error" {
		t.Errorf("kind = %q, want validation_error", decoded.Err.Kind)
	}
	if !strings.Contains(decoded.Err.Message, "entities") {
		t.Errorf("message = %q, want the field name preserved", decoded.Err.Message)
	}
}
