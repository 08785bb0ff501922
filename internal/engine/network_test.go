package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/registry"
)

func intPtr(i int) *int { return &i }

// networkFixture seeds a small graph: alpha allied with beta and gamma,
// opposed to delta (inactive), beta allied onward to epsilon.
func networkFixture(t *testing.T, src *stubSource) *Engine {
	t.Helper()
	return newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha", func(g *model.StakeholderGroup) {
			g.Relationships.Allies = []string{"beta", "gamma"}
			g.Relationships.Opponents = []string{"delta"}
		}),
		testGroup("beta", func(g *model.StakeholderGroup) {
			g.Relationships.Allies = []string{"alpha", "epsilon"}
		}),
		testGroup("gamma"),
		testGroup("delta", func(g *model.StakeholderGroup) {
			g.Status = "inactive"
		}),
		testGroup("epsilon"),
	)
}

func TestMapNetworkDepthZero(t *testing.T) {
	e := networkFixture(t, newStubSource())

	result, err := e.MapNetwork(context.Background(), NetworkRequest{
		CentralEntity: "alpha",
		NetworkDepth:  intPtr(0),
	})
	if err != nil {
		t.Fatalf("MapNetwork: %v", err)
	}
	if len(result.Nodes) != 1 || result.Nodes[0].ID != "alpha" {
		t.Errorf("nodes = %v, want just the central entity", result.Nodes)
	}
	if len(result.Edges) != 0 {
		t.Errorf("edges = %d, want 0 at depth 0", len(result.Edges))
	}
	if result.Metrics.NodeCount != 1 || result.Metrics.EdgeCount != 0 {
		t.Errorf("metrics = %+v, want single-node counts", result.Metrics)
	}
}

func TestMapNetworkTraversalInvariants(t *testing.T) {
	e := networkFixture(t, newStubSource())

	result, err := e.MapNetwork(context.Background(), NetworkRequest{
		CentralEntity: "alpha",
	})
	if err != nil {
		t.Fatalf("MapNetwork: %v", err)
	}

	seen := make(map[string]int)
	for _, node := range result.Nodes {
		seen[node.ID]++
		if node.DepthLevel > result.NetworkDepth {
			t.Errorf("node %s at depth %d beyond limit %d",
				node.ID, node.DepthLevel, result.NetworkDepth)
		}
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("node %s appears %d times", id, n)
		}
	}
	for _, edge := range result.Edges {
		if seen[edge.SourceID] == 0 || seen[edge.TargetID] == 0 {
			t.Errorf("edge %s -> %s references a node outside the set",
				edge.SourceID, edge.TargetID)
		}
		if edge.Strength < 0 || edge.Strength > 1 {
			t.Errorf("edge strength %v out of [0,1]", edge.Strength)
		}
	}

	// Default depth reaches epsilon through beta but stops there.
	if seen["epsilon"] == 0 {
		t.Error("depth-2 traversal missed epsilon")
	}
	// Inactive opponents stay out without the flag.
	if seen["delta"] != 0 {
		t.Error("inactive node included without include_inactive")
	}
}

func TestMapNetworkIncludeInactive(t *testing.T) {
	e := networkFixture(t, newStubSource())

	result, err := e.MapNetwork(context.Background(), NetworkRequest{
		CentralEntity:   "alpha",
		IncludeInactive: true,
	})
	if err != nil {
		t.Fatalf("MapNetwork: %v", err)
	}
	found := false
	for _, node := range result.Nodes {
		if node.ID == "delta" {
			found = true
		}
	}
	if !found {
		t.Error("include_inactive did not surface the inactive node")
	}
}

func TestMapNetworkRelationshipFilter(t *testing.T) {
	e := networkFixture(t, newStubSource())

	result, err := e.MapNetwork(context.Background(), NetworkRequest{
		CentralEntity:     "alpha",
		RelationshipTypes: []string{"opposition"},
		IncludeInactive:   true,
	})
	if err != nil {
		t.Fatalf("MapNetwork: %v", err)
	}
	for _, edge := range result.Edges {
		if edge.RelationshipType != model.RelOpposition {
			t.Errorf("edge type %s leaked through the opposition filter", edge.RelationshipType)
		}
	}
	if len(result.Edges) != 1 {
		t.Errorf("edges = %d, want just alpha-delta opposition", len(result.Edges))
	}
}

func TestMapNetworkDependencyEdges(t *testing.T) {
	src := newStubSource()
	src.scores["dependency/alpha/beta"] = 0.9
	e := networkFixture(t, src)

	result, err := e.MapNetwork(context.Background(), NetworkRequest{
		CentralEntity: "alpha",
	})
	if err != nil {
		t.Fatalf("MapNetwork: %v", err)
	}
	var dependency *model.NetworkEdge
	for i, edge := range result.Edges {
		if edge.RelationshipType == model.RelDependency {
			if dependency != nil {
				t.Fatal("duplicate dependency edge for one pair")
			}
			dependency = &result.Edges[i]
		}
	}
	if dependency == nil {
		t.Fatal("strong dependency signal produced no dependency edge")
	}
	if dependency.Direction != "unidirectional" {
		t.Errorf("dependency direction = %q, want unidirectional", dependency.Direction)
	}
}

func TestMapNetworkNodeCap(t *testing.T) {
	src := newStubSource()
	store := registry.NewMemoryStore()
	for _, g := range []*model.StakeholderGroup{
		testGroup("alpha", func(g *model.StakeholderGroup) {
			g.Relationships.Allies = []string{"beta", "gamma", "delta"}
		}),
		testGroup("beta"), testGroup("gamma"), testGroup("delta"),
	} {
		if err := store.Put(context.Background(), g); err != nil {
			t.Fatal(err)
		}
	}
	reg := registry.New(registry.Options{Store: store, Signals: src, Mode: registry.ModeStrict})
	e := New(reg, src, Options{
		MaxNetworkNodes: 2,
		Now:             func() time.Time { return testEpoch },
	})

	result, err := e.MapNetwork(context.Background(), NetworkRequest{CentralEntity: "alpha"})
	if err != nil {
		t.Fatalf("MapNetwork: %v", err)
	}
	if len(result.Nodes) > 2 {
		t.Errorf("nodes = %d, want at most the cap of 2", len(result.Nodes))
	}
}

func TestMapNetworkCancelledContext(t *testing.T) {
	e := networkFixture(t, newStubSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.MapNetwork(ctx, NetworkRequest{CentralEntity: "alpha"}); err == nil {
		t.Fatal("cancelled context did not abort traversal")
	}
}

func TestMapNetworkUnknownCentral(t *testing.T) {
	e := networkFixture(t, newStubSource())
	if _, err := e.MapNetwork(context.Background(), NetworkRequest{CentralEntity: "ghost"}); err == nil {
		t.Fatal("unknown central entity did not fail in strict mode")
	}
}
