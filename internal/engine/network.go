package engine

import (
	"context"
	"sort"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/signal"
)

// NetworkRequest asks for bounded relationship-graph traversal from one
// central entity. NetworkDepth nil means the default of 2; an explicit 0
// maps just the central entity.
type NetworkRequest struct {
	CentralEntity     string   `json:"central_entity"`
	NetworkDepth      *int     `json:"network_depth,omitempty"`
	RelationshipTypes []string `json:"relationship_types,omitempty"`
	IncludeInactive   bool     `json:"include_inactive,omitempty"`
}

// NetworkCluster groups node ids by connectivity density.
type NetworkCluster struct {
	Label   string   `json:"label"` // high_connectivity | low_connectivity
	Members []string `json:"members"`
}

// Connector is a high-degree node bridging parts of the network.
type Connector struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
	Role   string `json:"role"` // hub | bridge
}

// NetworkMetrics summarises graph shape.
type NetworkMetrics struct {
	NodeCount             int     `json:"node_count"`
	EdgeCount             int     `json:"edge_count"`
	Density               float64 `json:"density"`
	AverageDegree         float64 `json:"average_degree"`
	ClusteringCoefficient float64 `json:"clustering_coefficient"`
	DiameterEstimate      int     `json:"diameter_estimate"`
}

// NetworkResult is the full mapping response. Nodes are kept in an id-keyed
// arena during traversal and flattened here; edges reference node ids only.
type NetworkResult struct {
	CentralEntity      string               `json:"central_entity"`
	NetworkDepth       int                  `json:"network_depth"`
	RelationshipTypes  []string             `json:"relationship_types"`
	Nodes              []model.NetworkNode  `json:"nodes"`
	Edges              []model.NetworkEdge  `json:"edges"`
	Clusters           []NetworkCluster     `json:"clusters"`
	PrimaryInfluencers []string             `json:"primary_influencers"`
	KeyConnectors      []Connector          `json:"key_connectors"`
	Metrics            NetworkMetrics       `json:"network_metrics"`
	Warnings           []string             `json:"warnings,omitempty"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

// PartialWarnings reports the sub-step failures the analysis survived.
func (r *NetworkResult) PartialWarnings() []string { return r.Warnings }

type connection struct {
	target  string
	relType model.RelationshipType
}

// MapNetwork performs breadth-first traversal from the central entity out to
// the requested depth. The visited set guarantees unique node ids and the
// node cap bounds memory on dense graphs.
func (e *Engine) MapNetwork(ctx context.Context, req NetworkRequest) (*NetworkResult, error) {
	depth := 2
	if req.NetworkDepth != nil && *req.NetworkDepth >= 0 {
		depth = *req.NetworkDepth
	}
	wantTypes := relationshipFilter(req.RelationshipTypes)

	result := &NetworkResult{
		CentralEntity:     req.CentralEntity,
		NetworkDepth:      depth,
		RelationshipTypes: relationshipNames(wantTypes),
		Nodes:             []model.NetworkNode{},
		Edges:             []model.NetworkEdge{},
		GeneratedAt:       e.now().UTC(),
	}

	central, err := e.registry.Profile(ctx, req.CentralEntity)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]model.NetworkNode)
	var order []string
	var edges []model.NetworkEdge
	edgeSeen := make(map[string]bool)

	addNode := func(g *model.StakeholderGroup, d int) {
		nodes[g.ID] = model.NetworkNode{
			ID:             g.ID,
			Name:           g.Name,
			Type:           g.Type,
			InfluenceScore: g.InfluenceScore,
			ActivityLevel:  g.ActivityLevel,
			DepthLevel:     d,
		}
		order = append(order, g.ID)
	}
	addNode(central, 0)

	type queueItem struct {
		id    string
		depth int
	}
	queue := []queueItem{{central.ID, 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := queue[0]
		queue = queue[1:]
		if item.depth >= depth {
			continue
		}

		profile, err := e.registry.Profile(ctx, item.id)
		if err != nil {
			result.Warnings = append(result.Warnings,
				partialWarning("connection lookup", item.id, err))
			continue
		}

		for _, conn := range e.connections(profile, wantTypes) {
			if conn.target == item.id {
				continue
			}
			if _, known := nodes[conn.target]; !known {
				if len(nodes) >= e.maxNetworkNodes {
					continue
				}
				np, err := e.registry.Profile(ctx, conn.target)
				if err != nil {
					result.Warnings = append(result.Warnings,
						partialWarning("connection lookup", conn.target, err))
					continue
				}
				if !req.IncludeInactive && np.Status == "inactive" {
					continue
				}
				addNode(np, item.depth+1)
				queue = append(queue, queueItem{conn.target, item.depth + 1})
			}

			a, b := signal.PairKey(item.id, conn.target)
			edgeKey := a + "\x00" + b + "\x00" + string(conn.relType)
			if edgeSeen[edgeKey] {
				continue
			}
			edgeSeen[edgeKey] = true

			direction := "bidirectional"
			if conn.relType == model.RelDependency {
				direction = "unidirectional"
			}
			edges = append(edges, model.NetworkEdge{
				SourceID:         item.id,
				TargetID:         conn.target,
				RelationshipType: conn.relType,
				Strength:         e.signals.Score("edge_strength", string(conn.relType), a, b),
				Direction:        direction,
			})
		}
	}

	for _, id := range order {
		result.Nodes = append(result.Nodes, nodes[id])
	}
	result.Edges = edges

	e.summarizeNetwork(result)
	return result, nil
}

// connections enumerates a profile's outgoing relationships, including the
// derived dependency/competition ties, filtered to the requested types.
func (e *Engine) connections(g *model.StakeholderGroup, want map[model.RelationshipType]bool) []connection {
	var out []connection
	add := func(target string, rel model.RelationshipType) {
		if want[rel] {
			out = append(out, connection{target: target, relType: rel})
		}
	}
	for _, ally := range g.Relationships.Allies {
		add(ally, model.RelAlliance)
		a, b := signal.PairKey(g.ID, ally)
		if e.signals.Score("dependency", a, b) > 0.7 {
			add(ally, model.RelDependency)
		}
	}
	for _, opp := range g.Relationships.Opponents {
		add(opp, model.RelOpposition)
		a, b := signal.PairKey(g.ID, opp)
		if e.signals.Score("competition", a, b) > 0.7 {
			add(opp, model.RelCompetition)
		}
	}
	for _, n := range g.Relationships.Neutral {
		add(n, model.RelNeutral)
	}
	return out
}

func relationshipFilter(requested []string) map[model.RelationshipType]bool {
	out := make(map[model.RelationshipType]bool)
	if len(requested) == 0 {
		for _, rt := range model.AllRelationshipTypes() {
			out[rt] = true
		}
		return out
	}
	valid := make(map[model.RelationshipType]bool)
	for _, rt := range model.AllRelationshipTypes() {
		valid[rt] = true
	}
	for _, r := range requested {
		if valid[model.RelationshipType(r)] {
			out[model.RelationshipType(r)] = true
		}
	}
	if len(out) == 0 {
		for _, rt := range model.AllRelationshipTypes() {
			out[rt] = true
		}
	}
	return out
}

func relationshipNames(want map[model.RelationshipType]bool) []string {
	var out []string
	for _, rt := range model.AllRelationshipTypes() {
		if want[rt] {
			out = append(out, string(rt))
		}
	}
	return out
}

// summarizeNetwork derives clusters, influencers, connectors and metrics
// from the final node and edge sets.
func (e *Engine) summarizeNetwork(r *NetworkResult) {
	degree := make(map[string]int)
	outDegree := make(map[string]int)
	adjacency := make(map[string]map[string]bool)

	link := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]bool)
		}
		adjacency[a][b] = true
	}
	for _, edge := range r.Edges {
		degree[edge.SourceID]++
		degree[edge.TargetID]++
		outDegree[edge.SourceID]++
		link(edge.SourceID, edge.TargetID)
		link(edge.TargetID, edge.SourceID)
	}

	high := NetworkCluster{Label: "high_connectivity", Members: []string{}}
	low := NetworkCluster{Label: "low_connectivity", Members: []string{}}
	maxDepth := 0
	for _, node := range r.Nodes {
		if node.DepthLevel > maxDepth {
			maxDepth = node.DepthLevel
		}
		if degree[node.ID] > 2 {
			high.Members = append(high.Members, node.ID)
		} else {
			low.Members = append(low.Members, node.ID)
		}
	}
	r.Clusters = []NetworkCluster{high, low}

	r.PrimaryInfluencers = topByDegree(outDegree, 3)
	for _, id := range topByDegree(degree, 3) {
		role := "bridge"
		if degree[id] > 3 {
			role = "hub"
		}
		r.KeyConnectors = append(r.KeyConnectors, Connector{
			ID:     id,
			Degree: degree[id],
			Role:   role,
		})
	}

	n := len(r.Nodes)
	m := len(r.Edges)
	metrics := NetworkMetrics{
		NodeCount:        n,
		EdgeCount:        m,
		DiameterEstimate: maxDepth * 2,
	}
	if n > 1 {
		metrics.Density = float64(m) / (float64(n) * float64(n-1) / 2)
	}
	if n > 0 {
		metrics.AverageDegree = 2 * float64(m) / float64(n)
	}
	metrics.ClusteringCoefficient = clusteringCoefficient(adjacency)
	r.Metrics = metrics
}

func topByDegree(degree map[string]int, limit int) []string {
	ids := make([]string, 0, len(degree))
	for id, d := range degree {
		if d > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if degree[ids[i]] != degree[ids[j]] {
			return degree[ids[i]] > degree[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// clusteringCoefficient averages per-node neighbourhood density over nodes
// with at least two neighbours.
func clusteringCoefficient(adjacency map[string]map[string]bool) float64 {
	var sum float64
	var counted int
	for _, neighbors := range adjacency {
		k := len(neighbors)
		if k < 2 {
			continue
		}
		links := 0
		ids := make([]string, 0, k)
		for id := range neighbors {
			ids = append(ids, id)
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if adjacency[ids[i]][ids[j]] {
					links++
				}
			}
		}
		sum += float64(links) / (float64(k) * float64(k-1) / 2)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}
