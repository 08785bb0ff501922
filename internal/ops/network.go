package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// MapStakeholderNetworks performs bounded graph traversal around a central
// entity.
type MapStakeholderNetworks struct {
	engine *engine.Engine
}

func NewMapStakeholderNetworks(e *engine.Engine) *MapStakeholderNetworks {
	return &MapStakeholderNetworks{engine: e}
}

func (op *MapStakeholderNetworks) Name() string { return "map_stakeholder_networks" }

func (op *MapStakeholderNetworks) Description() string {
	return "Map the relationship network around a central entity via bounded breadth-first traversal, with clusters, key connectors and graph metrics."
}

func (op *MapStakeholderNetworks) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"central_entity": stringSchema("Entity id to map from"),
			"network_depth": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Maximum BFS hop count from the central entity (default 2)",
			},
			"relationship_types": stringListSchema(
				"Edge types to follow: alliance, opposition, neutral, dependency, competition (default: all)"),
			"include_inactive": map[string]any{
				"type":        "boolean",
				"description": "Include entities whose profile status is inactive",
			},
		},
		"required": []string{"central_entity"},
	}
}

func (op *MapStakeholderNetworks) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.NetworkRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if req.CentralEntity == "" {
		return "", validationf("central_entity is required")
	}
	if req.NetworkDepth != nil && *req.NetworkDepth < 0 {
		return "", validationf("network_depth must not be negative")
	}
	result, err := op.engine.MapNetwork(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
