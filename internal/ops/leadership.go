package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// IdentifyGroupLeaders infers the leadership structure of a group.
type IdentifyGroupLeaders struct {
	engine *engine.Engine
}

func NewIdentifyGroupLeaders(e *engine.Engine) *IdentifyGroupLeaders {
	return &IdentifyGroupLeaders{engine: e}
}

func (op *IdentifyGroupLeaders) Name() string { return "identify_group_leaders" }

func (op *IdentifyGroupLeaders) Description() string {
	return "Identify a group's leaders and leadership structure, with optional emerging-leader detection, succession analysis and influence pathways."
}

func (op *IdentifyGroupLeaders) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"group_id": stringSchema("Group id to analyse"),
			"leadership_criteria": stringListSchema(
				"Criteria to score: formal_position, influence_score, network_centrality, media_presence (default: first three)"),
			"include_emerging_leaders": map[string]any{
				"type":        "boolean",
				"description": "Also surface members likely to emerge as leaders",
			},
		},
		"required": []string{"group_id"},
	}
}

func (op *IdentifyGroupLeaders) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.LeadershipRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if req.GroupID == "" {
		return "", validationf("group_id is required")
	}
	result, err := op.engine.IdentifyLeaders(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
