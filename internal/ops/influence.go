package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// AnalyzeGroupInfluence scores a group's influence along multiple
// dimensions.
type AnalyzeGroupInfluence struct {
	engine *engine.Engine
}

func NewAnalyzeGroupInfluence(e *engine.Engine) *AnalyzeGroupInfluence {
	return &AnalyzeGroupInfluence{engine: e}
}

func (op *AnalyzeGroupInfluence) Name() string { return "analyze_group_influence" }

func (op *AnalyzeGroupInfluence) Description() string {
	return "Score a group's influence along the political, media, economic, social and regulatory dimensions, with vectors, trends and optional comparisons."
}

func (op *AnalyzeGroupInfluence) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"group_id": stringSchema("Group id to score"),
			"influence_dimensions": stringListSchema(
				"Dimensions to score: political, media, economic, social, regulatory (default: all)"),
			"comparison_groups": stringListSchema("Group ids to compare against"),
		},
		"required": []string{"group_id"},
	}
}

func (op *AnalyzeGroupInfluence) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.InfluenceRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if req.GroupID == "" {
		return "", validationf("group_id is required")
	}
	result, err := op.engine.AnalyzeInfluence(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
