package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// DetectCoalitionFormation finds emerging alliances among stakeholder
// entities.
type DetectCoalitionFormation struct {
	engine *engine.Engine
}

func NewDetectCoalitionFormation(e *engine.Engine) *DetectCoalitionFormation {
	return &DetectCoalitionFormation{engine: e}
}

func (op *DetectCoalitionFormation) Name() string { return "detect_coalition_formation" }

func (op *DetectCoalitionFormation) Description() string {
	return "Detect emerging coalitions among stakeholder entities from communication-pattern and shared-objective signals, with formation triggers and a risk assessment."
}

func (op *DetectCoalitionFormation) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entities":  stringListSchema("Entity ids to analyse for coalition formation"),
			"issues":    stringListSchema("Optional issues to evaluate for escalation triggers"),
			"timeframe": stringSchema("Analysis window, e.g. 30d (default)"),
			"sensitivity": map[string]any{
				"type":        "string",
				"enum":        []string{"low", "medium", "high"},
				"description": "Detection sensitivity; high retains weaker signals",
			},
		},
		"required": []string{"entities"},
	}
}

func (op *DetectCoalitionFormation) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.CoalitionRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if len(req.Entities) == 0 {
		return "", validationf("entities is required and must be non-empty")
	}
	result, err := op.engine.DetectCoalitionFormation(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
