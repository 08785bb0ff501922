package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// PredictGroupActions forecasts likely actions for one group under a
// scenario.
type PredictGroupActions struct {
	engine *engine.Engine
}

func NewPredictGroupActions(e *engine.Engine) *PredictGroupActions {
	return &PredictGroupActions{engine: e}
}

func (op *PredictGroupActions) Name() string { return "predict_group_actions" }

func (op *PredictGroupActions) Description() string {
	return "Predict the actions a stakeholder group is likely to take in a given scenario, with timelines, resource strain and impact analysis."
}

func (op *PredictGroupActions) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"group_id":           stringSchema("Group id to forecast"),
			"scenario":           stringSchema("Free-text scenario the group is responding to"),
			"prediction_horizon": stringSchema("Forecast horizon, e.g. 30d (default)"),
			"action_types": stringListSchema(
				"Candidate action types (default: statement, lobbying, campaign, litigation, coalition_building)"),
		},
		"required": []string{"group_id", "scenario"},
	}
}

func (op *PredictGroupActions) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.PredictionRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if req.GroupID == "" {
		return "", validationf("group_id is required")
	}
	if req.Scenario == "" {
		return "", validationf("scenario is required")
	}
	result, err := op.engine.PredictActions(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
