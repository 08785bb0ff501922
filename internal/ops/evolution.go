package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// TrackCoalitionEvolution reconstructs bounded event timelines for
// coalitions and groups.
type TrackCoalitionEvolution struct {
	engine *engine.Engine
}

func NewTrackCoalitionEvolution(e *engine.Engine) *TrackCoalitionEvolution {
	return &TrackCoalitionEvolution{engine: e}
}

func (op *TrackCoalitionEvolution) Name() string { return "track_coalition_evolution" }

func (op *TrackCoalitionEvolution) Description() string {
	return "Track how a coalition or a set of groups evolved over a window: event timeline, significant changes, per-aspect trends, stability and forward predictions."
}

func (op *TrackCoalitionEvolution) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"coalition_id": stringSchema("Coalition id to track"),
			"group_ids":    stringListSchema("Group ids to track"),
			"evolution_aspects": stringListSchema(
				"Aspects to track: membership, objectives, influence, relationships, actions (default: first four)"),
			"timeframe": stringSchema("Lookback window, e.g. 90d (default)"),
		},
	}
}

func (op *TrackCoalitionEvolution) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.EvolutionRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if req.CoalitionID == "" && len(req.GroupIDs) == 0 {
		return "", validationf("either coalition_id or group_ids is required")
	}
	result, err := op.engine.TrackEvolution(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
