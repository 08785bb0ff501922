package ops

import (
	"context"

	"github.com/stakewatch/stakewatch/internal/engine"
)

// MonitorGroupMessaging monitors cross-group messaging coordination.
type MonitorGroupMessaging struct {
	engine *engine.Engine
}

func NewMonitorGroupMessaging(e *engine.Engine) *MonitorGroupMessaging {
	return &MonitorGroupMessaging{engine: e}
}

func (op *MonitorGroupMessaging) Name() string { return "monitor_group_messaging" }

func (op *MonitorGroupMessaging) Description() string {
	return "Monitor messaging across several groups: volume, sentiment, topic coverage, cross-group coordination signals and impact assessment."
}

func (op *MonitorGroupMessaging) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"group_ids": stringListSchema("Group ids to monitor"),
			"message_types": stringListSchema(
				"Message types to break down (default: press_release, social_media, public_statement, interview)"),
			"topics":    stringListSchema("Topics to measure coverage for"),
			"timeframe": stringSchema("Monitoring window, e.g. 7d (default)"),
		},
		"required": []string{"group_ids"},
	}
}

func (op *MonitorGroupMessaging) Execute(ctx context.Context, params map[string]any) (string, error) {
	var req engine.MessagingRequest
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	if len(req.GroupIDs) == 0 {
		return "", validationf("group_ids is required and must be non-empty")
	}
	result, err := op.engine.MonitorMessaging(ctx, req)
	if err != nil {
		return "", wrapEngineErr(op.Name(), err)
	}
	return marshalResult(result)
}
