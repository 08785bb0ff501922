package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stakewatch/stakewatch/internal/registry"
)

func TestMonitorMessagingRecords(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"), testGroup("gamma"))

	result, err := e.MonitorMessaging(context.Background(), MessagingRequest{
		GroupIDs: []string{"alpha", "beta", "gamma"},
	})
	if err != nil {
		t.Fatalf("MonitorMessaging: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("records = %d, want one per group", len(result.Records))
	}

	for _, rec := range result.Records {
		dist := rec.SentimentDistribution
		if sum := dist.Positive + dist.Neutral + dist.Negative; math.Abs(sum-1) > 1e-9 {
			t.Errorf("group %s sentiment sums to %v, want 1", rec.GroupID, sum)
		}
		if rec.MessageVolume <= 0 {
			t.Errorf("group %s message volume = %d, want positive for an active group",
				rec.GroupID, rec.MessageVolume)
		}
		var coverage float64
		for _, share := range rec.TopicCoverage {
			coverage += share
		}
		if math.Abs(coverage-1) > 1e-9 {
			t.Errorf("group %s topic coverage sums to %v, want 1", rec.GroupID, coverage)
		}
		if len(rec.KeyMessages) == 0 {
			t.Errorf("group %s has no key messages", rec.GroupID)
		}
	}

	if !result.Coordination.MultiGroupMessaging {
		t.Error("three monitored groups not flagged as multi-group messaging")
	}
}

func TestMonitorMessagingOutliersAndCoordination(t *testing.T) {
	src := newStubSource()
	// Alpha skews strongly positive; the sync signal marks coordination.
	src.scores["sentiment_positive/alpha/7d"] = 0.9
	src.scores["sentiment_neutral/alpha/7d"] = 0.05
	src.scores["sentiment_negative/alpha/7d"] = 0.05
	src.scores["sync_timing/alpha/beta/gamma"] = 0.8
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"), testGroup("gamma"))

	result, err := e.MonitorMessaging(context.Background(), MessagingRequest{
		GroupIDs: []string{"alpha", "beta", "gamma"},
	})
	if err != nil {
		t.Fatalf("MonitorMessaging: %v", err)
	}

	if len(result.CrossGroup.OutlierGroups) != 1 || result.CrossGroup.OutlierGroups[0] != "alpha" {
		t.Errorf("outliers = %v, want [alpha]", result.CrossGroup.OutlierGroups)
	}
	if len(result.Coordination.CoordinatedMessages) != 1 {
		t.Fatalf("coordinated messages = %d, want 1 on a strong sync signal",
			len(result.Coordination.CoordinatedMessages))
	}
	msg := result.Coordination.CoordinatedMessages[0]
	if len(msg.Groups) != 3 {
		t.Errorf("coordinated groups = %v, want all three", msg.Groups)
	}
	if msg.Topic == "" {
		t.Error("coordinated message has no topic")
	}
}

func TestMonitorMessagingImpact(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict,
		testGroup("alpha"), testGroup("beta"), testGroup("gamma"))

	result, err := e.MonitorMessaging(context.Background(), MessagingRequest{
		GroupIDs: []string{"alpha", "beta", "gamma"},
	})
	if err != nil {
		t.Fatalf("MonitorMessaging: %v", err)
	}

	// Three medium-activity groups at the neutral stub signal produce 60
	// messages each, so 180k estimated reach.
	if result.Impact.TotalReach != 180000 {
		t.Errorf("total reach = %d, want 180000", result.Impact.TotalReach)
	}
	if result.Impact.NarrativeInfluence != "medium" {
		t.Errorf("narrative influence = %q, want medium", result.Impact.NarrativeInfluence)
	}
	if result.Impact.PolicyImpactPotential != "medium" {
		t.Errorf("policy potential = %q, want medium", result.Impact.PolicyImpactPotential)
	}
	// Balanced sentiment means no expected opinion shift.
	if result.Impact.PublicOpinionShift != "unlikely" {
		t.Errorf("opinion shift = %q, want unlikely", result.Impact.PublicOpinionShift)
	}
}

func TestMonitorMessagingUnknownGroupWarns(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	result, err := e.MonitorMessaging(context.Background(), MessagingRequest{
		GroupIDs: []string{"alpha", "ghost"},
	})
	if err != nil {
		t.Fatalf("MonitorMessaging: %v", err)
	}
	if len(result.Records) != 1 {
		t.Errorf("records = %d, want the known group only", len(result.Records))
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want one for the unknown group", result.Warnings)
	}
}

func TestMonitorMessagingDefaults(t *testing.T) {
	src := newStubSource()
	e := newTestEngine(t, src, registry.ModeStrict, testGroup("alpha"))

	result, err := e.MonitorMessaging(context.Background(), MessagingRequest{
		GroupIDs: []string{"alpha"},
	})
	if err != nil {
		t.Fatalf("MonitorMessaging: %v", err)
	}
	if result.Timeframe != "7d" {
		t.Errorf("timeframe = %q, want the 7d default", result.Timeframe)
	}
	if len(result.MessageTypes) != len(defaultMessageTypes) {
		t.Errorf("message types = %v, want the default set", result.MessageTypes)
	}
	if len(result.Topics) != len(defaultTopics) {
		t.Errorf("topics = %v, want the default set", result.Topics)
	}
}
