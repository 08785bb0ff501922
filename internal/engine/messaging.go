package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stakewatch/stakewatch/internal/model"
)

var defaultMessageTypes = []string{"press_release", "social_media", "public_statement", "interview"}

var defaultTopics = []string{"regulation", "policy", "market_conditions", "public_interest", "industry_news"}

// MessagingRequest asks for cross-group messaging monitoring.
type MessagingRequest struct {
	GroupIDs     []string `json:"group_ids"`
	MessageTypes []string `json:"message_types,omitempty"`
	Topics       []string `json:"topics,omitempty"`
	Timeframe    string   `json:"timeframe,omitempty"` // default "7d"
}

// CoordinatedMessage is one detected synchronized messaging event.
type CoordinatedMessage struct {
	Topic       string   `json:"topic"`
	Groups      []string `json:"groups"`
	Description string   `json:"description"`
}

// CoordinationAnalysis flags cross-group messaging coordination.
type CoordinationAnalysis struct {
	MultiGroupMessaging bool                 `json:"multi_group_messaging"`
	CoordinatedMessages []CoordinatedMessage `json:"coordinated_messages"`
}

// CrossGroupAnalysis aggregates sentiment across monitored groups.
type CrossGroupAnalysis struct {
	OverallSentiment float64  `json:"overall_sentiment"` // -1..1
	OutlierGroups    []string `json:"outlier_groups"`
}

// MessagingImpact estimates reach and qualitative influence.
type MessagingImpact struct {
	TotalReach            int    `json:"total_reach"`
	NarrativeInfluence    string `json:"narrative_influence"`
	PolicyImpactPotential string `json:"policy_impact_potential"`
	PublicOpinionShift    string `json:"public_opinion_shift"`
}

// MessagingResult is the full monitoring response.
type MessagingResult struct {
	GroupIDs        []string                `json:"group_ids"`
	MessageTypes    []string                `json:"message_types"`
	Topics          []string                `json:"topics"`
	Timeframe       string                  `json:"timeframe"`
	Records         []model.MessagingRecord `json:"records"`
	CrossGroup      CrossGroupAnalysis      `json:"cross_group_analysis"`
	Coordination    CoordinationAnalysis    `json:"coordination_analysis"`
	Impact          MessagingImpact         `json:"impact_assessment"`
	Recommendations []string                `json:"recommendations"`
	Warnings        []string                `json:"warnings,omitempty"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// PartialWarnings reports the sub-step failures the analysis survived.
func (r *MessagingResult) PartialWarnings() []string { return r.Warnings }

// reachPerMessage is the fixed audience multiplier applied to message
// volume when estimating total reach.
const reachPerMessage = 1000

// MonitorMessaging synthesises per-group messaging records and analyses
// cross-group sentiment, coordination and impact.
func (e *Engine) MonitorMessaging(ctx context.Context, req MessagingRequest) (*MessagingResult, error) {
	groupIDs := dedupe(req.GroupIDs)
	messageTypes := dedupe(req.MessageTypes)
	if len(messageTypes) == 0 {
		messageTypes = append([]string{}, defaultMessageTypes...)
	}
	topics := dedupe(req.Topics)
	if len(topics) == 0 {
		topics = append([]string{}, defaultTopics...)
	}
	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "7d"
	}

	result := &MessagingResult{
		GroupIDs:        groupIDs,
		MessageTypes:    messageTypes,
		Topics:          topics,
		Timeframe:       timeframe,
		Records:         []model.MessagingRecord{},
		Recommendations: []string{},
		GeneratedAt:     e.now().UTC(),
	}

	// Per-group synthesis is independent; fan out with bounded workers.
	records := make([]*model.MessagingRecord, len(groupIDs))
	errs := make([]error, len(groupIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)
	for i, id := range groupIDs {
		g.Go(func() error {
			profile, err := e.registry.Profile(gctx, id)
			if err != nil {
				errs[i] = err
				return nil
			}
			rec := e.messagingRecord(profile, messageTypes, topics, timeframe)
			records[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	for i, id := range groupIDs {
		if errs[i] != nil {
			result.Warnings = append(result.Warnings,
				partialWarning("messaging synthesis", id, errs[i]))
			continue
		}
		result.Records = append(result.Records, *records[i])
	}

	result.CrossGroup = crossGroupSentiment(result.Records)
	result.Coordination = e.detectCoordination(result.Records, topics)
	result.Impact = assessMessagingImpact(result.Records, result.CrossGroup.OverallSentiment)
	result.Recommendations = messagingRecommendations(
		result.CrossGroup, result.Coordination, result.Impact)
	return result, nil
}

func (e *Engine) messagingRecord(g *model.StakeholderGroup, messageTypes, topics []string, timeframe string) model.MessagingRecord {
	base := 20
	switch g.ActivityLevel {
	case model.LevelHigh:
		base = 120
	case model.LevelMedium:
		base = 60
	}
	volume := int(float64(base) * (0.5 + e.signals.Score("message_volume", g.ID, timeframe)))

	breakdown := make(map[string]int, len(messageTypes))
	var weightSum float64
	weights := make([]float64, len(messageTypes))
	for i, mt := range messageTypes {
		weights[i] = 0.1 + e.signals.Score("message_type_share", g.ID, mt)
		weightSum += weights[i]
	}
	for i, mt := range messageTypes {
		breakdown[mt] = int(float64(volume) * weights[i] / weightSum)
	}

	coverage := make(map[string]float64, len(topics))
	var coverageSum float64
	for _, topic := range topics {
		w := e.signals.Score("topic_share", g.ID, topic)
		coverage[topic] = w
		coverageSum += w
	}
	if coverageSum > 0 {
		for topic := range coverage {
			coverage[topic] = coverage[topic] / coverageSum
		}
	}

	pos := e.signals.Score("sentiment_positive", g.ID, timeframe)
	neu := e.signals.Score("sentiment_neutral", g.ID, timeframe)
	neg := e.signals.Score("sentiment_negative", g.ID, timeframe)
	total := pos + neu + neg
	if total == 0 {
		pos, neu, neg, total = 1, 1, 1, 3
	}

	var keyMessages []string
	for _, obj := range g.Objectives {
		keyMessages = append(keyMessages, fmt.Sprintf("advancing %s", strings.ReplaceAll(obj, "_", " ")))
	}
	if len(keyMessages) == 0 {
		keyMessages = []string{fmt.Sprintf("positions of %s", g.Name)}
	}

	return model.MessagingRecord{
		GroupID:       g.ID,
		MessageVolume: volume,
		TypeBreakdown: breakdown,
		TopicCoverage: coverage,
		SentimentDistribution: model.SentimentDistribution{
			Positive: pos / total,
			Neutral:  neu / total,
			Negative: neg / total,
		},
		Consistency: e.signals.Score("message_consistency", g.ID, timeframe),
		KeyMessages: keyMessages,
	}
}

func crossGroupSentiment(records []model.MessagingRecord) CrossGroupAnalysis {
	analysis := CrossGroupAnalysis{OutlierGroups: []string{}}
	if len(records) == 0 {
		return analysis
	}
	var sum float64
	for _, rec := range records {
		signed := rec.SentimentDistribution.Signed()
		sum += signed
		if math.Abs(signed) > 0.5 {
			analysis.OutlierGroups = append(analysis.OutlierGroups, rec.GroupID)
		}
	}
	analysis.OverallSentiment = sum / float64(len(records))
	return analysis
}

func (e *Engine) detectCoordination(records []model.MessagingRecord, topics []string) CoordinationAnalysis {
	analysis := CoordinationAnalysis{
		MultiGroupMessaging: len(records) > 2,
		CoordinatedMessages: []CoordinatedMessage{},
	}
	if len(records) < 2 {
		return analysis
	}

	groups := make([]string, 0, len(records))
	for _, rec := range records {
		groups = append(groups, rec.GroupID)
	}

	syncKeys := append([]string{"sync_timing"}, groups...)
	if e.signals.Score(syncKeys...) > 0.6 {
		topic := e.signals.Pick(topics, syncKeys...)
		analysis.CoordinatedMessages = append(analysis.CoordinatedMessages, CoordinatedMessage{
			Topic:  topic,
			Groups: groups,
			Description: fmt.Sprintf(
				"synchronized messaging on %s across %d groups", topic, len(groups)),
		})
	}
	return analysis
}

func assessMessagingImpact(records []model.MessagingRecord, overallSentiment float64) MessagingImpact {
	totalReach := 0
	for _, rec := range records {
		totalReach += rec.MessageVolume * reachPerMessage
	}

	narrative := "low"
	switch {
	case totalReach > 500000:
		narrative = "high"
	case totalReach > 100000:
		narrative = "medium"
	}

	policy := "low"
	switch {
	case totalReach > 300000:
		policy = "high"
	case totalReach > 50000:
		policy = "medium"
	}

	shift := "unlikely"
	switch {
	case math.Abs(overallSentiment) > 0.3:
		shift = "likely"
	case math.Abs(overallSentiment) > 0.1:
		shift = "possible"
	}

	return MessagingImpact{
		TotalReach:            totalReach,
		NarrativeInfluence:    narrative,
		PolicyImpactPotential: policy,
		PublicOpinionShift:    shift,
	}
}

func messagingRecommendations(cross CrossGroupAnalysis, coord CoordinationAnalysis, impact MessagingImpact) []string {
	var recs []string
	if cross.OverallSentiment < -0.2 {
		recs = append(recs,
			"Prepare counter-messaging: aggregate sentiment across monitored groups is negative")
	}
	if len(cross.OutlierGroups) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Review outlier group(s) %s whose sentiment diverges strongly",
			strings.Join(cross.OutlierGroups, ", ")))
	}
	if len(coord.CoordinatedMessages) > 0 {
		recs = append(recs,
			"Investigate the detected coordinated messaging for shared sponsorship")
	} else if coord.MultiGroupMessaging {
		recs = append(recs,
			"Continue watching for synchronized timing across the monitored groups")
	}
	if impact.NarrativeInfluence == "high" {
		recs = append(recs,
			"High combined reach: treat the monitored narrative as a priority")
	}
	if len(recs) == 0 {
		recs = append(recs, "No immediate action required; maintain routine monitoring")
	}
	return recs
}
