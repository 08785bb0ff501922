package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/signal"
)

// objectiveTaxonomy is the fixed set of candidate shared objectives
// evaluated for every detection request.
var objectiveTaxonomy = []string{
	"policy_reform",
	"regulatory_relief",
	"market_access",
	"public_awareness",
	"environmental_protection",
	"industry_standards",
}

// CoalitionRequest asks for emerging-alliance detection across entities.
type CoalitionRequest struct {
	Entities    []string `json:"entities"`
	Issues      []string `json:"issues,omitempty"`
	Timeframe   string   `json:"timeframe,omitempty"`   // default "30d"
	Sensitivity string   `json:"sensitivity,omitempty"` // low | medium | high
}

// FormationSignal is one retained pairwise communication-pattern signal.
type FormationSignal struct {
	EntityA        string   `json:"entity_a"`
	EntityB        string   `json:"entity_b"`
	FrequencyScore float64  `json:"frequency_score"`
	Channels       []string `json:"channels,omitempty"`
	SharedTopics   []string `json:"shared_topics,omitempty"`
	Sentiment      string   `json:"sentiment"`
	Trend          string   `json:"trend"`
}

// ObjectiveAlignment records which entities align behind one candidate
// objective and how strongly.
type ObjectiveAlignment struct {
	Objective          string   `json:"objective"`
	SupportingEntities []string `json:"supporting_entities"`
	AlignmentStrength  float64  `json:"alignment_strength"`
	EvidenceStrength   float64  `json:"evidence_strength"`
	FormationTimeline  string   `json:"formation_timeline"`
}

// RiskAssessment summarises coalition-formation risk for the caller.
type RiskAssessment struct {
	OverallRisk           string   `json:"overall_risk"`
	EntitiesAtRisk        []string `json:"entities_at_risk"`
	RecommendedMonitoring []string `json:"recommended_monitoring"`
}

// CoalitionResult is the full detection response.
type CoalitionResult struct {
	Entities         []string                 `json:"entities"`
	Timeframe        string                   `json:"timeframe"`
	Sensitivity      string                   `json:"sensitivity"`
	Signals          []FormationSignal        `json:"communication_signals"`
	SharedObjectives []ObjectiveAlignment     `json:"shared_objectives"`
	Coalitions       []model.Coalition        `json:"coalitions"`
	Triggers         []model.FormationTrigger `json:"formation_triggers"`
	RiskAssessment   RiskAssessment           `json:"risk_assessment"`
	Recommendations  []string                 `json:"recommendations"`
	Warnings         []string                 `json:"warnings,omitempty"`
	GeneratedAt      time.Time                `json:"generated_at"`
}

// PartialWarnings reports the sub-step failures the analysis survived.
func (r *CoalitionResult) PartialWarnings() []string { return r.Warnings }

// frequencyThreshold maps detection sensitivity to the pairwise frequency
// cut-off. Higher sensitivity retains weaker signals.
func frequencyThreshold(sensitivity string) float64 {
	switch sensitivity {
	case "high":
		return 0.3
	case "low":
		return 0.7
	default:
		return 0.5
	}
}

// DetectCoalitionFormation finds emerging alliances among the given
// entities from communication-pattern and shared-objective signals.
func (e *Engine) DetectCoalitionFormation(ctx context.Context, req CoalitionRequest) (*CoalitionResult, error) {
	sensitivity := req.Sensitivity
	if sensitivity == "" {
		sensitivity = "medium"
	}
	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "30d"
	}

	entities := dedupe(req.Entities)
	result := &CoalitionResult{
		Entities:         entities,
		Timeframe:        timeframe,
		Sensitivity:      sensitivity,
		Signals:          []FormationSignal{},
		SharedObjectives: []ObjectiveAlignment{},
		Coalitions:       []model.Coalition{},
		Triggers:         []model.FormationTrigger{},
		Recommendations:  []string{},
		GeneratedAt:      e.now().UTC(),
	}

	profiles, warnings := e.fetchProfiles(ctx, entities)
	result.Warnings = warnings

	known := make([]string, 0, len(entities))
	for _, id := range entities {
		if profiles[id] != nil {
			known = append(known, id)
		}
	}

	if len(known) >= 2 {
		result.Signals = e.pairwiseSignals(known, profiles, frequencyThreshold(sensitivity))
	}

	if len(known) >= 2 {
		result.SharedObjectives = e.objectiveAlignments(known, profiles)
		result.Coalitions = e.emitCoalitions(result.SharedObjectives)
	}

	result.Triggers = e.formationTriggers(entities, req.Issues, timeframe)
	result.RiskAssessment = assessFormationRisk(result.Coalitions, result.Triggers)
	result.Recommendations = formationRecommendations(result.RiskAssessment.OverallRisk,
		len(result.Coalitions), len(result.Triggers))

	return result, nil
}

// fetchProfiles resolves entity profiles with bounded concurrency. A failed
// lookup becomes a warning, not an aborted call.
func (e *Engine) fetchProfiles(ctx context.Context, ids []string) (map[string]*model.StakeholderGroup, []string) {
	profiles := make([]*model.StakeholderGroup, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxWorkers)
	for i, id := range ids {
		g.Go(func() error {
			p, err := e.registry.Profile(gctx, id)
			if err != nil {
				errs[i] = err
				return nil
			}
			profiles[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]*model.StakeholderGroup, len(ids))
	var warnings []string
	for i, id := range ids {
		if errs[i] != nil {
			warnings = append(warnings, partialWarning("profile lookup", id, errs[i]))
			continue
		}
		out[id] = profiles[i]
	}
	return out, warnings
}

func (e *Engine) pairwiseSignals(ids []string, profiles map[string]*model.StakeholderGroup, threshold float64) []FormationSignal {
	var out []FormationSignal
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := signal.PairKey(ids[i], ids[j])
			freq := e.signals.Score("comm_frequency", a, b)
			if freq <= threshold {
				continue
			}
			out = append(out, FormationSignal{
				EntityA:        a,
				EntityB:        b,
				FrequencyScore: freq,
				Channels:       sharedChannels(profiles[a], profiles[b]),
				SharedTopics:   sharedObjectiveTopics(profiles[a], profiles[b]),
				Sentiment: e.signals.Pick(
					[]string{"positive", "neutral", "negative"}, "comm_sentiment", a, b),
				Trend: e.signals.Pick(
					[]string{"increasing", "stable", "decreasing"}, "comm_trend", a, b),
			})
		}
	}
	return out
}

func sharedChannels(a, b *model.StakeholderGroup) []string {
	return dedupe(append(append([]string{}, a.CommunicationChannels...), b.CommunicationChannels...))
}

func sharedObjectiveTopics(a, b *model.StakeholderGroup) []string {
	var shared []string
	for _, oa := range a.Objectives {
		for _, ob := range b.Objectives {
			if oa == ob {
				shared = append(shared, oa)
			}
		}
	}
	return dedupe(shared)
}

func (e *Engine) objectiveAlignments(ids []string, profiles map[string]*model.StakeholderGroup) []ObjectiveAlignment {
	var out []ObjectiveAlignment
	for _, objective := range objectiveTaxonomy {
		var supporters []string
		var alignSum, evidenceSum float64
		for _, id := range ids {
			alignment := e.signals.Score("objective_alignment", id, objective)
			// An objective declared on the profile dominates the inferred
			// alignment signal.
			if contains(profiles[id].Objectives, objective) && alignment < 0.85 {
				alignment = 0.85
			}
			if alignment <= 0.6 {
				continue
			}
			supporters = append(supporters, id)
			alignSum += alignment
			evidenceSum += e.signals.Score("objective_evidence", id, objective)
		}
		if len(supporters) == 0 {
			continue
		}
		n := float64(len(supporters))
		alignment := alignSum / n
		out = append(out, ObjectiveAlignment{
			Objective:          objective,
			SupportingEntities: supporters,
			AlignmentStrength:  alignment,
			EvidenceStrength:   evidenceSum / n,
			FormationTimeline:  alignmentTimeline(alignment),
		})
	}
	return out
}

func alignmentTimeline(alignment float64) string {
	switch {
	case alignment > 0.8:
		return "2-4 weeks"
	case alignment > 0.7:
		return "1-2 months"
	default:
		return "2-3 months"
	}
}

// emitCoalitions turns each sufficiently supported objective into one
// coalition per central entity. Every emitted coalition carries the full
// supporter set, so potential_members always has at least three ids.
func (e *Engine) emitCoalitions(alignments []ObjectiveAlignment) []model.Coalition {
	var out []model.Coalition
	for _, al := range alignments {
		if len(al.SupportingEntities) <= 2 {
			continue
		}
		supportShare := float64(len(al.SupportingEntities)) / 10
		if supportShare > 1 {
			supportShare = 1
		}
		likelihood := model.Clip01(
			0.4*al.AlignmentStrength + 0.3*al.EvidenceStrength + 0.3*supportShare)

		var indicators []string
		if al.AlignmentStrength > 0.8 {
			indicators = append(indicators, "high_alignment")
		}
		if al.EvidenceStrength > 0.7 {
			indicators = append(indicators, "strong_evidence")
		}
		if len(al.SupportingEntities) >= 5 {
			indicators = append(indicators, "broad_support")
		}

		for _, central := range al.SupportingEntities {
			out = append(out, model.Coalition{
				ID:                  uuid.NewString(),
				Name:                fmt.Sprintf("%s coalition around %s", al.Objective, central),
				CentralEntity:       central,
				PotentialMembers:    append([]string{}, al.SupportingEntities...),
				SharedObjective:     al.Objective,
				FormationLikelihood: likelihood,
				StrengthIndicators:  indicators,
				FormationTimeline:   al.FormationTimeline,
				PotentialImpact:     model.Level(levelFromScore(likelihood, 0.4, 0.7)),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FormationLikelihood > out[j].FormationLikelihood
	})
	return out
}

func (e *Engine) formationTriggers(entities, issues []string, timeframe string) []model.FormationTrigger {
	scope := append(append([]string{}, entities...), timeframe)
	var out []model.FormationTrigger

	for _, tt := range []struct {
		kind, desc string
	}{
		{"regulatory_change", "Pending regulatory changes affecting the monitored entities"},
		{"market_disruption", "Market disruption pressuring the monitored entities toward joint action"},
	} {
		likelihood := e.signals.Score(append([]string{"trigger", tt.kind}, scope...)...)
		out = append(out, model.FormationTrigger{
			Type:             tt.kind,
			Description:      tt.desc,
			AffectedEntities: append([]string{}, entities...),
			Urgency:          model.Level(levelFromScore(likelihood, 0.4, 0.7)),
			Likelihood:       likelihood,
		})
	}

	for _, issue := range dedupe(issues) {
		likelihood := e.signals.Score("trigger", "issue_escalation", issue, timeframe)
		out = append(out, model.FormationTrigger{
			Type:             "issue_escalation",
			Description:      fmt.Sprintf("Escalation around issue %q", issue),
			AffectedEntities: append([]string{}, entities...),
			Urgency:          model.Level(levelFromScore(likelihood, 0.4, 0.7)),
			Likelihood:       likelihood,
		})
	}
	return out
}

// assessFormationRisk applies the risk contract: high needs a likely
// coalition and an urgent trigger together, either alone is medium.
func assessFormationRisk(coalitions []model.Coalition, triggers []model.FormationTrigger) RiskAssessment {
	var likelyCoalition bool
	var atRisk []string
	var monitoring []string
	for _, c := range coalitions {
		monitoring = append(monitoring, c.SharedObjective)
		if c.FormationLikelihood > 0.7 {
			likelyCoalition = true
			atRisk = append(atRisk, c.PotentialMembers...)
		}
	}

	var urgentTrigger bool
	for _, t := range triggers {
		monitoring = append(monitoring, t.Type)
		if t.Urgency == model.LevelHigh {
			urgentTrigger = true
			atRisk = append(atRisk, t.AffectedEntities...)
		}
	}

	risk := "low"
	switch {
	case likelyCoalition && urgentTrigger:
		risk = "high"
	case likelyCoalition || urgentTrigger:
		risk = "medium"
	}

	return RiskAssessment{
		OverallRisk:           risk,
		EntitiesAtRisk:        dedupe(atRisk),
		RecommendedMonitoring: dedupe(monitoring),
	}
}

func formationRecommendations(risk string, coalitionCount, triggerCount int) []string {
	var recs []string
	switch risk {
	case "high":
		recs = append(recs,
			"Escalate monitoring cadence to daily; coalition formation and an urgent trigger are both present")
	case "medium":
		recs = append(recs,
			"Increase monitoring cadence to weekly and review counter-messaging options")
	default:
		recs = append(recs,
			"Maintain routine monitoring of the listed entities")
	}
	if coalitionCount > 0 {
		recs = append(recs, fmt.Sprintf(
			"Track the %d detected coalition candidate(s) for membership changes", coalitionCount))
	}
	if triggerCount > 0 {
		recs = append(recs,
			"Watch the identified formation triggers for urgency changes")
	}
	return recs
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
