package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
)

// defaultActionTypes is the candidate set when the caller does not narrow
// the prediction.
var defaultActionTypes = []string{"statement", "lobbying", "campaign", "litigation", "coalition_building"}

// actionTargets is the fixed action-type to target mapping.
var actionTargets = map[string][]string{
	"statement":          {"public", "media"},
	"lobbying":           {"legislators", "regulators"},
	"campaign":           {"public", "supporters"},
	"litigation":         {"courts", "opposing_parties"},
	"coalition_building": {"allied_groups", "industry_peers"},
}

// actionLeadTimes is the base lead time per action type before activity
// scaling.
var actionLeadTimes = map[string]time.Duration{
	"statement":          3 * 24 * time.Hour,
	"lobbying":           14 * 24 * time.Hour,
	"campaign":           30 * 24 * time.Hour,
	"litigation":         60 * 24 * time.Hour,
	"coalition_building": 21 * 24 * time.Hour,
}

var actionBaseImpact = map[string]model.Level{
	"statement":          model.LevelLow,
	"lobbying":           model.LevelMedium,
	"campaign":           model.LevelMedium,
	"litigation":         model.LevelHigh,
	"coalition_building": model.LevelMedium,
}

var actionResources = map[string]model.ResourceRequirements{
	"statement":          {StaffHours: 8, Budget: "minimal", Timeline: "1-3 days"},
	"lobbying":           {StaffHours: 80, Budget: "moderate", Timeline: "2-4 weeks"},
	"campaign":           {StaffHours: 240, Budget: "substantial", Timeline: "1-2 months"},
	"litigation":         {StaffHours: 400, Budget: "major", Timeline: "2-6 months"},
	"coalition_building": {StaffHours: 120, Budget: "moderate", Timeline: "3-5 weeks"},
}

var actionOutcomes = map[string][]string{
	"statement": {
		"public position established",
		"media coverage of the group's stance",
	},
	"lobbying": {
		"policymaker awareness of the group's position",
		"potential amendment of pending measures",
	},
	"campaign": {
		"shift in public opinion toward the group's position",
		"increased supporter mobilisation",
	},
	"litigation": {
		"judicial review of the contested measure",
		"delay or injunction against the measure",
	},
	"coalition_building": {
		"broadened alliance base",
		"coordinated joint action capability",
	},
}

// actionComplexityPenalty reduces success likelihood for harder actions.
var actionComplexityPenalty = map[string]float64{
	"statement":          0,
	"lobbying":           0.1,
	"campaign":           0.1,
	"litigation":         0.2,
	"coalition_building": 0.15,
}

// typeAffinity scores how natural an action type is for a group type.
var typeAffinity = map[model.GroupType]map[string]float64{
	model.GroupAdvocacy: {
		"statement": 0.1, "lobbying": 0.05, "campaign": 0.15,
		"litigation": 0.05, "coalition_building": 0.1,
	},
	model.GroupRegulatory: {
		"statement": 0.15, "lobbying": -0.25, "campaign": -0.15,
		"litigation": 0, "coalition_building": -0.05,
	},
	model.GroupIndustry: {
		"statement": 0.05, "lobbying": 0.15, "campaign": 0,
		"litigation": 0.05, "coalition_building": 0.1,
	},
}

// PredictionRequest asks for likely actions by one group under a scenario.
type PredictionRequest struct {
	GroupID           string   `json:"group_id"`
	Scenario          string   `json:"scenario"`
	PredictionHorizon string   `json:"prediction_horizon,omitempty"` // default "30d"
	ActionTypes       []string `json:"action_types,omitempty"`
}

// TimelineBuckets groups predicted actions by time-to-action.
type TimelineBuckets struct {
	Immediate  []string `json:"immediate"`   // <= 7 days
	ShortTerm  []string `json:"short_term"`  // <= 28 days
	MediumTerm []string `json:"medium_term"` // <= 90 days
	LongTerm   []string `json:"long_term"`   // beyond
}

// ResourceAssessment aggregates resource demand across predicted actions.
type ResourceAssessment struct {
	TotalStaffHours int      `json:"total_staff_hours"`
	Strain          string   `json:"strain"` // low | medium | high
	Notes           []string `json:"notes,omitempty"`
}

// ImpactAnalysis summarises the combined effect of the predicted actions.
type ImpactAnalysis struct {
	ImmediateImpact  []string `json:"immediate_impact"`
	LongTermImpact   []string `json:"long_term_impact"`
	CumulativeEffect string   `json:"cumulative_effect"` // limited | moderate | significant
	RiskFlags        []string `json:"risk_flags,omitempty"`
}

// PredictionResult is the full forecasting response.
type PredictionResult struct {
	GroupID           string                   `json:"group_id"`
	GroupName         string                   `json:"group_name"`
	Scenario          string                   `json:"scenario"`
	PredictionHorizon string                   `json:"prediction_horizon"`
	Synthesized       bool                     `json:"synthesized_profile,omitempty"`
	Predictions       []model.ActionPrediction `json:"predictions"`
	Timeline          TimelineBuckets          `json:"timeline"`
	Resources         ResourceAssessment       `json:"resource_assessment"`
	Impact            ImpactAnalysis           `json:"impact_analysis"`
	GeneratedAt       time.Time                `json:"generated_at"`
}

// PredictActions forecasts likely actions for a group given a scenario.
// Candidates are scored, filtered at probability 0.3, enriched, and returned
// sorted by success likelihood descending.
func (e *Engine) PredictActions(ctx context.Context, req PredictionRequest) (*PredictionResult, error) {
	group, err := e.registry.Profile(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	horizon := req.PredictionHorizon
	if horizon == "" {
		horizon = "30d"
	}
	candidates := req.ActionTypes
	if len(candidates) == 0 {
		candidates = defaultActionTypes
	}

	urgent := containsFold(req.Scenario,
		"urgent", "crisis", "emergency", "immediate", "deadline")

	now := e.now().UTC()
	var predictions []model.ActionPrediction
	for _, actionType := range dedupe(candidates) {
		if _, known := actionTargets[actionType]; !known {
			continue
		}
		probability := e.actionProbability(group, actionType, urgent)
		if probability <= 0.3 {
			continue
		}
		predictions = append(predictions,
			e.buildPrediction(group, req.Scenario, actionType, probability, now))
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].SuccessLikelihood > predictions[j].SuccessLikelihood
	})

	return &PredictionResult{
		GroupID:           group.ID,
		GroupName:         group.Name,
		Scenario:          req.Scenario,
		PredictionHorizon: horizon,
		Synthesized:       group.Synthesized,
		Predictions:       predictions,
		Timeline:          bucketTimeline(predictions, now),
		Resources:         assessResources(group, predictions),
		Impact:            analyzeImpact(predictions, now),
		GeneratedAt:       now,
	}, nil
}

func (e *Engine) actionProbability(group *model.StakeholderGroup, actionType string, urgent bool) float64 {
	p := 0.5

	switch group.ActivityLevel {
	case model.LevelHigh:
		p += 0.2
	case model.LevelLow:
		p -= 0.2
	}

	if affinities, ok := typeAffinity[group.Type]; ok {
		p += affinities[actionType]
	}

	switch group.Resources.FundingTier {
	case model.LevelHigh:
		p += 0.1
	case model.LevelLow:
		p -= 0.1
		if actionType == "litigation" {
			p -= 0.1
		}
	}
	if group.Resources.StaffCount > 50 {
		p += 0.05
	}

	if urgent {
		p += 0.15
	}
	return model.Clip01(p)
}

func (e *Engine) buildPrediction(group *model.StakeholderGroup, scenario, actionType string, probability float64, now time.Time) model.ActionPrediction {
	lead := actionLeadTimes[actionType]
	switch group.ActivityLevel {
	case model.LevelHigh:
		lead = lead / 2
	case model.LevelLow:
		lead = lead * 3 / 2
	}

	impact := actionBaseImpact[actionType]
	switch {
	case group.InfluenceScore > 70:
		impact = raiseLevel(impact)
	case group.InfluenceScore < 30:
		impact = lowerLevel(impact)
	}

	success := probability
	var factors, obstacles []string
	if group.InfluenceScore > 60 {
		success += 0.1
		factors = append(factors, "high influence score")
	}
	if group.Resources.PoliticalConnections > 5 {
		success += 0.1
		factors = append(factors, "strong political connections")
	}
	if group.ActivityLevel == model.LevelHigh {
		factors = append(factors, "high activity level")
	}
	penalty := actionComplexityPenalty[actionType]
	success = model.Clip01(success - penalty)
	if penalty >= 0.15 {
		obstacles = append(obstacles, fmt.Sprintf("%s is a high-complexity action", actionType))
	}
	if group.Resources.FundingTier == model.LevelLow {
		obstacles = append(obstacles, "limited funding")
	}
	if group.Resources.StaffCount < 10 {
		obstacles = append(obstacles, "limited staffing")
	}

	return model.ActionPrediction{
		GroupID:    group.ID,
		Scenario:   scenario,
		ActionType: actionType,
		Description: fmt.Sprintf("Likely %s by %s in response to %q",
			actionType, group.Name, scenario),
		TargetEntities:    append([]string{}, actionTargets[actionType]...),
		Timestamp:         now.Add(lead),
		ImpactLevel:       impact,
		SuccessLikelihood: success,
		ResourcesRequired: actionResources[actionType],
		ExpectedOutcomes:  append([]string{}, actionOutcomes[actionType]...),
		SuccessFactors:    factors,
		Obstacles:         obstacles,
	}
}

func raiseLevel(l model.Level) model.Level {
	switch l {
	case model.LevelLow:
		return model.LevelMedium
	default:
		return model.LevelHigh
	}
}

func lowerLevel(l model.Level) model.Level {
	switch l {
	case model.LevelHigh:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

func bucketTimeline(predictions []model.ActionPrediction, now time.Time) TimelineBuckets {
	buckets := TimelineBuckets{
		Immediate:  []string{},
		ShortTerm:  []string{},
		MediumTerm: []string{},
		LongTerm:   []string{},
	}
	for _, p := range predictions {
		days := p.Timestamp.Sub(now).Hours() / 24
		switch {
		case days <= 7:
			buckets.Immediate = append(buckets.Immediate, p.ActionType)
		case days <= 28:
			buckets.ShortTerm = append(buckets.ShortTerm, p.ActionType)
		case days <= 90:
			buckets.MediumTerm = append(buckets.MediumTerm, p.ActionType)
		default:
			buckets.LongTerm = append(buckets.LongTerm, p.ActionType)
		}
	}
	return buckets
}

func assessResources(group *model.StakeholderGroup, predictions []model.ActionPrediction) ResourceAssessment {
	total := 0
	for _, p := range predictions {
		total += p.ResourcesRequired.StaffHours
	}

	strain := "low"
	staff := group.Resources.StaffCount
	switch {
	case total > staff*40:
		strain = "high"
	case total > staff*20:
		strain = "medium"
	}

	assessment := ResourceAssessment{TotalStaffHours: total, Strain: strain}
	if strain == "high" {
		assessment.Notes = append(assessment.Notes,
			fmt.Sprintf("predicted workload of %d staff-hours exceeds sustained capacity of %d staff", total, staff))
	}
	return assessment
}

func analyzeImpact(predictions []model.ActionPrediction, now time.Time) ImpactAnalysis {
	analysis := ImpactAnalysis{
		ImmediateImpact: []string{},
		LongTermImpact:  []string{},
	}
	hasType := make(map[string]bool, len(predictions))
	for _, p := range predictions {
		hasType[p.ActionType] = true
		if p.Timestamp.Sub(now) <= 28*24*time.Hour {
			analysis.ImmediateImpact = append(analysis.ImmediateImpact, p.ActionType)
		} else {
			analysis.LongTermImpact = append(analysis.LongTermImpact, p.ActionType)
		}
	}

	switch {
	case len(predictions) > 3:
		analysis.CumulativeEffect = "significant"
	case len(predictions) > 1:
		analysis.CumulativeEffect = "moderate"
	default:
		analysis.CumulativeEffect = "limited"
	}

	if hasType["statement"] || hasType["campaign"] {
		analysis.RiskFlags = append(analysis.RiskFlags, "reputational")
	}
	if hasType["litigation"] {
		analysis.RiskFlags = append(analysis.RiskFlags, "operational")
	}
	if hasType["coalition_building"] {
		analysis.RiskFlags = append(analysis.RiskFlags, "strategic")
	}
	return analysis
}
