package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
)

// normalizationRef is the raw score treated as 100 for each dimension.
var normalizationRef = map[model.InfluenceDimension]float64{
	model.DimPolitical:  100,
	model.DimMedia:      80,
	model.DimEconomic:   120,
	model.DimSocial:     60,
	model.DimRegulatory: 80,
}

// InfluenceRequest asks for multi-dimensional influence scoring of a group.
type InfluenceRequest struct {
	GroupID          string   `json:"group_id"`
	Dimensions       []string `json:"influence_dimensions,omitempty"`
	ComparisonGroups []string `json:"comparison_groups,omitempty"`
}

// InfluenceVector characterises one dimension's movement.
type InfluenceVector struct {
	Direction      string  `json:"direction"` // rising | stable | declining
	Velocity       float64 `json:"velocity"`  // 0-1
	Reach          float64 `json:"reach"`     // 0-1
	Effectiveness  float64 `json:"effectiveness"`
	Sustainability float64 `json:"sustainability"`
}

// DimensionTrend projects one dimension forward six months.
type DimensionTrend struct {
	Trend              string   `json:"trend"`
	Momentum           float64  `json:"momentum"`
	SixMonthProjection float64  `json:"six_month_projection"`
	KeyDrivers         []string `json:"key_drivers,omitempty"`
}

// ComparisonEntry scores the subject group against one comparison group.
type ComparisonEntry struct {
	GroupID          string             `json:"group_id"`
	RelativeStrength map[string]float64 `json:"relative_strength"`
	Ranking          map[string]string  `json:"ranking"` // superior | even | inferior
}

// InfluenceResult is the full influence analysis response.
type InfluenceResult struct {
	GroupID         string                     `json:"group_id"`
	GroupName       string                     `json:"group_name"`
	Synthesized     bool                       `json:"synthesized_profile,omitempty"`
	Scores          []model.InfluenceScore     `json:"scores"`
	Vectors         map[string]InfluenceVector `json:"influence_vectors"`
	OverallScore    float64                    `json:"overall_score"` // 0-100
	Comparisons     []ComparisonEntry          `json:"comparisons,omitempty"`
	Trends          map[string]DimensionTrend  `json:"trend_analysis"`
	Recommendations []string                   `json:"recommendations"`
	Warnings        []string                   `json:"warnings,omitempty"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}

// PartialWarnings reports the sub-step failures the analysis survived.
func (r *InfluenceResult) PartialWarnings() []string { return r.Warnings }

// AnalyzeInfluence scores a group along the requested dimensions,
// optionally against comparison groups.
func (e *Engine) AnalyzeInfluence(ctx context.Context, req InfluenceRequest) (*InfluenceResult, error) {
	group, err := e.registry.Profile(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	dims := normalizeDimensions(req.Dimensions)
	result := &InfluenceResult{
		GroupID:         group.ID,
		GroupName:       group.Name,
		Synthesized:     group.Synthesized,
		Vectors:         make(map[string]InfluenceVector, len(dims)),
		Trends:          make(map[string]DimensionTrend, len(dims)),
		Recommendations: []string{},
		GeneratedAt:     e.now().UTC(),
	}

	var sum float64
	for _, dim := range dims {
		score := scoreDimension(group, dim)
		result.Scores = append(result.Scores, score)
		sum += score.NormalizedScore
		result.Vectors[string(dim)] = e.influenceVector(group, dim, score.NormalizedScore)
		result.Trends[string(dim)] = e.dimensionTrend(group, dim, score.NormalizedScore)
	}
	if len(dims) > 0 {
		result.OverallScore = sum / float64(len(dims))
	}

	for _, otherID := range dedupe(req.ComparisonGroups) {
		if otherID == group.ID {
			continue
		}
		other, err := e.registry.Profile(ctx, otherID)
		if err != nil {
			result.Warnings = append(result.Warnings,
				partialWarning("comparison profile lookup", otherID, err))
			continue
		}
		result.Comparisons = append(result.Comparisons, compareInfluence(group, other, dims))
	}

	result.Recommendations = influenceRecommendations(result.Scores, result.Trends)
	return result, nil
}

func normalizeDimensions(requested []string) []model.InfluenceDimension {
	if len(requested) == 0 {
		return model.AllInfluenceDimensions()
	}
	valid := make(map[model.InfluenceDimension]bool)
	for _, d := range model.AllInfluenceDimensions() {
		valid[d] = true
	}
	var out []model.InfluenceDimension
	for _, d := range dedupe(requested) {
		if valid[model.InfluenceDimension(d)] {
			out = append(out, model.InfluenceDimension(d))
		}
	}
	if len(out) == 0 {
		return model.AllInfluenceDimensions()
	}
	return out
}

// scoreDimension computes the raw and normalized score for one dimension
// from group attributes alone.
func scoreDimension(g *model.StakeholderGroup, dim model.InfluenceDimension) model.InfluenceScore {
	var raw float64
	var factors []string

	switch dim {
	case model.DimPolitical:
		raw = float64(g.Resources.PoliticalConnections)*2 + g.InfluenceScore*0.3
		factors = append(factors,
			fmt.Sprintf("%d political connections", g.Resources.PoliticalConnections))
		switch g.Type {
		case model.GroupRegulatory:
			raw += 15
			factors = append(factors, "regulatory body standing")
		case model.GroupIndustry:
			raw += 10
			factors = append(factors, "industry association standing")
		case model.GroupAdvocacy:
			raw += 5
		}

	case model.DimMedia:
		raw = math.Log10(float64(g.Resources.MediaReach)+1)*10 +
			float64(len(g.CommunicationChannels))*3
		factors = append(factors,
			fmt.Sprintf("media reach of %d", g.Resources.MediaReach),
			fmt.Sprintf("%d communication channels", len(g.CommunicationChannels)))

	case model.DimEconomic:
		switch g.Resources.FundingTier {
		case model.LevelHigh:
			raw = 50
		case model.LevelMedium:
			raw = 30
		default:
			raw = 10
		}
		raw += float64(g.Resources.StaffCount)
		factors = append(factors,
			fmt.Sprintf("%s funding tier", g.Resources.FundingTier),
			fmt.Sprintf("%d staff", g.Resources.StaffCount))
		if g.Type == model.GroupIndustry {
			raw += 15
			factors = append(factors, "industry backing")
		}

	case model.DimSocial:
		raw = float64(len(g.Members)) * 2
		factors = append(factors, fmt.Sprintf("%d members", len(g.Members)))
		switch g.ActivityLevel {
		case model.LevelHigh:
			raw += 20
			factors = append(factors, "high activity level")
		case model.LevelMedium:
			raw += 10
		}

	case model.DimRegulatory:
		raw = float64(g.Resources.PoliticalConnections)*1.5 + g.InfluenceScore*0.2
		factors = append(factors, "political access applied to regulatory process")
		if g.Type == model.GroupRegulatory {
			raw += 30
			factors = append(factors, "direct regulatory authority")
		}
	}

	normalized := model.Clip100(raw / normalizationRef[dim] * 100)
	return model.InfluenceScore{
		Dimension:           dim,
		RawScore:            raw,
		NormalizedScore:     normalized,
		ContributingFactors: factors,
	}
}

func (e *Engine) influenceVector(g *model.StakeholderGroup, dim model.InfluenceDimension, normalized float64) InfluenceVector {
	velocity := e.signals.Score("influence_velocity", g.ID, string(dim))
	sustainability := 0.3
	switch g.Resources.FundingTier {
	case model.LevelHigh:
		sustainability = 0.8
	case model.LevelMedium:
		sustainability = 0.5
	}
	if g.Resources.StaffCount > 30 {
		sustainability = model.Clip01(sustainability + 0.1)
	}
	return InfluenceVector{
		Direction: e.signals.Pick(
			[]string{"rising", "stable", "declining"}, "influence_direction", g.ID, string(dim)),
		Velocity:       velocity,
		Reach:          normalized / 100,
		Effectiveness:  model.Clip01(normalized/100*0.7 + velocity*0.3),
		Sustainability: sustainability,
	}
}

func (e *Engine) dimensionTrend(g *model.StakeholderGroup, dim model.InfluenceDimension, normalized float64) DimensionTrend {
	trend := e.signals.Pick(
		[]string{"increasing", "stable", "declining"}, "influence_trend", g.ID, string(dim))
	momentum := e.signals.Score("influence_momentum", g.ID, string(dim))

	projection := normalized
	switch trend {
	case "increasing":
		projection = model.Clip100(normalized * (1 + 0.1*momentum))
	case "declining":
		projection = model.Clip100(normalized * (1 - 0.1*momentum))
	}

	drivers := []string{fmt.Sprintf("%s activity level", g.ActivityLevel)}
	if dim == model.DimMedia && g.Resources.MediaReach > 100000 {
		drivers = append(drivers, "large established audience")
	}
	if dim == model.DimPolitical && g.Resources.PoliticalConnections > 5 {
		drivers = append(drivers, "deep political network")
	}

	return DimensionTrend{
		Trend:              trend,
		Momentum:           momentum,
		SixMonthProjection: projection,
		KeyDrivers:         drivers,
	}
}

func compareInfluence(subject, other *model.StakeholderGroup, dims []model.InfluenceDimension) ComparisonEntry {
	entry := ComparisonEntry{
		GroupID:          other.ID,
		RelativeStrength: make(map[string]float64, len(dims)),
		Ranking:          make(map[string]string, len(dims)),
	}
	for _, dim := range dims {
		ours := scoreDimension(subject, dim).NormalizedScore
		theirs := scoreDimension(other, dim).NormalizedScore
		diff := ours - theirs
		entry.RelativeStrength[string(dim)] = diff
		switch {
		case diff > 0:
			entry.Ranking[string(dim)] = "superior"
		case diff < 0:
			entry.Ranking[string(dim)] = "inferior"
		default:
			entry.Ranking[string(dim)] = "even"
		}
	}
	return entry
}

func influenceRecommendations(scores []model.InfluenceScore, trends map[string]DimensionTrend) []string {
	var recs []string
	if len(scores) == 0 {
		return recs
	}

	weakest := scores[0]
	for _, s := range scores[1:] {
		if s.NormalizedScore < weakest.NormalizedScore {
			weakest = s
		}
	}
	recs = append(recs, fmt.Sprintf(
		"Strengthen the %s dimension (weakest at %.0f/100)",
		weakest.Dimension, weakest.NormalizedScore))

	for _, s := range scores {
		if t, ok := trends[string(s.Dimension)]; ok && t.Trend == "declining" {
			recs = append(recs, fmt.Sprintf(
				"Counter the declining trend on the %s dimension", s.Dimension))
		}
	}
	return recs
}
