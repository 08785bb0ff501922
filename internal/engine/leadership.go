package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
)

// defaultLeadershipCriteria is used when the caller does not narrow the
// assessment.
var defaultLeadershipCriteria = []string{"formal_position", "influence_score", "network_centrality"}

var knownLeadershipCriteria = map[string]bool{
	"formal_position":    true,
	"influence_score":    true,
	"network_centrality": true,
	"media_presence":     true,
}

// LeadershipRequest asks for leadership-structure inference in one group.
type LeadershipRequest struct {
	GroupID                string   `json:"group_id"`
	Criteria               []string `json:"leadership_criteria,omitempty"`
	IncludeEmergingLeaders bool     `json:"include_emerging_leaders,omitempty"`
}

// LeaderProfile is one member identified as a leader.
type LeaderProfile struct {
	MemberID        string             `json:"member_id"`
	Name            string             `json:"name"`
	Role            model.MemberRole   `json:"role"`
	LeadershipScore float64            `json:"leadership_score"` // 0-1
	CriterionScores map[string]float64 `json:"criterion_scores"`
	Classification  string             `json:"classification"`
}

// EmergingLeader is a non-leader member likely to step up.
type EmergingLeader struct {
	MemberID          string  `json:"member_id"`
	Name              string  `json:"name"`
	InfluenceLevel    float64 `json:"influence_level"`
	EmergenceTimeline string  `json:"emergence_timeline"`
}

// StructureAnalysis describes how the group is organised.
type StructureAnalysis struct {
	HierarchyType       string         `json:"hierarchy_type"` // centralized | distributed
	DecisionMakingStyle string         `json:"decision_making_style"`
	Layering            map[string]int `json:"layering"`
}

// SuccessionCandidate is one member assessed for leadership succession.
type SuccessionCandidate struct {
	MemberID  string  `json:"member_id"`
	Name      string  `json:"name"`
	Readiness float64 `json:"readiness"` // 0-1
	Timeline  string  `json:"timeline"`
}

// SuccessionAnalysis assesses the leadership pipeline.
type SuccessionAnalysis struct {
	PipelineStatus string                `json:"pipeline_status"`
	Candidates     []SuccessionCandidate `json:"candidates"`
}

// LeadershipNetwork qualitatively maps how leadership influence flows.
type LeadershipNetwork struct {
	InternalConnectionStrength float64  `json:"internal_connection_strength"` // 0-1
	CollaborationPattern       string   `json:"collaboration_pattern"`
	ExternalReach              int      `json:"external_reach"`
	InfluencePathways          []string `json:"influence_pathways"`
}

// LeadershipResult is the full leadership analysis response.
type LeadershipResult struct {
	GroupID           string             `json:"group_id"`
	GroupName         string             `json:"group_name"`
	Synthesized       bool               `json:"synthesized_profile,omitempty"`
	Criteria          []string           `json:"leadership_criteria"`
	IdentifiedLeaders []LeaderProfile    `json:"identified_leaders"`
	EmergingLeaders   []EmergingLeader   `json:"emerging_leaders,omitempty"`
	Structure         StructureAnalysis  `json:"structure_analysis"`
	Succession        SuccessionAnalysis `json:"succession_analysis"`
	Network           LeadershipNetwork  `json:"leadership_network"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// IdentifyLeaders infers the leadership structure of a group from member
// roles, influence levels and network signals.
func (e *Engine) IdentifyLeaders(ctx context.Context, req LeadershipRequest) (*LeadershipResult, error) {
	group, err := e.registry.Profile(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	criteria := normalizeCriteria(req.Criteria)
	result := &LeadershipResult{
		GroupID:           group.ID,
		GroupName:         group.Name,
		Synthesized:       group.Synthesized,
		Criteria:          criteria,
		IdentifiedLeaders: []LeaderProfile{},
		GeneratedAt:       e.now().UTC(),
	}

	identified := make(map[string]bool)
	for _, member := range group.Members {
		scores := e.criterionScores(group, member, criteria)
		var sum float64
		for _, c := range criteria {
			sum += scores[c]
		}
		leadershipScore := sum / float64(len(criteria))
		if leadershipScore <= 0.6 {
			continue
		}
		identified[member.ID] = true
		result.IdentifiedLeaders = append(result.IdentifiedLeaders, LeaderProfile{
			MemberID:        member.ID,
			Name:            member.Name,
			Role:            member.Role,
			LeadershipScore: leadershipScore,
			CriterionScores: scores,
			Classification:  classifyLeader(member, scores),
		})
	}
	sort.SliceStable(result.IdentifiedLeaders, func(i, j int) bool {
		return result.IdentifiedLeaders[i].LeadershipScore > result.IdentifiedLeaders[j].LeadershipScore
	})

	if req.IncludeEmergingLeaders {
		for _, member := range group.Members {
			if member.Role == model.RoleLeader || identified[member.ID] {
				continue
			}
			if member.InfluenceLevel > 60 && member.CommitmentLevel == model.LevelHigh {
				result.EmergingLeaders = append(result.EmergingLeaders, EmergingLeader{
					MemberID:       member.ID,
					Name:           member.Name,
					InfluenceLevel: member.InfluenceLevel,
					EmergenceTimeline: e.signals.Pick(
						[]string{"3-6 months", "6-12 months", "12-18 months"},
						"emergence_timeline", group.ID, member.ID),
				})
			}
		}
	}

	result.Structure = analyzeStructure(group)
	result.Succession = e.analyzeSuccession(group, result.EmergingLeaders)
	result.Network = e.leadershipNetwork(group)
	return result, nil
}

func normalizeCriteria(requested []string) []string {
	if len(requested) == 0 {
		return append([]string{}, defaultLeadershipCriteria...)
	}
	var out []string
	for _, c := range dedupe(requested) {
		if knownLeadershipCriteria[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return append([]string{}, defaultLeadershipCriteria...)
	}
	return out
}

// criterionScores computes the per-criterion scores in [0,1] for a member.
// A member with role leader always scores 1.0 on formal_position.
func (e *Engine) criterionScores(group *model.StakeholderGroup, member model.Member, criteria []string) map[string]float64 {
	scores := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		switch c {
		case "formal_position":
			switch member.Role {
			case model.RoleLeader:
				scores[c] = 1.0
			case model.RoleCoreMember:
				scores[c] = 0.6
			default:
				scores[c] = 0
			}
		case "influence_score":
			scores[c] = model.Clip01(member.InfluenceLevel / 100)
		case "network_centrality":
			roleWeight := 0.2
			switch member.Role {
			case model.RoleLeader:
				roleWeight = 1.0
			case model.RoleCoreMember:
				roleWeight = 0.6
			}
			scores[c] = model.Clip01(
				0.7*e.signals.Score("member_centrality", group.ID, member.ID) + 0.3*roleWeight)
		case "media_presence":
			scores[c] = e.signals.Score("member_media_presence", group.ID, member.ID)
		}
	}
	return scores
}

func classifyLeader(member model.Member, scores map[string]float64) string {
	switch {
	case member.Role == model.RoleLeader:
		return "formal_leader"
	case scores["influence_score"] > 0.8:
		return "influential_member"
	case scores["network_centrality"] > 0.8:
		return "connector"
	default:
		return "emerging_leader"
	}
}

func analyzeStructure(group *model.StakeholderGroup) StructureAnalysis {
	layering := map[string]int{
		"leaders": 0, "core_members": 0, "supporters": 0, "advisors": 0,
	}
	formalLeaders := 0
	for _, m := range group.Members {
		switch m.Role {
		case model.RoleLeader:
			layering["leaders"]++
			formalLeaders++
		case model.RoleCoreMember:
			layering["core_members"]++
		case model.RoleAdvisor:
			layering["advisors"]++
		default:
			layering["supporters"]++
		}
	}

	hierarchy := "distributed"
	if formalLeaders == 1 {
		hierarchy = "centralized"
	}

	return StructureAnalysis{
		HierarchyType:       hierarchy,
		DecisionMakingStyle: "consensus",
		Layering:            layering,
	}
}

func (e *Engine) analyzeSuccession(group *model.StakeholderGroup, emerging []EmergingLeader) SuccessionAnalysis {
	formalLeaders := 0
	for _, m := range group.Members {
		if m.Role == model.RoleLeader {
			formalLeaders++
		}
	}

	status := "adequate_pipeline"
	if len(emerging) < formalLeaders {
		status = "insufficient_pipeline"
	}

	var candidates []SuccessionCandidate
	for _, m := range group.Members {
		if m.Role != model.RoleCoreMember && m.Role != model.RoleAdvisor {
			continue
		}
		readiness := model.Clip01(m.InfluenceLevel / 100)
		if m.CommitmentLevel == model.LevelHigh {
			readiness = model.Clip01(readiness + 0.2)
		}
		timeline := "12-24 months"
		if readiness > 0.7 {
			timeline = "6-12 months"
		}
		candidates = append(candidates, SuccessionCandidate{
			MemberID:  m.ID,
			Name:      m.Name,
			Readiness: readiness,
			Timeline:  timeline,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Readiness > candidates[j].Readiness
	})

	return SuccessionAnalysis{PipelineStatus: status, Candidates: candidates}
}

func (e *Engine) leadershipNetwork(group *model.StakeholderGroup) LeadershipNetwork {
	pathways := []string{"leaders to core members to supporters"}
	if n := len(group.Relationships.Allies); n > 0 {
		pathways = append(pathways,
			fmt.Sprintf("external influence via %d alliance ties", n))
	}
	return LeadershipNetwork{
		InternalConnectionStrength: e.signals.Score("internal_cohesion", group.ID),
		CollaborationPattern: e.signals.Pick(
			[]string{"tight_core", "departmental", "ad_hoc"}, "collaboration_pattern", group.ID),
		ExternalReach:     len(group.Relationships.Allies),
		InfluencePathways: pathways,
	}
}
