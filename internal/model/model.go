// Package model defines the stakeholder intelligence data model: long-lived
// group profiles owned by the registry, and the derived analysis artifacts
// (coalitions, predictions, network elements) computed per request.
package model

import "time"

// GroupType classifies a stakeholder group.
type GroupType string

const (
	GroupAdvocacy   GroupType = "advocacy_group"
	GroupRegulatory GroupType = "regulatory_body"
	GroupIndustry   GroupType = "industry_association"
	GroupOther      GroupType = "other"
)

// Level is a coarse low/medium/high scale used for activity, impact,
// urgency and commitment fields.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// MemberRole identifies a member's role within a group.
type MemberRole string

const (
	RoleLeader     MemberRole = "leader"
	RoleCoreMember MemberRole = "core_member"
	RoleSupporter  MemberRole = "supporter"
	RoleAdvisor    MemberRole = "advisor"
)

// Member is one person inside a StakeholderGroup.
type Member struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Role            MemberRole `json:"role"`
	Organization    string     `json:"organization,omitempty"`
	InfluenceLevel  float64    `json:"influence_level"` // 0-100
	CommitmentLevel Level      `json:"commitment_level"`
	ExpertiseAreas  []string   `json:"expertise_areas,omitempty"`
	JoinDate        time.Time  `json:"join_date"`
}

// ActionRecord is one observed action taken by a group.
type ActionRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	Target      string    `json:"target,omitempty"`
}

// Relationships holds the group's ties to other groups, by id.
type Relationships struct {
	Allies    []string `json:"allies,omitempty"`
	Opponents []string `json:"opponents,omitempty"`
	Neutral   []string `json:"neutral,omitempty"`
}

// Resources describes a group's capacity to act.
type Resources struct {
	FundingTier          Level `json:"funding_tier"`
	StaffCount           int   `json:"staff_count"`
	PoliticalConnections int   `json:"political_connections"`
	MediaReach           int   `json:"media_reach"`
}

// StakeholderGroup is the long-lived profile of one organisation or group.
// Synthesized marks bootstrap profiles produced by the registry in sandbox
// mode; callers must not mistake those for observed fact.
type StakeholderGroup struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Type                  GroupType      `json:"type"`
	Members               []Member       `json:"members"`
	FormationDate         time.Time      `json:"formation_date"`
	Objectives            []string       `json:"objectives"`
	InfluenceScore        float64        `json:"influence_score"` // 0-100
	ActivityLevel         Level          `json:"activity_level"`
	CommunicationChannels []string       `json:"communication_channels,omitempty"`
	RecentActions         []ActionRecord `json:"recent_actions,omitempty"`
	Relationships         Relationships  `json:"relationships"`
	Resources             Resources      `json:"resources"`
	Status                string         `json:"status"`
	Synthesized           bool           `json:"synthesized,omitempty"`
}

// Coalition is a derived grouping of stakeholder entities inferred to share
// an objective and likely to act jointly. PotentialMembers always holds at
// least three entity ids when emitted.
type Coalition struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	CentralEntity       string   `json:"central_entity"`
	PotentialMembers    []string `json:"potential_members"`
	SharedObjective     string   `json:"shared_objective"`
	FormationLikelihood float64  `json:"formation_likelihood"` // 0-1
	StrengthIndicators  []string `json:"strength_indicators"`
	FormationTimeline   string   `json:"formation_timeline"`
	PotentialImpact     Level    `json:"potential_impact"`
}

// FormationTrigger is an external condition that raises coalition-formation
// likelihood.
type FormationTrigger struct {
	Type             string   `json:"type"`
	Description      string   `json:"description"`
	AffectedEntities []string `json:"affected_entities"`
	Urgency          Level    `json:"urgency"`
	Likelihood       float64  `json:"likelihood"` // 0-1
}

// EvolutionEvent is one change in a coalition's or group's timeline.
type EvolutionEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	SubjectID      string    `json:"subject_id"`
	EventType      string    `json:"event_type"`
	Description    string    `json:"description"`
	ImpactLevel    Level     `json:"impact_level"`
	AffectedAspect string    `json:"affected_aspect"`
}

// ActionPrediction forecasts one likely action for a group under a scenario.
type ActionPrediction struct {
	GroupID           string               `json:"group_id"`
	Scenario          string               `json:"scenario"`
	ActionType        string               `json:"action_type"`
	Description       string               `json:"description"`
	TargetEntities    []string             `json:"target_entities"`
	Timestamp         time.Time            `json:"timestamp"`
	ImpactLevel       Level                `json:"impact_level"`
	SuccessLikelihood float64              `json:"success_likelihood"` // 0-1
	ResourcesRequired ResourceRequirements `json:"resources_required"`
	ExpectedOutcomes  []string             `json:"expected_outcomes"`
	SuccessFactors    []string             `json:"success_factors,omitempty"`
	Obstacles         []string             `json:"obstacles,omitempty"`
}

// ResourceRequirements estimates what one predicted action would consume.
type ResourceRequirements struct {
	StaffHours int    `json:"staff_hours"`
	Budget     string `json:"budget"`
	Timeline   string `json:"timeline"`
}

// NetworkNode is one entity in a mapped stakeholder network.
type NetworkNode struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           GroupType `json:"type"`
	InfluenceScore float64   `json:"influence_score"`
	ActivityLevel  Level     `json:"activity_level"`
	DepthLevel     int       `json:"depth_level"`
}

// RelationshipType classifies a network edge.
type RelationshipType string

const (
	RelAlliance    RelationshipType = "alliance"
	RelOpposition  RelationshipType = "opposition"
	RelNeutral     RelationshipType = "neutral"
	RelDependency  RelationshipType = "dependency"
	RelCompetition RelationshipType = "competition"
)

// AllRelationshipTypes lists every edge classification, in emission order.
func AllRelationshipTypes() []RelationshipType {
	return []RelationshipType{RelAlliance, RelOpposition, RelNeutral, RelDependency, RelCompetition}
}

// NetworkEdge links two nodes in a mapped network. Endpoints always refer to
// ids present in the node set.
type NetworkEdge struct {
	SourceID         string           `json:"source_id"`
	TargetID         string           `json:"target_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Strength         float64          `json:"strength"`  // 0-1
	Direction        string           `json:"direction"` // unidirectional | bidirectional
}

// InfluenceDimension is one axis along which group power is scored.
type InfluenceDimension string

const (
	DimPolitical  InfluenceDimension = "political"
	DimMedia      InfluenceDimension = "media"
	DimEconomic   InfluenceDimension = "economic"
	DimSocial     InfluenceDimension = "social"
	DimRegulatory InfluenceDimension = "regulatory"
)

// AllInfluenceDimensions lists the five scoring axes.
func AllInfluenceDimensions() []InfluenceDimension {
	return []InfluenceDimension{DimPolitical, DimMedia, DimEconomic, DimSocial, DimRegulatory}
}

// InfluenceScore is a group's score along one dimension.
type InfluenceScore struct {
	Dimension           InfluenceDimension `json:"dimension"`
	RawScore            float64            `json:"raw_score"`
	NormalizedScore     float64            `json:"normalized_score"` // 0-100
	ContributingFactors []string           `json:"contributing_factors"`
}

// SentimentDistribution splits message sentiment into shares that sum to ~1.
type SentimentDistribution struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// Signed collapses the distribution to one value in [-1,1].
func (d SentimentDistribution) Signed() float64 {
	return d.Positive - d.Negative
}

// MessagingRecord summarises one group's messaging over a window.
type MessagingRecord struct {
	GroupID               string                `json:"group_id"`
	MessageVolume         int                   `json:"message_volume"`
	TypeBreakdown         map[string]int        `json:"type_breakdown"`
	TopicCoverage         map[string]float64    `json:"topic_coverage"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	Consistency           float64               `json:"consistency"` // 0-1
	KeyMessages           []string              `json:"key_messages"`
}

// Clip01 clamps v into [0,1].
func Clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clip100 clamps v into [0,100].
func Clip100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
