package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/signal"
)

// Bootstrap synthesises a placeholder profile for an unknown group id. The
// result is a pure function of the id and the signal source, so concurrent
// first-access to the same id always produces the same profile. Synthesized
// is set so callers can tell placeholder data from observed fact.
func Bootstrap(id string, src signal.Source) *model.StakeholderGroup {
	types := []string{
		string(model.GroupAdvocacy),
		string(model.GroupRegulatory),
		string(model.GroupIndustry),
		string(model.GroupOther),
	}
	levels := []string{string(model.LevelLow), string(model.LevelMedium), string(model.LevelHigh)}
	objectives := []string{
		"policy_reform", "regulatory_relief", "market_access",
		"public_awareness", "environmental_protection", "industry_standards",
	}
	channels := []string{"press", "social_media", "direct_meetings", "newsletters", "public_events"}

	memberCount := 3 + src.Count(4, "bootstrap_members", id)
	members := make([]model.Member, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		idx := fmt.Sprintf("%d", i)
		role := model.RoleSupporter
		switch {
		case i == 0:
			role = model.RoleLeader
		case i == 1:
			role = model.RoleCoreMember
		}
		members = append(members, model.Member{
			ID:              fmt.Sprintf("%s-m%d", id, i),
			Name:            fmt.Sprintf("Placeholder member %d (%s)", i+1, id),
			Role:            role,
			InfluenceLevel:  20 + 80*src.Score("bootstrap_member_influence", id, idx),
			CommitmentLevel: model.Level(src.Pick(levels, "bootstrap_commitment", id, idx)),
			JoinDate:        bootstrapEpoch(id, src).AddDate(0, i, 0),
		})
	}

	objCount := 1 + src.Count(2, "bootstrap_objectives", id)
	objs := make([]string, 0, objCount)
	for i := 0; i < objCount; i++ {
		obj := src.Pick(objectives, "bootstrap_objective", id, fmt.Sprintf("%d", i))
		if !contains(objs, obj) {
			objs = append(objs, obj)
		}
	}

	return &model.StakeholderGroup{
		ID:             id,
		Name:           bootstrapName(id),
		Type:           model.GroupType(src.Pick(types, "bootstrap_type", id)),
		Members:        members,
		FormationDate:  bootstrapEpoch(id, src),
		Objectives:     objs,
		InfluenceScore: 10 + 80*src.Score("bootstrap_influence", id),
		ActivityLevel:  model.Level(src.Pick(levels, "bootstrap_activity", id)),
		CommunicationChannels: []string{
			src.Pick(channels, "bootstrap_channel", id, "0"),
			src.Pick(channels, "bootstrap_channel", id, "1"),
		},
		Relationships: model.Relationships{},
		Resources: model.Resources{
			FundingTier:          model.Level(src.Pick(levels, "bootstrap_funding", id)),
			StaffCount:           2 + src.Count(40, "bootstrap_staff", id),
			PoliticalConnections: src.Count(10, "bootstrap_connections", id),
			MediaReach:           1000 * (1 + src.Count(500, "bootstrap_reach", id)),
		},
		Status:      "bootstrap",
		Synthesized: true,
	}
}

func bootstrapName(id string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(id)
	return strings.TrimSpace(name)
}

func bootstrapEpoch(id string, src signal.Source) time.Time {
	yearsBack := 1 + src.Count(9, "bootstrap_age", id)
	return time.Date(time.Now().Year()-yearsBack, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
