package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stakewatch/stakewatch/internal/model"
	"github.com/stakewatch/stakewatch/internal/registry"
)

// stubSource returns fixed signal values so analyses are fully predictable.
// Keys are joined with "/"; unmatched keys fall back to the defaults.
type stubSource struct {
	scores       map[string]float64
	defaultScore float64
	counts       map[string]int
	defaultCount int
	picks        map[string]string
	defaultPick  string
}

func (s *stubSource) key(keys []string) string { return strings.Join(keys, "/") }

func (s *stubSource) Score(keys ...string) float64 {
	if v, ok := s.scores[s.key(keys)]; ok {
		return v
	}
	return s.defaultScore
}

func (s *stubSource) Count(n int, keys ...string) int {
	v, ok := s.counts[s.key(keys)]
	if !ok {
		v = s.defaultCount
	}
	if n <= 0 {
		return 0
	}
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (s *stubSource) Pick(options []string, keys ...string) string {
	if v, ok := s.picks[s.key(keys)]; ok {
		return v
	}
	if s.defaultPick != "" {
		for _, opt := range options {
			if opt == s.defaultPick {
				return opt
			}
		}
	}
	return options[0]
}

func newStubSource() *stubSource {
	return &stubSource{
		scores:       map[string]float64{},
		defaultScore: 0.5,
		counts:       map[string]int{},
		defaultCount: 2,
		picks:        map[string]string{},
	}
}

var testEpoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// newTestEngine builds an engine over an in-memory store seeded with the
// given profiles, backed by the stub source.
func newTestEngine(t *testing.T, src *stubSource, mode registry.Mode, profiles ...*model.StakeholderGroup) *Engine {
	t.Helper()
	store := registry.NewMemoryStore()
	for _, p := range profiles {
		if err := store.Put(context.Background(), p); err != nil {
			t.Fatalf("seeding profile %s: %v", p.ID, err)
		}
	}
	reg := registry.New(registry.Options{
		Store:   store,
		Signals: src,
		Mode:    mode,
	})
	return New(reg, src, Options{Now: func() time.Time { return testEpoch }})
}

func testGroup(id string, mutate ...func(*model.StakeholderGroup)) *model.StakeholderGroup {
	g := &model.StakeholderGroup{
		ID:             id,
		Name:           "Group " + id,
		Type:           model.GroupAdvocacy,
		FormationDate:  testEpoch.AddDate(-3, 0, 0),
		Objectives:     []string{"policy_reform"},
		InfluenceScore: 50,
		ActivityLevel:  model.LevelMedium,
		CommunicationChannels: []string{
			"press", "social_media",
		},
		Members: []model.Member{
			{ID: id + "-m0", Name: "Lead " + id, Role: model.RoleLeader,
				InfluenceLevel: 80, CommitmentLevel: model.LevelHigh, JoinDate: testEpoch.AddDate(-3, 0, 0)},
			{ID: id + "-m1", Name: "Core " + id, Role: model.RoleCoreMember,
				InfluenceLevel: 60, CommitmentLevel: model.LevelMedium, JoinDate: testEpoch.AddDate(-2, 0, 0)},
			{ID: id + "-m2", Name: "Supporter " + id, Role: model.RoleSupporter,
				InfluenceLevel: 40, CommitmentLevel: model.LevelLow, JoinDate: testEpoch.AddDate(-1, 0, 0)},
		},
		Resources: model.Resources{
			FundingTier:          model.LevelMedium,
			StaffCount:           20,
			PoliticalConnections: 2,
			MediaReach:           50000,
		},
		Status: "active",
	}
	for _, fn := range mutate {
		fn(g)
	}
	return g
}
