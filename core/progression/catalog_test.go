package progression

import (
	"strings"
	"testing"
)

func TestNewCatalog(t *testing.T) {
	entry := Level{ID: "1.1", Key: LevelKey{1, 1}, XPMin: 0, XPMax: 99}

	tests := []struct {
		name         string
		levels       []Level
		achievements []Achievement
		rewards      []Reward
		wantErr      string // substring of the CatalogError, "" = ok
	}{
		{
			name:   "valid minimal",
			levels: []Level{entry},
		},
		{
			name:    "no levels",
			wantErr: "no levels",
		},
		{
			name: "no entry level reachable at zero XP",
			levels: []Level{
				{ID: "1.1", Key: LevelKey{1, 1}, XPMin: 100, XPMax: 199},
			},
			wantErr: "no entry level",
		},
		{
			name: "zero XP level gated by predicate is not an entry level",
			levels: []Level{
				{ID: "1.1", Key: LevelKey{1, 1}, XPMin: 0, XPMax: 99, UnlockConditions: []Predicate{
					{Kind: PredFlagSet, Flag: "invited"},
				}},
			},
			wantErr: "no entry level",
		},
		{
			name: "duplicate level id",
			levels: []Level{
				entry,
				{ID: "1.1", Key: LevelKey{1, 2}, XPMin: 100, XPMax: 199},
			},
			wantErr: "duplicate level id",
		},
		{
			name: "invalid XP range",
			levels: []Level{
				entry,
				{ID: "1.2", Key: LevelKey{1, 2}, XPMin: 200, XPMax: 100},
			},
			wantErr: "invalid XP range",
		},
		{
			name: "unresolved prerequisite",
			levels: []Level{
				entry,
				{ID: "1.2", Key: LevelKey{1, 2}, XPMin: 100, XPMax: 199, UnlockConditions: []Predicate{
					{Kind: PredLevelCompleted, Level: "9.9"},
				}},
			},
			wantErr: "does not exist",
		},
		{
			name: "prerequisite cycle",
			levels: []Level{
				entry,
				{ID: "1.2", Key: LevelKey{1, 2}, XPMin: 100, XPMax: 199, UnlockConditions: []Predicate{
					{Kind: PredLevelCompleted, Level: "1.3"},
				}},
				{ID: "1.3", Key: LevelKey{1, 3}, XPMin: 200, XPMax: 299, UnlockConditions: []Predicate{
					{Kind: PredLevelCompleted, Level: "1.2"},
				}},
			},
			wantErr: "cycle",
		},
		{
			name:   "unknown predicate kind",
			levels: []Level{entry, {ID: "1.2", Key: LevelKey{1, 2}, XPMin: 10, XPMax: 99, UnlockConditions: []Predicate{{Kind: "sometimes"}}}},

			wantErr: "unknown predicate kind",
		},
		{
			name:         "achievement with negative reward",
			levels:       []Level{entry},
			achievements: []Achievement{{ID: "a", Condition: Predicate{Kind: PredXPAtLeast, Value: 1}, XPReward: -5}},
			wantErr:      "negative xp_reward",
		},
		{
			name:    "reward without streak requirement",
			levels:  []Level{entry},
			rewards: []Reward{{ID: "r", StreakRequired: 0, XPBonus: 10}},
			wantErr: "streak_required",
		},
		{
			name:    "duplicate reward id",
			levels:  []Level{entry},
			rewards: []Reward{{ID: "r", StreakRequired: 7, XPBonus: 10}, {ID: "r", StreakRequired: 14, XPBonus: 20}},
			wantErr: "duplicate reward id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.levels, tt.achievements, tt.rewards, nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("NewCatalog() error = %v; want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("NewCatalog() error = nil; want %q", tt.wantErr)
			}
			if _, ok := err.(*CatalogError); !ok {
				t.Errorf("NewCatalog() error type = %T; want *CatalogError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewCatalog() error = %v; want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_Milestones(t *testing.T) {
	cat, err := NewCatalog([]Level{{ID: "1.1", Key: LevelKey{1, 1}, XPMin: 0, XPMax: 99}}, nil, nil, []int{30, 7, 14})
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	got := cat.Milestones()
	want := []int{7, 14, 30}
	if len(got) != len(want) {
		t.Fatalf("Milestones() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Milestones()[%d] = %d; want %d", i, got[i], want[i])
		}
	}
}
