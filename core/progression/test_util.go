package progression

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/maendeleo/core"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	levels := []Level{
		{ID: "1.1", Key: LevelKey{1, 1}, Title: "Apprentice", XPMin: 0, XPMax: 99},
		{ID: "1.2", Key: LevelKey{1, 2}, Title: "Explorer", XPMin: 0, XPMax: 899, UnlockConditions: []Predicate{
			{Kind: PredLevelCompleted, Level: "1.1"},
		}},
		{ID: "2.1", Key: LevelKey{2, 1}, Title: "Builder", XPMin: 900, XPMax: 1999},
		{ID: "2.2", Key: LevelKey{2, 2}, Title: "Challenger", XPMin: 900, XPMax: 1999, UnlockConditions: []Predicate{
			{Kind: PredFlagSet, Flag: "placement_test"},
		}},
	}
	achievements := []Achievement{
		{ID: "first-challenge", Title: "First Challenge", Badge: "bronze", XPReward: 50,
			Condition: Predicate{Kind: PredStatAtLeast, Stat: StatChallengesCompleted, Value: 1}},
		{ID: "challenge-10", Title: "Ten Challenges", Badge: "silver", XPReward: 500,
			Condition: Predicate{Kind: PredStatAtLeast, Stat: StatChallengesCompleted, Value: 10}},
		{ID: "week-streak", Title: "Week Streak", XPReward: 100,
			Condition: Predicate{Kind: PredStatAtLeast, Stat: StatLongestStreak, Value: 7}},
		{ID: "xp-1000", Title: "XP Millenial", XPReward: 25,
			Condition: Predicate{Kind: PredXPAtLeast, Value: 1000}},
	}
	rewards := []Reward{
		{ID: "r-week", Title: "Weekly Chest", StreakRequired: 7, XPBonus: 150},
		{ID: "r-month", Title: "Monthly Chest", StreakRequired: 30, XPBonus: 1000, Badge: "dedicated"},
	}

	cat, err := NewCatalog(levels, achievements, rewards, nil)
	if err != nil {
		t.Fatalf("newTestCatalog() failed: %v", err)
	}
	return cat
}

func date(t *testing.T, val string) time.Time {
	t.Helper()
	d, err := core.ParseDate(val)
	if err != nil {
		t.Fatalf("date(%s) failed: %v", val, err)
	}
	return d
}

// fakeRepo is an in-memory Repository for coordinator tests.
type fakeRepo struct {
	mu     sync.Mutex
	states map[string]State
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{states: make(map[string]State)}
}

func (repo *fakeRepo) GetState(_ context.Context, userID string) (State, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if st, ok := repo.states[userID]; ok {
		return st.Clone(), nil
	}
	return State{}, ErrStateNotFound
}

func (repo *fakeRepo) SaveState(_ context.Context, st State) (State, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.states[st.UserID] = st.Clone()
	return st, nil
}

func (repo *fakeRepo) QueryAllStates(_ context.Context) ([]State, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	states := make([]State, 0, len(repo.states))
	for _, st := range repo.states {
		states = append(states, st.Clone())
	}
	return states, nil
}

// nopLogger satisfies core.Logger for tests.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewService(repo, newTestCatalog(t), nopLogger{}, nil, nil), repo
}
