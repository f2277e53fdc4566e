package progression

import "testing"

func TestEvaluateAchievements(t *testing.T) {
	cat := newTestCatalog(t)

	st := NewState("u1")
	st.Stats[StatChallengesCompleted] = 1

	earned := EvaluateAchievements(st, cat)
	if len(earned) != 1 || earned[0].ID != "first-challenge" {
		t.Fatalf("EvaluateAchievements() = %v; want [first-challenge]", achIDs(earned))
	}

	// idempotency: same snapshot with the earned set updated yields nothing new
	st.EarnedAchievements.Add("first-challenge")
	if again := EvaluateAchievements(st, cat); len(again) != 0 {
		t.Errorf("EvaluateAchievements() second pass = %v; want empty", achIDs(again))
	}

	// additive only: a later stat regression never revokes an earned id
	st.Stats[StatLongestStreak] = 7
	earned = EvaluateAchievements(st, cat)
	if len(earned) != 1 || earned[0].ID != "week-streak" {
		t.Fatalf("EvaluateAchievements() = %v; want [week-streak]", achIDs(earned))
	}
	st.EarnedAchievements.Add("week-streak")

	st.Stats[StatCurrentStreak] = 0 // streak reset
	if again := EvaluateAchievements(st, cat); len(again) != 0 {
		t.Errorf("EvaluateAchievements() after streak reset = %v; want empty", achIDs(again))
	}
	if !st.EarnedAchievements.Has("week-streak") {
		t.Error("earned achievement was revoked")
	}
}

func TestEvaluateAchievements_multiple(t *testing.T) {
	cat := newTestCatalog(t)

	st := NewState("u1")
	st.Stats[StatChallengesCompleted] = 12
	st.TotalXP = 1200
	st.Stats[StatTotalXP] = 1200

	earned := EvaluateAchievements(st, cat)
	want := []string{"first-challenge", "challenge-10", "xp-1000"}
	got := achIDs(earned)
	if !equalStrings(got, want) {
		t.Errorf("EvaluateAchievements() = %v; want %v", got, want)
	}
}

func achIDs(achs []Achievement) []string {
	ids := make([]string, 0, len(achs))
	for _, ach := range achs {
		ids = append(ids, ach.ID)
	}
	return ids
}
