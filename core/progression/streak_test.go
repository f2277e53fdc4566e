package progression

import (
	"testing"
	"time"
)

func TestAdvanceStreak(t *testing.T) {
	day1 := date(t, "2026-03-01")
	day2 := date(t, "2026-03-02")
	day3 := date(t, "2026-03-03")
	day5 := date(t, "2026-03-05")

	t.Run("continuity", func(t *testing.T) {
		var sk Streak
		var err error
		for _, day := range []time.Time{day1, day2, day3} {
			if sk, err = AdvanceStreak(sk, day); err != nil {
				t.Fatalf("AdvanceStreak(%s) failed: %v", day, err)
			}
		}
		if sk.Current != 3 || sk.Longest != 3 {
			t.Errorf("streak = %d/%d; want 3/3", sk.Current, sk.Longest)
		}

		// skipped day 4: streak broken, fresh streak starts on day 5
		if sk, err = AdvanceStreak(sk, day5); err != nil {
			t.Fatalf("AdvanceStreak(%s) failed: %v", day5, err)
		}
		if sk.Current != 1 {
			t.Errorf("current = %d; want 1 after gap", sk.Current)
		}
		if sk.Longest != 3 {
			t.Errorf("longest = %d; want 3 retained", sk.Longest)
		}
	})

	t.Run("same-day repeat does not double-count", func(t *testing.T) {
		sk, err := AdvanceStreak(Streak{}, day1)
		if err != nil {
			t.Fatalf("AdvanceStreak() failed: %v", err)
		}
		if sk, err = AdvanceStreak(sk, day1); err != nil {
			t.Fatalf("AdvanceStreak() failed: %v", err)
		}
		if sk.Current != 1 {
			t.Errorf("current = %d; want 1", sk.Current)
		}
	})

	t.Run("out-of-order event rejected", func(t *testing.T) {
		sk, err := AdvanceStreak(Streak{}, day2)
		if err != nil {
			t.Fatalf("AdvanceStreak() failed: %v", err)
		}
		before := sk
		if sk, err = AdvanceStreak(sk, day1); err != ErrStaleEvent {
			t.Errorf("AdvanceStreak() error = %v; want ErrStaleEvent", err)
		}
		if sk != before {
			t.Errorf("streak changed on stale event: %+v -> %+v", before, sk)
		}
	})

	t.Run("intra-day timestamps truncate to the same day", func(t *testing.T) {
		sk, err := AdvanceStreak(Streak{}, day1.Add(9*time.Hour))
		if err != nil {
			t.Fatalf("AdvanceStreak() failed: %v", err)
		}
		if sk, err = AdvanceStreak(sk, day1.Add(23*time.Hour)); err != nil {
			t.Fatalf("AdvanceStreak() failed: %v", err)
		}
		if sk.Current != 1 {
			t.Errorf("current = %d; want 1", sk.Current)
		}
	})
}

func TestMilestones(t *testing.T) {
	cat := newTestCatalog(t)

	sk := Streak{Current: 14, Longest: 20}
	marks := Milestones(sk, cat)
	want := map[int]bool{7: true, 14: true, 30: false, 100: false}
	if len(marks) != len(want) {
		t.Fatalf("Milestones() len = %d; want %d", len(marks), len(want))
	}
	for _, mark := range marks {
		if mark.Reached != want[mark.Days] {
			t.Errorf("Milestones() %d reached = %v; want %v", mark.Days, mark.Reached, want[mark.Days])
		}
	}
}

func TestClaim(t *testing.T) {
	cat := newTestCatalog(t)
	rwd, _ := cat.Reward("r-week") // streak_required=7, xp_bonus=150

	st := NewState("u1")
	st.Streak = Streak{Current: 7, Longest: 7}

	// not enough streak
	short := NewState("u2")
	short.Streak = Streak{Current: 6, Longest: 6}
	if _, err := Claim(short, rwd); err != ErrRewardNotEligible {
		t.Errorf("Claim() error = %v; want ErrRewardNotEligible", err)
	}

	// first claim succeeds and grants the bonus
	st, err := Claim(st, rwd)
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if st.TotalXP != 150 {
		t.Errorf("TotalXP = %d; want 150", st.TotalXP)
	}
	if !st.ClaimedRewards.Has("r-week") {
		t.Error("reward not recorded as claimed")
	}

	// second claim fails: claiming is exactly-once
	if _, err = Claim(st, rwd); err != ErrAlreadyClaimed {
		t.Errorf("Claim() error = %v; want ErrAlreadyClaimed", err)
	}

	// a later streak reset does not revoke the claim
	st.Streak.Current = 0
	if !st.ClaimedRewards.Has("r-week") {
		t.Error("claimed reward revoked by streak reset")
	}
	if len(ClaimableRewards(st, cat)) != 0 {
		t.Errorf("ClaimableRewards() = %v; want empty", ClaimableRewards(st, cat))
	}
}
