package progression

import (
	"time"

	"github.com/trezcool/maendeleo/core"
)

// Milestone is a read-only view over the streak length; milestones never
// mutate state, they are derived for display.
type Milestone struct {
	Days    int  `json:"days"`
	Reached bool `json:"reached"`
}

// AdvanceStreak applies one day of activity to the streak.
//
// Same-day repeat activity does not double-count. A one-day step extends the
// streak; any larger gap breaks it and a fresh streak starts the same day.
// Events must arrive in non-decreasing date order per user: an activity date
// older than the last recorded one fails with ErrStaleEvent.
func AdvanceStreak(sk Streak, activityDate time.Time) (Streak, error) {
	day := core.DateOf(activityDate)

	if sk.LastActivityDate.IsZero() {
		sk.Current = 1
		sk.LastActivityDate = day
	} else {
		last := core.DateOf(sk.LastActivityDate)
		switch {
		case day.Equal(last):
			return sk, nil
		case day.Equal(core.NextDay(last)):
			sk.Current++
			sk.LastActivityDate = day
		case day.After(last):
			sk.Current = 1
			sk.LastActivityDate = day
		default:
			return sk, ErrStaleEvent
		}
	}

	if sk.Current > sk.Longest {
		sk.Longest = sk.Current
	}
	return sk, nil
}

// Milestones reports which of the catalog's streak marks st has reached.
func Milestones(sk Streak, cat *Catalog) []Milestone {
	marks := make([]Milestone, 0, len(cat.milestones))
	for _, days := range cat.milestones {
		marks = append(marks, Milestone{Days: days, Reached: sk.Current >= days})
	}
	return marks
}

// ClaimableRewards returns the catalog rewards st could claim right now:
// streak requirement met and not yet claimed.
func ClaimableRewards(st State, cat *Catalog) []Reward {
	var claimable []Reward
	for _, rwd := range cat.rewards {
		if st.ClaimedRewards.Has(rwd.ID) {
			continue
		}
		if st.Streak.Current >= rwd.StreakRequired {
			claimable = append(claimable, rwd)
		}
	}
	return claimable
}

// Claim grants the reward's XP bonus and marks it claimed, exactly once.
// A claimed reward stays claimed forever; later streak resets do not revoke it.
func Claim(st State, rwd Reward) (State, error) {
	if st.ClaimedRewards.Has(rwd.ID) {
		return st, ErrAlreadyClaimed
	}
	if st.Streak.Current < rwd.StreakRequired {
		return st, ErrRewardNotEligible
	}
	st, err := ApplyXP(st, rwd.XPBonus)
	if err != nil {
		return st, err
	}
	st.ClaimedRewards.Add(rwd.ID)
	return st, nil
}
