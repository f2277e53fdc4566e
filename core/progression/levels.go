package progression

// Level statuses as surfaced to the portal.
const (
	LevelStatusLocked    = "locked"
	LevelStatusUnlocked  = "unlocked"
	LevelStatusCompleted = "completed"
)

type (
	// Resolution is the level resolver's output: the unlocked and completed
	// sets plus the current level key.
	Resolution struct {
		Unlocked  Set
		Completed Set
		Current   LevelKey
	}

	// LevelView is one catalog level annotated with the user's status on it.
	LevelView struct {
		Level
		Status  string `json:"status"`
		Current bool   `json:"current"`
	}
)

// Resolve recomputes the unlocked/completed sets and the current level for st.
//
// A level unlocks iff the XP gate holds (total_xp >= xp_min) AND every unlock
// condition holds. XP is necessary but not sufficient: a level whose
// prerequisites are unmet stays locked no matter how large the total gets;
// this is what makes gated, sequential curricula possible.
//
// Completion is never inferred from XP: a level is completed only when an
// external signal marked it so (XP range membership means eligibility, not
// completion). Current is the highest (major, minor) unlocked level whose
// xp_min is <= total_xp.
func Resolve(st State, cat *Catalog) Resolution {
	env := st.env()
	unlocked := make(Set, len(st.UnlockedLevels))

	var current LevelKey
	for _, lvl := range cat.levels { // sorted by Key
		if st.TotalXP < lvl.XPMin {
			continue
		}
		ok := true
		for _, pred := range lvl.UnlockConditions {
			if !pred.Eval(env) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		unlocked.Add(lvl.ID)
		if current.Less(lvl.Key) {
			current = lvl.Key
		}
	}

	// completed stays a subset of unlocked; unlocks never regress since XP is
	// monotonic and flags are only ever set.
	completed := make(Set, len(st.CompletedLevels))
	for id := range st.CompletedLevels {
		if unlocked.Has(id) {
			completed.Add(id)
		}
	}

	return Resolution{Unlocked: unlocked, Completed: completed, Current: current}
}

// LevelMap returns every catalog level annotated with st's status on it,
// in (major, minor) order.
func LevelMap(st State, cat *Catalog) []LevelView {
	res := Resolve(st, cat)
	views := make([]LevelView, 0, len(cat.levels))
	for _, lvl := range cat.levels {
		view := LevelView{Level: lvl, Status: LevelStatusLocked}
		switch {
		case res.Completed.Has(lvl.ID):
			view.Status = LevelStatusCompleted
		case res.Unlocked.Has(lvl.ID):
			view.Status = LevelStatusUnlocked
		}
		view.Current = lvl.Key == res.Current
		views = append(views, view)
	}
	return views
}
