package progression

// EvaluateAchievements returns the catalog achievements newly satisfied by
// st's stats snapshot, in catalog order.
//
// The result is strictly additive: ids already in st.EarnedAchievements are
// never returned again and never removed, so an achievement survives later
// stat regressions (a reset streak does not revoke a streak achievement).
// Evaluating the same snapshot twice with the earned set updated in between
// yields an empty second result; the coordinator relies on this to grant each
// xp_reward exactly once.
func EvaluateAchievements(st State, cat *Catalog) []Achievement {
	env := st.env()
	var earned []Achievement
	for _, ach := range cat.achievements {
		if st.EarnedAchievements.Has(ach.ID) {
			continue
		}
		if ach.Condition.Eval(env) {
			earned = append(earned, ach)
		}
	}
	return earned
}
