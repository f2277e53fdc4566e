package progression

// ApplyXP credits delta XP to the state and returns the new state.
// XP is monotonically non-decreasing: negative deltas fail with ErrInvalidDelta
// and corrections must be modeled as a separate compensating process.
// The total is mirrored into the stats snapshot so XP-driven achievement
// conditions see it.
func ApplyXP(st State, delta int) (State, error) {
	if delta < 0 {
		return st, ErrInvalidDelta
	}
	st = st.Clone()
	st.TotalXP += delta
	st.Stats[StatTotalXP] = st.TotalXP
	return st, nil
}
