package progression

import (
	"fmt"
	"sort"
)

// CatalogError reports a misconfigured catalog. It is returned at load time
// only; a constructed Catalog is immutable and safe for concurrent reads.
type CatalogError struct {
	Reason string
}

func (e *CatalogError) Error() string {
	return "catalog misconfigured: " + e.Reason
}

func catalogErrorf(format string, args ...interface{}) error {
	return &CatalogError{Reason: fmt.Sprintf(format, args...)}
}

type (
	// Level is a static catalog node with an XP range and optional
	// unlock conditions. Unlocking a level does not imply completing it.
	Level struct {
		ID               string      `json:"id"`
		Key              LevelKey    `json:"key"`
		Title            string      `json:"title"`
		XPMin            int         `json:"xp_min"`
		XPMax            int         `json:"xp_max"`
		UnlockConditions []Predicate `json:"unlock_conditions,omitempty"`
	}

	// Achievement is a one-time, condition-triggered grant of bonus XP and a badge.
	// Conditions must be monotonic in the stats that drive them: once a snapshot
	// satisfies one, any later snapshot with equal-or-greater counters keeps it satisfied.
	Achievement struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Badge     string    `json:"badge,omitempty"`
		Condition Predicate `json:"condition"`
		XPReward  int       `json:"xp_reward"`
	}

	// Reward is a streak-gated, exactly-once-claimable XP bonus.
	Reward struct {
		ID             string `json:"id"`
		Title          string `json:"title"`
		StreakRequired int    `json:"streak_required"`
		XPBonus        int    `json:"xp_bonus"`
		Badge          string `json:"badge,omitempty"`
	}

	// Catalog is the immutable, preloaded set of levels, achievements and
	// rewards. It is read-only after NewCatalog and requires no locking.
	Catalog struct {
		levels       []Level // sorted by Key
		levelsByID   map[string]Level
		achievements []Achievement
		rewards      []Reward // sorted by StreakRequired
		rewardsByID  map[string]Reward
		milestones   []int // streak day thresholds, ascending
	}
)

// DefaultMilestones are the streak day marks surfaced to the UI when the
// catalog does not override them.
var DefaultMilestones = []int{7, 14, 30, 100}

// NewCatalog validates the static catalog and returns it ready for use.
// It fails with a CatalogError when no entry level is reachable at zero XP,
// when a prerequisite reference does not resolve, or when prerequisites cycle.
func NewCatalog(levels []Level, achievements []Achievement, rewards []Reward, milestones []int) (*Catalog, error) {
	if len(levels) == 0 {
		return nil, catalogErrorf("no levels defined")
	}

	cat := &Catalog{
		levels:       make([]Level, len(levels)),
		levelsByID:   make(map[string]Level, len(levels)),
		achievements: achievements,
		rewards:      make([]Reward, len(rewards)),
		rewardsByID:  make(map[string]Reward, len(rewards)),
		milestones:   milestones,
	}
	copy(cat.levels, levels)
	sort.Slice(cat.levels, func(i, j int) bool { return cat.levels[i].Key.Less(cat.levels[j].Key) })

	var hasEntry bool
	for _, lvl := range cat.levels {
		if lvl.ID == "" {
			return nil, catalogErrorf("level %s: missing id", lvl.Key)
		}
		if _, dup := cat.levelsByID[lvl.ID]; dup {
			return nil, catalogErrorf("duplicate level id %q", lvl.ID)
		}
		if lvl.Key.Major < 1 || lvl.Key.Minor < 1 {
			return nil, catalogErrorf("level %q: invalid key %s", lvl.ID, lvl.Key)
		}
		if lvl.XPMin < 0 || lvl.XPMax < lvl.XPMin {
			return nil, catalogErrorf("level %q: invalid XP range [%d, %d]", lvl.ID, lvl.XPMin, lvl.XPMax)
		}
		for _, pred := range lvl.UnlockConditions {
			if err := pred.check(); err != nil {
				return nil, catalogErrorf("level %q: %v", lvl.ID, err)
			}
		}
		if lvl.XPMin == 0 && len(lvl.UnlockConditions) == 0 {
			hasEntry = true
		}
		cat.levelsByID[lvl.ID] = lvl
	}
	if !hasEntry {
		return nil, catalogErrorf("no entry level reachable at zero XP")
	}

	// prerequisite references must resolve, and the prerequisite graph must be a DAG
	for _, lvl := range cat.levels {
		for _, pred := range lvl.UnlockConditions {
			if pred.Kind == PredLevelCompleted {
				if _, ok := cat.levelsByID[pred.Level]; !ok {
					return nil, catalogErrorf("level %q: prerequisite %q does not exist", lvl.ID, pred.Level)
				}
			}
		}
	}
	if cycle := cat.findPrereqCycle(); cycle != "" {
		return nil, catalogErrorf("prerequisite cycle through level %q", cycle)
	}

	for _, ach := range cat.achievements {
		if ach.ID == "" {
			return nil, catalogErrorf("achievement with missing id")
		}
		if ach.XPReward < 0 {
			return nil, catalogErrorf("achievement %q: negative xp_reward", ach.ID)
		}
		if err := ach.Condition.check(); err != nil {
			return nil, catalogErrorf("achievement %q: %v", ach.ID, err)
		}
		if ach.Condition.Kind == PredLevelCompleted {
			if _, ok := cat.levelsByID[ach.Condition.Level]; !ok {
				return nil, catalogErrorf("achievement %q: level %q does not exist", ach.ID, ach.Condition.Level)
			}
		}
	}

	copy(cat.rewards, rewards)
	sort.Slice(cat.rewards, func(i, j int) bool { return cat.rewards[i].StreakRequired < cat.rewards[j].StreakRequired })
	for _, rwd := range cat.rewards {
		if rwd.ID == "" {
			return nil, catalogErrorf("reward with missing id")
		}
		if _, dup := cat.rewardsByID[rwd.ID]; dup {
			return nil, catalogErrorf("duplicate reward id %q", rwd.ID)
		}
		if rwd.StreakRequired < 1 {
			return nil, catalogErrorf("reward %q: streak_required must be >= 1", rwd.ID)
		}
		if rwd.XPBonus < 0 {
			return nil, catalogErrorf("reward %q: negative xp_bonus", rwd.ID)
		}
		cat.rewardsByID[rwd.ID] = rwd
	}

	if len(cat.milestones) == 0 {
		cat.milestones = DefaultMilestones
	}
	sort.Ints(cat.milestones)
	for _, days := range cat.milestones {
		if days < 1 {
			return nil, catalogErrorf("milestone threshold must be >= 1, got %d", days)
		}
	}

	return cat, nil
}

// findPrereqCycle walks the level_completed graph; returns an offending level id
// or "" when the graph is acyclic.
func (cat *Catalog) findPrereqCycle() string {
	const (
		unseen = iota
		visiting
		done
	)
	marks := make(map[string]int, len(cat.levels))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch marks[id] {
		case visiting:
			return true
		case done:
			return false
		}
		marks[id] = visiting
		for _, pred := range cat.levelsByID[id].UnlockConditions {
			if pred.Kind == PredLevelCompleted && visit(pred.Level) {
				return true
			}
		}
		marks[id] = done
		return false
	}

	for _, lvl := range cat.levels {
		if visit(lvl.ID) {
			return lvl.ID
		}
	}
	return ""
}

// Levels returns the catalog levels in (major, minor) order.
func (cat *Catalog) Levels() []Level {
	levels := make([]Level, len(cat.levels))
	copy(levels, cat.levels)
	return levels
}

func (cat *Catalog) Level(id string) (Level, bool) {
	lvl, ok := cat.levelsByID[id]
	return lvl, ok
}

func (cat *Catalog) Achievements() []Achievement {
	achs := make([]Achievement, len(cat.achievements))
	copy(achs, cat.achievements)
	return achs
}

// Rewards returns the catalog rewards ordered by streak requirement.
func (cat *Catalog) Rewards() []Reward {
	rwds := make([]Reward, len(cat.rewards))
	copy(rwds, cat.rewards)
	return rwds
}

func (cat *Catalog) Reward(id string) (Reward, bool) {
	rwd, ok := cat.rewardsByID[id]
	return rwd, ok
}

// Milestones returns the streak day thresholds in ascending order.
func (cat *Catalog) Milestones() []int {
	days := make([]int, len(cat.milestones))
	copy(days, cat.milestones)
	return days
}
