package progression

import "fmt"

// PredicateKind tags the predicate variants understood by the interpreter.
type PredicateKind string

const (
	PredXPAtLeast      PredicateKind = "xp_at_least"
	PredLevelCompleted PredicateKind = "level_completed"
	PredFlagSet        PredicateKind = "flag_set"
	PredStatAtLeast    PredicateKind = "stat_at_least"
)

// Predicate is a declarative, side-effect-free condition over a user's
// progression environment. Catalog entries hold these; a single interpreter
// (Eval) runs them all.
type Predicate struct {
	Kind  PredicateKind `json:"kind" mapstructure:"kind"`
	Level string        `json:"level,omitempty" mapstructure:"level"` // level_completed
	Flag  string        `json:"flag,omitempty" mapstructure:"flag"`   // flag_set
	Stat  string        `json:"stat,omitempty" mapstructure:"stat"`   // stat_at_least
	Value int           `json:"value,omitempty" mapstructure:"value"` // xp_at_least, stat_at_least
}

// Env is the read-only environment predicates are evaluated against.
type Env struct {
	XP        int
	Stats     Snapshot
	Completed Set
	Flags     Set
}

// Eval interprets the predicate against env. Unknown kinds evaluate to false;
// NewCatalog rejects them at load time.
func (p Predicate) Eval(env Env) bool {
	switch p.Kind {
	case PredXPAtLeast:
		return env.XP >= p.Value
	case PredLevelCompleted:
		return env.Completed.Has(p.Level)
	case PredFlagSet:
		return env.Flags.Has(p.Flag)
	case PredStatAtLeast:
		return env.Stats.Get(p.Stat) >= p.Value
	}
	return false
}

// check validates the predicate's shape (not its references; the catalog does that).
func (p Predicate) check() error {
	switch p.Kind {
	case PredXPAtLeast:
		if p.Value < 0 {
			return fmt.Errorf("%s: negative value", p.Kind)
		}
	case PredLevelCompleted:
		if p.Level == "" {
			return fmt.Errorf("%s: missing level", p.Kind)
		}
	case PredFlagSet:
		if p.Flag == "" {
			return fmt.Errorf("%s: missing flag", p.Kind)
		}
	case PredStatAtLeast:
		if p.Stat == "" {
			return fmt.Errorf("%s: missing stat", p.Kind)
		}
		if p.Value < 0 {
			return fmt.Errorf("%s: negative value", p.Kind)
		}
	default:
		return fmt.Errorf("unknown predicate kind %q", p.Kind)
	}
	return nil
}

func (p Predicate) String() string {
	switch p.Kind {
	case PredXPAtLeast:
		return fmt.Sprintf("xp >= %d", p.Value)
	case PredLevelCompleted:
		return fmt.Sprintf("level %s completed", p.Level)
	case PredFlagSet:
		return fmt.Sprintf("flag %s set", p.Flag)
	case PredStatAtLeast:
		return fmt.Sprintf("%s >= %d", p.Stat, p.Value)
	}
	return string(p.Kind)
}
