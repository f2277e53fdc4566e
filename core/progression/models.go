package progression

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
)

var (
	// errors
	ErrStateNotFound     = errors.New("progression state not found")
	ErrInvalidDelta      = errors.New("negative XP delta")
	ErrStaleEvent        = errors.New("activity date precedes the last recorded activity")
	ErrRewardNotEligible = errors.New("streak requirement not met")
	ErrAlreadyClaimed    = errors.New("reward already claimed")
	ErrLevelLocked       = errors.New("level is locked")
	ErrUnknownLevel      = errors.New("unknown level")
	ErrUnknownReward     = errors.New("unknown reward")
)

// Well-known stats snapshot counters. The snapshot is an open map; collaborators
// may patch counters of their own, but these are the ones the default catalog
// conditions are written against.
const (
	StatChallengesCompleted = "challenges_completed"
	StatExercisesSubmitted  = "exercises_submitted"
	StatNotesCreated        = "notes_created"
	StatLoginDays           = "login_days"

	// mirrored by the coordinator before achievements are evaluated;
	// never patch these directly.
	StatTotalXP       = "total_xp"
	StatLongestStreak = "longest_streak"
	StatCurrentStreak = "consecutive_days"
)

// Event types emitted by the portal.
const (
	EventChallengeCompleted = "challenge_completed"
	EventExerciseSubmitted  = "exercise_submitted"
	EventNoteCreated        = "note_created"
	EventDailyLogin         = "daily_login"
	EventManualBonus        = "manual_bonus"
)

var EventTypes = []string{
	EventChallengeCompleted,
	EventExerciseSubmitted,
	EventNoteCreated,
	EventDailyLogin,
	EventManualBonus,
}

// LevelKey orders levels by (major, minor).
type LevelKey struct {
	Major int `json:"major" mapstructure:"major"`
	Minor int `json:"minor" mapstructure:"minor"`
}

func (k LevelKey) Less(o LevelKey) bool {
	if k.Major != o.Major {
		return k.Major < o.Major
	}
	return k.Minor < o.Minor
}

func (k LevelKey) IsZero() bool { return k.Major == 0 && k.Minor == 0 }

func (k LevelKey) String() string { return fmt.Sprintf("%d.%d", k.Major, k.Minor) }

// Set is a set of catalog ids (or flag names). It marshals as a sorted JSON
// array so API payloads and stored rows stay stable.
type Set map[string]bool

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func (s Set) Has(id string) bool { return s[id] }

func (s Set) Add(id string) { s[id] = true }

func (s Set) Clone() Set {
	c := make(Set, len(s))
	for id := range s {
		c[id] = true
	}
	return c
}

func (s Set) Values() []string {
	vals := make([]string, 0, len(s))
	for id := range s {
		vals = append(vals, id)
	}
	sort.Strings(vals)
	return vals
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	*s = NewSet(vals...)
	return nil
}

// Snapshot is a user-statistics snapshot: named activity counters.
type Snapshot map[string]int

func (s Snapshot) Get(key string) int { return s[key] }

func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Merge adds the patch's increments to the snapshot.
func (s Snapshot) Merge(patch Snapshot) {
	for k, v := range patch {
		s[k] += v
	}
}

// Streak tracks consecutive-day activity.
type Streak struct {
	Current          int       `json:"current_length"`
	Longest          int       `json:"longest_length"`
	LastActivityDate time.Time `json:"last_activity_date"` // zero = no activity recorded yet
}

// State is a user's full progression state. It is a value: the coordinator
// takes one in and hands a new one back, persistence is the repository's concern.
type State struct {
	UserID             string    `json:"user_id"`
	Email              string    `json:"-"` // for notifications; refreshed from events
	TotalXP            int       `json:"total_xp"`
	CurrentLevel       LevelKey  `json:"current_level"`
	UnlockedLevels     Set       `json:"unlocked_level_ids"`
	CompletedLevels    Set       `json:"completed_level_ids"`
	EarnedAchievements Set       `json:"earned_achievement_ids"`
	ClaimedRewards     Set       `json:"claimed_reward_ids"`
	Streak             Streak    `json:"streak"`
	Stats              Snapshot  `json:"stats"`
	Flags              Set       `json:"flags"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

// NewState returns the all-zero state created on a user's first event.
func NewState(userID string) State {
	now := time.Now().UTC()
	return State{
		UserID:             userID,
		UnlockedLevels:     NewSet(),
		CompletedLevels:    NewSet(),
		EarnedAchievements: NewSet(),
		ClaimedRewards:     NewSet(),
		Stats:              make(Snapshot),
		Flags:              NewSet(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (st State) Clone() State {
	c := st
	c.UnlockedLevels = st.UnlockedLevels.Clone()
	c.CompletedLevels = st.CompletedLevels.Clone()
	c.EarnedAchievements = st.EarnedAchievements.Clone()
	c.ClaimedRewards = st.ClaimedRewards.Clone()
	c.Stats = st.Stats.Clone()
	c.Flags = st.Flags.Clone()
	return c
}

// env builds the predicate evaluation environment for this state.
func (st State) env() Env {
	return Env{
		XP:        st.TotalXP,
		Stats:     st.Stats,
		Completed: st.CompletedLevels,
		Flags:     st.Flags,
	}
}

// ActivityEvent is one unit of portal activity to feed into the coordinator.
// Dedup is the caller's concern: the coordinator applies every event it is given.
type ActivityEvent struct {
	ID           string
	UserID       string
	UserEmail    string // optional, refreshes State.Email for notifications
	Type         string
	XPDelta      int
	ActivityDate time.Time // zero = event does not count towards the streak
	StatsPatch   Snapshot
}

// NewEvent contains the information needed to submit an ActivityEvent.
type NewEvent struct {
	UserID       string         `json:"user_id" validate:"required"`
	UserEmail    string         `json:"user_email" validate:"omitempty,email"`
	Type         string         `json:"event_type" validate:"required,eventtype"`
	XPDelta      int            `json:"xp_delta" validate:"min=0"`
	ActivityDate string         `json:"activity_date" validate:"omitempty,dateonly"`
	StatsPatch   map[string]int `json:"stats_patch" validate:"omitempty,statspatch"`
}

func (ne *NewEvent) Validate(validate *validator.Validate) error {
	ne.UserID = core.CleanString(ne.UserID)
	ne.UserEmail = core.CleanString(ne.UserEmail, true /* lower */)
	ne.Type = core.CleanString(ne.Type, true /* lower */)
	return validate.Struct(ne)
}

// Event converts the validated payload into an ActivityEvent with the given id.
func (ne NewEvent) Event(id string) ActivityEvent {
	ev := ActivityEvent{
		ID:        id,
		UserID:    ne.UserID,
		UserEmail: ne.UserEmail,
		Type:      ne.Type,
		XPDelta:   ne.XPDelta,
	}
	if ne.ActivityDate != "" {
		ev.ActivityDate, _ = core.ParseDate(ne.ActivityDate) // checked by Validate
	}
	if len(ne.StatsPatch) > 0 {
		ev.StatsPatch = Snapshot(ne.StatsPatch)
	}
	return ev
}

// Result is the output bundle of one coordinator pass: the new state plus
// everything a notification or persistence collaborator needs.
type Result struct {
	EventID                 string   `json:"event_id,omitempty"`
	State                   State    `json:"state"`
	XPGained                int      `json:"xp_gained"`
	NewlyUnlockedLevels     []string `json:"newly_unlocked_levels"`
	NewlyEarnedAchievements []string `json:"newly_earned_achievements"`
	NewlyClaimableRewards   []string `json:"newly_claimable_rewards"`
	LevelUp                 bool     `json:"level_up"`
}

// Notable reports whether the result carries anything worth telling the user about.
func (r Result) Notable() bool {
	return r.LevelUp || len(r.NewlyEarnedAchievements) > 0 || len(r.NewlyClaimableRewards) > 0
}
