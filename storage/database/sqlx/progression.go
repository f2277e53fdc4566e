package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/maendeleo/core/progression"
)

var _ progression.Repository = (*progressionRepository)(nil)

type progressionStateRow struct {
	UserID             string    `db:"user_id"`
	Email              string    `db:"email"`
	TotalXP            int       `db:"total_xp"`
	CurrentMajor       int       `db:"current_major"`
	CurrentMinor       int       `db:"current_minor"`
	UnlockedLevels     []byte    `db:"unlocked_levels"`
	CompletedLevels    []byte    `db:"completed_levels"`
	EarnedAchievements []byte    `db:"earned_achievements"`
	ClaimedRewards     []byte    `db:"claimed_rewards"`
	Stats              []byte    `db:"stats"`
	Flags              []byte    `db:"flags"`
	StreakCurrent      int       `db:"streak_current"`
	StreakLongest      int       `db:"streak_longest"`
	LastActivityDate   null.Time `db:"last_activity_date"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func newProgressionStateRow(st progression.State) (progressionStateRow, error) {
	row := progressionStateRow{
		UserID:        st.UserID,
		Email:         st.Email,
		TotalXP:       st.TotalXP,
		CurrentMajor:  st.CurrentLevel.Major,
		CurrentMinor:  st.CurrentLevel.Minor,
		StreakCurrent: st.Streak.Current,
		StreakLongest: st.Streak.Longest,
		CreatedAt:     st.CreatedAt,
		UpdatedAt:     st.UpdatedAt,
	}
	if !st.Streak.LastActivityDate.IsZero() {
		row.LastActivityDate = null.TimeFrom(st.Streak.LastActivityDate)
	}

	var err error
	for _, col := range []struct {
		dst *[]byte
		src interface{}
	}{
		{&row.UnlockedLevels, st.UnlockedLevels},
		{&row.CompletedLevels, st.CompletedLevels},
		{&row.EarnedAchievements, st.EarnedAchievements},
		{&row.ClaimedRewards, st.ClaimedRewards},
		{&row.Stats, st.Stats},
		{&row.Flags, st.Flags},
	} {
		if *col.dst, err = json.Marshal(col.src); err != nil {
			return row, errors.Wrap(err, "marshaling progression state")
		}
	}
	return row, nil
}

func (row progressionStateRow) state() (progression.State, error) {
	st := progression.State{
		UserID:       row.UserID,
		Email:        row.Email,
		TotalXP:      row.TotalXP,
		CurrentLevel: progression.LevelKey{Major: row.CurrentMajor, Minor: row.CurrentMinor},
		Streak: progression.Streak{
			Current: row.StreakCurrent,
			Longest: row.StreakLongest,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.LastActivityDate.Valid {
		st.Streak.LastActivityDate = row.LastActivityDate.Time.UTC()
	}

	for _, col := range []struct {
		src []byte
		dst interface{}
	}{
		{row.UnlockedLevels, &st.UnlockedLevels},
		{row.CompletedLevels, &st.CompletedLevels},
		{row.EarnedAchievements, &st.EarnedAchievements},
		{row.ClaimedRewards, &st.ClaimedRewards},
		{row.Stats, &st.Stats},
		{row.Flags, &st.Flags},
	} {
		if len(col.src) == 0 {
			continue
		}
		if err := json.Unmarshal(col.src, col.dst); err != nil {
			return st, errors.Wrap(err, "unmarshaling progression state")
		}
	}
	if st.UnlockedLevels == nil {
		st.UnlockedLevels = make(progression.Set)
	}
	if st.CompletedLevels == nil {
		st.CompletedLevels = make(progression.Set)
	}
	if st.EarnedAchievements == nil {
		st.EarnedAchievements = make(progression.Set)
	}
	if st.ClaimedRewards == nil {
		st.ClaimedRewards = make(progression.Set)
	}
	if st.Stats == nil {
		st.Stats = make(progression.Snapshot)
	}
	if st.Flags == nil {
		st.Flags = make(progression.Set)
	}
	return st, nil
}

type progressionRepository struct {
	db *sqlx.DB
}

func NewProgressionRepository(db *sqlx.DB) *progressionRepository {
	return &progressionRepository{db: db}
}

func (repo progressionRepository) GetState(ctx context.Context, userID string) (progression.State, error) {
	var row progressionStateRow
	q := `SELECT * FROM progression_state WHERE user_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, userID); err != nil {
		if err == sql.ErrNoRows {
			return progression.State{}, progression.ErrStateNotFound
		}
		return progression.State{}, errors.Wrap(err, "getting progression state")
	}
	return row.state()
}

func (repo progressionRepository) SaveState(ctx context.Context, st progression.State) (progression.State, error) {
	row, err := newProgressionStateRow(st)
	if err != nil {
		return progression.State{}, err
	}

	q := `
INSERT INTO progression_state (
	user_id, email, total_xp, current_major, current_minor,
	unlocked_levels, completed_levels, earned_achievements, claimed_rewards,
	stats, flags, streak_current, streak_longest, last_activity_date,
	created_at, updated_at
) VALUES (
	:user_id, :email, :total_xp, :current_major, :current_minor,
	:unlocked_levels, :completed_levels, :earned_achievements, :claimed_rewards,
	:stats, :flags, :streak_current, :streak_longest, :last_activity_date,
	:created_at, :updated_at
)
ON CONFLICT (user_id) DO UPDATE SET
	email = EXCLUDED.email,
	total_xp = EXCLUDED.total_xp,
	current_major = EXCLUDED.current_major,
	current_minor = EXCLUDED.current_minor,
	unlocked_levels = EXCLUDED.unlocked_levels,
	completed_levels = EXCLUDED.completed_levels,
	earned_achievements = EXCLUDED.earned_achievements,
	claimed_rewards = EXCLUDED.claimed_rewards,
	stats = EXCLUDED.stats,
	flags = EXCLUDED.flags,
	streak_current = EXCLUDED.streak_current,
	streak_longest = EXCLUDED.streak_longest,
	last_activity_date = EXCLUDED.last_activity_date,
	updated_at = EXCLUDED.updated_at`
	if _, err = repo.db.NamedExecContext(ctx, q, row); err != nil {
		return progression.State{}, errors.Wrap(err, "saving progression state")
	}
	return st, nil
}

func (repo progressionRepository) QueryAllStates(ctx context.Context) ([]progression.State, error) {
	var rows []progressionStateRow
	q := `SELECT * FROM progression_state ORDER BY total_xp DESC, user_id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying progression states")
	}

	states := make([]progression.State, 0, len(rows))
	for _, row := range rows {
		st, err := row.state()
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}
