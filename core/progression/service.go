package progression

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core"
)

type (
	// Repository persists progression states. Write-back is at-least-once;
	// callers dedup events, the coordinator applies every event it is handed.
	Repository interface {
		GetState(ctx context.Context, userID string) (State, error)
		SaveState(ctx context.Context, st State) (State, error)
		QueryAllStates(ctx context.Context) ([]State, error)
	}

	// Notifier is told about notable results (level-ups, achievements,
	// newly claimable rewards) after they are persisted.
	Notifier interface {
		Notify(ctx context.Context, res Result)
	}

	// Leaderboard mirrors XP totals for ranking; updates are best-effort.
	Leaderboard interface {
		RecordXP(ctx context.Context, userID string, totalXP int) error
	}

	// Service is the progression coordinator. It processes events for a given
	// user strictly serially; events for different users run in parallel.
	Service struct {
		repo     Repository
		catalog  *Catalog
		logger   core.Logger
		notifier Notifier    // optional
		board    Leaderboard // optional

		mu      sync.Mutex
		userMus map[string]*sync.Mutex
	}
)

func NewService(repo Repository, cat *Catalog, logger core.Logger, notifier Notifier, board Leaderboard) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		logger:   logger,
		notifier: notifier,
		board:    board,
		userMus:  make(map[string]*sync.Mutex),
	}
}

func (svc *Service) Catalog() *Catalog { return svc.catalog }

// lockUser serializes processing per user id: the five coordinator steps
// read-then-write the same state and are not individually atomic.
func (svc *Service) lockUser(userID string) func() {
	svc.mu.Lock()
	mu, ok := svc.userMus[userID]
	if !ok {
		mu = new(sync.Mutex)
		svc.userMus[userID] = mu
	}
	svc.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// loadOrCreate returns the user's state, creating the baseline state (entry
// level resolved) on first contact.
func (svc *Service) loadOrCreate(ctx context.Context, userID string) (State, error) {
	st, err := svc.repo.GetState(ctx, userID)
	if err == nil {
		return st, nil
	}
	if errors.Cause(err) != ErrStateNotFound {
		return State{}, errors.Wrap(err, "getting progression state")
	}

	st = NewState(userID)
	res := Resolve(st, svc.catalog)
	st.UnlockedLevels = res.Unlocked
	st.CurrentLevel = res.Current
	return st, nil
}

// settle runs the XP-dependent tail of the pipeline on wrk: achievements are
// evaluated and their bonuses applied until quiescent, then levels are
// resolved against the final total so a bonus-crossed threshold reports its
// level-up in this pass, not the next one.
func (svc *Service) settle(prev, wrk State) (State, Result, error) {
	var newAchIDs []string
	for {
		newAchs := EvaluateAchievements(wrk, svc.catalog)
		if len(newAchs) == 0 {
			break
		}
		for _, ach := range newAchs {
			var err error
			if wrk, err = ApplyXP(wrk, ach.XPReward); err != nil {
				return wrk, Result{}, err // unreachable: catalog rejects negative rewards
			}
			wrk.EarnedAchievements.Add(ach.ID)
			newAchIDs = append(newAchIDs, ach.ID)
		}
	}

	res := Resolve(wrk, svc.catalog)
	var newlyUnlocked []string
	for _, id := range res.Unlocked.Values() {
		if !prev.UnlockedLevels.Has(id) {
			newlyUnlocked = append(newlyUnlocked, id)
		}
	}
	wrk.UnlockedLevels = res.Unlocked
	wrk.CompletedLevels = res.Completed
	wrk.CurrentLevel = res.Current

	var newlyClaimable []string
	for _, rwd := range ClaimableRewards(wrk, svc.catalog) {
		if prev.ClaimedRewards.Has(rwd.ID) {
			continue
		}
		if prev.Streak.Current < rwd.StreakRequired {
			newlyClaimable = append(newlyClaimable, rwd.ID)
		}
	}

	wrk.UpdatedAt = time.Now().UTC()

	result := Result{
		State:                   wrk,
		XPGained:                wrk.TotalXP - prev.TotalXP,
		NewlyUnlockedLevels:     newlyUnlocked,
		NewlyEarnedAchievements: newAchIDs,
		NewlyClaimableRewards:   newlyClaimable,
		LevelUp:                 wrk.CurrentLevel != prev.CurrentLevel,
	}
	return wrk, result, nil
}

func (svc *Service) save(ctx context.Context, wrk State, result Result) (Result, error) {
	saved, err := svc.repo.SaveState(ctx, wrk)
	if err != nil {
		return Result{}, errors.Wrap(err, "saving progression state")
	}
	result.State = saved

	if svc.board != nil {
		if err := svc.board.RecordXP(ctx, saved.UserID, saved.TotalXP); err != nil {
			svc.logger.Warn(fmt.Sprintf("recording XP on leaderboard: %v", err), err)
		}
	}
	if svc.notifier != nil && result.Notable() {
		svc.notifier.Notify(ctx, result)
	}
	return result, nil
}

// Process runs one activity event through the fixed coordinator sequence:
// stats patch, XP ledger, streak transition, achievement evaluation (bonus XP
// folded back into the ledger), then level resolution against the final total.
// On any error the stored state is left untouched.
func (svc *Service) Process(ctx context.Context, event ActivityEvent) (Result, error) {
	unlock := svc.lockUser(event.UserID)
	defer unlock()

	prev, err := svc.loadOrCreate(ctx, event.UserID)
	if err != nil {
		return Result{}, err
	}
	wrk := prev.Clone()

	// 1. stats patch
	if len(event.StatsPatch) > 0 {
		wrk.Stats.Merge(event.StatsPatch)
	}
	if event.UserEmail != "" {
		wrk.Email = event.UserEmail
	}

	// 2. event XP
	if wrk, err = ApplyXP(wrk, event.XPDelta); err != nil {
		return Result{}, err
	}

	// 3. streak transition
	if !event.ActivityDate.IsZero() {
		if wrk.Streak, err = AdvanceStreak(wrk.Streak, event.ActivityDate); err != nil {
			return Result{}, err
		}
		wrk.Stats[StatCurrentStreak] = wrk.Streak.Current
		wrk.Stats[StatLongestStreak] = wrk.Streak.Longest
	}

	// 4 & 5. achievements then levels
	wrk, result, err := svc.settle(prev, wrk)
	if err != nil {
		return Result{}, err
	}
	result.EventID = event.ID

	return svc.save(ctx, wrk, result)
}

// ClaimReward claims a streak reward for the user, exactly once, and folds the
// bonus XP through the same achievement/level pipeline as an event.
func (svc *Service) ClaimReward(ctx context.Context, userID, rewardID string) (Result, error) {
	rwd, ok := svc.catalog.Reward(rewardID)
	if !ok {
		return Result{}, ErrUnknownReward
	}

	unlock := svc.lockUser(userID)
	defer unlock()

	prev, err := svc.repo.GetState(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	wrk, err := Claim(prev.Clone(), rwd)
	if err != nil {
		return Result{}, err
	}

	wrk, result, err := svc.settle(prev, wrk)
	if err != nil {
		return Result{}, err
	}
	return svc.save(ctx, wrk, result)
}

// CompleteLevel records the external "level finished" signal and re-resolves:
// completing a level may satisfy successors' prerequisites.
func (svc *Service) CompleteLevel(ctx context.Context, userID, levelID string) (Result, error) {
	if _, ok := svc.catalog.Level(levelID); !ok {
		return Result{}, ErrUnknownLevel
	}

	unlock := svc.lockUser(userID)
	defer unlock()

	prev, err := svc.repo.GetState(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if !prev.UnlockedLevels.Has(levelID) {
		return Result{}, ErrLevelLocked
	}

	wrk := prev.Clone()
	wrk.CompletedLevels.Add(levelID)

	wrk, result, err := svc.settle(prev, wrk)
	if err != nil {
		return Result{}, err
	}
	return svc.save(ctx, wrk, result)
}

// SetFlag sets a named boolean flag on the user and re-resolves levels gated
// on it. Flags are only ever set; unlocks never regress.
func (svc *Service) SetFlag(ctx context.Context, userID, flag string) (Result, error) {
	unlock := svc.lockUser(userID)
	defer unlock()

	prev, err := svc.loadOrCreate(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	wrk := prev.Clone()
	wrk.Flags.Add(flag)

	wrk, result, err := svc.settle(prev, wrk)
	if err != nil {
		return Result{}, err
	}
	return svc.save(ctx, wrk, result)
}

func (svc *Service) GetState(ctx context.Context, userID string) (State, error) {
	return svc.repo.GetState(ctx, userID)
}

// Overview returns every user's state, highest XP first.
func (svc *Service) Overview(ctx context.Context) ([]State, error) {
	states, err := svc.repo.QueryAllStates(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].TotalXP != states[j].TotalXP {
			return states[i].TotalXP > states[j].TotalXP
		}
		return states[i].UserID < states[j].UserID
	})
	return states, nil
}
