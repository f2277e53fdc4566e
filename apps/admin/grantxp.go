package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
)

// grantXP feeds a manual bonus event through the progression pipeline.
func (cli *commandLine) grantXP(userID, email string, amount int) error {
	event := progression.ActivityEvent{
		ID:        uuid.New().String(),
		UserID:    core.CleanString(userID),
		UserEmail: core.CleanString(email, true /* lower */),
		Type:      progression.EventManualBonus,
		XPDelta:   amount,
	}

	res, err := cli.svc.Process(context.Background(), event)
	if err != nil {
		return err
	}

	fmt.Printf("granted %d XP to %s: total %d XP, level %s\n",
		res.XPGained, userID, res.State.TotalXP, res.State.CurrentLevel)
	if len(res.NewlyEarnedAchievements) > 0 {
		fmt.Printf("new achievements: %v\n", res.NewlyEarnedAchievements)
	}
	return nil
}
