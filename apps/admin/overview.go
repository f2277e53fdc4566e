package main

import (
	"context"
	"fmt"
)

// overview prints every user's progression summary, highest XP first.
func (cli *commandLine) overview() error {
	states, err := cli.svc.Overview(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %8s %8s %8s %6s\n", "USER", "XP", "LEVEL", "STREAK", "ACHVS")
	for _, st := range states {
		fmt.Printf("%-24s %8d %8s %8d %6d\n",
			st.UserID, st.TotalXP, st.CurrentLevel, st.Streak.Current, len(st.EarnedAchievements))
	}
	fmt.Printf("%d user(s)\n", len(states))
	return nil
}
