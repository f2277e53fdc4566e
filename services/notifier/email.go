// Package notifsvc turns notable progression results into user notifications.
package notifsvc

import (
	"context"
	"net/mail"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
)

type progressionUpdateData struct {
	LevelUp          bool
	CurrentLevel     string
	Achievements     []string
	ClaimableRewards []string
	XPGained         int
	TotalXP          int
}

type EmailNotifier struct {
	conf    *core.Config
	catalog *progression.Catalog
	mailSvc core.EmailService
}

var _ progression.Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(conf *core.Config, cat *progression.Catalog, mailSvc core.EmailService) *EmailNotifier {
	return &EmailNotifier{
		conf:    conf,
		catalog: cat,
		mailSvc: mailSvc,
	}
}

// Notify emails the user a summary of what they just earned. Results without a
// known email address are skipped.
func (n *EmailNotifier) Notify(_ context.Context, res progression.Result) {
	if res.State.Email == "" {
		return
	}

	data := progressionUpdateData{
		LevelUp:      res.LevelUp,
		CurrentLevel: res.State.CurrentLevel.String(),
		XPGained:     res.XPGained,
		TotalXP:      res.State.TotalXP,
	}
	for _, id := range res.NewlyEarnedAchievements {
		data.Achievements = append(data.Achievements, n.achievementTitle(id))
	}
	for _, id := range res.NewlyClaimableRewards {
		if rwd, ok := n.catalog.Reward(id); ok {
			data.ClaimableRewards = append(data.ClaimableRewards, rwd.Title)
		}
	}

	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: res.State.Email}},
		Subject:      n.subject(res),
		TemplateName: "progression-update",
		TemplateData: data,
	})
}

func (n *EmailNotifier) achievementTitle(id string) string {
	for _, ach := range n.catalog.Achievements() {
		if ach.ID == id {
			return ach.Title
		}
	}
	return id
}

func (n *EmailNotifier) subject(res progression.Result) string {
	switch {
	case res.LevelUp:
		return "You reached level " + res.State.CurrentLevel.String() + "!"
	case len(res.NewlyEarnedAchievements) > 0:
		return "New achievement unlocked!"
	default:
		return "A reward is waiting for you"
	}
}
