// Package catalog loads the static progression catalog from a YAML file.
package catalog

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
)

type (
	catalogFile struct {
		Levels       []levelFile       `mapstructure:"levels"`
		Achievements []achievementFile `mapstructure:"achievements"`
		Rewards      []rewardFile      `mapstructure:"rewards"`
		Milestones   []int             `mapstructure:"milestones"`
	}

	levelFile struct {
		ID               string                  `mapstructure:"id"`
		Major            int                     `mapstructure:"major"`
		Minor            int                     `mapstructure:"minor"`
		Title            string                  `mapstructure:"title"`
		XPMin            int                     `mapstructure:"xp_min"`
		XPMax            int                     `mapstructure:"xp_max"`
		UnlockConditions []progression.Predicate `mapstructure:"unlock_conditions"`
	}

	achievementFile struct {
		ID        string                `mapstructure:"id"`
		Title     string                `mapstructure:"title"`
		Badge     string                `mapstructure:"badge"`
		Condition progression.Predicate `mapstructure:"condition"`
		XPReward  int                   `mapstructure:"xp_reward"`
	}

	rewardFile struct {
		ID             string `mapstructure:"id"`
		Title          string `mapstructure:"title"`
		StreakRequired int    `mapstructure:"streak_required"`
		XPBonus        int    `mapstructure:"xp_bonus"`
		Badge          string `mapstructure:"badge"`
	}
)

// Load reads the configured catalog file and validates it into a Catalog.
func Load(conf *core.Config) (*progression.Catalog, error) {
	return LoadFile(conf.CatalogFilePath())
}

func LoadFile(path string) (*progression.Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "reading catalog file %s", path)
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, errors.Wrapf(err, "parsing catalog file %s", path)
	}

	levels := make([]progression.Level, 0, len(file.Levels))
	for _, lvl := range file.Levels {
		levels = append(levels, progression.Level{
			ID:               lvl.ID,
			Key:              progression.LevelKey{Major: lvl.Major, Minor: lvl.Minor},
			Title:            lvl.Title,
			XPMin:            lvl.XPMin,
			XPMax:            lvl.XPMax,
			UnlockConditions: lvl.UnlockConditions,
		})
	}

	achievements := make([]progression.Achievement, 0, len(file.Achievements))
	for _, ach := range file.Achievements {
		achievements = append(achievements, progression.Achievement{
			ID:        ach.ID,
			Title:     ach.Title,
			Badge:     ach.Badge,
			Condition: ach.Condition,
			XPReward:  ach.XPReward,
		})
	}

	rewards := make([]progression.Reward, 0, len(file.Rewards))
	for _, rwd := range file.Rewards {
		rewards = append(rewards, progression.Reward{
			ID:             rwd.ID,
			Title:          rwd.Title,
			StreakRequired: rwd.StreakRequired,
			XPBonus:        rwd.XPBonus,
			Badge:          rwd.Badge,
		})
	}

	return progression.NewCatalog(levels, achievements, rewards, file.Milestones)
}
