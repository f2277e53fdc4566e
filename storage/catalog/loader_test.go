package catalog

import (
	"path/filepath"
	"testing"

	"github.com/trezcool/maendeleo/core/progression"
)

func TestLoadFile(t *testing.T) {
	cat, err := LoadFile(filepath.Join("testdata", "catalog.yml"))
	if err != nil {
		t.Fatalf("LoadFile() failed, %v", err)
	}

	levels := cat.Levels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels; got %d", len(levels))
	}
	if levels[0].ID != "basics-1" || levels[0].Key.String() != "1.1" {
		t.Errorf("unexpected first level %q (%s)", levels[0].ID, levels[0].Key)
	}

	lvl, ok := cat.Level("basics-2")
	if !ok {
		t.Fatal("level basics-2 not found")
	}
	if len(lvl.UnlockConditions) != 1 {
		t.Fatalf("expected 1 unlock condition; got %d", len(lvl.UnlockConditions))
	}
	if cond := lvl.UnlockConditions[0]; cond.Kind != progression.PredLevelCompleted || cond.Level != "basics-1" {
		t.Errorf("unexpected unlock condition %+v", cond)
	}

	achs := cat.Achievements()
	if len(achs) != 2 {
		t.Fatalf("expected 2 achievements; got %d", len(achs))
	}
	if achs[0].Condition.Kind != progression.PredStatAtLeast || achs[0].XPReward != 50 {
		t.Errorf("unexpected achievement %+v", achs[0])
	}

	rwd, ok := cat.Reward("week-streak")
	if !ok {
		t.Fatal("reward week-streak not found")
	}
	if rwd.StreakRequired != 7 || rwd.XPBonus != 150 {
		t.Errorf("unexpected reward %+v", rwd)
	}

	wantMilestones := []int{7, 30}
	gotMilestones := cat.Milestones()
	if len(gotMilestones) != len(wantMilestones) {
		t.Fatalf("expected milestones %v; got %v", wantMilestones, gotMilestones)
	}
	for i, days := range wantMilestones {
		if gotMilestones[i] != days {
			t.Errorf("expected milestones %v; got %v", wantMilestones, gotMilestones)
			break
		}
	}
}

func TestLoadFile_invalid(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join("testdata", "nope.yml")},
		{"no entry level", filepath.Join("testdata", "broken.yml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(tt.path); err == nil {
				t.Error("expected an error; got nil")
			}
		})
	}
}
