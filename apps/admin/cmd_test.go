package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
	inmemdb "github.com/trezcool/maendeleo/storage/database/inmem"
)

// nopLogger satisfies core.Logger for tests.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) (*commandLine, progression.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewProgressionRepository(db)

	levels := []progression.Level{
		{ID: "1.1", Key: progression.LevelKey{Major: 1, Minor: 1}, Title: "Apprentice", XPMin: 0, XPMax: 99},
		{ID: "2.1", Key: progression.LevelKey{Major: 2, Minor: 1}, Title: "Builder", XPMin: 100, XPMax: 999},
	}
	achievements := []progression.Achievement{
		{ID: "xp-100", Title: "Warmed Up", XPReward: 20,
			Condition: progression.Predicate{Kind: progression.PredXPAtLeast, Value: 100}},
	}
	cat, err := progression.NewCatalog(levels, achievements, nil, nil)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	cli := &commandLine{
		conf: &core.Config{TestMode: true},
		svc:  progression.NewService(repo, cat, nopLogger{}, nil, nil),
	}
	return cli, repo
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkCLIErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	if tt.wantErr != nil {
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	} else if tt.wantErrStr != "" {
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	} else {
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no command", args: []string{}, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_checkCatalog(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "valid catalog", args: []string{"checkcatalog", "-path", filepath.Join("testdata", "catalog.yml")}},
		{name: "missing file", args: []string{"checkcatalog", "-path", filepath.Join("testdata", "nope.yml")}, wantErrStr: ""},
	}

	t.Run(tests[0].name, func(t *testing.T) {
		checkCLIErr(t, tests[0], cli.run(append([]string{"admin"}, tests[0].args...)))
	})
	t.Run(tests[1].name, func(t *testing.T) {
		if err := cli.run(append([]string{"admin"}, tests[1].args...)); err == nil {
			t.Error("cli.run() expected an error; got nil")
		}
	})
}

func Test_commandLine_grantXP(t *testing.T) {
	cli, repo := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"grantxp"}, wantErr: errHelp},
		{name: "missing amount", args: []string{"grantxp", "-user", "alice"}, wantErr: errHelp},
		{name: "negative amount", args: []string{"grantxp", "-user", "alice", "-xp", "-5"}, wantErr: errHelp},
		{name: "OK", args: []string{"grantxp", "-user", "alice", "-xp", "120"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkCLIErr(t, tt, cli.run(args))
		})
	}

	t.Run("overview", func(t *testing.T) {
		if err := cli.run([]string{"admin", "overview"}); err != nil {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	})

	st, err := repo.GetState(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetState() failed, %v", err)
	}
	if st.TotalXP != 140 { // 120 granted + 20 xp-100 achievement
		t.Errorf("TotalXP = %d; want 140", st.TotalXP)
	}
	if !st.EarnedAchievements.Has("xp-100") {
		t.Error("xp-100 not earned")
	}
	if st.CurrentLevel.String() != "2.1" {
		t.Errorf("current level = %s; want 2.1", st.CurrentLevel)
	}
}
