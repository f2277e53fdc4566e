package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/progression"
	lbsvc "github.com/trezcool/maendeleo/services/leaderboard"
	inmemdb "github.com/trezcool/maendeleo/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newTestConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Maendeleo",
		SecretKey: "n0ts0s3cr3t",
		Server: core.ServerConfig{
			JWTExpirationDelta: 1 * time.Hour,
		},
	}
}

func newTestCatalog(t *testing.T) *progression.Catalog {
	t.Helper()

	levels := []progression.Level{
		{ID: "1.1", Key: progression.LevelKey{Major: 1, Minor: 1}, Title: "Apprentice", XPMin: 0, XPMax: 99},
		{ID: "1.2", Key: progression.LevelKey{Major: 1, Minor: 2}, Title: "Explorer", XPMin: 100, XPMax: 899,
			UnlockConditions: []progression.Predicate{
				{Kind: progression.PredLevelCompleted, Level: "1.1"},
			}},
		{ID: "2.1", Key: progression.LevelKey{Major: 2, Minor: 1}, Title: "Builder", XPMin: 900, XPMax: 1999},
	}
	achievements := []progression.Achievement{
		{ID: "first-challenge", Title: "First Challenge", Badge: "bronze", XPReward: 50,
			Condition: progression.Predicate{Kind: progression.PredStatAtLeast, Stat: progression.StatChallengesCompleted, Value: 1}},
	}
	rewards := []progression.Reward{
		{ID: "r-week", Title: "Weekly Chest", StreakRequired: 7, XPBonus: 150},
	}

	cat, err := progression.NewCatalog(levels, achievements, rewards, nil)
	if err != nil {
		t.Fatalf("newTestCatalog() failed: %v", err)
	}
	return cat
}

// nopLogger satisfies core.Logger for tests.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTranslator(t *testing.T) ut.Translator {
	t.Helper()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, found := uni.GetTranslator("en")
	if !found {
		t.Fatal("newTranslator() failed: en translator not found")
	}
	return translator
}

func setup(t *testing.T, board *lbsvc.RedisLeaderboard) (*Server, *progression.Service, *core.Config) {
	t.Helper()

	conf := newTestConfig()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewProgressionRepository(db)

	var boardIface progression.Leaderboard
	if board != nil {
		boardIface = board
	}
	svc := progression.NewService(repo, newTestCatalog(t), nopLogger{}, nil, boardIface)

	validate := validator.New()
	translator := newTranslator(t)
	core.InitValidators(validate, translator)
	progression.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		ProgressionSvc: svc,
		Leaderboard:    board,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return server, svc, conf
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, subject string, isAdmin bool) string {
	t.Helper()
	token, err := GenerateToken(conf, NewClaims(conf, subject, subject+"@test.cd", isAdmin))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
