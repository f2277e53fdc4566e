package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/progression"
	lbsvc "github.com/trezcool/maendeleo/services/leaderboard"
)

var errLeaderboardUnavailable = echo.NewHTTPError(http.StatusServiceUnavailable, "leaderboard unavailable")

const defaultLeaderboardSize = 10

type (
	progressionApiDeps struct {
		svc        *progression.Service
		board      *lbsvc.RedisLeaderboard
		validate   *validator.Validate
		translator ut.Translator
	}

	progressionApi struct {
		progressionApiDeps
	}

	catalogResponse struct {
		Levels       []progression.Level       `json:"levels"`
		Achievements []progression.Achievement `json:"achievements"`
		Rewards      []progression.Reward      `json:"rewards"`
		Milestones   []int                     `json:"milestones"`
	}

	streakResponse struct {
		Streak           progression.Streak      `json:"streak"`
		Milestones       []progression.Milestone `json:"milestones"`
		ClaimableRewards []progression.Reward    `json:"claimable_rewards"`
	}
)

func registerProgressionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps progressionApiDeps) {
	api := progressionApi{progressionApiDeps: deps}

	pg := g.Group("/progression", jwt)
	pg.GET("/catalog", api.catalog)
	pg.GET("/leaderboard", api.leaderboard)

	// events carry XP; only trusted services submit them
	pg.POST("/events", api.submitEvent, adminMiddleware())

	// detail endpoints
	ug := pg.Group("/users/:id", selfOrAdminMiddleware())
	ug.GET("", api.retrieveState)
	ug.GET("/levels", api.levelMap)
	ug.GET("/streak", api.streak)
	ug.POST("/rewards/:rid/claim", api.claimReward)
	ug.POST("/levels/:lid/complete", api.completeLevel, adminMiddleware())
	ug.POST("/flags/:flag", api.setFlag, adminMiddleware())
}

// Handlers

func (api *progressionApi) submitEvent(ctx echo.Context) error {
	var data progression.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	event := data.Event(uuid.New().String())
	res, err := api.svc.Process(ctx.Request().Context(), event)
	if err != nil {
		return errors.Wrap(err, "processing event")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressionApi) retrieveState(ctx echo.Context) error {
	st, err := api.svc.GetState(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *progressionApi) levelMap(ctx echo.Context) error {
	st, err := api.svc.GetState(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == progression.ErrStateNotFound {
			// a user with no recorded activity still has a level map
			st = progression.NewState(ctx.Param("id"))
		} else {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, progression.LevelMap(st, api.svc.Catalog()))
}

func (api *progressionApi) streak(ctx echo.Context) error {
	st, err := api.svc.GetState(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	claimable := progression.ClaimableRewards(st, api.svc.Catalog())
	if claimable == nil {
		claimable = []progression.Reward{}
	}
	return ctx.JSON(http.StatusOK, streakResponse{
		Streak:           st.Streak,
		Milestones:       progression.Milestones(st.Streak, api.svc.Catalog()),
		ClaimableRewards: claimable,
	})
}

func (api *progressionApi) claimReward(ctx echo.Context) error {
	res, err := api.svc.ClaimReward(ctx.Request().Context(), ctx.Param("id"), ctx.Param("rid"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressionApi) completeLevel(ctx echo.Context) error {
	res, err := api.svc.CompleteLevel(ctx.Request().Context(), ctx.Param("id"), ctx.Param("lid"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressionApi) setFlag(ctx echo.Context) error {
	res, err := api.svc.SetFlag(ctx.Request().Context(), ctx.Param("id"), ctx.Param("flag"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *progressionApi) catalog(ctx echo.Context) error {
	cat := api.svc.Catalog()
	return ctx.JSON(http.StatusOK, catalogResponse{
		Levels:       cat.Levels(),
		Achievements: cat.Achievements(),
		Rewards:      cat.Rewards(),
		Milestones:   cat.Milestones(),
	})
}

func (api *progressionApi) leaderboard(ctx echo.Context) error {
	if api.board == nil {
		return errLeaderboardUnavailable
	}

	n := defaultLeaderboardSize
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		n = parsed
	}

	entries, err := api.board.Top(ctx.Request().Context(), n)
	if err != nil {
		return errors.Wrap(err, "querying leaderboard")
	}
	if entries == nil {
		entries = []lbsvc.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
