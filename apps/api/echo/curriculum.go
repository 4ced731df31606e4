package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core/curriculum"
)

type curriculumApi struct {
	svc      *curriculum.Service
	validate *validator.Validate
}

func registerCurriculumAPI(g *echo.Group, deps ServerDeps) {
	api := curriculumApi{
		svc:      deps.CurriculumSvc,
		validate: deps.Validate,
	}

	tg := g.Group("/tracks", roleMiddleware(RoleAdmin))
	tg.POST("", api.createTrack)
	tg.POST("/:id/modules", api.createModule)

	g.GET("/modules/:id", api.retrieveModule)
}

func (api *curriculumApi) createTrack(ctx echo.Context) error {
	var data curriculum.NewTrack
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrack")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	track, err := api.svc.CreateTrack(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating track")
	}
	return ctx.JSON(http.StatusCreated, track)
}

func (api *curriculumApi) createModule(ctx echo.Context) error {
	var data curriculum.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	data.TrackID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mod, err := api.svc.CreateModule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *curriculumApi) retrieveModule(ctx echo.Context) error {
	mod, err := api.svc.Module(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting module")
	}
	return ctx.JSON(http.StatusOK, mod)
}
