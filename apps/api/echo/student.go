package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/dashboard"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/student"
)

var errStdntNotFoundInCtx = errors.New("student object not found in echo.Context")

type studentApi struct {
	svc        *student.Service
	curriculum *curriculum.Service
	progress   *progress.Service
	dashboard  *dashboard.Service
	validate   *validator.Validate
}

func registerStudentAPI(g *echo.Group, deps ServerDeps) {
	api := studentApi{
		svc:        deps.StudentSvc,
		curriculum: deps.CurriculumSvc,
		progress:   deps.ProgressSvc,
		dashboard:  deps.DashboardSvc,
		validate:   deps.Validate,
	}

	g.GET("/leaderboard", api.leaderboard)

	sg := g.Group("/students")
	sg.POST("", api.create, roleMiddleware(RoleAdmin))

	// detail endpoints
	dg := sg.Group("/:id", ctxStudentOrStaffMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.setStatus, roleMiddleware(RoleAdmin))
	dg.GET("/dashboard", api.getDashboard)
	dg.GET("/curriculum", api.getCurriculum)
	dg.GET("/standing", api.standing)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stdnt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stdnt)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stdnt, err := ctxStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stdnt)
}

func (api *studentApi) setStatus(ctx echo.Context) error {
	stdnt, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	var data StatusRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	stdnt, err = api.svc.SetStatus(ctx.Request().Context(), stdnt.ID, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting student status")
	}
	return ctx.JSON(http.StatusOK, stdnt)
}

func (api *studentApi) getDashboard(ctx echo.Context) error {
	stdnt, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	dash, err := api.dashboard.Get(ctx.Request().Context(), stdnt.ID)
	if err != nil {
		return errors.Wrap(err, "getting dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *studentApi) getCurriculum(ctx echo.Context) error {
	stdnt, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	modules, err := api.curriculum.Curriculum(ctx.Request().Context(), stdnt.TrackID, stdnt.ID)
	if err != nil {
		return errors.Wrap(err, "resolving curriculum")
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (api *studentApi) standing(ctx echo.Context) error {
	stdnt, err := ctxStudent(ctx)
	if err != nil {
		return err
	}

	standing, err := api.progress.Standing(ctx.Request().Context(), stdnt, core.Today())
	if err != nil {
		return errors.Wrap(err, "computing standing")
	}
	return ctx.JSON(http.StatusOK, standing)
}

func (api *studentApi) leaderboard(ctx echo.Context) error {
	entries, err := api.progress.Leaderboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building leaderboard")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func ctxStudent(ctx echo.Context) (student.Student, error) {
	stdnt, ok := ctx.Get(contextObjKey).(student.Student)
	if !ok {
		return student.Student{}, errors.Wrap(errStdntNotFoundInCtx, "retrieving object from context")
	}
	return stdnt, nil
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended graduated withdrawn"`
}
