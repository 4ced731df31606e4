package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core/quiz"
)

type quizApi struct {
	svc      *quiz.Service
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, deps ServerDeps) {
	api := quizApi{
		svc:      deps.QuizSvc,
		validate: deps.Validate,
	}

	qg := g.Group("/modules/:id/quiz")
	qg.GET("", api.retrieve)
	qg.PUT("", api.save, roleMiddleware(RoleAdmin))
	qg.POST("", api.submit, roleMiddleware(RoleStudent))
	qg.GET("/attempts", api.attempts, roleMiddleware(RoleStudent))
}

func (api *quizApi) retrieve(ctx echo.Context) error {
	q, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting quiz")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizApi) save(ctx echo.Context) error {
	var data quiz.Quiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Quiz")
	}
	data.ModuleID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	q, err := api.svc.Save(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving quiz")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *quizApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data quiz.Submission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data.Answers)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *quizApi) attempts(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	attempts, err := api.svc.Attempts(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attempts")
	}
	return ctx.JSON(http.StatusOK, attempts)
}
