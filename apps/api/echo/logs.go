package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/progress"
)

var errLogNotFoundInCtx = errors.New("log object not found in echo.Context")

type logApi struct {
	svc      *progress.Service
	validate *validator.Validate
}

func registerLogAPI(g *echo.Group, deps ServerDeps) {
	api := logApi{
		svc:      deps.ProgressSvc,
		validate: deps.Validate,
	}

	lg := g.Group("/logs")
	lg.GET("", api.query)
	lg.POST("", api.create, roleMiddleware(RoleStudent))

	// detail endpoints
	dg := lg.Group("/:id", ctxLogOwnerOrStaffMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, roleMiddleware(RoleStudent))
	dg.POST("/approve", api.approve, staffMiddleware())
	dg.DELETE("", api.reject, staffMiddleware())
}

// Handlers

func (api *logApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(progress.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []progress.Log{})
	}
	filter.Clean()
	if err = api.validate.Struct(filter); err != nil {
		return err
	}
	if claims.IsStudent() {
		filter.StudentID = claims.Subject // students only see their own logs
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	logs, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying logs")
	}
	if logs == nil {
		logs = []progress.Log{}
	}
	return ctx.JSON(http.StatusOK, logs)
}

func (api *logApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data progress.NewLog
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLog")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	l, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating log")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *logApi) retrieve(ctx echo.Context) error {
	l, err := ctxLog(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *logApi) update(ctx echo.Context) error {
	l, err := ctxLog(ctx)
	if err != nil {
		return err
	}

	var data progress.UpdateLog
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLog")
	}
	if err = data.Validate(l, api.validate); err != nil {
		return err
	}

	l, err = api.svc.Update(ctx.Request().Context(), l, data)
	if err != nil {
		return errors.Wrap(err, "updating log")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *logApi) approve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	l, err := ctxLog(ctx)
	if err != nil {
		return err
	}

	var data progress.Review
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	l, err = api.svc.Approve(ctx.Request().Context(), l.ID, data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "approving log")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *logApi) reject(ctx echo.Context) error {
	l, err := ctxLog(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Reject(ctx.Request().Context(), l.ID); err != nil {
		return errors.Wrap(err, "rejecting log")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ctxLogOwnerOrStaffMiddleware loads the log of the `:id` param into the context.
// Students only see their own logs; others get a 404.
func ctxLogOwnerOrStaffMiddleware(svc *progress.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			l, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if core.IsNotFound(err) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding log by ID")
			}
			if l.StudentID != claims.Subject && !claims.IsStaff() {
				return errHttpNotFound
			}
			ctx.Set(contextObjKey, l)
			return next(ctx)
		}
	}
}

func ctxLog(ctx echo.Context) (progress.Log, error) {
	l, ok := ctx.Get(contextObjKey).(progress.Log)
	if !ok {
		return progress.Log{}, errors.Wrap(errLogNotFoundInCtx, "retrieving object from context")
	}
	return l, nil
}
