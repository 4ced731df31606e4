package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/student"
)

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(RoleMentor, RoleAdmin)
}

// ctxStudentOrStaffMiddleware loads the student of the `:id` param into the context.
// Students only see themselves; others get a 404.
func ctxStudentOrStaffMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			id := ctx.Param("id")
			if id == claims.Subject || claims.IsStaff() {
				if stdnt, err := svc.GetByID(ctx.Request().Context(), id); err == nil {
					ctx.Set(contextObjKey, stdnt)
					return next(ctx)
				} else if !core.IsNotFound(err) {
					return errors.Wrap(err, "finding student by ID")
				}
			}
			return errHttpNotFound
		}
	}
}
