package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/student"
)

// Roles carried by the tokens.
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

var (
	Roles = []string{RoleStudent, RoleMentor, RoleAdmin}

	contextTokenKey = "userToken"
	contextObjKey   = "object"
)

// Claims represents the authorization claims transmitted via a JWT.
// Subject is the student ID for students and the staff member ID otherwise.
type Claims struct {
	jwt.StandardClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

func (c Claims) IsStudent() bool { return c.Role == RoleStudent }

// IsStaff reports whether the token holder reviews students (mentor or admin).
func (c Claims) IsStaff() bool { return c.Role == RoleMentor || c.Role == RoleAdmin }

func (c Claims) person() core.Person {
	return core.Person{ID: c.Subject, Name: c.Name}
}

func NewClaims(conf *core.Config, subject, name, role string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name: name,
		Role: role,
	}
}

func StudentClaims(conf *core.Config, s student.Student) *Claims {
	return NewClaims(conf, s.ID, s.Name, RoleStudent)
}

func jwtConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
