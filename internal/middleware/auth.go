package middleware

import (
	"net/http"
	"strings"

	"course-marketplace/internal/model"

	"github.com/labstack/echo/v4"
)

const (
	userIDKey  = "user_id"
	adminIDKey = "admin_id"
)

// TokenVerifier checks a bearer token for a role and returns its subject.
type TokenVerifier interface {
	Verify(role model.Role, token string) (string, error)
}

// RequireRole rejects the request with 401 unless it carries a valid bearer
// token for role. The subject is stored on the context.
func RequireRole(verifier TokenVerifier, role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return model.NewUnauthenticatedError("No token provided.", nil)
			}

			subject, err := verifier.Verify(role, token)
			if err != nil {
				return model.NewUnauthenticatedError("Invalid or expired token.", err)
			}

			c.Set(contextKey(role), subject)
			return next(c)
		}
	}
}

// OptionalRole lets requests without an Authorization header through. A token
// that is present but invalid is still rejected.
func OptionalRole(verifier TokenVerifier, role model.Role) echo.MiddlewareFunc {
	required := RequireRole(verifier, role)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withToken := required(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return withToken(c)
		}
	}
}

func UserID(c echo.Context) (string, bool) {
	id, ok := c.Get(userIDKey).(string)
	return id, ok && id != ""
}

func AdminID(c echo.Context) (string, bool) {
	id, ok := c.Get(adminIDKey).(string)
	return id, ok && id != ""
}

func contextKey(role model.Role) string {
	if role == model.RoleAdmin {
		return adminIDKey
	}
	return userIDKey
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
