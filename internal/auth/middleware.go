package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	apperrors "foodshare/internal/errors"
	"foodshare/internal/model"
)

// Identity is the authenticated caller as extracted from the JWT middleware.
type Identity struct {
	UserID uint
	Email  string
	Role   model.Role
}

// CurrentUser pulls the caller's identity from the token parsed by the
// echo-jwt middleware.
func CurrentUser(c echo.Context) (*Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	email, _ := claims["email"].(string)
	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if !role.Valid() {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}

	return &Identity{UserID: uint(userID), Email: email, Role: role}, nil
}

// RequireRoles gates a route to the given roles. Authenticated callers whose
// role is outside the set receive a forbidden response, never a redirect.
// Fails closed: an off or unknown role is rejected.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := CurrentUser(c)
			if err != nil {
				return err
			}
			if !identity.Role.Allowed(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: apperrors.ErrForbidden.Error(),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// TokenID returns the jti of the parsed access token, or "" when absent.
func TokenID(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	jti, _ := claims["jti"].(string)
	return jti
}

// RejectBlacklisted refuses access tokens revoked by logout before their
// natural expiry.
func RejectBlacklisted(store TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if jti := TokenID(c); jti != "" {
				if blacklisted, _ := store.IsAccessTokenBlacklisted(c.Request().Context(), jti); blacklisted {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}
			return next(c)
		}
	}
}

// RedirectToLogin is the echo-jwt error handler: requests without a valid
// token are redirected to the login route rather than answered with a bare
// 401.
func RedirectToLogin(c echo.Context, err error) error {
	return c.Redirect(http.StatusSeeOther, "/login")
}
