package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/taskhive/pkg/authclient"
	"github.com/taskhive/taskhive/pkg/logging"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// TokenValidator guards proxied routes by asking the auth service to
// re-verify the access token. The gateway itself holds no signing key.
type TokenValidator struct {
	Client *authclient.Client
}

func NewTokenValidator(client *authclient.Client) *TokenValidator {
	return &TokenValidator{Client: client}
}

func (v *TokenValidator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			ctx := c.Request().Context()
			resp, err := v.Client.ValidateToken(ctx, token)
			if err != nil {
				logging.FromContext(ctx).Error("token validation unreachable", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "auth service unavailable")
			}
			if !resp.IsValid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			var userID, role string
			for _, cl := range resp.Claims {
				switch cl.Type {
				case "sub":
					userID = cl.Value
				case "role":
					role = cl.Value
				}
			}
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}
			c.Set(CtxUserID, userID)
			c.Set(CtxRole, role)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}
