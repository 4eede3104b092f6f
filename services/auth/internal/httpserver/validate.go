package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/taskhive/pkg/logging"
	"github.com/taskhive/taskhive/pkg/tokens"
)

// ValidateHTTP is the read-only validation surface the edge gateway calls on
// every protected request. It checks signature and claims only and never
// touches the refresh-token store, so it stays stateless.
type ValidateHTTP struct {
	Signer *tokens.Signer
}

type claimEntry struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type validateResponse struct {
	IsValid bool         `json:"is_valid"`
	Claims  []claimEntry `json:"claims"`
}

// Validate always answers 200. A bad token is a normal is_valid=false
// response with no claims, never an error to the caller.
func (h *ValidateHTTP) Validate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_validate")

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("validate_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	claims, err := h.Signer.Verify(req.Token)
	if err != nil {
		l.Warn("validate_rejected", "reason", err.Error())
		return c.JSON(http.StatusOK, validateResponse{IsValid: false, Claims: []claimEntry{}})
	}

	return c.JSON(http.StatusOK, validateResponse{
		IsValid: true,
		Claims: []claimEntry{
			{Type: "sub", Value: claims.Subject},
			{Type: "name", Value: claims.Name},
			{Type: "email", Value: claims.Email},
			{Type: "role", Value: claims.Role},
		},
	})
}
