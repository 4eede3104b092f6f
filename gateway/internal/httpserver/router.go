package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/taskhive/gateway/internal/middleware"
	"github.com/taskhive/taskhive/pkg/authclient"
)

type Deps struct {
	AuthURL          string
	ProjectsURL      string
	TasksURL         string
	NotificationsURL string
}

// Register wires the edge routes. Auth endpoints pass through anonymously,
// everything else is validated on every request via the auth service.
func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, m := range middleware.Common() {
		e.Use(m)
	}

	authProxy, err := newProxy(d.AuthURL, "/api/v1/auth")
	if err != nil {
		return err
	}
	projectsProxy, err := newProxy(d.ProjectsURL, "/api/v1")
	if err != nil {
		return err
	}
	tasksProxy, err := newProxy(d.TasksURL, "/api/v1")
	if err != nil {
		return err
	}

	e.Any("/api/v1/auth/*", authProxy)

	validator := middleware.NewTokenValidator(authclient.NewClient(d.AuthURL))

	api := e.Group("/api/v1")
	api.Use(validator.Middleware())

	api.Any("/projects", projectsProxy)
	api.Any("/projects/*", projectsProxy)
	api.Any("/tasks", tasksProxy)
	api.Any("/tasks/*", tasksProxy)

	if d.NotificationsURL != "" {
		notifProxy, err := newProxy(d.NotificationsURL, "/api/v1")
		if err != nil {
			return err
		}
		api.Any("/notifications", notifProxy)
		api.Any("/notifications/*", notifProxy)
	}

	return nil
}
