package config

import (
	"os"

	pkgconfig "github.com/taskhive/taskhive/pkg/config"
)

type Config struct {
	ListenAddr       string
	LogLevel         string
	AuthURL          string
	ProjectsURL      string
	TasksURL         string
	NotificationsURL string
}

func Load() *Config {
	pkgconfig.LoadDotEnv()

	cfg := &Config{
		ListenAddr:       pkgconfig.EnvDefault("GATEWAY_ADDR", ":8080"),
		LogLevel:         pkgconfig.EnvDefault("LOG_LEVEL", "info"),
		AuthURL:          os.Getenv("AUTH_URL"),
		ProjectsURL:      os.Getenv("PROJECTS_URL"),
		TasksURL:         os.Getenv("TASKS_URL"),
		NotificationsURL: pkgconfig.EnvDefault("NOTIFICATIONS_URL", ""),
	}

	pkgconfig.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	pkgconfig.MustNonEmpty(cfg.ProjectsURL, "PROJECTS_URL")
	pkgconfig.MustNonEmpty(cfg.TasksURL, "TASKS_URL")

	return cfg
}
