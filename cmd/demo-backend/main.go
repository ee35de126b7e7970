// Command demo-backend поднимает бэкенд бронирований в памяти для локального запуска ассистента.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/testbackend"
)

type demoConfig struct {
	Address       string `env:"DEMO_ADDRESS" env-default:":8080"`
	Timezone      string `env:"DEMO_TIMEZONE" env-default:"UTC"`
	AdminEmail    string `env:"DEMO_ADMIN_EMAIL" env-default:"admin@example.com"`
	AdminPassword string `env:"DEMO_ADMIN_PASSWORD" env-default:"admin123"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var cfg demoConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Error("cannot read env", sl.Err(err))
		os.Exit(1)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("unknown timezone", slog.String("timezone", cfg.Timezone), sl.Err(err))
		os.Exit(1)
	}

	backend := testbackend.New(testbackend.WithLocation(loc))
	backend.AddUser("Администратор", cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin)
	rooms := backend.AddCategory("Переговорные")
	backend.AddResource(models.Resource{CategoryID: rooms, Title: "Переговорная на 6 мест", PricePerHour: 800, IsActive: true})
	backend.AddResource(models.Resource{CategoryID: rooms, Title: "Конференц-зал", PricePerHour: 2500, IsActive: true})

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", sl.Err(err))
		}
	}()

	logger.Info("demo backend listening", slog.String("address", cfg.Address), slog.String("admin", cfg.AdminEmail))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped with error", sl.Err(err))
		os.Exit(1)
	}
}
