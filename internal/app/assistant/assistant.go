// Package assistant собирает ассистента бронирования: клиент бэкенда, хранилище
// сессии, сервис, события и HTTP-сервер.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/config"
	"github.com/Kirill-j/bookinghub/internal/events"
	"github.com/Kirill-j/bookinghub/internal/gateway"
	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	assistantservice "github.com/Kirill-j/bookinghub/internal/services/assistant"
	"github.com/Kirill-j/bookinghub/internal/session"
	"github.com/Kirill-j/bookinghub/internal/storage"
)

const (
	amqpRetries = 5
	amqpDelay   = 2 * time.Second
)

// App — ассистент бронирования с HTTP API.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	service *assistantservice.Service

	amqpConn *amqp.Connection
	subCh    *amqp.Channel
	exchange string
	source   string
	closers  []io.Closer
}

// New собирает приложение по конфигу.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.assistant.New"

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger, exchange: cfg.Exchange}

	store, err := app.sessionStore(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gw := gateway.New(cfg.BaseURL, cfg.Backend.Timeout, logger)
	sess := session.New(store, gw, logger)
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("failed to restore session", sl.Err(err))
	}

	var publisher assistantservice.Publisher
	if cfg.RabbitMQ.URL != "" {
		pub, err := app.connectEvents(cfg.RabbitMQ)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = pub
	}

	app.service = assistantservice.New(gw, sess, loc, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, app.service, cfg.HTTPServer)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// sessionStore выбирает хранилище токена по конфигу.
func (a *App) sessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case config.SessionRedis:
		c, err := cache.NewRedis(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c)
		return session.NewRedisStore(c, cfg.Session.Key), nil
	case config.SessionPostgres:
		db, err := storage.New(ctx, cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		return session.NewPostgresStore(db, cfg.Session.Key), nil
	default:
		return session.NewMemoryStore(), nil
	}
}

func (a *App) connectEvents(cfg config.RabbitMQ) (*events.Publisher, error) {
	conn, err := events.Connect(cfg.URL, amqpRetries, amqpDelay)
	if err != nil {
		return nil, err
	}
	a.amqpConn = conn

	pubCh, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	pub, err := events.NewPublisher(pubCh, cfg.Exchange, a.logger)
	if err != nil {
		return nil, err
	}
	a.source = pub.Source()

	if a.subCh, err = conn.Channel(); err != nil {
		return nil, err
	}
	return pub, nil
}

// Run запускает HTTP-сервер и подписку на события и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.subCh != nil {
		if err := events.Subscribe(ctx, a.subCh, a.exchange, a.source, a.logger, a.service.HandleEvent); err != nil {
			return err
		}
		a.logger.Info("subscribed to booking events", slog.String("exchange", a.exchange))
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// Handler возвращает роутер приложения.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) close() {
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
}
