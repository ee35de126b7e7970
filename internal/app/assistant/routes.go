package assistant

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Kirill-j/bookinghub/internal/config"
	"github.com/Kirill-j/bookinghub/internal/http/handlers/account"
	"github.com/Kirill-j/bookinghub/internal/http/handlers/bookings"
	"github.com/Kirill-j/bookinghub/internal/http/handlers/catalog"
	"github.com/Kirill-j/bookinghub/internal/http/handlers/system"
	"github.com/Kirill-j/bookinghub/internal/http/middlewarectx"
	assistantservice "github.com/Kirill-j/bookinghub/internal/services/assistant"
)

// RegisterRoutes регистрирует все маршруты API ассистента.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *assistantservice.Service, cfg config.HTTPServer) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
	)

	sys := system.New(logger, svc)
	acc := account.New(logger, svc)
	cat := catalog.New(logger, svc)
	book := bookings.New(logger, svc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimit(logger, cfg.RateLimit, cfg.RateBurst))

		r.Get("/health", sys.Health)
		r.Get("/capabilities", sys.Capabilities)

		r.Post("/session/login", acc.Login)
		r.Post("/session/register", acc.Register)
		r.Delete("/session", acc.Logout)
		r.Get("/me", acc.Me)
		r.Patch("/me", acc.UpdateMe)
		r.Post("/me/password", acc.ChangePassword)
		r.Delete("/me", acc.DeleteMe)
		r.Get("/users/{id}", acc.PublicUser)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", cat.Categories)
			r.Post("/categories", cat.CreateCategory)
			r.Patch("/categories/{id}", cat.RenameCategory)
			r.Delete("/categories/{id}", cat.DeleteCategory)
			r.Get("/resources", cat.Resources)
			r.Get("/resources/my", cat.MyResources)
			r.Post("/resources", cat.CreateResource)
		})

		r.Get("/resources/{id}/occupancy", book.Occupancy)
		r.Get("/resources/{id}/free-slot", book.FreeSlot)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", book.Create)
			r.Get("/my", book.My)
			r.Get("/pending", book.Pending)
			r.Post("/{id}/cancel", book.Cancel)
			r.Patch("/{id}/status", book.SetStatus)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
