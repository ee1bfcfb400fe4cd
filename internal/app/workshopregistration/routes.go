// Package workshopregistration собирает HTTP-приложение сервиса записи на воркшопы.
package workshopregistration

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/workshop-registration/internal/config"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/health"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/registration/register"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/registration/status"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/registration/unregister"
	usercreate "github.com/magabrotheeeer/workshop-registration/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/user/profile"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/user/skills"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/workshop/create"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/workshop/leaders"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/workshop/list"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/workshop/matching"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/workshop/read"
	"github.com/magabrotheeeer/workshop-registration/internal/http/handlers/workshop/update"
	"github.com/magabrotheeeer/workshop-registration/internal/http/middlewarectx"
	registrationservice "github.com/magabrotheeeer/workshop-registration/internal/services/registration"
	userservice "github.com/magabrotheeeer/workshop-registration/internal/services/user"
	workshopservice "github.com/magabrotheeeer/workshop-registration/internal/services/workshop"
)

// Deps — зависимости маршрутов.
type Deps struct {
	Logger       *slog.Logger
	Tokens       middlewarectx.TokenParser
	DB           health.Pinger
	Registration *registrationservice.Service
	Workshops    *workshopservice.Service
	Users        *userservice.Service
	RateLimit    config.RateLimit
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/health", health.New(d.Logger, d.DB).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Tokens, d.Logger))
			r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.RateLimit.RPS, d.RateLimit.Burst))

			r.Get("/workshops", list.New(d.Logger, d.Workshops).ServeHTTP)
			r.Post("/workshops", create.New(d.Logger, d.Workshops).ServeHTTP)
			r.Get("/workshops/matching", matching.New(d.Logger, d.Workshops).ServeHTTP)
			r.Get("/workshops/{id}", read.New(d.Logger, d.Workshops).ServeHTTP)
			r.Patch("/workshops/{id}", update.New(d.Logger, d.Workshops).ServeHTTP)
			r.Post("/workshops/{id}/leaders", leaders.New(d.Logger, d.Workshops).ServeHTTP)

			r.Post("/workshops/{id}/register", register.New(d.Logger, d.Registration).ServeHTTP)
			r.Post("/workshops/{id}/unregister", unregister.New(d.Logger, d.Registration).ServeHTTP)
			r.Get("/workshops/{id}/registration", status.New(d.Logger, d.Registration).ServeHTTP)

			r.Post("/users", usercreate.New(d.Logger, d.Users).ServeHTTP)
			r.Get("/users/me", profile.New(d.Logger, d.Users).ServeHTTP)
			r.Put("/users/me/skills", skills.New(d.Logger, d.Users).ServeHTTP)
			r.Put("/users/{id}/skills", skills.New(d.Logger, d.Users).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
