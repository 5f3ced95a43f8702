// Package webclient предоставляет маршруты веб-клиента.
package webclient

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/auto-assistant-client/internal/config"
	"github.com/magabrotheeeer/auto-assistant-client/internal/gateway"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ecuflash/connectecu"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ecuflash/disconnectecu"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ecuflash/flash"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ecuflash/limits"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ecuflash/readmap"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ecuflash/setparam"
	feedbacksend "github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/feedback/send"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/image/analyze"
	mappingsearch "github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/mapping/search"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/nlp/ask"
	obd2connect "github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/obd2/connect"
	obd2disconnect "github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/obd2/disconnect"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/obd2/snapshot"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/ocr/scan"
	partssearch "github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/parts/search"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/subscriptions/plans"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/handlers/subscriptions/subscribe"
	"github.com/magabrotheeeer/auto-assistant-client/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auto-assistant-client/internal/lib/flight"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/assistant"
	authservice "github.com/magabrotheeeer/auto-assistant-client/internal/services/auth"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/ecuflash"
	subservice "github.com/magabrotheeeer/auto-assistant-client/internal/services/subscription"
	"github.com/magabrotheeeer/auto-assistant-client/internal/services/telemetry"
	"github.com/magabrotheeeer/auto-assistant-client/internal/session"
	"github.com/magabrotheeeer/auto-assistant-client/internal/web"
)

// Services зависимости маршрутов.
type Services struct {
	Sessions     *session.Store
	Gateway      *gateway.Client
	Auth         *authservice.Service
	Telemetry    *telemetry.Service
	Assistant    *assistant.Service
	ECUFlash     *ecuflash.Service
	Subscription *subservice.Service
	Pages        *web.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	flights := flight.NewGroup()
	withSession := middlewarectx.SessionContext(s.Sessions, cfg.Session.CookieName, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(withSession)

		// Открытые конечные точки
		r.Post("/login", login.New(logger, s.Auth, s.Sessions).ServeHTTP)
		r.Post("/register", register.New(logger).ServeHTTP)
		r.Post("/ocr", scan.New(logger, s.Gateway, flights).ServeHTTP)
		r.Post("/nlp", ask.New(logger, s.Assistant, flights).ServeHTTP)
		r.Post("/image-recognition", analyze.New(logger, s.Gateway, flights).ServeHTTP)
		r.Post("/parts-finder", partssearch.New(logger, s.Gateway, flights).ServeHTTP)
		r.Get("/subscribe/plans", plans.New(logger, s.Subscription).ServeHTTP)
		r.Post("/subscribe", subscribe.New(logger, s.Subscription, s.Sessions, flights).ServeHTTP)
		r.Post("/feedback", feedbacksend.New(logger, s.Gateway, flights).ServeHTTP)

		// Группа аутентифицированных конечных точек
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAuth(logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, s.Sessions).ServeHTTP)
			r.Get("/obd2", snapshot.New(logger, s.Telemetry).ServeHTTP)
			r.Post("/obd2/connect", obd2connect.New(logger, s.Telemetry).ServeHTTP)
			r.Post("/obd2/disconnect", obd2disconnect.New(logger, s.Telemetry).ServeHTTP)
			r.Get("/ecu-flash/limits", limits.New(logger, s.ECUFlash).ServeHTTP)
			r.Post("/ecu-flash/connect", connectecu.New(logger, s.ECUFlash, flights).ServeHTTP)
			r.Post("/ecu-flash/disconnect", disconnectecu.New(logger, s.ECUFlash).ServeHTTP)
			r.Get("/ecu-flash/read", readmap.New(logger, s.ECUFlash).ServeHTTP)
			r.Post("/ecu-flash/parameter", setparam.New(logger, s.ECUFlash).ServeHTTP)
			r.Post("/ecu-flash", flash.New(logger, s.ECUFlash, flights).ServeHTTP)
			r.Post("/mapping-affiliations", mappingsearch.New(logger, s.Gateway, flights).ServeHTTP)
		})
	})

	// Страницы оболочки
	r.Group(func(r chi.Router) {
		r.Use(withSession)
		r.Get("/", s.Pages.Page(web.ViewHome, "Accueil", false))
		r.Get("/auth", s.Pages.Page(web.ViewAuth, "Connexion", false))
		r.Get("/ocr", s.Pages.Page(web.ViewOCR, "Carte grise", false))
		r.Get("/obd2", s.Pages.Page(web.ViewOBD2, "Diagnostic OBD-II", true))
		r.Get("/nlp", s.Pages.Page(web.ViewNLP, "Assistant", false))
		r.Get("/image-recognition", s.Pages.Page(web.ViewImage, "Reconnaissance de pièces", false))
		r.Get("/ecu-flash", s.Pages.Page(web.ViewECUFlash, "ECU Flash", true))
		r.Get("/parts-finder", s.Pages.Page(web.ViewParts, "Pièces détachées", false))
		r.Get("/mapping-affiliations", s.Pages.Page(web.ViewMapping, "Cartographies", true))
		r.Get("/subscriptions", s.Pages.Page(web.ViewSubscriptions, "Abonnements", false))
		r.Get("/feedback", s.Pages.Page(web.ViewFeedback, "Votre avis", false))
		r.NotFound(s.Pages.NotFound)
	})

	r.Handle("/static/*", s.Pages.Static())
	r.Handle("/metrics", promhttp.Handler())
}
