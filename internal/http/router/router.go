// Package router arma el chi.Router del servicio: middlewares globales,
// rutas públicas (flujos de token, health) y rutas autenticadas (contenido,
// roles, invitaciones).
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/prism/internal/accounts"
	"github.com/dropDatabas3/prism/internal/email"
	"github.com/dropDatabas3/prism/internal/http/handlers"
	"github.com/dropDatabas3/prism/internal/http/middlewares"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/rate"
	"github.com/dropDatabas3/prism/internal/roles"
	"github.com/dropDatabas3/prism/internal/store"
)

// Deps agrupa todo lo que el router necesita para armar los handlers.
type Deps struct {
	Store    store.Store
	Content  *prism.Service
	Roles    *roles.Service
	Accounts *accounts.Service
	Mail     *email.Service

	Auth middlewares.AuthConfig

	// GlobalLimiter aplica a todo el tráfico; FlowLimiter solo a los flujos
	// públicos de token (forgot/accept/reset). Cualquiera puede ser nil.
	GlobalLimiter rate.Limiter
	FlowLimiter   rate.Limiter

	DebugEchoLinks bool
}

// New construye el router completo.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	use := func(m middlewares.Middleware) {
		r.Use(func(next http.Handler) http.Handler { return m(next) })
	}
	use(middlewares.WithRequestID())
	use(middlewares.WithLogging())
	use(middlewares.WithRecover())
	use(middlewares.WithMetrics())
	if d.GlobalLimiter != nil {
		use(middlewares.WithRateLimit(d.GlobalLimiter, "global"))
	}

	health := &handlers.HealthHandler{Store: d.Store}
	health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	flows := &handlers.FlowsHandler{
		Accounts:       d.Accounts,
		Mail:           d.Mail,
		DebugEchoLinks: d.DebugEchoLinks,
	}

	// Rutas públicas: flujos de token, con su propio límite.
	r.Group(func(pub chi.Router) {
		if d.FlowLimiter != nil {
			pub.Use(func(next http.Handler) http.Handler {
				return middlewares.WithRateLimit(d.FlowLimiter, "flows")(next)
			})
		}
		flows.RegisterPublic(pub)
	})

	// Rutas autenticadas.
	r.Group(func(priv chi.Router) {
		priv.Use(func(next http.Handler) http.Handler {
			return middlewares.RequireAuth(d.Auth)(next)
		})

		content := &handlers.ContentHandler{Svc: d.Content}
		content.Register(priv)

		rolesH := &handlers.RolesHandler{Svc: d.Roles}
		rolesH.Register(priv)

		flows.RegisterPrivate(priv)
	})

	return r
}
