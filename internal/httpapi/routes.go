package httpapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/ws"
)

type RouterOptions struct {
	CORSAllowOrigins  []string
	RateLimitRequests int // 0 disables rate limiting
	RateLimitWindow   time.Duration
}

func SetupRoutes(d Deps, o RouterOptions) http.Handler {
	h := NewHandler(d)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)

	c := corslib.New(corslib.Options{
		AllowedOrigins: o.CORSAllowOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	if o.RateLimitRequests > 0 && o.RateLimitWindow > 0 {
		r.Use(RateLimit(o.RateLimitRequests, o.RateLimitWindow))
	}

	r.Get("/healthz", h.Healthz)
	r.Get("/healthz/db", h.HealthzDB)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{code}", h.GetSession)
		r.Post("/{code}/commands", h.PostCommand)
		r.Delete("/{code}", h.DeleteSession)
	})

	r.Get("/players", h.ListPlayers)
	r.Get("/players/{id}/image", h.PlayerImage)
	r.Get("/banner", h.Banner)

	r.Get("/ws", ws.Handler(d.Hub, ws.Options{
		OriginPatterns: originHosts(o.CORSAllowOrigins),
		Logger:         h.log,
	}))
	return r
}

// originHosts turns CORS origins ("http://localhost:3000") into the host
// patterns the websocket origin check expects.
func originHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if o == "*" {
			hosts = append(hosts, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}
