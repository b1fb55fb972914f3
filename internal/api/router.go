package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dariomolina/cintelink-challenge/internal/auth"
	"github.com/dariomolina/cintelink-challenge/internal/fanout"
	"github.com/dariomolina/cintelink-challenge/internal/session"
	"github.com/dariomolina/cintelink-challenge/internal/store"
)

// Router assembles the HTTP surface: the REST collaborator endpoints and
// the websocket session endpoint.
//
// REST operations authenticate with an Authorization: Bearer header; the
// websocket handshake carries its token as a query parameter instead,
// because browser websocket clients cannot set headers.
func Router(engine *fanout.Engine, st store.Store, verifier auth.Verifier, ws *session.Handler, log *slog.Logger) http.Handler {
	h := &handlers{engine: engine, store: st, logger: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Method(http.MethodGet, "/ws/notifications", ws)

	r.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(verifier, st, log))

		r.Post("/tags", h.createTag)
		r.Post("/subscriptions", h.createSubscription)
		r.Delete("/subscriptions/{id}", h.deleteSubscription)
		r.Post("/notifications", h.publishNotification)
		r.Get("/notifications", h.listNotifications)
	})

	return r
}
