package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dariomolina/cintelink-challenge/internal/auth"
	"github.com/dariomolina/cintelink-challenge/internal/notification"
	"github.com/dariomolina/cintelink-challenge/internal/store"
	"github.com/dariomolina/cintelink-challenge/pkg/broadcast"
	"github.com/dariomolina/cintelink-challenge/pkg/logger"
)

// Config describes session transport settings.
type Config struct {
	WriteTimeout    time.Duration `env:"SESSION_WRITE_TIMEOUT" envDefault:"10s"`  // WriteTimeout bounds a single outbound frame write.
	ReadLimit       int64         `env:"SESSION_READ_LIMIT" envDefault:"65536"`   // ReadLimit caps inbound frame size in bytes.
	HandshakeBuffer int           `env:"SESSION_HANDSHAKE_BUFFER" envDefault:"1024"` // HandshakeBuffer sizes the websocket upgrade buffers.
}

// Handler upgrades HTTP requests to websocket sessions. The bearer token
// is taken from the "token" query parameter of the connection URI; an
// invalid token closes the socket right after the upgrade, without an
// error payload.
type Handler struct {
	cfg      Config
	verifier auth.Verifier
	store    store.Store
	bus      broadcast.Bus[notification.Event]
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates the websocket endpoint handler.
func NewHandler(cfg Config, verifier auth.Verifier, st store.Store, bus broadcast.Bus[notification.Event], log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		cfg:      cfg,
		verifier: verifier,
		store:    st,
		bus:      bus,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.HandshakeBuffer,
			WriteBufferSize: cfg.HandshakeBuffer,
			// Browser clients connect from arbitrary origins; access
			// control is the token's job.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.LogAttrs(r.Context(), slog.LevelDebug, "websocket upgrade failed",
			logger.Error(err),
		)
		return
	}
	if h.cfg.ReadLimit > 0 {
		ws.SetReadLimit(h.cfg.ReadLimit)
	}

	sess := New(
		newWSConn(ws, h.cfg.WriteTimeout),
		token,
		h.verifier,
		h.store,
		h.bus,
		WithLogger(h.logger),
	)

	// ServeHTTP already runs on a per-connection goroutine; the session
	// read loop lives here until the transport closes.
	_ = sess.Run(r.Context())
}
