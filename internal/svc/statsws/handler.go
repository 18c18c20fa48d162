// If you are AI: This file implements the WebSocket handler for live transfer counters.
// Handles GET /ws/stats and /ws/stats/{name}; pushes a JSON snapshot every interval.

package statsws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"framerelay/internal/core/session"
	"framerelay/internal/logging"
)

// Handler handles stats WebSocket requests.
// Subscribers live until the peer leaves or Close is called; the request
// context alone does not end them once the connection is hijacked.
type Handler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	registry *session.Registry
	interval time.Duration
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a stats handler pushing every interval.
func NewHandler(registry *session.Registry, interval time.Duration, logger *zap.Logger) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:      ctx,
		cancel:   cancel,
		registry: registry,
		interval: interval,
		logger:   logging.OrNop(logger).Named("statsws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Status is read-only and served on a local port
				return true
			},
		},
	}
}

// ServeHTTP handles WebSocket upgrade and the push loop.
// Endpoint: GET /ws/stats[/{name}]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Parse path: /ws/stats or /ws/stats/{name}
	name := ""
	if r.URL.Path != "/ws/stats" {
		rest := strings.TrimPrefix(r.URL.Path, "/ws/stats/")
		if rest == r.URL.Path || rest == "" || strings.Contains(rest, "/") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		name = rest
	}

	if name != "" && len(filter(h.registry.List(), name)) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade failed, response already sent
		return
	}

	sub := NewSubscriber(conn, h.registry, name, h.interval)
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	h.logger.Debug("stats subscriber attached", zap.String("remote", r.RemoteAddr), zap.String("filter", name))
	if err := sub.Run(ctx); err != nil {
		h.logger.Debug("stats subscriber detached", zap.Error(err))
	}
}

// Close detaches every subscriber and closes their connections.
// Later upgrades are detached as soon as they attach.
func (h *Handler) Close() {
	h.cancel()
}

// RegisterRoutes registers stats routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/stats", h.ServeHTTP)
	mux.HandleFunc("/ws/stats/", h.ServeHTTP)
}

// filter keeps endpoints named name; an empty name keeps all.
func filter(infos []session.EndpointInfo, name string) []session.EndpointInfo {
	if name == "" {
		return infos
	}
	kept := infos[:0]
	for _, info := range infos {
		if info.Name == name {
			kept = append(kept, info)
		}
	}
	return kept
}
