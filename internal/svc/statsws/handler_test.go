// If you are AI: This file contains unit tests for the stats WebSocket handler.
// Tests verify routing, upgrade and periodic snapshots.

package statsws

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"framerelay/internal/core/session"
)

func newTestRegistry() *session.Registry {
	registry := session.NewRegistry()
	registry.Register(&session.Endpoint{Name: "vm0", Role: session.RoleHost, Strategy: "generic", Stats: session.NewStats()})
	registry.Register(&session.Endpoint{Name: "vm1", Role: session.RoleClient, Strategy: "generic", Stats: session.NewStats()})
	return registry
}

func TestStatsHandlerNotFound(t *testing.T) {
	handler := NewHandler(newTestRegistry(), time.Second, nil)

	req := httptest.NewRequest("GET", "/ws/stats/nonexistent", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestStatsHandlerBadPath(t *testing.T) {
	handler := NewHandler(newTestRegistry(), time.Second, nil)

	for _, path := range []string{"/ws/statsx", "/ws/stats/a/b", "/ws/stats/"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
}

func TestStatsHandlerMethod(t *testing.T) {
	handler := NewHandler(newTestRegistry(), time.Second, nil)

	req := httptest.NewRequest("POST", "/ws/stats", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

// dial connects a WebSocket client to path on srv.
func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	return conn
}

func TestStatsHandlerPushes(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestRegistry(), 20*time.Millisecond, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dial(t, srv, "/ws/stats")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 2; i++ {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON %d failed: %v", i, err)
		}
		if len(msg.Endpoints) != 2 {
			t.Errorf("Expected 2 endpoints, got %d", len(msg.Endpoints))
		}
		if msg.Time == 0 {
			t.Error("Time should be set")
		}
	}
}

func TestStatsHandlerFiltered(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(newTestRegistry(), time.Second, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dial(t, srv, "/ws/stats/vm1")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if len(msg.Endpoints) != 1 || msg.Endpoints[0].Name != "vm1" {
		t.Errorf("Expected only vm1, got %+v", msg.Endpoints)
	}
}

func TestStatsHandlerCloseDetaches(t *testing.T) {
	handler := NewHandler(newTestRegistry(), 20*time.Millisecond, nil)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := dial(t, srv, "/ws/stats")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	handler.Close()

	// The server side must drop the connection rather than keep pushing
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			t.Fatal("Subscriber still attached after Close")
		}
		break
	}
}
