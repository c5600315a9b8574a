package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local viewer pages are served from file://
	},
}

// LiveHub pushes fixes to websocket clients on /ws/track and serves the
// most recent one on /api/track/latest.
type LiveHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    gps.Fix
	haveFix bool
}

func NewLiveHub() *LiveHub {
	return &LiveHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *LiveHub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/track", h.handleWS)
	mux.HandleFunc("/api/track/latest", h.handleLatest)
	return mux
}

func (h *LiveHub) handleLatest(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	last, ok := h.last, h.haveFix
	h.mu.Unlock()

	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(last); err != nil {
		log.Printf("live: json encode error: %v", err)
	}
}

func (h *LiveHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	if h.haveFix {
		if err := conn.WriteJSON(h.last); err != nil {
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
			return
		}
	}
	h.mu.Unlock()
	log.Printf("live: client connected from %s", r.RemoteAddr)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
	log.Printf("live: client %s disconnected", r.RemoteAddr)
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// Clients returns the number of connected websocket clients.
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Emit records f as the latest fix and writes it to every client.
// Clients that fail the write are dropped.
func (h *LiveHub) Emit(f gps.Fix) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = f
	h.haveFix = true
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := conn.WriteJSON(f); err != nil {
			log.Printf("live: write error, dropping client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}

func (h *LiveHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

// ServeLive runs the hub's HTTP server on addr until ctx is done.
func ServeLive(ctx context.Context, addr string, hub *LiveHub) error {
	srv := &http.Server{Addr: addr, Handler: hub.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("live: web server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
