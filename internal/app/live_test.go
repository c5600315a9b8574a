package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
)

func waitClients(t *testing.T, hub *LiveHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveHub_BroadcastsFixes(t *testing.T) {
	hub := NewLiveHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()

	resp, err := http.Get(srv.URL + "/api/track/latest")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first fix, got %d", resp.StatusCode)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/track"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitClients(t, hub, 1)

	f := gps.Fix{Latitude: 36.360638, Longitude: 138.84854, Altitude: 35.7, Local: time.Date(2019, 2, 4, 0, 55, 14, 0, time.FixedZone("JST", 9*3600))}
	if err := hub.Emit(f); err != nil {
		t.Fatalf("emit: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got gps.Fix
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Longitude != f.Longitude || !got.Local.Equal(f.Local) {
		t.Fatalf("unexpected fix %+v", got)
	}

	resp, err = http.Get(srv.URL + "/api/track/latest")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var latest gps.Fix
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		t.Fatalf("decode latest: %v", err)
	}
	if latest.Altitude != 35.7 {
		t.Fatalf("unexpected latest %+v", latest)
	}
}

func TestLiveHub_NewClientGetsLatest(t *testing.T) {
	hub := NewLiveHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()

	hub.Emit(gps.Fix{Altitude: 12.5})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/track"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got gps.Fix
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Altitude != 12.5 {
		t.Fatalf("unexpected fix %+v", got)
	}

	conn.Close()
	waitClients(t, hub, 0)
}
