// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CAPTURE751/STUDENT-organization-management-system/models"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("election")
		snapshot := models.LiveUpdate{ElectionID: id, VotedCount: 1, TotalVoters: 10, Turnout: 10}
		if err := hub.ServeWS(w, r, id, snapshot); err != nil {
			t.Errorf("ServeWS: %v", err)
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, electionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?election=" + electionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) models.LiveUpdate {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var u models.LiveUpdate
	require.NoError(t, conn.ReadJSON(&u))
	return u
}

func TestHubSnapshotThenBroadcast(t *testing.T) {
	hub, srv := startHub(t)

	a := dial(t, srv, "e1")
	b := dial(t, srv, "e2")

	assert.Equal(t, "e1", readUpdate(t, a).ElectionID)
	assert.Equal(t, "e2", readUpdate(t, b).ElectionID)

	require.Eventually(t, func() bool {
		return hub.Subscribers("e1") == 1 && hub.Subscribers("e2") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(models.LiveUpdate{ElectionID: "e1", VotedCount: 2, TotalVoters: 10, Turnout: 20})

	u := readUpdate(t, a)
	assert.Equal(t, 2, u.VotedCount)
	assert.Equal(t, 20.0, u.Turnout)

	// e2 gets nothing.
	b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := b.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "e1")
	readUpdate(t, conn)
	require.Eventually(t, func() bool { return hub.Subscribers("e1") == 1 }, time.Second, 10*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("e1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcastAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for range 100 {
			hub.Broadcast(models.LiveUpdate{ElectionID: "e1"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked after the hub stopped")
	}
}

func TestServeWSRejectsPlainHTTP(t *testing.T) {
	hub := NewHub()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	err := hub.ServeWS(w, r, "e1", models.LiveUpdate{})
	assert.Error(t, err)
}
