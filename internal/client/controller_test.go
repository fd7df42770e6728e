package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer is a minimal WebSocket endpoint that tracks accepted
// connections and exposes them for test-driven closes.
type echoServer struct {
	ts       *httptest.Server
	upgrades atomic.Int64
	inbound  chan []byte

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	s := &echoServer{inbound: make(chan []byte, 16)}

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	s.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.upgrades.Add(1)
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.inbound <- data
		}
	}))
	t.Cleanup(func() {
		s.closeAll()
		s.ts.Close()
	})
	return s
}

func (s *echoServer) url() string {
	return "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/ws"
}

func (s *echoServer) lastConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		return nil
	}
	return s.conns[len(s.conns)-1]
}

func (s *echoServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.conns = nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestConnectIsIdempotent(t *testing.T) {
	s := newEchoServer(t)
	c := NewController()
	defer c.Disconnect()

	require.NoError(t, c.Connect(s.url(), nil))
	require.NoError(t, c.Connect(s.url(), nil))
	require.NoError(t, c.Connect(s.url(), nil))

	require.True(t, waitFor(t, time.Second, func() bool { return s.upgrades.Load() == 1 }))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), s.upgrades.Load(), "repeated Connect must reuse the open connection")
	assert.True(t, c.IsConnected())
}

func TestInboundFramesReachHandler(t *testing.T) {
	s := newEchoServer(t)
	received := make(chan []byte, 4)

	c := NewController()
	defer c.Disconnect()
	require.NoError(t, c.Connect(s.url(), func(data []byte) { received <- data }))

	require.True(t, waitFor(t, time.Second, func() bool { return s.lastConn() != nil }))
	serverConn := s.lastConn()
	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"updateUsers","users":[]}`)))

	select {
	case data := <-received:
		assert.JSONEq(t, `{"type":"updateUsers","users":[]}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("handler never received the inbound frame")
	}
}

func TestSendTransmitsWhenOpen(t *testing.T) {
	s := newEchoServer(t)
	c := NewController()
	defer c.Disconnect()
	require.NoError(t, c.Connect(s.url(), nil))

	c.Send(NewJoinRecruitMessage(42))

	select {
	case data := <-s.inbound:
		assert.JSONEq(t, `{"type":"joinRecruit","recruitId":42}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("server never received the outbound frame")
	}
}

func TestSendWhileDisconnectedIsDropped(t *testing.T) {
	c := NewController()

	// Must neither panic nor queue; there is nothing to assert beyond the
	// controller staying disconnected.
	c.Send(NewLocationMessage(1, 2))
	assert.False(t, c.IsConnected())
}

func TestReconnectAfterConnectionDrop(t *testing.T) {
	s := newEchoServer(t)
	c := NewController()
	c.delay = 50 * time.Millisecond
	defer c.Disconnect()

	require.NoError(t, c.Connect(s.url(), nil))
	require.True(t, waitFor(t, time.Second, func() bool { return s.lastConn() != nil }))

	s.lastConn().Close()

	require.True(t, waitFor(t, 2*time.Second, func() bool { return s.upgrades.Load() == 2 }),
		"controller never re-dialed after the drop")
	assert.True(t, waitFor(t, time.Second, c.IsConnected))
}

func TestDuplicateCloseArmsSingleTimer(t *testing.T) {
	s := newEchoServer(t)
	c := NewController()
	c.delay = time.Hour // keep the timer pending for the whole test
	defer c.Disconnect()

	require.NoError(t, c.Connect(s.url(), nil))

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	require.NotNil(t, conn)

	c.handleClosed(conn)
	c.mu.Lock()
	first := c.reconnect
	c.mu.Unlock()
	require.NotNil(t, first, "first close must arm the reconnection timer")

	// A second close event for the same connection must not arm another.
	c.handleClosed(conn)
	c.mu.Lock()
	second := c.reconnect
	c.mu.Unlock()
	assert.Same(t, first, second)
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	s := newEchoServer(t)
	c := NewController()
	c.delay = 500 * time.Millisecond

	require.NoError(t, c.Connect(s.url(), nil))
	require.True(t, waitFor(t, time.Second, func() bool { return s.lastConn() != nil }))

	s.closeAll()
	require.True(t, waitFor(t, time.Second, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.reconnect != nil
	}), "close never armed the reconnection timer")

	c.Disconnect()
	time.Sleep(700 * time.Millisecond)

	assert.Equal(t, int64(1), s.upgrades.Load(), "reconnection fired after Disconnect")
	assert.False(t, c.IsConnected())
}

func TestFreshConnectAfterDisconnect(t *testing.T) {
	s := newEchoServer(t)
	c := NewController()
	defer c.Disconnect()

	require.NoError(t, c.Connect(s.url(), nil))
	c.Disconnect()
	assert.False(t, c.IsConnected())

	require.NoError(t, c.Connect(s.url(), nil))
	assert.True(t, c.IsConnected())
	require.True(t, waitFor(t, time.Second, func() bool { return s.upgrades.Load() == 2 }))
}
