// Package rpc serves the real-time order event feed over WebSocket. Each
// connected client receives every ledger event as a JSON message.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

const (
	writeTimeout   = 10 * time.Second
	pongTimeout    = 60 * time.Second
	pingInterval   = 54 * time.Second
	sendBufferSize = 256
)

// FeedServer upgrades HTTP connections to WebSocket and fans ledger events
// out to them.
type FeedServer struct {
	upgrader websocket.Upgrader
	pub      *ledger.StreamPublisher

	connectionsMutex sync.RWMutex
	connections      map[uint64]*feedConnection
	nextConnID       uint64

	httpServer *http.Server
}

type feedConnection struct {
	id     uint64
	conn   *websocket.Conn
	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc
}

// NewFeedServer creates a feed server over the given publisher.
func NewFeedServer(pub *ledger.StreamPublisher) *FeedServer {
	return &FeedServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		pub:         pub,
		connections: make(map[uint64]*feedConnection),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (s *FeedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	fc := &feedConnection{
		id:     atomic.AddUint64(&s.nextConnID, 1),
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	s.connectionsMutex.Lock()
	s.connections[fc.id] = fc
	s.connectionsMutex.Unlock()

	go s.handleRead(fc)
	go s.handleSend(fc)
}

// Run pumps publisher events to all connections until ctx is cancelled or the
// publisher closes.
func (s *FeedServer) Run(ctx context.Context) error {
	events, cancel := s.pub.Subscribe(sendBufferSize)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Failed to marshal event for order %d: %v", ev.ID, err)
				continue
			}
			s.broadcast(data)
		}
	}
}

func (s *FeedServer) broadcast(data []byte) {
	s.connectionsMutex.RLock()
	defer s.connectionsMutex.RUnlock()

	for _, fc := range s.connections {
		select {
		case fc.send <- data:
		default:
			// Slow consumer, drop the message rather than block the feed.
		}
	}
}

// handleRead drains client messages and detects disconnects. The feed is
// one-way; inbound payloads are discarded.
func (s *FeedServer) handleRead(fc *feedConnection) {
	defer s.closeConnection(fc)

	fc.conn.SetReadLimit(512 * 1024)
	fc.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	fc.conn.SetPongHandler(func(string) error {
		fc.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		if _, _, err := fc.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *FeedServer) handleSend(fc *feedConnection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fc.ctx.Done():
			return
		case <-ticker.C:
			fc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := fc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closeConnection(fc)
				return
			}
		case message := <-fc.send:
			fc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := fc.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.closeConnection(fc)
				return
			}
		}
	}
}

func (s *FeedServer) closeConnection(fc *feedConnection) {
	s.connectionsMutex.Lock()
	_, registered := s.connections[fc.id]
	delete(s.connections, fc.id)
	s.connectionsMutex.Unlock()

	if registered {
		fc.cancel()
		fc.conn.Close()
	}
}

// ConnectionCount returns the number of live feed connections.
func (s *FeedServer) ConnectionCount() int {
	s.connectionsMutex.RLock()
	defer s.connectionsMutex.RUnlock()
	return len(s.connections)
}

// Listen starts serving the feed at addr under the /events path. It blocks
// until the listener fails or Shutdown is called.
func (s *FeedServer) Listen(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/events", s)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("feed listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{Handler: mux}
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and closes all connections.
func (s *FeedServer) Shutdown(ctx context.Context) error {
	s.connectionsMutex.Lock()
	conns := make([]*feedConnection, 0, len(s.connections))
	for _, fc := range s.connections {
		conns = append(conns, fc)
	}
	s.connections = make(map[uint64]*feedConnection)
	s.connectionsMutex.Unlock()

	for _, fc := range conns {
		fc.cancel()
		fc.conn.Close()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
