// Package wshub bridges the topic hub to WebSocket clients: each connection
// gets a greeter frame, a command-reading loop, a dispatcher goroutine, and
// one listener goroutine per subscribed topic.
package wshub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/hub"
)

const (
	pingByte byte = 0x09
	pongByte byte = 0x0A

	outboundBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// outboundFrame is one queued write. Every outbound byte -- greeter, event,
// pong -- flows through the same channel so frames reach the wire in the
// order they were enqueued.
type outboundFrame struct {
	msgType int
	data    []byte
}

var pongFrame = outboundFrame{msgType: websocket.BinaryMessage, data: []byte{pongByte}}

// Hub upgrades incoming HTTP requests to WebSocket sessions backed by a
// shared subscription manager.
type Hub struct {
	manager *hub.SubscriptionManager
	logger  *zap.Logger
}

func NewHub(manager *hub.SubscriptionManager, logger *zap.Logger) *Hub {
	return &Hub{manager: manager, logger: logger}
}

type connectResponse struct {
	ClientID string `json:"client_id"`
}

// ServeHTTP upgrades the connection and runs the session until the client
// disconnects or the server shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.handleSession(r.Context(), conn)
}

func (h *Hub) handleSession(ctx context.Context, conn *websocket.Conn) {
	clientID := uuid.Must(uuid.NewV7()).String()
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()
	defer h.manager.UnsubscribeClient(clientID)

	outboundCh := make(chan outboundFrame, outboundBuffer)
	dispatchDone := make(chan struct{})

	go dispatch(conn, outboundCh, dispatchDone)

	greeting, err := json.Marshal(connectResponse{ClientID: clientID})
	if err != nil {
		close(outboundCh)
		<-dispatchDone
		return
	}
	select {
	case outboundCh <- outboundFrame{msgType: websocket.TextMessage, data: greeting}:
	case <-dispatchDone:
		return
	}

	listeners := make(map[string]context.CancelFunc)
	var listenerWG sync.WaitGroup

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(data) == 1 && data[0] == pingByte {
				select {
				case outboundCh <- pongFrame:
				case <-dispatchDone:
				}
			}
		case websocket.TextMessage:
			h.handleCommand(sessionCtx, data, clientID, listeners, &listenerWG, outboundCh)
		}
	}

	// Stop every listener goroutine and wait for it to return before closing
	// outboundCh: a listener still sending when the channel closes would
	// panic.
	for _, stop := range listeners {
		stop()
	}
	listenerWG.Wait()

	close(outboundCh)
	<-dispatchDone
}

// dispatch is the single writer goroutine for a connection: every outbound
// frame, greeter and pong included, flows through outboundCh so concurrent
// topic listeners and the receive loop never race on conn.WriteMessage and
// frames hit the wire in enqueue order. On a write error the connection is
// already broken, so it keeps draining outboundCh without writing until the
// channel is closed at session teardown -- this lets listener goroutines
// blocked on a send finish instead of deadlocking.
func dispatch(conn *websocket.Conn, outboundCh <-chan outboundFrame, done chan<- struct{}) {
	defer close(done)
	broken := false
	for frame := range outboundCh {
		if broken {
			continue
		}
		if err := conn.WriteMessage(frame.msgType, frame.data); err != nil {
			broken = true
		}
	}
}
