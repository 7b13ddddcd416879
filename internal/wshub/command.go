package wshub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

// commandEnvelope mirrors the {"command": {"Subscribe": "topic"}} /
// {"command": {"Unsubscribe": "topic"}} wire shape: exactly one of
// Subscribe/Unsubscribe is set per frame.
type commandEnvelope struct {
	Command struct {
		Subscribe   *string `json:"Subscribe"`
		Unsubscribe *string `json:"Unsubscribe"`
	} `json:"command"`
}

// handleCommand decodes one command frame and, for Subscribe, spawns a
// listener goroutine only if the topic isn't already tracked for this
// session -- the manager itself stays permissive, so this client-side
// idempotency check is what actually prevents duplicate listeners.
func (h *Hub) handleCommand(ctx context.Context, data []byte, clientID string, listeners map[string]context.CancelFunc, wg *sync.WaitGroup, outboundCh chan<- outboundFrame) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.logger.Debug("discarding malformed command frame")
		return
	}

	switch {
	case env.Command.Subscribe != nil:
		topic := *env.Command.Subscribe
		if _, already := listeners[topic]; already {
			return
		}
		topicCtx, cancel := context.WithCancel(ctx)
		listeners[topic] = cancel
		ch := h.manager.Subscribe(topic, clientID)
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenTopic(topicCtx, ch, outboundCh)
		}()

	case env.Command.Unsubscribe != nil:
		topic := *env.Command.Unsubscribe
		if cancel, ok := listeners[topic]; ok {
			cancel()
			delete(listeners, topic)
		}
		h.manager.Unsubscribe(topic, clientID)
	}
}

// listenTopic forwards every message received on ch to outboundCh as JSON,
// until the topic is cancelled or ch is closed by the manager.
func listenTopic(ctx context.Context, ch <-chan dto.TopicMessage, outboundCh chan<- outboundFrame) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			encoded, err := json.Marshal(dto.NewEnvelope(msg))
			if err != nil {
				continue
			}
			select {
			case outboundCh <- outboundFrame{msgType: websocket.TextMessage, data: encoded}:
			case <-ctx.Done():
				return
			}
		}
	}
}
