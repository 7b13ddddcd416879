// Package hub implements the topic-based subscription and fan-out broadcast
// that sits between the OTLP ingest processor and WebSocket sessions.
package hub

import (
	"sync"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

// receiverCapacity bounds each subscriber's per-topic buffer. A publish to a
// full buffer drops the oldest queued message rather than blocking the
// publisher.
const receiverCapacity = 100

// receiver is one subscriber's inbox for one topic. send and close share a
// mutex so a publish racing a teardown never sends on a closed channel.
type receiver struct {
	mu     sync.Mutex
	ch     chan dto.TopicMessage
	closed bool
}

func newReceiver() *receiver {
	return &receiver{ch: make(chan dto.TopicMessage, receiverCapacity)}
}

func (r *receiver) send(msg dto.TopicMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.ch <- msg:
	default:
		// Buffer full: drop the oldest queued message and retry once.
		select {
		case <-r.ch:
		default:
		}
		select {
		case r.ch <- msg:
		default:
		}
	}
}

func (r *receiver) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.ch)
}

// SubscriptionManager tracks which clients are subscribed to which topics
// and fans published messages out to each subscriber's own buffered
// channel. Subscribing a client that is already subscribed to a topic is a
// no-op: the manager is deliberately permissive, leaving idempotency
// enforcement to callers that want it (see internal/wshub).
type SubscriptionManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]struct{}    // topic -> set of client ids
	receivers   map[string]map[string]*receiver    // topic -> client id -> receiver
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subscribers: make(map[string]map[string]struct{}),
		receivers:   make(map[string]map[string]*receiver),
	}
}

// Subscribe registers clientID for topic and returns the channel it should
// read incoming messages from.
func (m *SubscriptionManager) Subscribe(topic, clientID string) <-chan dto.TopicMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribers[topic] == nil {
		m.subscribers[topic] = make(map[string]struct{})
	}
	m.subscribers[topic][clientID] = struct{}{}

	if m.receivers[topic] == nil {
		m.receivers[topic] = make(map[string]*receiver)
	}
	r, ok := m.receivers[topic][clientID]
	if !ok {
		r = newReceiver()
		m.receivers[topic][clientID] = r
	}
	return r.ch
}

// Unsubscribe removes clientID's subscription to topic and closes its
// receiver channel.
func (m *SubscriptionManager) Unsubscribe(topic, clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribeLocked(topic, clientID)
}

func (m *SubscriptionManager) unsubscribeLocked(topic, clientID string) {
	if subs, ok := m.subscribers[topic]; ok {
		delete(subs, clientID)
		if len(subs) == 0 {
			delete(m.subscribers, topic)
		}
	}
	if recvs, ok := m.receivers[topic]; ok {
		if r, ok := recvs[clientID]; ok {
			r.close()
			delete(recvs, clientID)
		}
		if len(recvs) == 0 {
			delete(m.receivers, topic)
		}
	}
}

// UnsubscribeClient tears down every subscription clientID holds across all
// topics, for use at session teardown.
func (m *SubscriptionManager) UnsubscribeClient(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	topics := make([]string, 0, len(m.subscribers))
	for topic, subs := range m.subscribers {
		if _, ok := subs[clientID]; ok {
			topics = append(topics, topic)
		}
	}
	for _, topic := range topics {
		m.unsubscribeLocked(topic, clientID)
	}
}

// Publish fans msg out to every current subscriber of msg.Topic(), returning
// how many subscribers it was delivered to (0 if the topic has none). It
// never blocks: a subscriber whose buffer is full loses its oldest queued
// message.
func (m *SubscriptionManager) Publish(msg dto.TopicMessage) int {
	m.mu.RLock()
	recvs := m.receivers[msg.Topic()]
	targets := make([]*receiver, 0, len(recvs))
	for _, r := range recvs {
		targets = append(targets, r)
	}
	m.mu.RUnlock()

	for _, r := range targets {
		r.send(msg)
	}
	return len(targets)
}

// PublishLog is a convenience wrapper over Publish for log records.
func (m *SubscriptionManager) PublishLog(log dto.LogDto) int { return m.Publish(log) }

// PublishSpan is a convenience wrapper over Publish for spans.
func (m *SubscriptionManager) PublishSpan(span dto.SpanDto) int { return m.Publish(span) }

// PublishMetric is a convenience wrapper over Publish for metrics.
func (m *SubscriptionManager) PublishMetric(metric dto.MetricDto) int { return m.Publish(metric) }
