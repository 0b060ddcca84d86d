package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/cmd/server/internal/feed"
	"github.com/hardoc15/Chalked/cmd/server/internal/protocol"
	"github.com/hardoc15/Chalked/pkg/models"
)

type ClientInterface interface {
	ID() string
	SendJSON(v interface{})
	SendBytes(b []byte)
	Close()
}

// StateProvider supplies the snapshots delivered to a session on connect
// and on an explicit refresh request.
type StateProvider interface {
	Professors() []models.Professor
	MarketHours() models.MarketHours
}

// Hub is the session registry and fan-out broadcaster. Global envelopes
// (stock updates, news) go to every registered session; professor topic
// envelopes go only to that topic's subscribers. The upstream feed is
// attached to a topic while at least one local session subscribes to it.
type Hub struct {
	clients     map[ClientInterface]bool
	subscribers map[string]map[ClientInterface]bool
	clientSubs  map[ClientInterface]map[string]bool
	refCount    map[string]int

	feed   feed.Feed
	state  StateProvider
	logger *zap.Logger
	mu     sync.RWMutex
}

func NewHub(f feed.Feed, state StateProvider, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:     make(map[ClientInterface]bool),
		subscribers: make(map[string]map[ClientInterface]bool),
		clientSubs:  make(map[ClientInterface]map[string]bool),
		refCount:    make(map[string]int),
		feed:        f,
		state:       state,
		logger:      logger,
	}

	go h.feed.RunPubSub(context.Background(), h.dispatch)

	return h
}

// Register adds a session and delivers the current market status and the
// full professor list to it, point-to-point.
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.sendSnapshot(client)
	h.logger.Debug("Session registered", zap.String("client_id", client.ID()))
}

// Unregister drops the session and all its topic subscriptions as one
// atomic step, so no later broadcast can target it.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	if subs, ok := h.clientSubs[client]; ok {
		for id := range subs {
			delete(h.subscribers[id], client)
			h.decreaseRefCount(id)
		}
		delete(h.clientSubs, client)
	}
	delete(h.clients, client)
	h.mu.Unlock()

	client.Close()
	h.logger.Debug("Session unregistered", zap.String("client_id", client.ID()))
}

func (h *Hub) HandleCommand(client ClientInterface, req protocol.WSRequest) {
	switch req.Action {
	case protocol.ActionGetProfessors:
		client.SendJSON(protocol.Envelope{
			Type:      protocol.EventProfessorsData,
			Data:      h.state.Professors(),
			Timestamp: time.Now(),
		})
	case protocol.ActionSubscribe:
		h.handleSubscribe(client, req)
	case protocol.ActionUnsubscribe:
		h.handleUnsubscribe(client, req)
	default:
		h.sendError(client, req.ID, "Unknown action: "+req.Action)
	}
}

func (h *Hub) handleSubscribe(client ClientInterface, req protocol.WSRequest) {
	id := req.Payload.ProfessorID
	if id == "" {
		h.sendError(client, req.ID, "professorId is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Idempotency: subscribing twice is the same as once
	if h.clientSubs[client] != nil && h.clientSubs[client][id] {
		h.sendAck(client, req.ID, fmt.Sprintf("Already subscribed to %s", id))
		return
	}

	if h.clientSubs[client] == nil {
		h.clientSubs[client] = make(map[string]bool)
	}
	h.clientSubs[client][id] = true
	if h.subscribers[id] == nil {
		h.subscribers[id] = make(map[ClientInterface]bool)
	}
	h.subscribers[id][client] = true

	// Attach the upstream topic on the first local subscriber
	h.refCount[id]++
	if h.refCount[id] == 1 {
		if err := h.feed.SubscribeProfessor(context.Background(), id); err != nil {
			h.logger.Error("Failed to subscribe upstream", zap.String("professor_id", id), zap.Error(err))
		}
	}

	h.sendAck(client, req.ID, fmt.Sprintf("Subscribed to %s", id))
}

func (h *Hub) handleUnsubscribe(client ClientInterface, req protocol.WSRequest) {
	id := req.Payload.ProfessorID
	if id == "" {
		h.sendError(client, req.ID, "professorId is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Unsubscribing from a topic not held is a no-op, not an error
	if subs, ok := h.clientSubs[client]; ok && subs[id] {
		delete(subs, id)
		delete(h.subscribers[id], client)
		h.decreaseRefCount(id)
	}

	h.sendAck(client, req.ID, fmt.Sprintf("Unsubscribed from %s", id))
}

// dispatch routes one feed message to its audience.
func (h *Hub) dispatch(msg feed.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch msg.Kind {
	case feed.KindStock, feed.KindNews:
		for client := range h.clients {
			client.SendBytes(msg.Payload)
		}
	case feed.KindProfessor:
		for client := range h.subscribers[msg.ProfessorID] {
			client.SendBytes(msg.Payload)
		}
	}
}

func (h *Hub) sendSnapshot(client ClientInterface) {
	now := time.Now()
	client.SendJSON(protocol.Envelope{
		Type:      protocol.EventMarketStatus,
		Data:      h.state.MarketHours(),
		Timestamp: now,
	})
	client.SendJSON(protocol.Envelope{
		Type:      protocol.EventProfessorsData,
		Data:      h.state.Professors(),
		Timestamp: now,
	})
}

// decreaseRefCount must be called with h.mu held.
func (h *Hub) decreaseRefCount(id string) {
	h.refCount[id]--
	if h.refCount[id] <= 0 {
		if err := h.feed.UnsubscribeProfessor(context.Background(), id); err != nil {
			h.logger.Error("Failed to unsubscribe upstream", zap.String("professor_id", id), zap.Error(err))
		}
		delete(h.refCount, id)
		delete(h.subscribers, id)
	}
}

func (h *Hub) sendAck(c ClientInterface, id, msg string) {
	c.SendJSON(protocol.WSResponse{Type: "ack", ID: id, Status: "success", Message: msg})
}

func (h *Hub) sendError(c ClientInterface, id, msg string) {
	c.SendJSON(protocol.WSResponse{Type: "error", ID: id, Message: msg})
}
