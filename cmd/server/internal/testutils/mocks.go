package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/hardoc15/Chalked/cmd/server/internal/feed"
	"github.com/hardoc15/Chalked/cmd/server/internal/protocol"
	"github.com/hardoc15/Chalked/pkg/models"
)

// FixedClock serves a settable instant for deterministic tests.
type FixedClock struct {
	Mu      sync.Mutex
	Current time.Time
}

func (c *FixedClock) Now() time.Time {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	return c.Current
}

func (c *FixedClock) Set(t time.Time) {
	c.Mu.Lock()
	c.Current = t
	c.Mu.Unlock()
}

// MockClient simulates a connected websocket session
type MockClient struct {
	IDVal     string
	Messages  []protocol.WSResponse // decoded command responses
	Envelopes []protocol.Envelope   // decoded push envelopes
	RawBytes  []string              // raw broadcast payloads
	Closed    bool
	Mu        sync.Mutex
}

func NewMockClient(id string) *MockClient {
	return &MockClient{IDVal: id}
}

func (m *MockClient) ID() string { return m.IDVal }

func (m *MockClient) Close() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
}

func (m *MockClient) SendJSON(v interface{}) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	switch msg := v.(type) {
	case protocol.WSResponse:
		m.Messages = append(m.Messages, msg)
	case protocol.Envelope:
		m.Envelopes = append(m.Envelopes, msg)
	}
}

func (m *MockClient) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.RawBytes = append(m.RawBytes, string(b))
}

func (m *MockClient) LastMsgType() string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1].Type
}

// MockFeed simulates the Redis broadcast plane
type MockFeed struct {
	SubscribedTopics map[string]int // professor id -> count
	Mu               sync.Mutex

	onMessage func(feed.Message)
	ready     chan struct{}
	readyOnce sync.Once
}

func NewMockFeed() *MockFeed {
	return &MockFeed{
		SubscribedTopics: make(map[string]int),
		ready:            make(chan struct{}),
	}
}

func (m *MockFeed) SubscribeProfessor(ctx context.Context, id string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedTopics[id]++
	return nil
}

func (m *MockFeed) UnsubscribeProfessor(ctx context.Context, id string) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.SubscribedTopics[id]--
	if m.SubscribedTopics[id] <= 0 {
		delete(m.SubscribedTopics, id)
	}
	return nil
}

func (m *MockFeed) RunPubSub(ctx context.Context, onMessage func(msg feed.Message)) {
	m.Mu.Lock()
	m.onMessage = onMessage
	m.Mu.Unlock()
	m.readyOnce.Do(func() { close(m.ready) })
}

// Inject delivers a message as if it arrived from the broadcast plane.
func (m *MockFeed) Inject(msg feed.Message) {
	<-m.ready
	m.Mu.Lock()
	fn := m.onMessage
	m.Mu.Unlock()
	fn(msg)
}

func (m *MockFeed) Close() error { return nil }

// MockBroadcaster spies on the vote processor's publishes
type MockBroadcaster struct {
	Mu           sync.Mutex
	StockUpdates []models.Professor
	NewsEvents   []models.NewsEvent
	Order        []string // "stock" / "news", to assert publish order
}

func (m *MockBroadcaster) PublishStockUpdate(ctx context.Context, p models.Professor) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.StockUpdates = append(m.StockUpdates, p)
	m.Order = append(m.Order, "stock")
	return nil
}

func (m *MockBroadcaster) PublishNewsEvent(ctx context.Context, e models.NewsEvent) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.NewsEvents = append(m.NewsEvents, e)
	m.Order = append(m.Order, "news")
	return nil
}

// MockJournal spies on recorded vote receipts
type MockJournal struct {
	Mu    sync.Mutex
	Votes []models.Vote
}

func (m *MockJournal) RecordVote(ctx context.Context, v models.Vote) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Votes = append(m.Votes, v)
	return nil
}
