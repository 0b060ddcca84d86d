package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hardoc15/Chalked/cmd/server/internal/journal"
)

type MockKafkaWriter struct {
	Messages []kafka.Message
	Closed   bool
	Mu       sync.Mutex
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockKafkaWriter) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}

// MockSleeper advances instantly so topic readiness polling is fast
type MockSleeper struct{ Slept []time.Duration }

func (m *MockSleeper) Sleep(d time.Duration) { m.Slept = append(m.Slept, d) }

// MockKafkaConn spies on topic administration calls
type MockKafkaConn struct {
	CreatedTopics []string
	Partitions    int
}

func (c *MockKafkaConn) Controller() (kafka.Broker, error) {
	return kafka.Broker{Host: "localhost", Port: 9092}, nil
}

func (c *MockKafkaConn) Close() error { return nil }

func (c *MockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	for _, t := range topics {
		c.CreatedTopics = append(c.CreatedTopics, t.Topic)
	}
	c.Partitions = 4
	return nil
}

func (c *MockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	out := make([]kafka.Partition, c.Partitions)
	return out, nil
}

type MockKafkaDialer struct {
	ConnSpy *MockKafkaConn
}

func (d *MockKafkaDialer) DialContext(ctx context.Context, network, address string) (journal.KafkaConn, error) {
	if d.ConnSpy == nil {
		d.ConnSpy = &MockKafkaConn{}
	}
	return d.ConnSpy, nil
}
