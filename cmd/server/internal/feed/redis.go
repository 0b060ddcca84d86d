package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hardoc15/Chalked/cmd/server/internal/protocol"
	"github.com/hardoc15/Chalked/pkg/models"
)

const (
	stockChannel    = "market.stocks"
	newsChannel     = "market.news"
	professorPrefix = "professor."
	snapshotPrefix  = "professor:"
	snapshotTTL     = time.Hour
)

// Compile-time check to ensure RedisFeed implements Feed
var _ Feed = (*RedisFeed)(nil)

// RedisFeed is the Redis-backed broadcast plane. Publishing a mutation
// writes the latest professor snapshot and pushes both the global and the
// topic-scoped envelope in a single pipeline, so subscribers observe them
// in publish order. Any number of gateway instances can consume the same
// channels.
type RedisFeed struct {
	client *redis.Client
	pubsub *redis.PubSub
	mu     sync.Mutex // Protects pubsub subscription changes
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	ps := client.Subscribe(context.Background(), stockChannel, newsChannel)
	return &RedisFeed{
		client: client,
		pubsub: ps,
	}
}

// PublishStockUpdate pushes one ledger mutation: a stock_update envelope on
// the global channel, a professor_update envelope on the professor's topic,
// and the snapshot cache refresh. All three ride one pipeline.
func (r *RedisFeed) PublishStockUpdate(ctx context.Context, p models.Professor) error {
	profJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal professor: %w", err)
	}

	now := time.Now()
	stockEnv, err := json.Marshal(protocol.Envelope{
		Type: protocol.EventStockUpdate,
		Data: models.StockUpdate{
			ProfessorID:   p.ID,
			NewPrice:      p.CurrentStock,
			Change:        p.DailyChange,
			ChangePercent: p.DailyChangePercent,
			Volume:        p.TotalVotes,
		},
		Timestamp: now,
	})
	if err != nil {
		return fmt.Errorf("marshal stock update: %w", err)
	}
	profEnv, err := json.Marshal(protocol.Envelope{
		Type:      protocol.EventProfessorUpdate,
		Data:      p,
		Timestamp: now,
	})
	if err != nil {
		return fmt.Errorf("marshal professor update: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, snapshotPrefix+p.ID, profJSON, snapshotTTL)
	pipe.Publish(ctx, stockChannel, stockEnv)
	pipe.Publish(ctx, professorPrefix+p.ID, profEnv)
	_, err = pipe.Exec(ctx)
	return err
}

// PublishNewsEvent pushes a news_event envelope on the global news channel.
func (r *RedisFeed) PublishNewsEvent(ctx context.Context, e models.NewsEvent) error {
	env, err := json.Marshal(protocol.Envelope{
		Type:      protocol.EventNewsEvent,
		Data:      e,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal news event: %w", err)
	}
	return r.client.Publish(ctx, newsChannel, env).Err()
}

// SubscribeProfessor attaches the per-professor topic channel.
func (r *RedisFeed) SubscribeProfessor(ctx context.Context, professorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pubsub.Subscribe(ctx, professorPrefix+professorID)
}

// UnsubscribeProfessor detaches the per-professor topic channel.
func (r *RedisFeed) UnsubscribeProfessor(ctx context.Context, professorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pubsub.Unsubscribe(ctx, professorPrefix+professorID)
}

// RunPubSub is a blocking loop that classifies incoming channel messages
// and hands them to the callback.
func (r *RedisFeed) RunPubSub(ctx context.Context, onMessage func(msg Message)) {
	ch := r.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			switch {
			case msg.Channel == stockChannel:
				onMessage(Message{Kind: KindStock, Payload: []byte(msg.Payload)})
			case msg.Channel == newsChannel:
				onMessage(Message{Kind: KindNews, Payload: []byte(msg.Payload)})
			case strings.HasPrefix(msg.Channel, professorPrefix):
				onMessage(Message{
					Kind:        KindProfessor,
					ProfessorID: strings.TrimPrefix(msg.Channel, professorPrefix),
					Payload:     []byte(msg.Payload),
				})
			}
		}
	}
}

func (r *RedisFeed) Close() error {
	if err := r.pubsub.Close(); err != nil {
		return err
	}
	return r.client.Close()
}
