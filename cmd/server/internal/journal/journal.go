package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/pkg/models"
)

// KafkaWriter abstracts the output stream
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// VoteJournal appends accepted vote receipts to a Kafka topic for
// out-of-band analytics. It is purely observational: a write failure is
// the caller's to log, never to fail the vote on.
type VoteJournal struct {
	writer KafkaWriter
	logger *zap.Logger
}

func NewVoteJournal(writer KafkaWriter, logger *zap.Logger) *VoteJournal {
	return &VoteJournal{writer: writer, logger: logger}
}

// NewWriter builds the production Kafka writer. Batching plus async mode
// keeps the journal off the vote processing path.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
}

// RecordVote appends one receipt, keyed by professor id so per-professor
// order is preserved across partitions.
func (j *VoteJournal) RecordVote(ctx context.Context, v models.Vote) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal vote: %w", err)
	}

	return j.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(v.ProfessorID),
		Value: payload,
	})
}

func (j *VoteJournal) Close() error {
	return j.writer.Close()
}
