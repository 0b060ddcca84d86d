package market

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/pkg/models"
)

// newsThresholdPercent is the absolute daily move that makes a mutation
// newsworthy. Checked against the post-mutation percentage, not the delta
// of a single vote.
const newsThresholdPercent = 10.0

// Broadcaster publishes ledger mutations downstream. The stock update and
// any news event it triggers are two independent publishes; the stock
// update always goes out first.
type Broadcaster interface {
	PublishStockUpdate(ctx context.Context, p models.Professor) error
	PublishNewsEvent(ctx context.Context, e models.NewsEvent) error
}

// Journal records accepted vote receipts out of band. Implementations must
// not block vote processing; failures are observational only.
type Journal interface {
	RecordVote(ctx context.Context, v models.Vote) error
}

// Service is the vote processor: it gates votes on the market clock,
// applies them to the ledger, and fans the results out.
type Service struct {
	ledger      *Ledger
	marketClock *MarketClock
	broadcaster Broadcaster
	journal     Journal // nil when journaling is disabled
	clock       Clock
	logger      *zap.Logger
}

func NewService(ledger *Ledger, mc *MarketClock, b Broadcaster, j Journal, clock Clock, logger *zap.Logger) *Service {
	return &Service{
		ledger:      ledger,
		marketClock: mc,
		broadcaster: b,
		journal:     j,
		clock:       clock,
		logger:      logger,
	}
}

// Professors returns the full ledger in insertion order.
func (s *Service) Professors() []models.Professor { return s.ledger.List() }

// Professor returns a single record, or ErrProfessorNotFound.
func (s *Service) Professor(id string) (models.Professor, error) { return s.ledger.Get(id) }

// MarketHours returns the last-computed market snapshot.
func (s *Service) MarketHours() models.MarketHours { return s.marketClock.Hours() }

// SubmitVote validates and applies one vote. Preconditions are checked in
// order: market open, vote type, professor exists. A rejected vote never
// mutates the ledger. On success the mutation is broadcast to all sessions,
// a news event is broadcast when the daily move crosses the significance
// threshold, and the receipt is journaled.
//
// There is no one-vote-per-student-per-day enforcement: votes carry no
// caller identity and duplicates are accepted.
func (s *Service) SubmitVote(ctx context.Context, professorID, voteType string) (*models.Vote, *models.Professor, error) {
	if !s.marketClock.IsOpen() {
		return nil, nil, ErrMarketClosed
	}
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidVoteType, voteType)
	}

	professor, err := s.ledger.ApplyVote(professorID, voteType)
	if err != nil {
		return nil, nil, err
	}

	receipt := models.Vote{
		ID:          uuid.NewString(),
		ProfessorID: professor.ID,
		VoteType:    voteType,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.broadcaster.PublishStockUpdate(ctx, professor); err != nil {
		s.logger.Error("Failed to broadcast stock update",
			zap.String("professor_id", professor.ID), zap.Error(err))
	}

	if news, ok := s.newsFor(professor); ok {
		if err := s.broadcaster.PublishNewsEvent(ctx, news); err != nil {
			s.logger.Error("Failed to broadcast news event",
				zap.String("professor_id", professor.ID), zap.Error(err))
		}
	}

	if s.journal != nil {
		if err := s.journal.RecordVote(ctx, receipt); err != nil {
			s.logger.Warn("Failed to journal vote",
				zap.String("vote_id", receipt.ID), zap.Error(err))
		}
	}

	return &receipt, &professor, nil
}

// newsFor synthesizes a news event when the post-mutation daily move is at
// or beyond the significance threshold.
func (s *Service) newsFor(p models.Professor) (models.NewsEvent, bool) {
	magnitude := math.Abs(p.DailyChangePercent)
	if magnitude < newsThresholdPercent {
		return models.NewsEvent{}, false
	}

	direction := "surges"
	eventType := models.NewsStockRise
	if p.DailyChangePercent < 0 {
		direction = "drops"
		eventType = models.NewsStockDrop
	}

	return models.NewsEvent{
		ID:          uuid.NewString(),
		Title:       fmt.Sprintf("%s's stock %s %.1f%%!", p.Name, direction, magnitude),
		Description: fmt.Sprintf("Professor %s's stock has moved %+.1f%% today to $%d", p.Name, p.DailyChangePercent, p.CurrentStock),
		ProfessorID: p.ID,
		EventType:   eventType,
		CreatedAt:   s.clock.Now(),
	}, true
}
