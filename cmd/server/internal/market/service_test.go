package market_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/cmd/server/internal/market"
	"github.com/hardoc15/Chalked/cmd/server/internal/testutils"
	"github.com/hardoc15/Chalked/pkg/models"
)

func newTestService(t *testing.T, openHour int, professors []models.Professor) (*market.Service, *testutils.MockBroadcaster, *testutils.MockJournal) {
	t.Helper()

	clock := &testutils.FixedClock{Current: time.Date(2025, 6, 2, openHour, 30, 0, 0, time.UTC)}
	mc := market.NewMarketClock("08:00", "21:00", "UTC", clock, zap.NewNop())
	ledger := market.NewLedger(professors, clock)
	broadcaster := &testutils.MockBroadcaster{}
	journal := &testutils.MockJournal{}

	svc := market.NewService(ledger, mc, broadcaster, journal, clock, zap.NewNop())
	return svc, broadcaster, journal
}

func TestSubmitVote_MarketClosed(t *testing.T) {
	svc, broadcaster, _ := newTestService(t, 23, seedProfessors())

	_, _, err := svc.SubmitVote(context.Background(), "prof-1", models.VoteUp)
	if !errors.Is(err, market.ErrMarketClosed) {
		t.Fatalf("Expected ErrMarketClosed, got %v", err)
	}

	if len(broadcaster.StockUpdates) != 0 {
		t.Error("A rejected vote must not broadcast")
	}
	p, _ := svc.Professor("prof-1")
	if p.TotalVotes != 23 {
		t.Error("A rejected vote must not mutate the ledger")
	}
}

func TestSubmitVote_InvalidVoteType(t *testing.T) {
	svc, broadcaster, _ := newTestService(t, 12, seedProfessors())

	_, _, err := svc.SubmitVote(context.Background(), "prof-1", "sideways")
	if !errors.Is(err, market.ErrInvalidVoteType) {
		t.Fatalf("Expected ErrInvalidVoteType, got %v", err)
	}

	if len(broadcaster.StockUpdates) != 0 {
		t.Error("Invalid vote types must not broadcast")
	}
	p, _ := svc.Professor("prof-1")
	if p.TotalVotes != 23 {
		t.Error("Invalid vote types must not mutate the ledger")
	}
}

func TestSubmitVote_PreconditionOrder(t *testing.T) {
	// Market-closed wins over an invalid vote type, which wins over an
	// unknown professor.
	svc, _, _ := newTestService(t, 23, seedProfessors())
	if _, _, err := svc.SubmitVote(context.Background(), "prof-99", "sideways"); !errors.Is(err, market.ErrMarketClosed) {
		t.Errorf("Expected ErrMarketClosed first, got %v", err)
	}

	svc, _, _ = newTestService(t, 12, seedProfessors())
	if _, _, err := svc.SubmitVote(context.Background(), "prof-99", "sideways"); !errors.Is(err, market.ErrInvalidVoteType) {
		t.Errorf("Expected ErrInvalidVoteType before professor lookup, got %v", err)
	}
}

func TestSubmitVote_UnknownProfessor(t *testing.T) {
	svc, broadcaster, _ := newTestService(t, 12, seedProfessors())

	_, _, err := svc.SubmitVote(context.Background(), "prof-99", models.VoteUp)
	if !errors.Is(err, market.ErrProfessorNotFound) {
		t.Fatalf("Expected ErrProfessorNotFound, got %v", err)
	}
	if len(broadcaster.StockUpdates) != 0 {
		t.Error("Unknown professors must not broadcast")
	}
}

func TestSubmitVote_Success(t *testing.T) {
	svc, broadcaster, journal := newTestService(t, 12, seedProfessors())

	receipt, professor, err := svc.SubmitVote(context.Background(), "prof-1", models.VoteUp)
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	if receipt.ID == "" || receipt.ProfessorID != "prof-1" || receipt.VoteType != models.VoteUp {
		t.Errorf("Malformed receipt: %+v", receipt)
	}
	if professor.CurrentStock != 96 || professor.TotalVotes != 24 {
		t.Errorf("Unexpected mutation: stock=%d votes=%d", professor.CurrentStock, professor.TotalVotes)
	}

	if len(broadcaster.StockUpdates) != 1 {
		t.Fatalf("Expected exactly one stock broadcast, got %d", len(broadcaster.StockUpdates))
	}
	if broadcaster.StockUpdates[0].ID != "prof-1" {
		t.Error("Broadcast must carry the mutated professor")
	}
	if len(journal.Votes) != 1 || journal.Votes[0].ID != receipt.ID {
		t.Error("Receipt must be journaled")
	}
}

func TestSubmitVote_FiveUpvotesBackToBaseline(t *testing.T) {
	svc, broadcaster, _ := newTestService(t, 12, seedProfessors())

	for i := 0; i < 5; i++ {
		if _, _, err := svc.SubmitVote(context.Background(), "prof-1", models.VoteUp); err != nil {
			t.Fatalf("Vote %d failed: %v", i+1, err)
		}
	}

	p, _ := svc.Professor("prof-1")
	if p.CurrentStock != 100 {
		t.Errorf("Expected stock back at 100, got %d", p.CurrentStock)
	}
	if math.Abs(p.DailyChangePercent) > 1e-9 {
		t.Errorf("Expected 0.0%% daily change, got %f", p.DailyChangePercent)
	}
	if len(broadcaster.NewsEvents) != 0 {
		t.Error("No news event may fire while the move stays below the threshold")
	}
	if len(broadcaster.StockUpdates) != 5 {
		t.Errorf("Expected 5 stock broadcasts, got %d", len(broadcaster.StockUpdates))
	}
}

func TestSubmitVote_NewsOnThresholdCross(t *testing.T) {
	professors := []models.Professor{
		{ID: "prof-1", Name: "Dr. Sarah Smith", CurrentStock: 91, StartingStock: 100, DailyChange: -9, DailyChangePercent: -9.0, TotalVotes: 9, Downvotes: 9},
	}
	svc, broadcaster, _ := newTestService(t, 12, professors)

	// -9% -> -10%: crosses the threshold, exactly one news event
	_, _, err := svc.SubmitVote(context.Background(), "prof-1", models.VoteDown)
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	if len(broadcaster.NewsEvents) != 1 {
		t.Fatalf("Expected exactly one news event, got %d", len(broadcaster.NewsEvents))
	}
	news := broadcaster.NewsEvents[0]
	if news.ProfessorID != "prof-1" {
		t.Error("News event must be tagged to the professor")
	}
	if news.EventType != models.NewsStockDrop {
		t.Errorf("Expected stock_drop, got %s", news.EventType)
	}
	if news.Title != "Dr. Sarah Smith's stock drops 10.0%!" {
		t.Errorf("Unexpected title: %q", news.Title)
	}

	// The stock broadcast must be observable before the news broadcast
	if len(broadcaster.Order) < 2 || broadcaster.Order[0] != "stock" || broadcaster.Order[1] != "news" {
		t.Errorf("Expected stock before news, got %v", broadcaster.Order)
	}
}

func TestSubmitVote_NewsOnRise(t *testing.T) {
	professors := []models.Professor{
		{ID: "prof-1", Name: "Prof. Michael Johnson", CurrentStock: 109, StartingStock: 100, DailyChange: 9, DailyChangePercent: 9.0, TotalVotes: 9, Upvotes: 9},
	}
	svc, broadcaster, _ := newTestService(t, 12, professors)

	if _, _, err := svc.SubmitVote(context.Background(), "prof-1", models.VoteUp); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	if len(broadcaster.NewsEvents) != 1 {
		t.Fatalf("Expected one news event, got %d", len(broadcaster.NewsEvents))
	}
	news := broadcaster.NewsEvents[0]
	if news.EventType != models.NewsStockRise {
		t.Errorf("Expected stock_rise, got %s", news.EventType)
	}
	if news.Title != "Prof. Michael Johnson's stock surges 10.0%!" {
		t.Errorf("Unexpected title: %q", news.Title)
	}
}

func TestSubmitVote_NewsAboveThresholdEveryVote(t *testing.T) {
	// The significance check is on the post-mutation percentage, so a
	// professor already beyond the threshold stays newsworthy.
	professors := []models.Professor{
		{ID: "prof-1", Name: "Dr. Sarah Smith", CurrentStock: 88, StartingStock: 100, DailyChange: -12, DailyChangePercent: -12.0, TotalVotes: 12, Downvotes: 12},
	}
	svc, broadcaster, _ := newTestService(t, 12, professors)

	svc.SubmitVote(context.Background(), "prof-1", models.VoteDown)
	svc.SubmitVote(context.Background(), "prof-1", models.VoteDown)

	if len(broadcaster.NewsEvents) != 2 {
		t.Errorf("Expected a news event per vote beyond the threshold, got %d", len(broadcaster.NewsEvents))
	}
}

func TestSubmitVote_NilJournal(t *testing.T) {
	clock := &testutils.FixedClock{Current: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)}
	mc := market.NewMarketClock("08:00", "21:00", "UTC", clock, zap.NewNop())
	ledger := market.NewLedger(seedProfessors(), clock)
	svc := market.NewService(ledger, mc, &testutils.MockBroadcaster{}, nil, clock, zap.NewNop())

	if _, _, err := svc.SubmitVote(context.Background(), "prof-1", models.VoteUp); err != nil {
		t.Fatalf("Voting without a journal must work: %v", err)
	}
}
