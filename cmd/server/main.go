package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/cmd/server/internal/api"
	"github.com/hardoc15/Chalked/cmd/server/internal/feed"
	"github.com/hardoc15/Chalked/cmd/server/internal/gateway"
	"github.com/hardoc15/Chalked/cmd/server/internal/hub"
	"github.com/hardoc15/Chalked/cmd/server/internal/journal"
	"github.com/hardoc15/Chalked/cmd/server/internal/market"
	"github.com/hardoc15/Chalked/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	broadcastFeed := feed.NewRedisFeed(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := market.RealClock{}
	marketClock := market.NewMarketClock(cfg.Market.OpenTime, cfg.Market.CloseTime, cfg.Market.Timezone, clock, logger)
	go marketClock.Run(ctx)

	roster := market.DefaultRoster(clock)
	if cfg.Market.RosterFile != "" {
		roster, err = market.LoadRosterFile(cfg.Market.RosterFile, clock)
		if err != nil {
			logger.Fatal("Failed to load roster", zap.String("path", cfg.Market.RosterFile), zap.Error(err))
		}
	}
	ledger := market.NewLedger(roster, clock)
	logger.Info("Ledger seeded", zap.Int("professors", len(roster)))

	var voteJournal *journal.VoteJournal
	var svcJournal market.Journal
	if len(cfg.Kafka.Brokers) > 0 {
		ensurer := journal.NewTopicEnsurer(logger, &journal.RealKafkaDialer{Dialer: kafka.DefaultDialer}, journal.RealClock{})
		ensurer.Ensure(cfg.Kafka.Brokers, cfg.Kafka.Topic)

		voteJournal = journal.NewVoteJournal(journal.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), logger)
		svcJournal = voteJournal
		logger.Info("Vote journal enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		logger.Info("Vote journal disabled (no Kafka brokers configured)")
	}

	svc := market.NewService(ledger, marketClock, broadcastFeed, svcJournal, clock, logger)

	// Dependency Injection: Hub depends on the Feed and StateProvider interfaces
	wsHub := hub.NewHub(broadcastFeed, svc, logger)

	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}

		client := gateway.NewClient(conn, wsHub, logger)
		wsHub.Register(client)
		client.Start()
	})

	srv := api.NewServer(svc, logger, cfg.App.Port, cfg.App.CORSOrigin, wsHandler)

	go func() {
		logger.Info("Server Started",
			zap.String("port", cfg.App.Port),
			zap.String("market_open", cfg.Market.OpenTime),
			zap.String("market_close", cfg.Market.CloseTime))
		if err := srv.Start(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("Shutdown signal received")
	cancel()

	srv.Shutdown(context.Background())
	if voteJournal != nil {
		if err := voteJournal.Close(); err != nil {
			logger.Error("Error closing vote journal", zap.Error(err))
		}
	}
	if err := broadcastFeed.Close(); err != nil {
		logger.Error("Error closing feed", zap.Error(err))
	}
	logger.Info("Shutdown Complete")
}
