package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/pkg/config"
	"github.com/hardoc15/Chalked/pkg/mirror"
)

// watch is a terminal leaderboard client: it mirrors the server's state and
// reprints the top five professors and latest headline on every update.
func main() {
	serverURL := flag.String("server", "http://localhost:3000", "Chalked server base URL")
	follow := flag.String("follow", "", "comma-separated professor ids to subscribe to")
	flag.Parse()

	logCfg := config.LoggerConfig{Level: "warn", Encoding: "console"}
	logger, err := config.NewLogger(logCfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	store := mirror.NewStore()
	client := mirror.NewClient(*serverURL, store, logger)

	store.OnChange(func() { render(store) })

	if *follow != "" {
		ids := strings.Split(*follow, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		store.SetSelected(ids)
		for _, id := range ids {
			if err := client.Subscribe(id); err != nil {
				logger.Warn("Subscribe failed", zap.String("professor_id", id), zap.Error(err))
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go client.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	cancel()
}

func render(store *mirror.Store) {
	hours := store.MarketHours()
	state := "CLOSED"
	if hours.IsOpen {
		state = "OPEN"
	}

	fmt.Printf("\n=== Chalked Leaderboard (market %s %s-%s) ===\n", state, hours.OpenTime, hours.CloseTime)
	for i, p := range store.TopProfessors() {
		fmt.Printf("%d. %-24s $%-4d %+d (%+.1f%%)\n", i+1, p.Name, p.CurrentStock, p.DailyChange, p.DailyChangePercent)
	}
	if news := store.NewsEvents(); len(news) > 0 {
		fmt.Printf("latest: %s\n", news[0].Title)
	}
}
