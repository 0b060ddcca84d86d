package market

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/pkg/models"
)

// Clock is the time source, swappable for deterministic tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

const recomputeInterval = 60 * time.Second

// MarketClock tracks whether voting is currently allowed. It recomputes the
// open/closed state on a fixed cadence and serves the last-computed snapshot,
// so readers may observe up to one interval of staleness.
type MarketClock struct {
	openTime  string // "HH:MM"
	closeTime string
	loc       *time.Location
	tz        string
	clock     Clock
	logger    *zap.Logger

	mu       sync.RWMutex
	snapshot models.MarketHours
}

// NewMarketClock builds the clock and computes the initial snapshot. An
// unknown timezone falls back to the host's local time.
func NewMarketClock(openTime, closeTime, timezone string, clock Clock, logger *zap.Logger) *MarketClock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("Unknown timezone, using local time", zap.String("timezone", timezone), zap.Error(err))
		loc = time.Local
	}

	mc := &MarketClock{
		openTime:  openTime,
		closeTime: closeTime,
		loc:       loc,
		tz:        timezone,
		clock:     clock,
		logger:    logger,
	}
	mc.Recompute()
	return mc
}

// Run recomputes the market state every minute until ctx is cancelled.
func (mc *MarketClock) Run(ctx context.Context) {
	ticker := time.NewTicker(recomputeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.Recompute()
		}
	}
}

// Recompute refreshes the cached MarketHours snapshot from the clock.
func (mc *MarketClock) Recompute() {
	now := mc.clock.Now().In(mc.loc)
	openHour := clockHour(mc.openTime)
	closeHour := clockHour(mc.closeTime)

	snap := models.MarketHours{
		OpenTime:  mc.openTime,
		CloseTime: mc.closeTime,
		Timezone:  mc.tz,
		IsOpen:    isOpenAt(now, openHour, closeHour),
	}
	if !snap.IsOpen {
		next := nextOpenAt(now, openHour)
		snap.NextOpenTime = &next
	}

	mc.mu.Lock()
	wasOpen := mc.snapshot.IsOpen
	mc.snapshot = snap
	mc.mu.Unlock()

	if wasOpen != snap.IsOpen {
		mc.logger.Info("Market state changed", zap.Bool("is_open", snap.IsOpen))
	}
}

// IsOpen reports the last-computed market state.
func (mc *MarketClock) IsOpen() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.snapshot.IsOpen
}

// Hours returns the last-computed MarketHours snapshot.
func (mc *MarketClock) Hours() models.MarketHours {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.snapshot
}

// isOpenAt decides the gate by hour-of-day only: the window is
// [openHour, closeHour), so minutes within the open hour count as open and
// the close boundary is exclusive.
func isOpenAt(now time.Time, openHour, closeHour int) bool {
	return now.Hour() >= openHour && now.Hour() < closeHour
}

// nextOpenAt is today at the open hour when we're before it, otherwise
// tomorrow at the open hour.
func nextOpenAt(now time.Time, openHour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), openHour, 0, 0, 0, now.Location())
	if now.Hour() >= openHour {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// clockHour parses the hour from an "HH:MM" string. Config validation
// guarantees the shape; a malformed value degrades to hour zero.
func clockHour(hhmm string) int {
	h, _ := strconv.Atoi(strings.SplitN(hhmm, ":", 2)[0])
	return h
}
