package models

import "time"

const (
	NewsStockRise    = "stock_rise"
	NewsStockDrop    = "stock_drop"
	NewsMarketOpen   = "market_open"
	NewsMarketClose  = "market_close"
	NewsAnnouncement = "announcement"
)

// NewsEvent is an append-only feed entry. The server never retains these;
// clients keep the most recent 50.
type NewsEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProfessorID string    `json:"professorId,omitempty"`
	EventType   string    `json:"eventType"`
	CreatedAt   time.Time `json:"createdAt"`
}
