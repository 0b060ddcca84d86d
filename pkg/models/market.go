package models

import "time"

// MarketHours is the process-wide market gate. NextOpenTime is set only
// while the market is closed.
type MarketHours struct {
	IsOpen       bool       `json:"isOpen"`
	OpenTime     string     `json:"openTime"`  // "08:00", 24-hour
	CloseTime    string     `json:"closeTime"` // "21:00"
	Timezone     string     `json:"timezone"`
	NextOpenTime *time.Time `json:"nextOpenTime,omitempty"`
}
