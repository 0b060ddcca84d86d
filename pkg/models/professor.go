package models

import "time"

// Professor is one tradeable stock record. The ledger owns all instances;
// everything handed to sessions or HTTP responses is a copy.
type Professor struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Department         string    `json:"department"`
	Courses            []string  `json:"courses"`
	CurrentStock       int       `json:"currentStock"`
	StartingStock      int       `json:"startingStock"`
	DailyChange        int       `json:"dailyChange"`
	DailyChangePercent float64   `json:"dailyChangePercent"`
	TotalVotes         int       `json:"totalVotes"`
	Upvotes            int       `json:"upvotes"`
	Downvotes          int       `json:"downvotes"`
	LastUpdated        time.Time `json:"lastUpdated"`
	CreatedAt          time.Time `json:"createdAt"`
}

// StockUpdate is the payload broadcast to every session after a mutation.
type StockUpdate struct {
	ProfessorID   string  `json:"professorId"`
	NewPrice      int     `json:"newPrice"`
	Change        int     `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int     `json:"volume"` // total votes
}
