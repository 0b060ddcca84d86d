package market

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hardoc15/Chalked/pkg/models"
)

const startingStock = 100

// rosterEntry is the JSON shape for one professor in a roster file.
type rosterEntry struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Courses    []string `json:"courses"`
}

// LoadRosterFile reads a JSON array of professors and returns fresh records,
// every one opening at the starting stock. Use exclusively at startup.
func LoadRosterFile(path string, clock Clock) ([]models.Professor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster file: %w", err)
	}

	var entries []rosterEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("roster file parse error: %w", err)
	}

	now := clock.Now()
	seen := make(map[string]bool, len(entries))
	out := make([]models.Professor, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" || e.Name == "" {
			return nil, fmt.Errorf("roster entry %d: id and name are required", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("roster entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
		out = append(out, newListing(e, now))
	}
	return out, nil
}

// DefaultRoster is the built-in demo roster used when no roster file is
// configured. The seeded tallies mirror a market day already in progress.
func DefaultRoster(clock Clock) []models.Professor {
	now := clock.Now()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return []models.Professor{
		{
			ID: "prof-1", Name: "Dr. Sarah Smith", Department: "Computer Science",
			Courses: []string{"CS 101", "CS 201"}, CurrentStock: 95, StartingStock: startingStock,
			DailyChange: -5, DailyChangePercent: -5.0,
			TotalVotes: 23, Upvotes: 9, Downvotes: 14,
			LastUpdated: now, CreatedAt: created,
		},
		{
			ID: "prof-2", Name: "Prof. Michael Johnson", Department: "Mathematics",
			Courses: []string{"MATH 201", "MATH 301"}, CurrentStock: 108, StartingStock: startingStock,
			DailyChange: 8, DailyChangePercent: 8.0,
			TotalVotes: 31, Upvotes: 22, Downvotes: 9,
			LastUpdated: now, CreatedAt: created,
		},
		{
			ID: "prof-3", Name: "Dr. Emily Williams", Department: "English",
			Courses: []string{"ENG 102", "ENG 205"}, CurrentStock: 102, StartingStock: startingStock,
			DailyChange: 2, DailyChangePercent: 2.0,
			TotalVotes: 18, Upvotes: 11, Downvotes: 7,
			LastUpdated: now, CreatedAt: created,
		},
	}
}

func newListing(e rosterEntry, now time.Time) models.Professor {
	return models.Professor{
		ID:            e.ID,
		Name:          e.Name,
		Department:    e.Department,
		Courses:       e.Courses,
		CurrentStock:  startingStock,
		StartingStock: startingStock,
		LastUpdated:   now,
		CreatedAt:     now,
	}
}
