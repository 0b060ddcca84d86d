package market_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hardoc15/Chalked/cmd/server/internal/market"
	"github.com/hardoc15/Chalked/cmd/server/internal/testutils"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write roster file: %v", err)
	}
	return path
}

func TestLoadRosterFile(t *testing.T) {
	clock := &testutils.FixedClock{Current: time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)}
	path := writeRoster(t, `[
		{"id": "prof-1", "name": "Dr. Sarah Smith", "department": "Computer Science", "courses": ["CS 101"]},
		{"id": "prof-2", "name": "Prof. Michael Johnson", "department": "Mathematics"}
	]`)

	roster, err := market.LoadRosterFile(path, clock)
	if err != nil {
		t.Fatalf("LoadRosterFile failed: %v", err)
	}

	if len(roster) != 2 {
		t.Fatalf("Expected 2 professors, got %d", len(roster))
	}
	p := roster[0]
	if p.ID != "prof-1" || p.Department != "Computer Science" {
		t.Errorf("Unexpected first entry: %+v", p)
	}
	if p.CurrentStock != 100 || p.StartingStock != 100 {
		t.Errorf("Fresh listings must open at the starting stock, got %d/%d", p.CurrentStock, p.StartingStock)
	}
	if p.TotalVotes != 0 || p.DailyChange != 0 {
		t.Error("Fresh listings must carry no tallies")
	}
	if !p.CreatedAt.Equal(clock.Current) {
		t.Error("createdAt must come from the injected clock")
	}
}

func TestLoadRosterFile_MissingFields(t *testing.T) {
	clock := &testutils.FixedClock{Current: time.Now()}
	path := writeRoster(t, `[{"id": "", "name": "Nameless"}]`)

	if _, err := market.LoadRosterFile(path, clock); err == nil {
		t.Fatal("Entries without an id must be rejected")
	}
}

func TestLoadRosterFile_DuplicateID(t *testing.T) {
	clock := &testutils.FixedClock{Current: time.Now()}
	path := writeRoster(t, `[
		{"id": "prof-1", "name": "Dr. Sarah Smith"},
		{"id": "prof-1", "name": "Dr. Sarah Smith (again)"}
	]`)

	_, err := market.LoadRosterFile(path, clock)
	if err == nil {
		t.Fatal("Duplicate ids must be rejected")
	}
	if !strings.Contains(err.Error(), "duplicate id") {
		t.Errorf("Expected a duplicate id error, got: %v", err)
	}
}

func TestLoadRosterFile_NotFound(t *testing.T) {
	clock := &testutils.FixedClock{Current: time.Now()}
	if _, err := market.LoadRosterFile(filepath.Join(t.TempDir(), "missing.json"), clock); err == nil {
		t.Fatal("A missing roster file must be an error")
	}
}
