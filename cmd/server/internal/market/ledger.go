package market

import (
	"sync"

	"github.com/hardoc15/Chalked/pkg/models"
)

// Ledger is the authoritative in-memory collection of professor records.
// It is the single writer of every record; callers only ever see copies.
// Records are created at seed time and never deleted, so the insertion
// order of List is stable for the process lifetime.
type Ledger struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Professor
	clock Clock
}

func NewLedger(professors []models.Professor, clock Clock) *Ledger {
	l := &Ledger{
		byID:  make(map[string]*models.Professor, len(professors)),
		clock: clock,
	}
	for i := range professors {
		p := professors[i]
		l.order = append(l.order, p.ID)
		l.byID[p.ID] = &p
	}
	return l
}

// List returns copies of all records in insertion order.
func (l *Ledger) List() []models.Professor {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Professor, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.byID[id])
	}
	return out
}

// Get returns a copy of one record, or ErrProfessorNotFound.
func (l *Ledger) Get(id string) (models.Professor, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.byID[id]
	if !ok {
		return models.Professor{}, ErrProfessorNotFound
	}
	return *p, nil
}

// ApplyVote mutates one record atomically and returns the mutated copy.
// An upvote moves the stock up one point, a downvote down one. There is no
// floor: currentStock may go negative. The caller is responsible for vote
// type validation; anything but an upvote counts as a downvote here.
func (l *Ledger) ApplyVote(id, voteType string) (models.Professor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.byID[id]
	if !ok {
		return models.Professor{}, ErrProfessorNotFound
	}

	if voteType == models.VoteUp {
		p.CurrentStock++
		p.Upvotes++
		p.DailyChange++
	} else {
		p.CurrentStock--
		p.Downvotes++
		p.DailyChange--
	}

	p.TotalVotes++
	p.DailyChangePercent = float64(p.CurrentStock-p.StartingStock) / float64(p.StartingStock) * 100
	p.LastUpdated = l.clock.Now()

	return *p, nil
}
