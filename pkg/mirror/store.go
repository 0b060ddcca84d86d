package mirror

import (
	"sort"
	"sync"
	"time"

	"github.com/hardoc15/Chalked/pkg/models"
)

const maxNewsEvents = 50

// Store mirrors the server's ledger state on the client: the professor
// list in ledger order, the market hours snapshot, and the news feed,
// plus the derived leaderboard and my-professors views. Derived views are
// recomputed synchronously on every replace or patch. Patches are
// replace-by-id, so applying the same update twice is idempotent, and a
// patch for an unknown professor id is a no-op.
type Store struct {
	mu          sync.RWMutex
	professors  []models.Professor
	index       map[string]int
	marketHours models.MarketHours
	news        []models.NewsEvent
	selected    map[string]bool

	top  []models.Professor
	mine []models.Professor

	onChange func()
}

func NewStore() *Store {
	return &Store{
		index:    make(map[string]int),
		selected: make(map[string]bool),
	}
}

// OnChange registers a callback fired after every state mutation. The
// callback runs outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetProfessors replaces the full collection, e.g. after an initial fetch
// or a reconnect re-fetch.
func (s *Store) SetProfessors(professors []models.Professor) {
	s.mu.Lock()
	s.professors = append([]models.Professor(nil), professors...)
	s.index = make(map[string]int, len(professors))
	for i, p := range s.professors {
		s.index[p.ID] = i
	}
	s.recomputeDerived()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// ApplyStockUpdate patches one professor from a stock_update broadcast.
func (s *Store) ApplyStockUpdate(u models.StockUpdate) {
	s.mu.Lock()
	i, ok := s.index[u.ProfessorID]
	if !ok {
		s.mu.Unlock()
		return
	}
	p := &s.professors[i]
	p.CurrentStock = u.NewPrice
	p.DailyChange = u.Change
	p.DailyChangePercent = u.ChangePercent
	p.TotalVotes = u.Volume
	p.LastUpdated = time.Now()
	s.recomputeDerived()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// ApplyProfessorUpdate replaces one full record from a professor_update
// topic broadcast.
func (s *Store) ApplyProfessorUpdate(p models.Professor) {
	s.mu.Lock()
	i, ok := s.index[p.ID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.professors[i] = p
	s.recomputeDerived()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// AddNewsEvent prepends a news event, keeping only the newest entries.
func (s *Store) AddNewsEvent(e models.NewsEvent) {
	s.mu.Lock()
	s.news = append([]models.NewsEvent{e}, s.news...)
	if len(s.news) > maxNewsEvents {
		s.news = s.news[:maxNewsEvents]
	}
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *Store) SetMarketHours(mh models.MarketHours) {
	s.mu.Lock()
	s.marketHours = mh
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// SetSelected sets the current user's professor selection for the
// my-professors view.
func (s *Store) SetSelected(ids []string) {
	s.mu.Lock()
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
	s.recomputeDerived()
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *Store) Professors() []models.Professor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Professor(nil), s.professors...)
}

func (s *Store) MarketHours() models.MarketHours {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marketHours
}

func (s *Store) NewsEvents() []models.NewsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.NewsEvent(nil), s.news...)
}

// TopProfessors is the leaderboard: top five by current stock, descending,
// ties keeping ledger order.
func (s *Store) TopProfessors() []models.Professor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Professor(nil), s.top...)
}

// MyProfessors is the selection filter, ledger order preserved.
func (s *Store) MyProfessors() []models.Professor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Professor(nil), s.mine...)
}

// recomputeDerived must be called with s.mu held for writing.
func (s *Store) recomputeDerived() {
	top := append([]models.Professor(nil), s.professors...)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].CurrentStock > top[j].CurrentStock
	})
	if len(top) > 5 {
		top = top[:5]
	}
	s.top = top

	mine := make([]models.Professor, 0, len(s.selected))
	for _, p := range s.professors {
		if s.selected[p.ID] {
			mine = append(mine, p)
		}
	}
	s.mine = mine
}
