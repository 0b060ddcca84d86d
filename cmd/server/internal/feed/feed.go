package feed

import "context"

type Kind int

const (
	// KindStock is a global stock_update envelope for every session.
	KindStock Kind = iota
	// KindProfessor is a professor_update envelope for one topic's subscribers.
	KindProfessor
	// KindNews is a global news_event envelope for every session.
	KindNews
)

// Message is one fan-out unit delivered by the feed. Payload is a
// ready-to-send push envelope; ProfessorID is set only for KindProfessor.
type Message struct {
	Kind        Kind
	ProfessorID string
	Payload     []byte
}

// Feed is the subscriber side of the broadcast plane, consumed by the hub.
// The global stock and news streams are always on; per-professor topics are
// attached and detached on demand.
type Feed interface {
	SubscribeProfessor(ctx context.Context, professorID string) error
	UnsubscribeProfessor(ctx context.Context, professorID string) error
	RunPubSub(ctx context.Context, onMessage func(msg Message))
	Close() error
}
