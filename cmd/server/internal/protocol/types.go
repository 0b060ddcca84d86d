package protocol

import "time"

// Client → server actions.
const (
	ActionGetProfessors = "get_professors"
	ActionSubscribe     = "subscribe_professor"
	ActionUnsubscribe   = "unsubscribe_professor"
)

// Server → client event types.
const (
	EventMarketStatus    = "market_status"
	EventProfessorsData  = "professors_data"
	EventStockUpdate     = "stock_update"
	EventProfessorUpdate = "professor_update"
	EventNewsEvent       = "news_event"
)

type WSRequest struct {
	Action  string         `json:"action"`
	Payload RequestPayload `json:"payload"`
	ID      string         `json:"id,omitempty"`
}

type RequestPayload struct {
	ProfessorID string `json:"professorId,omitempty"`
}

// WSResponse answers a client command ("ack" or "error").
type WSResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"` // Matches request ID
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Envelope wraps every server-pushed event.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
