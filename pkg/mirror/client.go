package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hardoc15/Chalked/pkg/models"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Client keeps a Store synchronized with a Chalked server: an initial full
// fetch over HTTP, then incremental push events over the WebSocket channel.
// After a dropped connection it reconnects with backoff and re-fetches full
// state rather than trusting events to have been queued.
type Client struct {
	baseURL string
	store   *Store
	httpc   *http.Client
	logger  *zap.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	subscribed map[string]bool
}

func NewClient(baseURL string, store *Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpc:      &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		subscribed: make(map[string]bool),
	}
}

// Run connects and keeps the mirror synchronized until ctx is cancelled.
func (c *Client) Run(ctx context.Context) {
	backoff := initialBackoff

	for {
		if err := c.syncOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("Connection lost, reconnecting", zap.Duration("backoff", backoff), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// syncOnce performs one full connect cycle: fetch state, dial, resubscribe
// topics, then pump events until the connection fails.
func (c *Client) syncOnce(ctx context.Context) error {
	if err := c.FetchMarketStatus(ctx); err != nil {
		return err
	}
	if err := c.FetchProfessors(ctx); err != nil {
		return err
	}

	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}

	c.mu.Lock()
	c.conn = conn
	topics := make([]string, 0, len(c.subscribed))
	for id := range c.subscribed {
		topics = append(topics, id)
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	for _, id := range topics {
		if err := c.sendCommand("subscribe_professor", id); err != nil {
			return err
		}
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(payload)
	}
}

// Subscribe starts following one professor's topic. The subscription
// survives reconnects.
func (c *Client) Subscribe(professorID string) error {
	c.mu.Lock()
	c.subscribed[professorID] = true
	connected := c.conn != nil
	c.mu.Unlock()

	if !connected {
		return nil
	}
	return c.sendCommand("subscribe_professor", professorID)
}

func (c *Client) Unsubscribe(professorID string) error {
	c.mu.Lock()
	delete(c.subscribed, professorID)
	connected := c.conn != nil
	c.mu.Unlock()

	if !connected {
		return nil
	}
	return c.sendCommand("unsubscribe_professor", professorID)
}

func (c *Client) sendCommand(action, professorID string) error {
	cmd := struct {
		Action  string `json:"action"`
		Payload struct {
			ProfessorID string `json:"professorId"`
		} `json:"payload"`
	}{Action: action}
	cmd.Payload.ProfessorID = professorID

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.WriteJSON(cmd)
}

type pushEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) dispatch(payload []byte) {
	var env pushEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.logger.Warn("Unparseable push message", zap.Error(err))
		return
	}

	switch env.Type {
	case "market_status":
		var mh models.MarketHours
		if json.Unmarshal(env.Data, &mh) == nil {
			c.store.SetMarketHours(mh)
		}
	case "professors_data":
		var professors []models.Professor
		if json.Unmarshal(env.Data, &professors) == nil {
			c.store.SetProfessors(professors)
		}
	case "stock_update":
		var u models.StockUpdate
		if json.Unmarshal(env.Data, &u) == nil {
			c.store.ApplyStockUpdate(u)
		}
	case "professor_update":
		var p models.Professor
		if json.Unmarshal(env.Data, &p) == nil {
			c.store.ApplyProfessorUpdate(p)
		}
	case "news_event":
		var e models.NewsEvent
		if json.Unmarshal(env.Data, &e) == nil {
			c.store.AddNewsEvent(e)
		}
	case "ack", "error":
		// Command responses; nothing to mirror
	}
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// FetchProfessors pulls the full professor list into the store.
func (c *Client) FetchProfessors(ctx context.Context) error {
	var professors []models.Professor
	if err := c.getJSON(ctx, "/api/professors", &professors); err != nil {
		return err
	}
	c.store.SetProfessors(professors)
	return nil
}

// FetchMarketStatus pulls the current market hours into the store.
func (c *Client) FetchMarketStatus(ctx context.Context) error {
	var mh models.MarketHours
	if err := c.getJSON(ctx, "/api/market/status", &mh); err != nil {
		return err
	}
	c.store.SetMarketHours(mh)
	return nil
}

// Vote submits one vote over HTTP. The resulting ledger mutation reaches
// the store through the push channel, not through this call.
func (c *Client) Vote(ctx context.Context, professorID, voteType string) (*models.Vote, error) {
	body, _ := json.Marshal(map[string]string{"voteType": voteType})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/professors/"+professorID+"/vote", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode vote response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("vote rejected: %s", env.Error)
	}

	var result struct {
		Vote models.Vote `json:"vote"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decode vote receipt: %w", err)
	}
	return &result.Vote, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if !env.Success {
		return fmt.Errorf("%s: %s", path, env.Error)
	}
	return json.Unmarshal(env.Data, out)
}
