package gateway

import (
	"net"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func newPipeClient(t *testing.T) *ClientAdapter {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewClient(server, nil, zap.NewNop())
}

func TestClient_SendAfterCloseIsNoop(t *testing.T) {
	c := newPipeClient(t)

	c.Close()
	// Must not panic with a send on the closed channel
	c.SendBytes([]byte(`{"type":"stock_update"}`))
	c.SendJSON(map[string]string{"type": "news_event"})
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := newPipeClient(t)

	c.Close()
	c.Close()
}

func TestClient_ConcurrentSendAndClose(t *testing.T) {
	// Run with `go test -race ./...`
	c := newPipeClient(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.SendBytes([]byte(`{}`))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Close()
	}()
	wg.Wait()
}

func TestClient_BackpressureDropsWhenFull(t *testing.T) {
	c := newPipeClient(t)

	// No writePump draining: once the buffer fills, sends must drop, not block
	for i := 0; i < 2*cap(c.send); i++ {
		c.SendBytes([]byte(`{}`))
	}
	if len(c.send) != cap(c.send) {
		t.Errorf("Expected a full send buffer, got %d/%d", len(c.send), cap(c.send))
	}
}
