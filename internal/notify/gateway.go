package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/websocket"

	"github.com/carelink/hospital-platform/internal/events"
	"github.com/carelink/hospital-platform/pkg/logging"
)

// InboundMessage is a client-to-gateway frame.
type InboundMessage struct {
	Type string `json:"type"`
}

// OutboundMessage is a gateway-to-client frame.
type OutboundMessage struct {
	Type  string           `json:"type"`
	Room  string           `json:"room,omitempty"`
	Text  string           `json:"text,omitempty"`
	Event *events.Envelope `json:"event,omitempty"`
}

// Gateway bridges Redis pub/sub rooms to WebSocket subscribers. Each
// connection subscribes to exactly one room.
type Gateway struct {
	redis  *redis.Client
	logger *logging.Logger
}

// NewGateway creates a WebSocket notification gateway.
func NewGateway(client *redis.Client, logger *logging.Logger) *Gateway {
	if client == nil {
		panic("notify: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{redis: client, logger: logger}
}

// HandleWebSocket upgrades to WebSocket and streams room events.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		g.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (g *Gateway) serveWS(conn *websocket.Conn, r *http.Request) {
	room := strings.TrimSpace(r.URL.Query().Get("room"))
	if room == "" {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "missing room parameter"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := g.redis.Subscribe(ctx, channelPrefix+room)
	defer func() { _ = sub.Close() }()

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "subscribed", Room: room})
	g.logger.Info("notification subscriber connected", "room", room)

	// Reader loop: detects client disconnect and answers pings.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg InboundMessage
			if err := websocket.JSON.Receive(conn, &msg); err != nil {
				return
			}
			if msg.Type == "ping" {
				_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			g.logger.Debug("notification subscriber disconnected", "room", room)
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var env events.Envelope
			if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
				g.logger.Warn("dropping malformed room event", "error", err, "room", room)
				continue
			}
			if err := websocket.JSON.Send(conn, OutboundMessage{Type: "event", Room: room, Event: &env}); err != nil {
				return
			}
		}
	}
}
