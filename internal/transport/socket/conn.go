package socket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/domain"
	jwtinfra "github.com/kusina-api/internal/infrastructure/jwt"
	"github.com/kusina-api/internal/pkg/id"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// conn is one live WebSocket client. The hub pushes into send; a single
// writer goroutine drains it so messages reach the socket in order.
type conn struct {
	id       string
	ws       *websocket.Conn
	identity *jwtinfra.Claims
	send     chan realtime.Message
	location *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, identity *jwtinfra.Claims, opts Options) *conn {
	return &conn{
		id:       id.New(),
		ws:       ws,
		identity: identity,
		send:     make(chan realtime.Message, opts.SendBuffer),
		location: rate.NewLimiter(opts.LocationRate, opts.LocationBurst),
		done:     make(chan struct{}),
	}
}

func (c *conn) ID() string { return c.id }

// Send queues m without blocking. It reports false when the connection is
// closed or its queue is full.
func (c *conn) Send(m realtime.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- m:
		return true
	default:
		slog.Warn("socket send queue full, dropping message", "conn_id", c.id, "event", m.Event)
		return false
	}
}

func (c *conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// isAdmin reports whether the connection authenticated with an admin token.
func (c *conn) isAdmin() bool {
	return c.identity != nil && c.identity.Role == domain.RoleAdmin
}

// writeLoop runs until ctx is cancelled, the connection is closed or a write fails.
func (c *conn) writeLoop(ctx context.Context, timeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case m := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, timeout)
			err := wsjson.Write(wctx, c.ws, m)
			cancel()
			if err != nil {
				slog.Warn("socket write failed", "conn_id", c.id, "event", m.Event, "error", err)
				c.close()
				return
			}
		}
	}
}
