// Package socket exposes the realtime hub over WebSocket. Every frame is a
// JSON object {"event": "...", "data": {...}} in both directions.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kusina-api/internal/application/realtime"
	"github.com/kusina-api/internal/config"
	"github.com/kusina-api/internal/domain"
	jwtinfra "github.com/kusina-api/internal/infrastructure/jwt"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
)

// TokenVerifier validates the JWT a client passes in the token query parameter.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Options tunes connection handling. Zero fields take the defaults below.
type Options struct {
	AllowedOrigins []string
	RequireAuth    bool
	SendBuffer     int
	WriteTimeout   time.Duration
	ReadLimit      int64
	LocationRate   rate.Limit
	LocationBurst  int
}

const (
	defaultSendBuffer    = 64
	defaultWriteTimeout  = 10 * time.Second
	defaultReadLimit     = 32 << 10
	defaultLocationRate  = rate.Limit(1)
	defaultLocationBurst = 3
)

// OptionsFromConfig maps the SOCKET_* and LOCATION_* settings.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RequireAuth:    cfg.SocketRequireAuth,
		SendBuffer:     cfg.SocketSendBuffer,
		WriteTimeout:   cfg.SocketWriteTimeout,
		LocationRate:   rate.Limit(cfg.LocationRatePerSec),
		LocationBurst:  cfg.LocationRateBurst,
	}
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.LocationRate <= 0 {
		o.LocationRate = defaultLocationRate
	}
	if o.LocationBurst <= 0 {
		o.LocationBurst = defaultLocationBurst
	}
	return o
}

// Server upgrades HTTP requests and serves one hub connection per socket.
type Server struct {
	hub     *realtime.Hub
	events  *Events
	tokens  TokenVerifier
	opts    Options
	origins []string
}

// NewServer builds the WebSocket endpoint for hub.
func NewServer(hub *realtime.Hub, orders OrderUpdater, tokens TokenVerifier, opts Options) *Server {
	opts = opts.withDefaults()
	return &Server{
		hub:     hub,
		events:  NewEvents(hub, orders),
		tokens:  tokens,
		opts:    opts,
		origins: originPatterns(opts.AllowedOrigins),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := s.authenticate(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": domain.Message(err)})
		return
	}

	// The HTTP server's read and write timeouts must not cut off a long-lived socket.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		slog.Warn("socket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(s.opts.ReadLimit)

	c := newConn(ws, identity, s.opts)
	s.hub.Connect(c)
	slog.Info("socket connected", "conn_id", c.id, "user_id", userID(identity))

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		c.close()
		s.hub.Disconnect(c.id)
		_ = ws.Close(websocket.StatusNormalClosure, "")
		slog.Info("socket disconnected", "conn_id", c.id)
	}()

	go func() {
		c.writeLoop(ctx, s.opts.WriteTimeout)
		cancel()
	}()
	s.readLoop(ctx, c)
}

func (s *Server) readLoop(ctx context.Context, c *conn) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				slog.Debug("socket read ended", "conn_id", c.id, "error", err)
			}
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			s.events.reject(c, env.Event, fmt.Errorf("malformed message: %w", domain.ErrBadRequest))
			continue
		}
		s.events.Handle(ctx, c, env)
	}
}

var (
	errMissingToken = fmt.Errorf("socket token required: %w", domain.ErrUnauthorized)
	errInvalidToken = fmt.Errorf("invalid or expired socket token: %w", domain.ErrUnauthorized)
)

// authenticate reads the optional "token" query parameter. A token that is
// present but invalid is always rejected.
func (s *Server) authenticate(r *http.Request) (*jwtinfra.Claims, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if s.opts.RequireAuth {
			return nil, errMissingToken
		}
		return nil, nil
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

// originPatterns turns CORS origins such as "https://shop.example.com" into
// the host patterns websocket.Accept matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		o = strings.TrimSuffix(o, "/")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}

func userID(c *jwtinfra.Claims) string {
	if c == nil {
		return ""
	}
	return c.UserID
}
