package sensor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// MotionSample is one accelerometer reading (gravity removed), in m/s².
type MotionSample struct {
	X, Y, Z float64
	At      time.Time
}

// motionMessage is the JSON frame sent by the motion remote page.
type motionMessage struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	T     int64   `json:"t,omitempty"`     // Sender timestamp in ms (informational)
	Error string  `json:"error,omitempty"` // Remote-side permission failure
}

// MotionConfig configures the websocket endpoint motion remotes connect to.
type MotionConfig struct {
	Addr string // Listen address, e.g. ":8090"
	Path string // Websocket path, e.g. "/motion"
}

// DefaultMotionConfig returns the default endpoint.
func DefaultMotionConfig() MotionConfig {
	return MotionConfig{Addr: ":8090", Path: "/motion"}
}

// MotionReceiver accepts accelerometer samples pushed over websockets and
// fans them out to subscribed sessions through a MotionHub.
type MotionReceiver struct {
	cfg      MotionConfig
	logger   *log.Logger
	hub      *MotionHub
	upgrader websocket.Upgrader

	mu         sync.Mutex
	permission Permission
	server     *http.Server
	conns      map[*websocket.Conn]struct{}
}

// NewMotionReceiver creates a receiver in the prompt state.
func NewMotionReceiver(cfg MotionConfig, logger *log.Logger) *MotionReceiver {
	if cfg.Path == "" {
		cfg.Path = DefaultMotionConfig().Path
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MotionReceiver{
		cfg:    cfg,
		logger: logger,
		hub:    NewMotionHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Remote page is served from another origin
			},
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Hub returns the fan-out hub sessions subscribe to.
func (r *MotionReceiver) Hub() *MotionHub {
	return r.hub
}

// Permission returns the current access state.
func (r *MotionReceiver) Permission() Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.permission
}

// Request binds the listener and starts serving. It is a no-op once
// granted; a bind failure leaves motion permanently denied.
func (r *MotionReceiver) Request() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.permission {
	case PermissionGranted:
		return nil
	case PermissionDenied:
		return ErrPermissionDenied
	}

	ln, err := net.Listen("tcp", r.cfg.Addr)
	if err != nil {
		r.permission = PermissionDenied
		err = fmt.Errorf("%w: listening on %s: %v", ErrSensorUnavailable, r.cfg.Addr, err)
		r.logger.Warn("motion disabled", "err", err)
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(r.cfg.Path, r)
	r.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	r.permission = PermissionGranted

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("motion server stopped", "err", err)
		}
	}(r.server)

	r.logger.Info("motion receiver listening", "addr", ln.Addr().String(), "path", r.cfg.Path)
	return nil
}

// ServeHTTP upgrades a remote connection and publishes every sample it sends.
func (r *MotionReceiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("motion upgrade failed", "err", err)
		return
	}

	r.mu.Lock()
	r.conns[conn] = struct{}{}
	total := len(r.conns)
	r.mu.Unlock()
	r.logger.Info("motion remote connected", "remote", req.RemoteAddr, "total", total)

	defer func() {
		r.mu.Lock()
		delete(r.conns, conn)
		total := len(r.conns)
		r.mu.Unlock()
		conn.Close()
		r.logger.Info("motion remote disconnected", "remote", req.RemoteAddr, "total", total)
	}()

	for {
		var msg motionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Debug("motion read ended", "err", err)
			}
			return
		}
		if msg.Error != "" {
			r.logger.Warn("motion remote reported failure", "remote", req.RemoteAddr, "error", msg.Error)
			continue
		}
		r.hub.Publish(MotionSample{X: msg.X, Y: msg.Y, Z: msg.Z, At: time.Now()})
	}
}

// Close shuts the server down and drops every remote. A granted receiver
// returns to the prompt state so a later Request binds again; a denial
// stays.
func (r *MotionReceiver) Close() error {
	r.mu.Lock()
	srv := r.server
	r.server = nil
	if r.permission == PermissionGranted {
		r.permission = PermissionPrompt
	}
	for conn := range r.conns {
		conn.Close()
	}
	r.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
