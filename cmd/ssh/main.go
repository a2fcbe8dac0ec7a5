package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/peckplay/internal/config"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/loop"
	"github.com/tomz197/peckplay/internal/loop/client"
	applog "github.com/tomz197/peckplay/internal/logging"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

// Shared host - one set of sensors for every SSH session
var (
	host         *loop.Host
	logger       *log.Logger
	cancelServer context.CancelFunc
	serverOnce   sync.Once
)

func main() {
	os.Exit(run())
}

// run serves until a signal or a fatal server error and returns the exit
// code. Deferred cleanup (the log file) runs before the process exits.
func run() int {
	settings, err := config.LoadSettings(config.GetEnv("PECK_CONFIG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "peckplay-ssh: %v\n", err)
		return 1
	}

	var closer io.Closer
	logger, closer, err = applog.New(applog.Options{
		Level:  settings.Log.Level,
		File:   settings.Log.File,
		Prefix: "ssh",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "peckplay-ssh: %v\n", err)
		return 1
	}
	defer closer.Close()

	addrHost := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	logger.Info("ssh config", "host", addrHost, "port", port, "hostKeyPath", hostKeyPath, "overrides", settings.Overrides)

	// Initialize and start the shared sensor server
	serverOnce.Do(func() {
		var ctx context.Context
		ctx, cancelServer = context.WithCancel(context.Background())
		host = loop.NewHost(settings, logger)
		go host.Server.Run(ctx)
		logger.Info("sensor server started")
	})

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(addrHost, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY so taps reach the debouncer without batching
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Error("failed to create server", "err", err)
		return 1
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	logger.Info("starting SSH server", "addr", net.JoinHostPort(addrHost, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	code := waitForStop(done, serveErr)

	// Notify sessions and wait for them to leave, then release the sensors
	if host != nil {
		logger.Info("notifying connected sessions about shutdown")
		host.Server.Shutdown(15 * time.Second)
		cancelServer()
		if err := host.Close(); err != nil {
			logger.Warn("closing sensors", "err", err)
		}
		logger.Info("sensor server stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
		code = 1
	}
	return code
}

// waitForStop blocks until a signal or a serve failure. It returns the exit
// code: 0 for a signal, 1 when the listener failed.
func waitForStop(done <-chan os.Signal, serveErr <-chan error) int {
	select {
	case <-done:
		logger.Info("shutting down server")
		return 0
	case err := <-serveErr:
		logger.Error("server error", "err", err)
		return 1
	}
}

// gameMiddleware handles SSH sessions and runs one playground per session.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		logger.Info("new session", "user", sess.User(), "term", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		clientOpts, err := host.SessionOptions(sess.User(), sizeTracker.getSize)
		if err != nil {
			fmt.Fprintf(sess, "Error: %v\n", err)
			return
		}

		reader := bufio.NewReader(sess)
		c := client.NewClient(host.Server, reader, sess, clientOpts)
		if err := c.Run(sess.Context()); err != nil {
			logger.Error("session error", "user", sess.User(), "err", err)
		}

		logger.Info("session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
