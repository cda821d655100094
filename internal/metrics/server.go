// SPDX-License-Identifier: MPL-2.0

package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// StateCreated means Start has not been called.
	StateCreated State = iota
	// StateRunning means the listener is bound and requests are served.
	StateRunning
	// StateStopped is terminal: Stop completed.
	StateStopped
	// StateFailed is terminal: binding or serving failed.
	StateFailed
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 2 * time.Second
)

type (
	// State is the lifecycle state of a Server.
	State int32

	// Server serves a handler on a TCP address. A Server is single-use: once
	// stopped or failed, create a new one.
	Server struct {
		addr    string
		handler http.Handler
		logger  *log.Logger

		state    atomic.Int32
		mu       sync.Mutex
		srv      *http.Server
		listener net.Listener
		done     chan struct{}
		lastErr  error
	}
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewServer creates a server for handler on addr. A nil logger discards output.
func NewServer(addr string, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{addr: addr, handler: handler, logger: logger, done: make(chan struct{})}
	s.state.Store(int32(StateCreated))
	return s
}

// State returns the current state.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Start binds the listener and serves in the background. Bind errors, such as
// an address already in use, are returned here rather than logged later.
func (s *Server) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return s.fail(fmt.Errorf("context cancelled before start: %w", err))
	}
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return fmt.Errorf("cannot start server in state %s", s.State())
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return s.fail(fmt.Errorf("listen on %s: %w", s.addr, err))
	}

	s.mu.Lock()
	s.listener = ln
	s.srv = &http.Server{Handler: s.handler, ReadHeaderTimeout: readHeaderTimeout}
	srv := s.srv
	s.mu.Unlock()

	s.logger.Info("serving metrics", "addr", ln.Addr().String())
	go func() {
		defer close(s.done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", "err", err)
			_ = s.fail(err)
		}
	}()
	return nil
}

// Addr returns the bound address, which differs from the configured one when
// the port was 0. It is empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully. Stopping a server that never started,
// or stopping twice, is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if s.state.CompareAndSwap(int32(StateCreated), int32(StateStopped)) {
		return nil
	}
	if !s.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		return nil
	}

	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	<-s.done
	return err
}

// LastError returns the error that moved the server to StateFailed.
func (s *Server) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Server) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.state.Store(int32(StateFailed))
	return err
}
