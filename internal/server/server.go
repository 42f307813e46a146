// Package server serves the rendered treemap bundle over HTTP and can
// re-run the analysis when the watched tree changes.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cyclomap/cyclo/internal/debug"
)

// StaticServer serves one directory of pre-rendered output files. The
// stdlib file server handles request parsing, Content-Type and 404s, so
// malformed request lines degrade to error responses instead of taking
// the process down.
type StaticServer struct {
	dir      string
	listener net.Listener
	server   *http.Server
	mu       sync.Mutex
	running  bool
}

// NewStaticServer creates a server for the bundle directory.
func NewStaticServer(dir string) *StaticServer {
	return &StaticServer{dir: dir}
}

// Start binds the listener and begins serving. port 0 asks the OS for a
// free port; Addr reports the bound address either way.
func (s *StaticServer) Start(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.dir)))

	s.listener = listener
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.running = true

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			debug.LogServe("serve loop ended: %v\n", err)
		}
	}()

	debug.LogServe("serving %s at http://%s/\n", s.dir, listener.Addr())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *StaticServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *StaticServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	return s.server.Shutdown(ctx)
}
