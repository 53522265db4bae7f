package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// Backend answers requests from the automaton in service.
// Thread safety is the implementor's responsibility.
type Backend interface {
	// Match scans text, charset-decoding it first when decode is set.
	Match(text []byte, leftmost, decode bool) (hits []MatchHit, charset string, err error)
	// Info describes the set in service.
	Info() (set string, patterns, nodes, reloads int)
}

// Server listens on a Unix socket and serves match requests.
type Server struct {
	backend  Backend
	sockPath string
	ln       net.Listener
	started  time.Time

	closing    chan struct{}
	shutdownCh chan struct{} // closed on a remote shutdown request
	shutdown   sync.Once
	stop       sync.Once
	conns      sync.WaitGroup
}

// NewServer creates a server answering from backend.
func NewServer(backend Backend, sockPath string) *Server {
	return &Server{
		backend:    backend,
		sockPath:   sockPath,
		closing:    make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start binds the socket and starts accepting. A socket file nobody
// answers on is stale and gets replaced.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		if conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond); err == nil {
			conn.Close()
			return fmt.Errorf("watcher already serving at %s", s.sockPath)
		}
		if err := os.Remove(s.sockPath); err != nil {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.started = time.Now()

	s.conns.Add(1)
	go s.serve()
	return nil
}

// Stop closes the listener, waits for open connections, and removes the
// socket file. Idempotent.
func (s *Server) Stop() error {
	s.stop.Do(func() {
		close(s.closing)
		if s.ln != nil {
			s.ln.Close()
		}
		s.conns.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh is closed when a client sends a shutdown request. The watcher
// selects on it alongside OS signals.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) serve() {
	defer s.conns.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return
			default:
				continue
			}
		}
		s.conns.Add(1)
		go s.handle(conn)
	}
}

// handle answers requests on conn until the client hangs up, sends
// something that is not JSON, or the server stops.
func (s *Server) handle(conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	hungUp := make(chan struct{})
	defer close(hungUp)
	go func() {
		select {
		case <-s.closing:
			conn.SetDeadline(time.Now())
		case <-hungUp:
		}
	}()

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			var typeErr *json.UnmarshalTypeError
			var synErr *json.SyntaxError
			switch {
			case errors.As(err, &typeErr):
				enc.Encode(Response{Error: "invalid request: " + err.Error()})
				continue
			case errors.As(err, &synErr):
				enc.Encode(Response{Error: "invalid request JSON"})
			}
			return
		}

		if req.Method == MethodShutdown {
			s.shutdown.Do(func() { close(s.shutdownCh) })
			enc.Encode(s.dispatch(req))
			return
		}
		if err := enc.Encode(s.dispatch(req)); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{ID: req.ID}
	var err error
	switch req.Method {
	case MethodMatch:
		resp.Result, err = s.match(req.Params)
	case MethodHealth:
		resp.Result = s.health()
	case MethodShutdown:
		resp.Result = struct{}{}
	default:
		err = fmt.Errorf("unknown method: %s", req.Method)
	}
	if err != nil {
		resp.Result, resp.Error = nil, err.Error()
	}
	return resp
}

func (s *Server) match(raw json.RawMessage) (*MatchResult, error) {
	var params MatchParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid match params")
	}

	began := time.Now()
	hits, charset, err := s.backend.Match(params.Text, params.Leftmost, params.Decode)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []MatchHit{}
	}
	set, _, _, _ := s.backend.Info()
	return &MatchResult{
		Set:     set,
		Charset: charset,
		Hits:    hits,
		Count:   len(hits),
		Elapsed: time.Since(began).String(),
	}, nil
}

func (s *Server) health() *HealthResult {
	set, patterns, nodes, reloads := s.backend.Info()
	return &HealthResult{
		Status:   "ok",
		Set:      set,
		Patterns: patterns,
		Nodes:    nodes,
		Reloads:  reloads,
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	}
}
