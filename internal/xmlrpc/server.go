package xmlrpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// MaxRequestBytes caps the size of an inbound methodCall.
const MaxRequestBytes = 1 << 20

var (
	// ErrServerStarted is returned by Start when the server has already been started.
	ErrServerStarted = errors.New("xmlrpc: server already started")

	// ErrServerNotStarted is returned by Stop before Start.
	ErrServerNotStarted = errors.New("xmlrpc: server not started")

	// ErrRateLimited is the cause carried by the fault for throttled calls.
	ErrRateLimited = errors.New("xmlrpc: rate limited")
)

// HandlerFunc serves one method. It must return promptly: the endpoint
// holds the caller's connection until it does.
type HandlerFunc func(ctx context.Context, params []interface{}) (interface{}, error)

// Option configures a Server.
type Option func(*Server)

// WithRateLimit throttles inbound calls to limit per second with the given
// burst. A non-positive limit disables throttling.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *Server) {
		if limit <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithReadHeaderTimeout overrides the HTTP read header timeout.
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.readHeaderTimeout = d
	}
}

// Server is an XML-RPC endpoint. Calls are POSTed to "/"; other paths can be
// mounted with Handle before Start.
type Server struct {
	addr              string
	logger            log.Logger
	limiter           *rate.Limiter
	readHeaderTimeout time.Duration

	mux *http.ServeMux

	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	lifeMu   sync.Mutex
	started  bool
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
	serveErr error
}

// NewServer creates a server that will listen on addr.
func NewServer(addr string, logger log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	s := &Server{
		addr:              addr,
		logger:            logger,
		readHeaderTimeout: 5 * time.Second,
		mux:               http.NewServeMux(),
		handlers:          make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.Handle("/", http.HandlerFunc(s.serveRPC))
	return s
}

// Register binds a method name to a handler, replacing any previous binding.
func (s *Server) Register(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Handle mounts an auxiliary HTTP handler, such as /metrics.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Start binds the listen address and serves in the background. A server can
// be started at most once.
func (s *Server) Start() error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.started {
		return ErrServerStarted
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("xmlrpc: listen %s: %w", s.addr, err)
	}

	s.started = true
	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		err := s.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("xmlrpc serve failed", log.Err(err))
			s.serveErr = err
		}
	}()

	s.logger.Info("xmlrpc endpoint listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down gracefully, closing it outright when ctx
// expires first.
func (s *Server) Stop(ctx context.Context) error {
	s.lifeMu.Lock()
	srv, done := s.srv, s.done
	s.lifeMu.Unlock()

	if srv == nil {
		return ErrServerNotStarted
	}

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Warn("xmlrpc graceful shutdown timed out, closing", log.Err(err))
		_ = srv.Close()
	}
	<-done
	s.logger.Info("xmlrpc endpoint stopped")
	return s.serveErr
}

// ServeHTTP lets the server be mounted in a test or external mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.writeFault(w, &Fault{Code: FaultRateLimited, Message: ErrRateLimited.Error()})
		return
	}

	method, params, err := DecodeCall(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		s.writeFault(w, asFault(err))
		return
	}

	s.mu.RLock()
	h, ok := s.handlers[method]
	s.mu.RUnlock()
	if !ok {
		s.writeFault(w, &Fault{Code: FaultMethodNotFound, Message: fmt.Sprintf("unknown method %q", method)})
		return
	}

	result, err := h(r.Context(), params)
	if err != nil {
		s.logger.Debug("xmlrpc call failed", log.String("method", method), log.Err(err))
		s.writeFault(w, asFault(err))
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if err := EncodeResponse(w, result); err != nil {
		s.logger.Error("xmlrpc encode response", log.String("method", method), log.Err(err))
	}
}

func (s *Server) writeFault(w http.ResponseWriter, f *Fault) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if err := EncodeFault(w, f); err != nil {
		s.logger.Error("xmlrpc encode fault", log.Err(err))
	}
}

func asFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Code: FaultApplication, Message: err.Error()}
}
