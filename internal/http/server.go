package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"studiodesk/internal/log"
	"studiodesk/internal/middleware/ratelimit"
	"studiodesk/internal/middleware/security"
	"studiodesk/internal/middleware/trace"
	"studiodesk/internal/services"
)

type Server struct {
	http.Server

	ledger   *services.LedgerService
	messages *services.MessageService

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, logger *log.Logger, ledger *services.LedgerService, messages *services.MessageService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger:      ledger,
		messages:    messages,
		detector:    security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		startedAt:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/analytics", s.handleAnalytics)
	mux.HandleFunc("/api/messages", s.handleMessages)
	mux.HandleFunc("/api/admin/clear", s.handleClearAll)
	mux.HandleFunc("/api/admin/export", s.handleExport)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Innermost to outermost: rate limit, flag probes, recover panics,
	// trace, request logger, then headers on everything that leaves.
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, nil)(handler)
	handler = s.flagSuspicious(handler)
	handler = trace.Recovery(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger.WithComponent(log.ComponentHTTP))(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	s.Server.Handler = handler

	return s
}

// flagSuspicious logs probe-looking requests. They are served normally;
// the point is the audit trail, not blocking.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request pattern",
				log.FieldRequestID, trace.GetRequestID(r.Context()),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
