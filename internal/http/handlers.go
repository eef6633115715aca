package http

import (
	"net/http"
	"time"

	"studiodesk/internal/core"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		respondMethodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	txn, err := s.ledger.RecordTransaction(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, txn)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")

	transactions, err := s.ledger.ListTransactions(r.Context(), period)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMethodNotAllowed(w, "GET")
		return
	}

	summary, err := s.ledger.Summary(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listMessages(w, r)
	case http.MethodPost:
		s.postMessage(w, r)
	default:
		respondMethodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var in core.MessageInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	msg, err := s.messages.PostMessage(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.messages.ListMessages(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, msgs)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMethodNotAllowed(w, "GET")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMethodNotAllowed(w, "GET")
		return
	}

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.ledger.Ping(r.Context()); err != nil {
		checks["storage"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	metrics := s.tracer.GetMetrics()
	checks["requests"] = map[string]any{
		"total":               metrics.TotalRequests,
		"avg_response_us":     metrics.AverageResponseTime(),
		"suspicious_requests": s.detector.GetMetrics().SuspiciousRequests,
	}

	respondJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}
