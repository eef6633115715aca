package http

import (
	"fmt"
	"net/http"
	"time"

	"studiodesk/internal/export"
)

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		respondMethodNotAllowed(w, "DELETE")
		return
	}

	var req struct {
		ConfirmationToken string `json:"confirmationToken"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	res, err := s.ledger.ClearAll(r.Context(), req.ConfirmationToken)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":      "all data cleared",
		"backup":       res.Backup,
		"transactions": res.Transactions,
		"messages":     res.Messages,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMethodNotAllowed(w, "GET")
		return
	}

	period := r.URL.Query().Get("period")
	format := export.NormalizeFormat(r.URL.Query().Get("format"))

	transactions, err := s.ledger.ListTransactions(r.Context(), period)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	now := time.Now()
	var (
		body        []byte
		contentType string
	)
	switch format {
	case export.FormatCSV:
		body = []byte(export.CSV(transactions))
		contentType = "text/csv; charset=utf-8"
	case export.FormatXLSX:
		body, err = export.XLSX(transactions, period, now)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		body, err = export.JSON(transactions, period, now)
		contentType = "application/json"
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(period, format, now)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
