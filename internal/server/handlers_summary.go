package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sonsoflibertyy/lda/internal/clients/lda"
	"github.com/sonsoflibertyy/lda/internal/models"
)

func intParam(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolParam(r *http.Request, key string) bool {
	return r.URL.Query().Get(key) == "1"
}

// writeUpstreamError maps client errors onto gateway responses:
// upstream HTTP errors keep their original status and body, timeouts
// become 504, malformed payloads surface the raw text with the original
// status.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *lda.APIError
	if errors.As(err, &apiErr) {
		WriteJSON(w, apiErr.StatusCode, map[string]interface{}{
			"ok":       false,
			"error":    "upstream error",
			"upstream": apiErr.Message,
		})
		return
	}
	if errors.Is(err, lda.ErrGatewayTimeout) {
		WriteError(w, http.StatusGatewayTimeout, err.Error())
		return
	}
	var decErr *lda.DecodeError
	if errors.As(err, &decErr) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(decErr.StatusCode)
		w.Write([]byte(decErr.Body))
		return
	}
	WriteError(w, http.StatusBadGateway, err.Error())
}

// handleSummary handles GET /lda/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		q = strings.TrimSpace(r.URL.Query().Get("search"))
	}
	if q == "" {
		WriteError(w, http.StatusBadRequest, "Missing ?q=<company>")
		return
	}

	req := models.SummaryRequest{
		Query:            q,
		Quarters:         intParam(r, "quarters", 8),
		TreatLT5KAs5000:  strings.EqualFold(r.URL.Query().Get("treat_lt5k"), "5000"),
		IncludeLobbyists: boolParam(r, "include_lobbyists"),
		MaxDetail:        intParam(r, "max_detail", 10),
		Debug:            boolParam(r, "debug"),
		BaseURL:          requestBaseURL(r),
	}

	payload, err := s.app.Rollups.Summary(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}
