package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/sonsoflibertyy/lda/internal/models"
)

// Query keys consumed by the gateway itself; everything else is
// forwarded to the upstream /contributions/ listing as a filter.
var rollupControlKeys = map[string]bool{
	"max_rows":  true,
	"max_pages": true,
	"max_links": true,
	"debug":     true,
}

// handleContributionRollup handles GET /lda/contributions/rollup.
func (s *Server) handleContributionRollup(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	filters := url.Values{}
	for key, vals := range r.URL.Query() {
		if rollupControlKeys[key] {
			continue
		}
		for _, v := range vals {
			if strings.TrimSpace(v) == "" {
				continue
			}
			filters.Add(key, v)
		}
	}

	req := models.ContributionRollupRequest{
		Filters:  filters,
		Payee:    strings.TrimSpace(r.URL.Query().Get("payee")),
		Honoree:  strings.TrimSpace(r.URL.Query().Get("honoree")),
		MaxRows:  intParam(r, "max_rows", 0),
		MaxPages: intParam(r, "max_pages", 0),
		MaxLinks: intParam(r, "max_links", 0),
		Debug:    boolParam(r, "debug"),
		BaseURL:  requestBaseURL(r),
	}

	payload, err := s.app.Rollups.Contributions(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, payload)
}
