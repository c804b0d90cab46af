package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/sonsoflibertyy/lda/internal/clients/lda"
)

var (
	ld1AliasRe   = regexp.MustCompile(`(?i)^filings/ld1(/|$)`)
	registryHost = regexp.MustCompile(`(?i)(^|\.)lda\.senate\.gov$`)
	v1LinkRe     = regexp.MustCompile(`(?i)^/api/v1(/|$)`)
	publicLinkRe = regexp.MustCompile(`(?i)^/filings/api/public(/|$)`)
)

// Upstream response headers forwarded as-is on non-JSON passthrough.
var passthroughHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Cache-Control",
	"ETag",
	"Last-Modified",
	"Date",
}

// Upstream headers preserved alongside rewritten JSON bodies.
var exposedJSONHeaders = []string{
	"Cache-Control",
	"ETag",
	"Location",
	"Link",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
}

// handleProxy forwards /lda/* (and the legacy /api/lda/* alias) to the
// upstream registry with smart param rewrites, and maps pagination
// links in JSON responses back through the gateway.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/lda" || strings.HasPrefix(path, "/api/lda/") {
		path = strings.TrimPrefix(path, "/api")
	}

	base, err := url.Parse(s.app.Config.Upstream.BaseURL)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "invalid upstream base URL")
		return
	}

	sub := strings.TrimPrefix(path, "/lda")
	sub = strings.TrimPrefix(sub, "/")
	query := r.URL.Query()

	// LD-1 alias: /lda/filings/ld1 → /lda/filings/?form_type=LD-1.
	if ld1AliasRe.MatchString(sub) {
		sub = ld1AliasRe.ReplaceAllString(sub, "filings$1")
		query.Del("filing_type")
		if strings.TrimSpace(query.Get("form_type")) == "" {
			query.Set("form_type", "LD-1")
		}
	}

	if strings.HasPrefix(strings.ToLower(sub), "summary") {
		WriteError(w, http.StatusBadRequest, "Use /lda/summary at the gateway root.")
		return
	}

	upstream := *base
	upstream.Path = strings.TrimRight(base.Path, "/") + "/" + sub
	upstream.RawQuery = query.Encode()
	lda.ApplySmartParamRewrites(&upstream)

	s.forward(w, r, &upstream, base)
}

// forward relays the request upstream and rewrites pagination links in
// JSON responses. Non-JSON bodies stream through untouched with a
// trimmed header set.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, upstream *url.URL, base *url.URL) {
	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream.String(), body)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	req.Header.Set("Accept", "application/json")
	if key := s.app.Config.ResolveAPIKey(r.Header); key != "" {
		req.Header.Set("Authorization", "Token "+key)
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && body != nil {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := s.proxyClient.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("upstream", upstream.String()).Msg("Proxy request failed")
		WriteError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		copyHeaders(w.Header(), resp.Header, passthroughHeaders)
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, resp.Body)
		return
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "reading upstream response failed")
		return
	}

	copyHeaders(w.Header(), resp.Header, exposedJSONHeaders)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Upstream claimed JSON but sent something else; relay it.
		w.WriteHeader(resp.StatusCode)
		w.Write(raw)
		return
	}

	rewritten := rewritePayload(payload, requestBaseURL(r), r.URL, base)
	w.WriteHeader(resp.StatusCode)
	json.NewEncoder(w).Encode(rewritten)
}

func copyHeaders(dst http.Header, src http.Header, names []string) {
	for _, name := range names {
		if v := src.Get(name); v != "" {
			dst.Set(name, v)
		}
	}
}

// rewritePayload walks the decoded JSON tree and replaces every
// next/previous string with a gateway link, keeping the original under
// next_source/previous_source.
func rewritePayload(node interface{}, origin string, seed *url.URL, base *url.URL) interface{} {
	switch v := node.(type) {
	case []interface{}:
		for i, item := range v {
			v[i] = rewritePayload(item, origin, seed, base)
		}
		return v
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			if key == "next" || key == "previous" {
				if link, ok := val.(string); ok {
					out[key+"_source"] = link
					out[key] = mapUpstreamLink(link, origin, seed, base)
					continue
				}
			}
			out[key] = rewritePayload(val, origin, seed, base)
		}
		return out
	}
	return node
}

// mapUpstreamLink converts an upstream next/previous URL into a gateway
// /lda/... URL with filter continuity applied. Unrecognized links pass
// through unchanged.
func mapUpstreamLink(link, origin string, seed *url.URL, base *url.URL) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	parsed := base.ResolveReference(ref)

	host := parsed.Hostname()
	if host != base.Hostname() && !registryHost.MatchString(host) {
		return link
	}

	var rest string
	switch {
	case v1LinkRe.MatchString(parsed.Path):
		rest = v1LinkRe.ReplaceAllString(parsed.Path, "$1")
	case publicLinkRe.MatchString(parsed.Path):
		rest = publicLinkRe.ReplaceAllString(parsed.Path, "$1")
	default:
		return link
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}

	proxied, err := url.Parse(origin + "/lda" + rest)
	if err != nil {
		return link
	}
	proxied.RawQuery = parsed.RawQuery
	lda.CarryForwardFilters(proxied, seed, parsed.Path)
	return proxied.String()
}
