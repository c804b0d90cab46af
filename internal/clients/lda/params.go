package lda

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// The registry exposes two parameter conventions side by side: the
// versioned flavor (page_size/ordering/search) under /api/v1, and the
// legacy public flavor (per_page/sort/q) under /filings/api/public.
var (
	v1PathRe     = regexp.MustCompile(`(?i)^/api/v1(/|$)`)
	publicPathRe = regexp.MustCompile(`(?i)^/filings/api/public(/|$)`)
	v1PrefixRe   = regexp.MustCompile(`(?i)^/api/v1/?`)
)

// filingsQualifyingKeys are the filters the versioned /filings endpoint
// accepts as sufficiently narrow once paging advances past page 1.
// Free-text search and form_type do not count.
var filingsQualifyingKeys = []string{
	"registrant_name",
	"client_name",
	"registrant_id",
	"client_id",
	"filing_year",
	"filing_period",
	"dt_posted_after",
	"dt_posted_before",
	"filing_uuid",
	"house_registrant_id",
	"client_id_number",
}

// nameMisspellings are known bad spellings of company names seen in
// caller queries, corrected before they reach the upstream.
var nameMisspellings = map[string]string{
	"phizer":  "pfizer",
	"pfiser":  "pfizer",
	"pfzier":  "pfizer",
	"phiser":  "pfizer",
	"phier":   "pfizer",
	"phizzer": "pfizer",
}

// hasMeaningful reports whether key is present with a non-blank value.
// Blank values are treated as absent throughout the rewrite logic.
func hasMeaningful(p url.Values, key string) bool {
	return p.Has(key) && strings.TrimSpace(p.Get(key)) != ""
}

// ApplySmartParamRewrites normalizes an outbound upstream query in place:
// year-key aliases, company-name misspellings, paging/sort/search synonym
// mapping for the target flavor, and synthesis of a qualifying filter for
// /filings requests that have paged past page 1 on free text alone.
// Rewriting is best effort: any internal failure leaves the URL as-is.
func ApplySmartParamRewrites(u *url.URL) {
	if q, ok := rewriteQuery(u.Path, u.Query()); ok {
		u.RawQuery = q.Encode()
	}
}

func rewriteQuery(path string, p url.Values) (out url.Values, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = nil, false
		}
	}()

	isV1 := v1PathRe.MatchString(path)
	isPublic := publicPathRe.MatchString(path)
	apiPath := strings.ToLower(v1PrefixRe.ReplaceAllString(path, "/"))

	// Year-key aliases: callers use report_year/year interchangeably.
	if !p.Has("filing_year") {
		if p.Has("report_year") {
			p.Set("filing_year", p.Get("report_year"))
		} else if p.Has("year") {
			p.Set("filing_year", p.Get("year"))
		}
	}

	fixMisspelling := func(key string) {
		if !p.Has(key) {
			return
		}
		if fixed, found := nameMisspellings[strings.ToLower(strings.TrimSpace(p.Get(key)))]; found {
			p.Set(key, fixed)
		}
	}
	if strings.HasPrefix(apiPath, "/clients") {
		fixMisspelling("client_name")
	}
	if strings.HasPrefix(apiPath, "/registrants") {
		fixMisspelling("registrant_name")
	}
	if strings.HasPrefix(apiPath, "/filings") {
		fixMisspelling("client_name")
		fixMisspelling("registrant_name")
	}

	switch {
	case isV1:
		if p.Has("per_page") && !p.Has("page_size") {
			p.Set("page_size", p.Get("per_page"))
		}
		if p.Has("sort") && !p.Has("ordering") {
			p.Set("ordering", p.Get("sort"))
		}

		if strings.HasPrefix(apiPath, "/filings") {
			if p.Has("q") && !p.Has("search") {
				p.Set("search", p.Get("q"))
			}

			// The versioned flavor rejects page>1 requests unless a
			// qualifying filter is present.
			pageNum, _ := strconv.Atoi(strings.TrimSpace(p.Get("page")))
			if pageNum > 1 && !hasAnyMeaningful(p, filingsQualifyingKeys) {
				term := strings.TrimSpace(p.Get("search"))
				if term == "" {
					term = strings.TrimSpace(p.Get("q"))
				}
				// registrant_name works well for company-style terms.
				if term != "" && !p.Has("registrant_name") && !p.Has("client_name") {
					p.Set("registrant_name", term)
				}
			}
		}

		if p.Has("q") && p.Has("search") && p.Get("q") == p.Get("search") {
			p.Del("q")
		}

	case isPublic:
		if p.Has("page_size") && !p.Has("per_page") {
			p.Set("per_page", p.Get("page_size"))
		}
		if p.Has("ordering") && !p.Has("sort") {
			p.Set("sort", p.Get("ordering"))
		}
		if p.Has("search") && !p.Has("q") {
			p.Set("q", p.Get("search"))
		}
		if p.Has("search") && p.Has("q") && p.Get("search") == p.Get("q") {
			p.Del("search")
		}
	}

	return p, true
}

func hasAnyMeaningful(p url.Values, keys []string) bool {
	for _, k := range keys {
		if hasMeaningful(p, k) {
			return true
		}
	}
	return false
}
