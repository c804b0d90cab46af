package lda

import (
	"net/url"
	"sort"
	"strings"
)

// pagingParamKeys are the paging and sort knobs, across both flavors.
// They never count as filters.
var pagingParamKeys = map[string]bool{
	"page":      true,
	"page_size": true,
	"per_page":  true,
	"ordering":  true,
	"sort":      true,
}

// paramSynonyms pairs the two flavors' paging and sort names so the
// continuity pass never sets both variants.
var paramSynonyms = map[string][]string{
	"per_page":  {"page_size"},
	"page_size": {"per_page"},
	"sort":      {"ordering"},
	"ordering":  {"sort"},
}

// Exclusive filter groups for contribution records: at most one member
// of each group should be active, and group order puts IDs before names.
var contributionGroups = [][]string{
	{"registrant_id", "registrant", "registrant_name"},
	{"lobbyist_id", "contributor", "contributor_name"},
	{"payee"},
	{"honoree"},
}

// contributionSecondaryKeys are date/year constraints that also qualify
// a contribution query and must survive across pages.
var contributionSecondaryKeys = []string{
	"contribution_year",
	"contribution_date",
	"contribution_date_after",
	"contribution_date_before",
}

// Exclusive filter groups for periodic filings.
var filingGroups = [][]string{
	{"registrant_id", "registrant", "registrant_name"},
	{"client_id", "client", "client_name"},
}

// Unrestricted date window used as a last resort so a carried-forward
// contribution query stays syntactically valid.
const (
	fallbackDateAfter  = "1900-01-01"
	fallbackDateBefore = "2100-01-01"
)

func hasParamOrSynonym(p url.Values, key string) bool {
	if hasMeaningful(p, key) {
		return true
	}
	for _, alt := range paramSynonyms[key] {
		if hasMeaningful(p, alt) {
			return true
		}
	}
	return false
}

func hasNonPagingFilter(p url.Values) bool {
	for key := range p {
		if pagingParamKeys[key] {
			continue
		}
		if hasMeaningful(p, key) {
			return true
		}
	}
	return false
}

// hasQualifyingContribFilter reports whether the query already carries a
// qualifying contribution filter. Free-text q/search does not count.
func hasQualifyingContribFilter(p url.Values) bool {
	for _, group := range contributionGroups {
		if hasAnyMeaningful(p, group) {
			return true
		}
	}
	return hasAnyMeaningful(p, contributionSecondaryKeys)
}

func sortedKeys(p url.Values) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// copySeedFilters copies one value per exclusive group from seed to
// target, then copies every remaining non-paging seed filter absent
// from the target.
func copySeedFilters(target, seed url.Values, groups [][]string) {
	grouped := make(map[string]bool)
	for _, group := range groups {
		for _, key := range group {
			grouped[key] = true
		}
	}

	for _, group := range groups {
		if hasAnyMeaningful(target, group) {
			continue
		}
		for _, key := range group {
			if hasMeaningful(seed, key) {
				target.Set(key, seed.Get(key))
				break
			}
		}
	}

	for _, key := range sortedKeys(seed) {
		if pagingParamKeys[key] || grouped[key] {
			continue
		}
		if !hasMeaningful(seed, key) || hasMeaningful(target, key) {
			continue
		}
		target.Set(key, seed.Get(key))
	}
}

// normalizeExclusiveGroups drops weaker name-typed members when an
// ID-typed member of the same group is present. IDs are authoritative
// and narrower.
func normalizeExclusiveGroups(p url.Values) {
	if hasMeaningful(p, "registrant_id") {
		p.Del("registrant")
		p.Del("registrant_name")
	}
	if hasMeaningful(p, "lobbyist_id") {
		p.Del("contributor")
		p.Del("contributor_name")
	}
}

// dedupePagingSynonyms prefers the versioned-flavor key names.
func dedupePagingSynonyms(p url.Values) {
	if p.Has("page_size") && p.Has("per_page") {
		p.Del("per_page")
	}
	if p.Has("ordering") && p.Has("sort") {
		p.Del("sort")
	}
}

// CarryForwardFilters mutates an upstream-issued next/previous URL so it
// remains a valid continuation of the caller's original query: paging
// knobs and dropped filters are copied from the seed, exclusive groups
// resolved, and a resource-family qualifying filter guaranteed. Any
// internal failure leaves the upstream-provided URL unmodified.
func CarryForwardFilters(target, seed *url.URL, upstreamPath string) {
	if target == nil || seed == nil {
		return
	}
	if q, ok := carryForward(target.Query(), seed.Query(), upstreamPath); ok {
		target.RawQuery = q.Encode()
	}
}

func carryForward(target, seed url.Values, upstreamPath string) (out url.Values, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = nil, false
		}
	}()

	// Paging knobs from seed when the target lacks the key and its synonym.
	for _, key := range []string{"page", "page_size", "per_page", "ordering", "sort"} {
		if !hasMeaningful(seed, key) || hasParamOrSynonym(target, key) {
			continue
		}
		target.Set(key, seed.Get(key))
	}

	p := strings.ToLower(v1PrefixRe.ReplaceAllString(upstreamPath, "/"))

	switch {
	case strings.HasPrefix(p, "/contributions"):
		copySeedFilters(target, seed, contributionGroups)
		for _, key := range contributionSecondaryKeys {
			if hasMeaningful(seed, key) && !hasMeaningful(target, key) {
				target.Set(key, seed.Get(key))
			}
		}

		if !hasQualifyingContribFilter(target) {
			injected := false

			// Prefer a seed qualifier inside any group, IDs first via
			// group member order.
			for _, group := range contributionGroups {
				for _, key := range group {
					if hasMeaningful(seed, key) {
						target.Set(key, seed.Get(key))
						injected = true
						break
					}
				}
				if injected {
					break
				}
			}

			// Else promote the free-text term into a registrant filter.
			if !injected {
				term := ""
				if hasMeaningful(seed, "q") {
					term = strings.TrimSpace(seed.Get("q"))
				} else if hasMeaningful(seed, "search") {
					term = strings.TrimSpace(seed.Get("search"))
				}
				if term != "" {
					target.Set("registrant", term)
					injected = true
				}
			}

			// Last resort: an unrestricted date window keeps the query
			// syntactically valid.
			if !injected {
				if !hasMeaningful(target, "contribution_date_after") {
					target.Set("contribution_date_after", fallbackDateAfter)
				}
				if !hasMeaningful(target, "contribution_date_before") {
					target.Set("contribution_date_before", fallbackDateBefore)
				}
			}
		}

		normalizeExclusiveGroups(target)
		dedupePagingSynonyms(target)

	case strings.HasPrefix(p, "/filings"):
		copySeedFilters(target, seed, filingGroups)

		// Ensure at least one non-paging filter persists across pages.
		if !hasNonPagingFilter(target) {
			for _, key := range sortedKeys(seed) {
				if pagingParamKeys[key] || !hasMeaningful(seed, key) || hasMeaningful(target, key) {
					continue
				}
				target.Set(key, seed.Get(key))
				break
			}
		}

		dedupePagingSynonyms(target)
	}

	return target, true
}
