package models

import (
	"regexp"
	"strings"
)

var (
	ampRe          = regexp.MustCompile(`&`)
	incorporatedRe = regexp.MustCompile(`\bINCORPORATED\b`)
	companyRe      = regexp.MustCompile(`\bCOMPANY\b`)
	llcRe          = regexp.MustCompile(`\bL\.?L\.?C\.?\b`)
	lpRe           = regexp.MustCompile(`\bL\.?P\.?\b`)
	corporationRe  = regexp.MustCompile(`\bCORPORATION\b`)
	punctRe        = regexp.MustCompile(`[.,]`)
	nonAlnumRe     = regexp.MustCompile(`[^A-Z0-9 ]+`)
	spacesRe       = regexp.MustCompile(`\s+`)
	legalSuffixRe  = regexp.MustCompile(`\b(LLC|L L C|LP|L P|PLC|LTD|LIMITED|INC|CORP|CORPORATION|HOLDINGS?|GROUP|CO|COMPANY)\b`)
)

// NormName canonicalizes an organization or person name for grouping and
// comparison: uppercase, legal suffixes shortened, punctuation and other
// non-alphanumerics collapsed to single spaces.
func NormName(s string) string {
	out := strings.ToUpper(s)
	out = ampRe.ReplaceAllString(out, " AND ")
	out = incorporatedRe.ReplaceAllString(out, " INC")
	out = companyRe.ReplaceAllString(out, " CO")
	out = llcRe.ReplaceAllString(out, " LLC")
	out = lpRe.ReplaceAllString(out, " LP")
	out = corporationRe.ReplaceAllString(out, " CORP")
	out = punctRe.ReplaceAllString(out, " ")
	out = nonAlnumRe.ReplaceAllString(out, " ")
	out = spacesRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// companyMisspellings are known bad spellings seen in caller input.
var companyMisspellings = map[string]string{
	"phizer":      "pfizer",
	"pfiser":      "pfizer",
	"pfzier":      "pfizer",
	"phiser":      "pfizer",
	"phier":       "pfizer",
	"phizzer":     "pfizer",
	"pfizer inc":  "pfizer",
	"pfizer, inc": "pfizer",
}

// NormalizeCompanyInput corrects known misspellings of a caller-supplied
// company name, otherwise returns the trimmed input.
func NormalizeCompanyInput(s string) string {
	t := strings.TrimSpace(s)
	if fixed, ok := companyMisspellings[strings.ToLower(t)]; ok {
		return fixed
	}
	return t
}

// CompanyNameVariants expands a company name into the spellings the
// registry is likely to hold: the normalized base, the base stripped of
// legal suffixes, and common "INC" punctuation forms. Variants shorter
// than 3 characters are dropped.
func CompanyNameVariants(company string) []string {
	base := NormName(company)
	short := strings.TrimSpace(spacesRe.ReplaceAllString(legalSuffixRe.ReplaceAllString(base, ""), " "))

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if len(s) >= 3 && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(base)
	add(short)
	if short != "" {
		add(short + " INC")
		add(short + " INC.")
		add(short + ", INC")
		add(short + ", INC.")
	}
	return out
}
