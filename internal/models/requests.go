package models

import "net/url"

// SummaryRequest is a periodic-filing rollup request.
type SummaryRequest struct {
	Query            string // company free-text term, required
	Quarters         int    // trailing-quarter window size, clamped 1..16
	TreatLT5KAs5000  bool   // substitute $5,000 for "<$5k" rows with no figure
	IncludeLobbyists bool
	MaxDetail        int    // filings to enrich with lobbyist detail, clamped 0..40
	Debug            bool   // attach diagnostic samples, totals unchanged
	BaseURL          string // caller origin, used for proxy detail links
}

// ContributionRollupRequest is a contribution rollup request.
type ContributionRollupRequest struct {
	Filters  url.Values // caller's upstream filter set
	Payee    string     // exact normalized-name pre-filter
	Honoree  string
	MaxRows  int
	MaxPages int
	MaxLinks int // supporting links kept per group
	Debug    bool
	BaseURL  string
}
