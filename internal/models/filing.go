package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Filing is a raw periodic-filing record as returned by the registry.
// All fields are optional; accessor methods implement the ordered
// fallbacks for identity, period, and name resolution.
type Filing struct {
	FilingUUID        FlexString `json:"filing_uuid"`
	ID                FlexString `json:"id"`
	FilingType        string     `json:"filing_type"`
	FilingTypeDisplay string     `json:"filing_type_display"`
	FilingPeriod      string     `json:"filing_period"`

	ReportYear    FlexString `json:"report_year"`
	FilingYear    FlexString `json:"filing_year"`
	Year          FlexString `json:"year"`
	ReportQuarter FlexString `json:"report_quarter"`
	Quarter       FlexString `json:"quarter"`

	RegistrantID   FlexString `json:"registrant_id"`
	RegistrantName string     `json:"registrant_name"`
	Registrant     *Party     `json:"registrant"`
	ClientID       FlexString `json:"client_id"`
	ClientName     string     `json:"client_name"`
	Client         *Party     `json:"client"`

	Income             Amount   `json:"income"`
	Expenses           Amount   `json:"expenses"`
	IncomeLessThan5K   FlexBool `json:"income_less_than_5k"`
	ExpensesLessThan5K FlexBool `json:"expenses_less_than_5k"`
	LessThan5K         FlexBool `json:"less_than_5k"`

	DtPosted          string `json:"dt_posted"`
	FiledDate         string `json:"filed_date"`
	FilingDocumentURL string `json:"filing_document_url"`
}

// Party is a nested registrant or client object.
type Party struct {
	ID               FlexString `json:"id"`
	RegistrantID     FlexString `json:"registrant_id"`
	ClientID         FlexString `json:"client_id"`
	Name             string     `json:"name"`
	RegistrantName   string     `json:"registrant_name"`
	ClientName       string     `json:"client_name"`
	OrganizationName string     `json:"organization_name"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// UUID returns the filing identity: filing_uuid, falling back to id.
func (f *Filing) UUID() string {
	return firstNonEmpty(f.FilingUUID.String(), f.ID.String())
}

// RegistrantDisplayName resolves the registrant name across flat and
// nested field shapes.
func (f *Filing) RegistrantDisplayName() string {
	if f.Registrant != nil {
		return firstNonEmpty(f.RegistrantName, f.Registrant.RegistrantName,
			f.Registrant.OrganizationName, f.Registrant.Name)
	}
	return strings.TrimSpace(f.RegistrantName)
}

// ClientDisplayName resolves the client name across flat and nested shapes.
func (f *Filing) ClientDisplayName() string {
	if f.Client != nil {
		return firstNonEmpty(f.ClientName, f.Client.ClientName,
			f.Client.OrganizationName, f.Client.Name)
	}
	return strings.TrimSpace(f.ClientName)
}

func (f *Filing) registrantIdentity() string {
	if f.Registrant != nil {
		return firstNonEmpty(f.RegistrantID.String(), f.Registrant.RegistrantID.String(), f.Registrant.ID.String())
	}
	return f.RegistrantID.String()
}

func (f *Filing) clientIdentity() string {
	if f.Client != nil {
		return firstNonEmpty(f.ClientID.String(), f.Client.ClientID.String(), f.Client.ID.String())
	}
	return f.ClientID.String()
}

// namedPeriods maps the registry's filing_period enumeration to a quarter
// number. mid_year and year_end are historical semiannual aliases.
var namedPeriods = map[string]int{
	"first_quarter":  1,
	"second_quarter": 2,
	"third_quarter":  3,
	"fourth_quarter": 4,
	"mid_year":       2,
	"year_end":       4,
}

var (
	digitsRe         = regexp.MustCompile(`[^\d]`)
	displayQuarterRe = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\s+Quarter`)
)

func (f *Filing) yearString() string {
	return firstNonEmpty(f.ReportYear.String(), f.FilingYear.String(), f.Year.String())
}

// quarterString resolves the quarter number in precedence order:
// explicit quarter field, named period enum, "Nth Quarter" display text,
// then the posting date's calendar month. Empty when none apply.
func (f *Filing) quarterString() string {
	if q := digitsRe.ReplaceAllString(firstNonEmpty(f.ReportQuarter.String(), f.Quarter.String()), ""); q != "" {
		return q
	}
	if f.FilingPeriod != "" {
		if n, ok := namedPeriods[strings.ToLower(strings.TrimSpace(f.FilingPeriod))]; ok {
			return fmt.Sprintf("%d", n)
		}
	}
	if m := displayQuarterRe.FindStringSubmatch(f.FilingTypeDisplay); m != nil {
		return m[1]
	}
	if t := ParseTime(f.DtPosted); !t.IsZero() {
		return fmt.Sprintf("%d", (int(t.UTC().Month())-1)/3+1)
	}
	return ""
}

// YearQuarter derives the canonical "YYYY-Qn" display key for the filing.
// Returns "" when the period cannot be determined; such rows are excluded
// from quarter totals but still count as scanned.
func (f *Filing) YearQuarter() string {
	y, q := f.yearString(), f.quarterString()
	if y == "" || q == "" {
		return ""
	}
	return y + "-Q" + q
}

// GroupKey returns the amendment-grouping identity
// "registrant|client|year|quarter". ok is false when any component is
// unresolvable; those rows are dropped from reduction entirely.
func (f *Filing) GroupKey() (string, bool) {
	rid, cid := f.registrantIdentity(), f.clientIdentity()
	y, q := f.yearString(), f.quarterString()
	if rid == "" || cid == "" || y == "" || q == "" {
		return "", false
	}
	return rid + "|" + cid + "|" + y + "|" + q, true
}

// PostedAt parses the filing's posting timestamp, falling back to the
// filed date. Zero time when neither parses.
func (f *Filing) PostedAt() time.Time {
	if t := ParseTime(f.DtPosted); !t.IsZero() {
		return t
	}
	return ParseTime(f.FiledDate)
}

// FilingDetail is the expanded single-filing record, fetched for
// lobbyist enrichment.
type FilingDetail struct {
	FilingUUID         FlexString         `json:"filing_uuid"`
	FilingDocumentURL  string             `json:"filing_document_url"`
	LobbyingActivities []LobbyingActivity `json:"lobbying_activities"`
}

// LobbyingActivity is one activity block inside a filing detail.
type LobbyingActivity struct {
	Lobbyists []Lobbyist `json:"lobbyists"`
}

// Lobbyist is an individual named on a lobbying activity.
type Lobbyist struct {
	PrefixDisplay string `json:"prefix_display"`
	FirstName     string `json:"first_name"`
	Nickname      string `json:"nickname"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	SuffixDisplay string `json:"suffix_display"`
}

// DisplayName joins the non-empty name parts with single spaces.
func (l *Lobbyist) DisplayName() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{l.PrefixDisplay, l.FirstName, l.Nickname, l.MiddleName, l.LastName, l.SuffixDisplay} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// LobbyistNames returns the distinct lobbyist display names across all
// activities, in first-seen order.
func (d *FilingDetail) LobbyistNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, act := range d.LobbyingActivities {
		for i := range act.Lobbyists {
			name := act.Lobbyists[i].DisplayName()
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
