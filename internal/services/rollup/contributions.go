package rollup

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/sonsoflibertyy/lda/internal/models"
)

// DefaultMaxLinks caps the supporting-filing links kept per group.
const DefaultMaxLinks = 10

// ContributionOptions shapes a contribution aggregation pass.
type ContributionOptions struct {
	BaseURL  string // caller origin for resolving and synthesizing links
	MaxLinks int
	Payee    string // exact normalized-name pre-filters
	Honoree  string
}

// FlattenContributions extracts every nested contribution line-item,
// carrying its filing linkage and lobbyist display name.
func FlattenContributions(records []models.ContributionRecord) []models.ContributionItem {
	var out []models.ContributionItem
	for i := range records {
		rec := &records[i]
		lobbyist := ""
		if rec.Lobbyist != nil {
			lobbyist = rec.Lobbyist.DisplayName()
		}
		for _, item := range rec.ContributionItems {
			typ := item.ContributionType
			if typ == "" {
				typ = item.ContributionTypeDisplay
			}
			out = append(out, models.ContributionItem{
				FilingUUID:  rec.UUID(),
				DocumentURL: strings.TrimSpace(rec.FilingDocumentURL),
				Lobbyist:    lobbyist,
				Contributor: strings.TrimSpace(item.ContributorName),
				Payee:       strings.TrimSpace(item.PayeeName),
				Honoree:     strings.TrimSpace(item.HonoreeName),
				Type:        strings.TrimSpace(typ),
				Amount:      float64(item.Amount),
				Date:        strings.TrimSpace(item.Date),
			})
		}
	}
	return out
}

// filingLink builds the canonical supporting link for an item: the
// document URL resolved against the caller's origin when present, else a
// gateway detail link synthesized from the filing identifier.
func filingLink(item *models.ContributionItem, base *url.URL) string {
	if item.DocumentURL != "" {
		if ref, err := url.Parse(item.DocumentURL); err == nil {
			if base != nil {
				return base.ResolveReference(ref).String()
			}
			return ref.String()
		}
	}
	if item.FilingUUID != "" && base != nil {
		detail := *base
		detail.Path = "/lda/filings/" + item.FilingUUID + "/"
		detail.RawQuery = ""
		return detail.String()
	}
	return ""
}

type contribGroup struct {
	name    string
	typ     string
	total   float64
	count   int
	first   string
	last    string
	links   map[string]int
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AggregateContributions groups items by normalized payee/honoree name
// and contribution type. Accumulation runs at full precision; totals are
// rounded to 2 decimals only at output. Returns the groups sorted by
// total descending (count breaking ties) and the full-precision grand
// total across all grouped items.
func AggregateContributions(items []models.ContributionItem, opts ContributionOptions) ([]models.AggregateGroup, float64) {
	maxLinks := opts.MaxLinks
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}

	var base *url.URL
	if opts.BaseURL != "" {
		base, _ = url.Parse(opts.BaseURL)
	}
	wantPayee := models.NormName(opts.Payee)
	wantHonoree := models.NormName(opts.Honoree)

	groups := make(map[string]*contribGroup)
	var order []string
	var grandTotal float64

	for i := range items {
		item := &items[i]
		if wantPayee != "" && models.NormName(item.Payee) != wantPayee {
			continue
		}
		if wantHonoree != "" && models.NormName(item.Honoree) != wantHonoree {
			continue
		}

		name := item.DisplayName()
		norm := models.NormName(name)
		if norm == "" {
			// Unattributable item: excluded from grouping, still scanned.
			continue
		}
		key := norm
		if item.Type != "" {
			key = norm + "|" + item.Type
		}

		g, exists := groups[key]
		if !exists {
			g = &contribGroup{name: name, typ: item.Type, links: make(map[string]int)}
			groups[key] = g
			order = append(order, key)
		}

		amount := models.ParseAmount(item.Amount)
		g.total += amount
		grandTotal += amount
		g.count++

		if item.Date != "" {
			if g.first == "" || item.Date < g.first {
				g.first = item.Date
			}
			if g.last == "" || item.Date > g.last {
				g.last = item.Date
			}
		}

		if link := filingLink(item, base); link != "" {
			g.links[link]++
		}
	}

	out := make([]models.AggregateGroup, 0, len(order))
	for _, key := range order {
		g := groups[key]

		links := make([]models.FilingLink, 0, len(g.links))
		for link, count := range g.links {
			links = append(links, models.FilingLink{Link: link, Count: count})
		}
		sort.Slice(links, func(i, j int) bool {
			if links[i].Count != links[j].Count {
				return links[i].Count > links[j].Count
			}
			return links[i].Link < links[j].Link
		})
		more := 0
		if len(links) > maxLinks {
			more = len(links) - maxLinks
			links = links[:maxLinks]
		}

		out = append(out, models.AggregateGroup{
			Key:         key,
			Name:        g.name,
			Type:        g.typ,
			TotalAmount: round2(g.total),
			Count:       g.count,
			FirstDate:   g.first,
			LastDate:    g.last,
			Filings:     links,
			MoreFilings: more,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Count > out[j].Count
	})

	return out, grandTotal
}
