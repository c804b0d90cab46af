package rollup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/sonsoflibertyy/lda/internal/common"
	"github.com/sonsoflibertyy/lda/internal/interfaces"
	"github.com/sonsoflibertyy/lda/internal/models"
)

// Compile-time interface check.
var _ interfaces.RollupService = (*Service)(nil)

// Summary traversal constants. Facet probes stay shallow: the point is
// to find the company's filings per quarter, not to exhaust the index.
const (
	summaryPageSize  = 25
	summaryMaxPages  = 2
	debugSampleLimit = 20
)

const summaryNote = "Totals include BOTH hired firms (client side) and in-house (registrant side); " +
	"per filing we take max(nonzero(income,expenses)) to avoid double-counting."

// Service implements RollupService on top of a registry client.
// All grouping maps and accumulators are request-scoped; nothing is
// shared between concurrent requests.
type Service struct {
	client interfaces.RegistryClient
	cfg    common.RollupConfig
	logger *common.Logger
}

// NewService creates a new rollup service.
func NewService(client interfaces.RegistryClient, cfg common.RollupConfig, logger *common.Logger) *Service {
	return &Service{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// filingsPage is one page of the periodic-filings collection.
type filingsPage struct {
	Results []models.Filing `json:"results"`
	Next    string          `json:"next"`
}

// fetchQuarterFacet probes one quarter under one facet (client_name or
// registrant_name) across the company-name variants, stopping at the
// first variant that returns rows. seen deduplicates across facets and
// quarters by filing identity.
func (s *Service) fetchQuarterFacet(ctx context.Context, year int, period, facetKey string, variants []string, seen map[string]bool) ([]models.Filing, error) {
	var out []models.Filing
	for _, name := range variants {
		for page := 1; page <= summaryMaxPages; page++ {
			params := url.Values{}
			params.Set(facetKey, name)
			params.Set("filing_year", strconv.Itoa(year))
			params.Set("filing_period", period)
			params.Set("page", strconv.Itoa(page))
			params.Set("page_size", strconv.Itoa(summaryPageSize))

			var pg filingsPage
			if err := s.client.GetJSON(ctx, "/filings/", params, &pg); err != nil {
				return nil, err
			}
			for i := range pg.Results {
				uuid := pg.Results[i].UUID()
				if uuid == "" || seen[uuid] {
					continue
				}
				seen[uuid] = true
				out = append(out, pg.Results[i])
			}
			if pg.Next == "" || len(pg.Results) < summaryPageSize {
				break
			}
		}
		if len(out) > 0 {
			break
		}
	}
	return out, nil
}

// Summary produces the periodic-filing rollup for a company over a
// trailing window of quarters.
func (s *Service) Summary(ctx context.Context, req models.SummaryRequest) (*models.SummaryPayload, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("missing company query")
	}
	quarters := clamp(req.Quarters, 1, 16)
	maxDetail := clamp(req.MaxDetail, 0, 40)

	window := LastNQuarters(quarters)
	windowSet := make(map[string]bool, len(window))
	for _, q := range window {
		windowSet[q] = true
	}

	variants := models.CompanyNameVariants(models.NormalizeCompanyInput(req.Query))
	sort.SliceStable(variants, func(i, j int) bool {
		return len(variants[i]) > len(variants[j])
	})

	seen := make(map[string]bool)
	var rows []models.Filing
	for _, yq := range window {
		year, period, err := QuarterFilters(yq)
		if err != nil {
			continue
		}
		for _, facet := range []string{"client_name", "registrant_name"} {
			got, err := s.fetchQuarterFacet(ctx, year, period, facet, variants, seen)
			if err != nil {
				return nil, err
			}
			rows = append(rows, got...)
		}
	}

	reduced := ReduceAmendments(rows, ReduceOptions{TreatLT5KAs5000: req.TreatLT5KAs5000})
	agg := AggregateQuarters(reduced, window)

	payload := &models.SummaryPayload{
		OK:              true,
		Company:         req.Query,
		Quarters:        window,
		TotalsByQuarter: make([]models.QuarterTotal, len(window)),
		TotalQuarters:   agg.WindowTotal,
		KeptQuarterRows: agg.Kept,
		AllIncome:       agg.AllIncome,
		AllExpenses:     agg.AllExpenses,
		RowsScanned:     len(rows),
		RowsKept:        len(reduced),
		Note:            summaryNote,
	}
	for i, q := range window {
		payload.TotalsByQuarter[i] = models.QuarterTotal{Quarter: q, Total: agg.ByQuarter[q]}
	}

	if req.IncludeLobbyists && maxDetail > 0 {
		s.enrichLobbyists(ctx, req, reduced, windowSet, window, maxDetail, payload)
	}

	if req.Debug {
		limit := debugSampleLimit
		if len(reduced) < limit {
			limit = len(reduced)
		}
		payload.Sample = make([]models.DebugSample, 0, limit)
		for i := 0; i < limit; i++ {
			r := &reduced[i]
			payload.Sample = append(payload.Sample, models.DebugSample{
				FilingUUID:    r.UUID(),
				FilingYear:    r.FilingYear.String(),
				FilingType:    r.FilingType,
				FilingPeriod:  r.FilingPeriod,
				DtPosted:      r.DtPosted,
				MappedQuarter: r.YearQuarter(),
				Income:        float64(r.Income),
				Expenses:      float64(r.Expenses),
				Attribution:   r.Attribution,
				Client:        r.ClientDisplayName(),
				Registrant:    r.RegistrantDisplayName(),
			})
		}
	}

	return payload, nil
}

// enrichLobbyists fetches filing details for up to maxDetail in-window
// rows and attaches per-quarter lobbyist counts plus a filings sample.
// A failed detail fetch skips that filing; enrichment never fails the
// summary.
func (s *Service) enrichLobbyists(ctx context.Context, req models.SummaryRequest, reduced []ReducedFiling, windowSet map[string]bool, window []string, maxDetail int, payload *models.SummaryPayload) {
	var targets []*ReducedFiling
	for i := range reduced {
		if windowSet[reduced[i].YearQuarter()] {
			targets = append(targets, &reduced[i])
			if len(targets) == maxDetail {
				break
			}
		}
	}

	byQuarter := make(map[string]map[string]int)
	for _, r := range targets {
		uuid := r.UUID()
		if uuid == "" {
			continue
		}
		var detail models.FilingDetail
		if err := s.client.GetJSON(ctx, "/filings/"+uuid+"/", nil, &detail); err != nil {
			s.logger.Warn().Err(err).Str("filing_uuid", uuid).Msg("filing detail fetch failed, skipping enrichment")
			continue
		}
		names := detail.LobbyistNames()
		yq := r.YearQuarter()
		if yq != "" && len(names) > 0 {
			if byQuarter[yq] == nil {
				byQuarter[yq] = make(map[string]int)
			}
			for _, n := range names {
				byQuarter[yq][n]++
			}
		}

		sample := models.FilingSample{
			FilingUUID:        uuid,
			Quarter:           yq,
			DtPosted:          r.DtPosted,
			AmountEffective:   r.EffectiveAmount,
			Attribution:       r.Attribution,
			Registrant:        r.RegistrantDisplayName(),
			Client:            r.ClientDisplayName(),
			FilingDetailProxy: req.BaseURL + "/lda/filings/" + uuid + "/",
			FilingDocumentURL: detail.FilingDocumentURL,
			Lobbyists:         names,
		}
		if sample.Lobbyists == nil {
			sample.Lobbyists = []string{}
		}
		payload.FilingsSample = append(payload.FilingsSample, sample)
	}

	payload.LobbyistsByQuarter = make([]models.QuarterLobbyists, len(window))
	for i, q := range window {
		entry := models.QuarterLobbyists{Quarter: q, Lobbyists: []models.LobbyistCount{}}
		for name, count := range byQuarter[q] {
			entry.Lobbyists = append(entry.Lobbyists, models.LobbyistCount{Name: name, Count: count})
		}
		sort.Slice(entry.Lobbyists, func(a, b int) bool {
			if entry.Lobbyists[a].Count != entry.Lobbyists[b].Count {
				return entry.Lobbyists[a].Count > entry.Lobbyists[b].Count
			}
			return entry.Lobbyists[a].Name < entry.Lobbyists[b].Name
		})
		payload.LobbyistsByQuarter[i] = entry
	}
}

// Contributions produces the payee/honoree rollup over contribution
// records matching the caller's filters.
func (s *Service) Contributions(ctx context.Context, req models.ContributionRollupRequest) (*models.ContributionRollupPayload, error) {
	maxRows := req.MaxRows
	if maxRows <= 0 || (s.cfg.MaxRows > 0 && maxRows > s.cfg.MaxRows) {
		maxRows = s.cfg.MaxRows
	}
	maxPages := req.MaxPages
	if maxPages <= 0 || (s.cfg.MaxPages > 0 && maxPages > s.cfg.MaxPages) {
		maxPages = s.cfg.MaxPages
	}
	maxLinks := req.MaxLinks
	if maxLinks <= 0 {
		maxLinks = s.cfg.MaxLinks
	}

	walk, err := s.client.Walk(ctx, "/contributions/", req.Filters, interfaces.WalkOptions{
		MaxRows:  maxRows,
		MaxPages: maxPages,
	})
	if err != nil {
		return nil, err
	}

	records := make([]models.ContributionRecord, 0, len(walk.Rows))
	for _, raw := range walk.Rows {
		var rec models.ContributionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			// Unparsable row: scanned but not aggregatable.
			s.logger.Warn().Err(err).Msg("skipping malformed contribution row")
			continue
		}
		records = append(records, rec)
	}

	items := FlattenContributions(records)
	groups, total := AggregateContributions(items, ContributionOptions{
		BaseURL:  req.BaseURL,
		MaxLinks: maxLinks,
		Payee:    req.Payee,
		Honoree:  req.Honoree,
	})
	if groups == nil {
		groups = []models.AggregateGroup{}
	}

	payload := &models.ContributionRollupPayload{
		OK: true,
		RowsScanned: models.RowsScanned{
			Pages:   walk.Pages,
			Filings: len(walk.Rows),
			Items:   len(items),
		},
		GroupsCount: len(groups),
		TotalAmount: round2(total),
		Groups:      groups,
		Warning:     walk.Warning,
	}

	if req.Debug {
		limit := debugSampleLimit
		if len(items) < limit {
			limit = len(items)
		}
		payload.Sample = items[:limit]
	}

	return payload, nil
}
