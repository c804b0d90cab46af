package rollup

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonsoflibertyy/lda/internal/common"
	"github.com/sonsoflibertyy/lda/internal/interfaces"
	"github.com/sonsoflibertyy/lda/internal/models"
)

// fakeRegistry scripts upstream responses for service tests.
type fakeRegistry struct {
	onGet  func(path string, params url.Values) (interface{}, error)
	onWalk func(path string, params url.Values, opts interfaces.WalkOptions) (*interfaces.WalkResult, error)
}

func (f *fakeRegistry) GetJSON(_ context.Context, path string, params url.Values, result interface{}) error {
	payload, err := f.onGet(path, params)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func (f *fakeRegistry) Walk(_ context.Context, path string, params url.Values, opts interfaces.WalkOptions) (*interfaces.WalkResult, error) {
	return f.onWalk(path, params, opts)
}

func testService(reg interfaces.RegistryClient) *Service {
	return NewService(reg, common.RollupConfig{MaxRows: 20000, MaxPages: 200, MaxLinks: 10}, common.NewSilentLogger())
}

// currentQuarterParams returns the filing_year/filing_period values of
// the present quarter, which every summary window ends on.
func currentQuarterParams(t *testing.T) (string, string) {
	t.Helper()
	yq := LastNQuarters(1)[0]
	year, period, err := QuarterFilters(yq)
	require.NoError(t, err)
	return strconv.Itoa(year), period
}

func TestSummary_AmendmentSupersedesOriginal(t *testing.T) {
	year, period := currentQuarterParams(t)

	reg := &fakeRegistry{
		onGet: func(path string, params url.Values) (interface{}, error) {
			if params.Get("filing_year") != year || params.Get("filing_period") != period ||
				params.Get("page") != "1" {
				return map[string]interface{}{"results": []interface{}{}}, nil
			}
			return map[string]interface{}{
				"results": []interface{}{
					map[string]interface{}{
						"filing_uuid":   "orig",
						"registrant_id": 10,
						"client_id":     20,
						"filing_year":   year,
						"filing_period": period,
						"income":        0,
						"less_than_5k":  true,
						"dt_posted":     "2025-01-10T00:00:00Z",
						"client_name":   "Pfizer Inc",
					},
					map[string]interface{}{
						"filing_uuid":   "amended",
						"registrant_id": 10,
						"client_id":     20,
						"filing_year":   year,
						"filing_period": period,
						"income":        "$12,000",
						"dt_posted":     "2025-02-15T00:00:00Z",
						"client_name":   "Pfizer Inc",
					},
				},
			}, nil
		},
	}

	svc := testService(reg)
	payload, err := svc.Summary(context.Background(), models.SummaryRequest{Query: "Pfizer Inc", Quarters: 4})
	require.NoError(t, err)

	assert.True(t, payload.OK)
	assert.Equal(t, 12000.0, payload.TotalQuarters)
	assert.Equal(t, 2, payload.RowsScanned)
	assert.Equal(t, 1, payload.RowsKept)
	assert.Equal(t, 1, payload.KeptQuarterRows)
	assert.Len(t, payload.Quarters, 4)
	assert.Len(t, payload.TotalsByQuarter, 4)
	assert.Equal(t, 12000.0, payload.TotalsByQuarter[3].Total)
	assert.NotEmpty(t, payload.Note)
}

func TestSummary_DedupAcrossFacets(t *testing.T) {
	year, period := currentQuarterParams(t)
	row := map[string]interface{}{
		"filing_uuid":   "same",
		"registrant_id": 1,
		"client_id":     2,
		"filing_year":   year,
		"filing_period": period,
		"income":        100,
	}

	reg := &fakeRegistry{
		onGet: func(path string, params url.Values) (interface{}, error) {
			if params.Get("filing_year") != year || params.Get("filing_period") != period {
				return map[string]interface{}{"results": []interface{}{}}, nil
			}
			// Both facets return the identical filing.
			return map[string]interface{}{"results": []interface{}{row}}, nil
		},
	}

	payload, err := testService(reg).Summary(context.Background(), models.SummaryRequest{Query: "Acme", Quarters: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, payload.RowsScanned, "the same filing must not be counted per facet")
	assert.Equal(t, 100.0, payload.TotalQuarters)
}

func TestSummary_MissingQuery(t *testing.T) {
	_, err := testService(&fakeRegistry{}).Summary(context.Background(), models.SummaryRequest{})
	require.Error(t, err)
}

func TestSummary_UpstreamErrorPropagates(t *testing.T) {
	boom := errors.New("upstream down")
	reg := &fakeRegistry{
		onGet: func(string, url.Values) (interface{}, error) { return nil, boom },
	}
	_, err := testService(reg).Summary(context.Background(), models.SummaryRequest{Query: "Acme", Quarters: 1})
	require.ErrorIs(t, err, boom)
}

func TestSummary_LobbyistEnrichment(t *testing.T) {
	year, period := currentQuarterParams(t)
	yq := LastNQuarters(1)[0]

	reg := &fakeRegistry{
		onGet: func(path string, params url.Values) (interface{}, error) {
			if path == "/filings/uuid-1/" {
				return map[string]interface{}{
					"filing_uuid":         "uuid-1",
					"filing_document_url": "https://docs.example/uuid-1.pdf",
					"lobbying_activities": []interface{}{
						map[string]interface{}{
							"lobbyists": []interface{}{
								map[string]interface{}{"first_name": "Jane", "last_name": "Doe"},
								map[string]interface{}{"first_name": "Bob", "last_name": "Roe"},
							},
						},
					},
				}, nil
			}
			if params.Get("filing_year") != year || params.Get("filing_period") != period {
				return map[string]interface{}{"results": []interface{}{}}, nil
			}
			return map[string]interface{}{
				"results": []interface{}{
					map[string]interface{}{
						"filing_uuid":   "uuid-1",
						"registrant_id": 1,
						"client_id":     2,
						"filing_year":   year,
						"filing_period": period,
						"income":        5000,
					},
				},
			}, nil
		},
	}

	payload, err := testService(reg).Summary(context.Background(), models.SummaryRequest{
		Query:            "Acme",
		Quarters:         1,
		IncludeLobbyists: true,
		MaxDetail:        10,
		BaseURL:          "https://gw.example",
	})
	require.NoError(t, err)

	require.Len(t, payload.LobbyistsByQuarter, 1)
	assert.Equal(t, yq, payload.LobbyistsByQuarter[0].Quarter)
	require.Len(t, payload.LobbyistsByQuarter[0].Lobbyists, 2)

	require.Len(t, payload.FilingsSample, 1)
	sample := payload.FilingsSample[0]
	assert.Equal(t, "uuid-1", sample.FilingUUID)
	assert.Equal(t, "https://gw.example/lda/filings/uuid-1/", sample.FilingDetailProxy)
	assert.Equal(t, []string{"Jane Doe", "Bob Roe"}, sample.Lobbyists)
}

func TestSummary_EnrichmentFailureIsNonFatal(t *testing.T) {
	year, period := currentQuarterParams(t)

	reg := &fakeRegistry{
		onGet: func(path string, params url.Values) (interface{}, error) {
			if path == "/filings/uuid-1/" {
				return nil, errors.New("detail fetch failed")
			}
			if params.Get("filing_year") != year || params.Get("filing_period") != period {
				return map[string]interface{}{"results": []interface{}{}}, nil
			}
			return map[string]interface{}{
				"results": []interface{}{
					map[string]interface{}{
						"filing_uuid":   "uuid-1",
						"registrant_id": 1,
						"client_id":     2,
						"filing_year":   year,
						"filing_period": period,
						"income":        5000,
					},
				},
			}, nil
		},
	}

	payload, err := testService(reg).Summary(context.Background(), models.SummaryRequest{
		Query:            "Acme",
		Quarters:         1,
		IncludeLobbyists: true,
		MaxDetail:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, payload.TotalQuarters)
	assert.Empty(t, payload.FilingsSample)
}

func TestSummary_DebugSample(t *testing.T) {
	year, period := currentQuarterParams(t)

	reg := &fakeRegistry{
		onGet: func(path string, params url.Values) (interface{}, error) {
			if params.Get("filing_year") != year || params.Get("filing_period") != period {
				return map[string]interface{}{"results": []interface{}{}}, nil
			}
			return map[string]interface{}{
				"results": []interface{}{
					map[string]interface{}{
						"filing_uuid":   "uuid-1",
						"registrant_id": 1,
						"client_id":     2,
						"filing_year":   year,
						"filing_period": period,
						"income":        5000,
					},
				},
			}, nil
		},
	}

	payload, err := testService(reg).Summary(context.Background(), models.SummaryRequest{Query: "Acme", Quarters: 1, Debug: true})
	require.NoError(t, err)
	require.Len(t, payload.Sample, 1)
	assert.Equal(t, "uuid-1", payload.Sample[0].FilingUUID)
	assert.Equal(t, 5000.0, payload.Sample[0].Income)
}

func contributionRow(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestContributions_EndToEnd(t *testing.T) {
	var walkedPath string
	var walkedFilters url.Values

	reg := &fakeRegistry{
		onWalk: func(path string, params url.Values, opts interfaces.WalkOptions) (*interfaces.WalkResult, error) {
			walkedPath = path
			walkedFilters = params
			return &interfaces.WalkResult{
				Pages: 2,
				Rows: []json.RawMessage{
					contributionRow(t, map[string]interface{}{
						"filing_uuid": "f1",
						"contribution_items": []interface{}{
							map[string]interface{}{"payee_name": "PAC One", "amount": "250.00", "date": "2023-03-01"},
							map[string]interface{}{"payee_name": "PAC One", "amount": 100, "date": "2023-05-01"},
						},
					}),
					json.RawMessage(`{"filing_uuid": broken`),
					contributionRow(t, map[string]interface{}{
						"filing_uuid": "f2",
						"contribution_items": []interface{}{
							map[string]interface{}{"honoree_name": "Sen. Smith", "amount": 75},
						},
					}),
				},
			}, nil
		},
	}

	filters := url.Values{}
	filters.Set("registrant_id", "701")
	payload, err := testService(reg).Contributions(context.Background(), models.ContributionRollupRequest{
		Filters: filters,
		BaseURL: "https://gw.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "/contributions/", walkedPath)
	assert.Equal(t, "701", walkedFilters.Get("registrant_id"))

	assert.True(t, payload.OK)
	assert.Equal(t, 2, payload.RowsScanned.Pages)
	assert.Equal(t, 3, payload.RowsScanned.Filings, "malformed rows still count as scanned")
	assert.Equal(t, 3, payload.RowsScanned.Items)
	assert.Equal(t, 2, payload.GroupsCount)
	assert.Equal(t, 425.0, payload.TotalAmount)

	require.Len(t, payload.Groups, 2)
	assert.Equal(t, "PAC One", payload.Groups[0].Name)
	assert.Equal(t, 350.0, payload.Groups[0].TotalAmount)
	assert.Equal(t, 2, payload.Groups[0].Count)
}

func TestContributions_WarningPropagates(t *testing.T) {
	reg := &fakeRegistry{
		onWalk: func(string, url.Values, interfaces.WalkOptions) (*interfaces.WalkResult, error) {
			return &interfaces.WalkResult{Pages: 1, Warning: "row cap reached: returning first 5 rows"}, nil
		},
	}
	payload, err := testService(reg).Contributions(context.Background(), models.ContributionRollupRequest{})
	require.NoError(t, err)
	assert.Contains(t, payload.Warning, "row cap reached")
	assert.NotNil(t, payload.Groups)
	assert.Equal(t, 0, payload.GroupsCount)
}

func TestContributions_CapsClampedToConfig(t *testing.T) {
	var gotOpts interfaces.WalkOptions
	reg := &fakeRegistry{
		onWalk: func(_ string, _ url.Values, opts interfaces.WalkOptions) (*interfaces.WalkResult, error) {
			gotOpts = opts
			return &interfaces.WalkResult{}, nil
		},
	}
	svc := NewService(reg, common.RollupConfig{MaxRows: 100, MaxPages: 5, MaxLinks: 10}, common.NewSilentLogger())

	_, err := svc.Contributions(context.Background(), models.ContributionRollupRequest{MaxRows: 99999, MaxPages: 99})
	require.NoError(t, err)
	assert.Equal(t, 100, gotOpts.MaxRows)
	assert.Equal(t, 5, gotOpts.MaxPages)
}
