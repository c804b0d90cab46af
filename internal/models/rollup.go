package models

// QuarterTotal is one entry of the windowed quarterly series.
type QuarterTotal struct {
	Quarter string  `json:"quarter"`
	Total   float64 `json:"total"`
}

// LobbyistCount is a lobbyist name with the number of filings naming them.
type LobbyistCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// QuarterLobbyists lists the lobbyists active in one quarter.
type QuarterLobbyists struct {
	Quarter   string          `json:"quarter"`
	Lobbyists []LobbyistCount `json:"lobbyists"`
}

// FilingSample is one enriched filing in the summary response.
type FilingSample struct {
	FilingUUID        string   `json:"filing_uuid"`
	Quarter           string   `json:"quarter,omitempty"`
	DtPosted          string   `json:"dt_posted,omitempty"`
	AmountEffective   float64  `json:"amount_effective"`
	Attribution       string   `json:"attrib"`
	Registrant        string   `json:"registrant,omitempty"`
	Client            string   `json:"client,omitempty"`
	FilingDetailProxy string   `json:"filing_detail_proxy"`
	FilingDocumentURL string   `json:"filing_document_url,omitempty"`
	Lobbyists         []string `json:"lobbyists"`
}

// DebugSample is a diagnostic view of a reduced filing, attached only
// when debug output is requested. It never alters totals.
type DebugSample struct {
	FilingUUID    string  `json:"filing_uuid"`
	FilingYear    string  `json:"filing_year,omitempty"`
	FilingType    string  `json:"filing_type,omitempty"`
	FilingPeriod  string  `json:"filing_period,omitempty"`
	DtPosted      string  `json:"dt_posted,omitempty"`
	MappedQuarter string  `json:"mapped_yq,omitempty"`
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	Attribution   string  `json:"attrib"`
	Client        string  `json:"client,omitempty"`
	Registrant    string  `json:"registrant,omitempty"`
}

// SummaryPayload is the periodic-filing rollup response.
type SummaryPayload struct {
	OK                 bool               `json:"ok"`
	Company            string             `json:"company"`
	Quarters           []string           `json:"quarters"`
	TotalsByQuarter    []QuarterTotal     `json:"totals_by_quarter"`
	TotalQuarters      float64            `json:"total_quarters"`
	KeptQuarterRows    int                `json:"kept_quarter_rows"`
	AllIncome          float64            `json:"all_income"`
	AllExpenses        float64            `json:"all_expenses"`
	RowsScanned        int                `json:"rows_scanned"`
	RowsKept           int                `json:"rows_kept"`
	Note               string             `json:"note"`
	LobbyistsByQuarter []QuarterLobbyists `json:"lobbyists_by_quarter,omitempty"`
	FilingsSample      []FilingSample     `json:"filings_sample,omitempty"`
	Sample             []DebugSample      `json:"sample,omitempty"`
	Warning            string             `json:"warning,omitempty"`
}

// RowsScanned is the traversal diagnostics block of a contribution rollup.
type RowsScanned struct {
	Pages   int `json:"pages"`
	Filings int `json:"filings"`
	Items   int `json:"items"`
}

// ContributionRollupPayload is the contribution rollup response.
type ContributionRollupPayload struct {
	OK          bool               `json:"ok"`
	RowsScanned RowsScanned        `json:"rows_scanned"`
	GroupsCount int                `json:"groups_count"`
	TotalAmount float64            `json:"total_amount"`
	Groups      []AggregateGroup   `json:"groups"`
	Warning     string             `json:"warning,omitempty"`
	Sample      []ContributionItem `json:"sample,omitempty"`
}
