package models

// ContributionRecord is a raw contribution-disclosure filing with its
// nested contribution line-items.
type ContributionRecord struct {
	FilingUUID        FlexString               `json:"filing_uuid"`
	ID                FlexString               `json:"id"`
	FilingYear        FlexString               `json:"filing_year"`
	FilingPeriod      string                   `json:"filing_period"`
	DtPosted          string                   `json:"dt_posted"`
	FilingDocumentURL string                   `json:"filing_document_url"`
	RegistrantName    string                   `json:"registrant_name"`
	Registrant        *Party                   `json:"registrant"`
	Lobbyist          *Lobbyist                `json:"lobbyist"`
	ContributionItems []ContributionItemRecord `json:"contribution_items"`
}

// UUID returns the filing identity: filing_uuid, falling back to id.
func (c *ContributionRecord) UUID() string {
	return firstNonEmpty(c.FilingUUID.String(), c.ID.String())
}

// ContributionItemRecord is one nested transaction inside a
// contribution filing.
type ContributionItemRecord struct {
	ContributionType        string `json:"contribution_type"`
	ContributionTypeDisplay string `json:"contribution_type_display"`
	ContributorName         string `json:"contributor_name"`
	PayeeName               string `json:"payee_name"`
	HonoreeName             string `json:"honoree_name"`
	Amount                  Amount `json:"amount"`
	Date                    string `json:"date"`
}

// ContributionItem is a flattened transaction extracted from a filing's
// nested list, carrying its filing linkage. Derived per request and
// discarded after aggregation.
type ContributionItem struct {
	FilingUUID  string  `json:"filing_uuid"`
	DocumentURL string  `json:"document_url,omitempty"`
	Lobbyist    string  `json:"lobbyist,omitempty"`
	Contributor string  `json:"contributor,omitempty"`
	Payee       string  `json:"payee,omitempty"`
	Honoree     string  `json:"honoree,omitempty"`
	Type        string  `json:"type,omitempty"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date,omitempty"`
}

// DisplayName is the name the item is grouped under: payee, then
// honoree, then contributor.
func (i *ContributionItem) DisplayName() string {
	return firstNonEmpty(i.Payee, i.Honoree, i.Contributor)
}

// FilingLink is a supporting-filing reference with its occurrence count.
type FilingLink struct {
	Link  string `json:"link"`
	Count int    `json:"count"`
}

// AggregateGroup is one output row of a contribution rollup.
// TotalAmount is rounded to 2 decimals at output time; accumulation
// uses full precision.
type AggregateGroup struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Type        string       `json:"type,omitempty"`
	TotalAmount float64      `json:"total_amount"`
	Count       int          `json:"count"`
	FirstDate   string       `json:"first_date,omitempty"`
	LastDate    string       `json:"last_date,omitempty"`
	Filings     []FilingLink `json:"filings"`
	MoreFilings int          `json:"more_filings"`
}
