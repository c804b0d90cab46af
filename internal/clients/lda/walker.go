package lda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sonsoflibertyy/lda/internal/interfaces"
)

// Walk budget defaults. Generous: the caps exist to bound pathological
// queries, not to page-limit ordinary ones.
const (
	DefaultMaxRows  = 20000
	DefaultMaxPages = 200
)

// collectionPage is one page of an upstream collection response.
type collectionPage struct {
	Results  []json.RawMessage `json:"results"`
	Next     string            `json:"next"`
	Previous string            `json:"previous"`
	Count    int               `json:"count"`
}

// Walk fetches pages sequentially from a collection endpoint until
// exhaustion or a budget is hit, applying filter continuity to every
// upstream-issued next link before following it. Pages are never fetched
// in parallel: later pages' validity depends on continuity state carried
// from the seed. A truncating budget discards the excess rows on the
// final page and reports a warning rather than an error.
func (c *Client) Walk(ctx context.Context, path string, params url.Values, opts interfaces.WalkOptions) (*interfaces.WalkResult, error) {
	maxRows := opts.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	seed, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	res := &interfaces.WalkResult{}
	current := seed

	for {
		var page collectionPage
		if err := c.getURL(ctx, current.String(), &page); err != nil {
			return nil, err
		}
		res.Pages++

		for _, raw := range page.Results {
			if len(res.Rows) >= maxRows {
				res.Warning = fmt.Sprintf("row cap reached: returning first %d rows", maxRows)
				return res, nil
			}
			res.Rows = append(res.Rows, raw)
		}

		if page.Next == "" {
			return res, nil
		}
		if res.Pages >= maxPages {
			res.Warning = fmt.Sprintf("page cap reached after %d pages", res.Pages)
			return res, nil
		}

		nextRef, err := url.Parse(page.Next)
		if err != nil {
			c.logger.Warn().Str("next", page.Next).Msg("unparsable next link, stopping walk")
			return res, nil
		}
		next := current.ResolveReference(nextRef)
		CarryForwardFilters(next, seed, next.Path)
		current = next
	}
}
