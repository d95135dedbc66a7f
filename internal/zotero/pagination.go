package zotero

import (
	"context"
	"strings"
)

// PageSet is the result of walking a full pagination chain.
type PageSet struct {
	// Body is the concatenation of every page body in link order, with no
	// separators beyond what the pages themselves contain.
	Body string
	// Pages is the number of pages fetched.
	Pages int
}

// FetchAllPages fetches startURL and every rel="next" successor, accumulating
// the bodies in order. The chain terminates when a page carries no next link.
// Any fetch failure aborts the walk with no partial result.
func (c *Client) FetchAllPages(ctx context.Context, startURL string) (*PageSet, error) {
	var body strings.Builder
	pages := 0

	url := startURL
	for url != "" {
		resp, err := c.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		body.WriteString(resp.Body)
		pages++
		url = resp.NextURL
	}

	return &PageSet{Body: body.String(), Pages: pages}, nil
}
