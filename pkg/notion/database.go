package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches all pages from a Notion database, handling pagination.
// Rate limiting is enforced by the Client (3 req/s by default).
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}

		next := &notionapi.DatabaseQueryRequest{StartCursor: resp.NextCursor}
		if filter != nil {
			next.Filter = filter.Filter
			next.Sorts = filter.Sorts
			next.PageSize = filter.PageSize
		}
		req = next
	}

	return all, nil
}

// FindPageByLeadID looks up the page whose "Lead ID" rich text property equals
// leadID. Returns nil when no page matches.
func FindPageByLeadID(ctx context.Context, c Client, dbID, leadID string) (*notionapi.Page, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Lead ID",
			RichText: &notionapi.TextFilterCondition{
				Equals: leadID,
			},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find page for lead %s", leadID)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}
