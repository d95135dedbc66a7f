package zotero

import (
	"context"
	"encoding/json"
	"fmt"
)

// Group is one entry from the user's groups listing.
type Group struct {
	ID      int64 `json:"id"`
	Version int64 `json:"version"`
	Data    struct {
		Name string `json:"name"`
	} `json:"data"`
}

// ListGroups fetches the groups the configured user belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	resp, err := c.Get(ctx, c.userGroupsURL())
	if err != nil {
		return nil, err
	}

	var groups []Group
	if err := json.Unmarshal([]byte(resp.Body), &groups); err != nil {
		return nil, fmt.Errorf("decode groups response: %w", err)
	}
	return groups, nil
}
