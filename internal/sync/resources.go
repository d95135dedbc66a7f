package sync

import (
	"context"
	"fmt"
)

// DefaultOutputName is the artifact name for the user's personal library.
const DefaultOutputName = "zotero.bib"

// Resource is one remote library to synchronize.
type Resource struct {
	// URL is the first items page; identity of the resource.
	URL string
	// OutputName is the artifact file name under the bibliography directory.
	OutputName string
	// Label is a human-readable name for logs.
	Label string
}

// Resources enumerates everything to sync: the personal library first, then
// one resource per group. Groups without an id are skipped silently.
func (s *Syncer) Resources(ctx context.Context) ([]Resource, error) {
	resources := []Resource{{
		URL:        s.client.UserItemsURL(),
		OutputName: DefaultOutputName,
		Label:      "user library",
	}}

	groups, err := s.client.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	for _, group := range groups {
		if group.ID == 0 {
			continue
		}
		label := group.Data.Name
		if label == "" {
			label = fmt.Sprintf("group %d", group.ID)
		}
		resources = append(resources, Resource{
			URL:        s.client.GroupItemsURL(group.ID),
			OutputName: fmt.Sprintf("%d.bib", group.ID),
			Label:      label,
		})
	}
	return resources, nil
}
