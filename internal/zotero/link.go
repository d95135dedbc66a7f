package zotero

import "strings"

// parseNextLink extracts the rel="next" target from an RFC 5988 Link header.
// Zotero emits entries like:
//
//	<https://api.zotero.org/users/1/items?start=50>; rel="next", <...>; rel="last"
//
// Returns "" when no next relation is present.
func parseNextLink(header string) string {
	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}

		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		for _, param := range parts[1:] {
			key, value, found := strings.Cut(strings.TrimSpace(param), "=")
			if !found || strings.TrimSpace(key) != "rel" {
				continue
			}
			if strings.Trim(strings.TrimSpace(value), `"`) == "next" {
				return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
			}
		}
	}
	return ""
}
