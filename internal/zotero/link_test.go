package zotero

import "testing"

func TestParseNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "next and last relations",
			header: `<https://api.zotero.org/users/1/items?start=50>; rel="next", <https://api.zotero.org/users/1/items?start=200>; rel="last"`,
			want:   "https://api.zotero.org/users/1/items?start=50",
		},
		{
			name:   "only last relation",
			header: `<https://api.zotero.org/users/1/items?start=200>; rel="last"`,
			want:   "",
		},
		{
			name:   "unquoted rel value",
			header: `<https://example.org/page2>; rel=next`,
			want:   "https://example.org/page2",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
		{
			name:   "malformed entry skipped",
			header: `garbage, <https://example.org/page2>; rel="next"`,
			want:   "https://example.org/page2",
		},
		{
			name:   "extra parameters",
			header: `<https://example.org/page2>; type="text/html"; rel="next"`,
			want:   "https://example.org/page2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseNextLink(tt.header); got != tt.want {
				t.Fatalf("parseNextLink(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
