package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "path only",
			key:  Key{Path: "/artworks/"},
			want: "artic:artworks",
		},
		{
			name: "empty path",
			key:  Key{},
			want: "artic",
		},
		{
			name: "query sorted",
			key: Key{
				Path:  "/artworks",
				Query: url.Values{"page": {"3"}, "limit": {"5"}},
			},
			want: "artic:artworks:limit=5:page=3",
		},
		{
			name: "multi-valued query joined",
			key: Key{
				Path:  "artworks",
				Query: url.Values{"fields": {"title", "date_end"}},
			},
			want: "artic:artworks:fields=title,date_end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_Deterministic(t *testing.T) {
	key := Key{
		Path:  "/artworks",
		Query: url.Values{"page": {"1"}, "limit": {"5"}, "fields": {"title"}},
	}

	first := key.String()
	for i := 0; i < 50; i++ {
		if got := key.String(); got != first {
			t.Fatalf("iteration %d: String() = %q, want %q", i, got, first)
		}
	}
}
