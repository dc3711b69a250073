package server

import "testing"

func TestShouldSkipPath(t *testing.T) {
	t.Parallel()

	exact := map[string]bool{"/health": true}
	prefix := []string{"/static"}
	suffix := []string{"/ws"}

	tests := map[string]struct {
		path string
		want bool
	}{
		"exact match":      {path: "/health", want: true},
		"prefix match":     {path: "/static/site.css", want: true},
		"suffix match":     {path: "/api/deals/ws", want: true},
		"no match":         {path: "/api/deals", want: false},
		"partial exact":    {path: "/healthz", want: false},
		"prefix elsewhere": {path: "/api/static", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := shouldSkipPath(tc.path, exact, prefix, suffix); got != tc.want {
				t.Errorf("shouldSkipPath(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestTruncateUA(t *testing.T) {
	t.Parallel()

	short := "Mozilla/5.0"
	if got := truncateUA(short); got != short {
		t.Errorf("short UA modified: %q", got)
	}

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	got := truncateUA(string(long))
	if len(got) != 83 { // 80 + "..."
		t.Errorf("truncated UA length = %d, want 83", len(got))
	}
}
