package util

import "testing"

func TestNormalizeTag(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"lowercase":   {in: "RPG", want: "rpg"},
		"spaces":      {in: "Visual Novel", want: "visual-novel"},
		"underscores": {in: "turn_based", want: "turn-based"},
		"trimmed":     {in: "  Indie  ", want: "indie"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTag(tc.in); got != tc.want {
				t.Errorf("NormalizeTag(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"simple":      {in: "Hades", want: "hades"},
		"spaces":      {in: "Dave the Diver", want: "dave-the-diver"},
		"punctuation": {in: "Baldur's Gate 3", want: "baldurs-gate-3"},
		"colon":       {in: "Persona 5: Royal", want: "persona-5-royal"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := Slugify(tc.in); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString() = %q, want unchanged", got)
	}
	if got := TruncateString("a longer description", 8); got != "a longer..." {
		t.Errorf("TruncateString() = %q, want %q", got, "a longer...")
	}
}
