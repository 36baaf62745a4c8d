package gemini

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"short text floors to one", "hi", 1},
		{"four chars per token", "abcdefgh", 2},
		{"collapses whitespace runs", "a    b\n\nc", 1}, // "a b c" = 5 chars
		{"trims edges", "  abcdefgh  ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimateTokensMonotonic(t *testing.T) {
	prev := 0
	text := ""
	for i := 0; i < 100; i++ {
		text += "word "
		got := EstimateTokens(text)
		if got < prev {
			t.Fatalf("estimate decreased from %d to %d at %d words", prev, got, i+1)
		}
		prev = got
	}
}

func TestMinCacheTokenRequirement(t *testing.T) {
	models := []string{
		"models/gemini-2.0-flash-001",
		"models/gemini-2.5-pro",
		"",
	}
	for _, m := range models {
		if got := MinCacheTokenRequirement(m); got != 4096 {
			t.Errorf("MinCacheTokenRequirement(%q) = %d, want 4096", m, got)
		}
	}
}
