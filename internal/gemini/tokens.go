package gemini

import "strings"

// minExplicitCacheTokens is the server-observed floor for explicit caches.
const minExplicitCacheTokens = 4096

// EstimateTokens returns a rough token count for text using the ~4 chars per
// token heuristic, after collapsing whitespace runs. Empty input estimates to
// zero; any non-empty input estimates to at least one token.
func EstimateTokens(text string) int {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" {
		return 0
	}
	return max(1, len(s)/4)
}

// MinCacheTokenRequirement returns the minimum token count the provider
// accepts for an explicit cache on the given model. The floor is uniform
// today, but callers must treat it as model-dependent.
func MinCacheTokenRequirement(modelID string) int {
	_ = modelID
	return minExplicitCacheTokens
}
