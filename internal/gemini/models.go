package gemini

import "gemcache/internal/core"

// supportedModels is the catalog the console offers for generation and cache
// creation. Pinned "-001" versions support explicit caching; the 2.5 family
// gets implicit caching for free.
var supportedModels = []string{
	"models/gemini-2.0-flash-001",
	"models/gemini-1.5-pro-001",
	"models/gemini-2.5-flash",
	"models/gemini-2.5-pro",
}

// SupportedModels returns the catalog with per-model eligibility hints.
func SupportedModels() []core.ModelInfo {
	out := make([]core.ModelInfo, 0, len(supportedModels))
	for _, id := range supportedModels {
		out = append(out, core.DescribeModel(id))
	}
	return out
}

// IsSupportedModel reports whether the identifier is in the catalog.
func IsSupportedModel(modelID string) bool {
	for _, id := range supportedModels {
		if id == modelID {
			return true
		}
	}
	return false
}
