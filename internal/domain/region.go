package domain

import "strings"

// DefaultRegions are the suburbs the backend currently serves.
var DefaultRegions = []string{
	"Brisbane City",
	"South Brisbane",
	"Fortitude Valley",
	"New Farm",
	"East brisbane",
	"Kangaroo point",
	"Kelvin grove",
	"South bank",
	"Melbourne",
	"Burnside heights",
}

// RegionMatches reports a case-insensitive substring match in either
// direction. Blank names never match.
func RegionMatches(a, b string) bool {
	left := strings.ToLower(strings.TrimSpace(a))
	right := strings.ToLower(strings.TrimSpace(b))
	if left == "" || right == "" {
		return false
	}

	return strings.Contains(left, right) || strings.Contains(right, left)
}

// MatchRegion returns the first allow-listed region matching detected.
func MatchRegion(detected string, allowList []string) (string, bool) {
	for _, region := range allowList {
		if RegionMatches(detected, region) {
			return region, true
		}
	}
	return "", false
}

// ContainsAnyRegion reports whether suburb contains one of the allow-listed
// region names.
func ContainsAnyRegion(suburb string, allowList []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(suburb))
	if lowered == "" {
		return false
	}

	for _, region := range allowList {
		candidate := strings.ToLower(strings.TrimSpace(region))
		if candidate != "" && strings.Contains(lowered, candidate) {
			return true
		}
	}
	return false
}
