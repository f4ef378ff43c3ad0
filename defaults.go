package k8s

import "time"

// Default values for ConnOption, matching spec §4.3/§4.5's documented
// defaults where the spec names one, and otherwise a conservative
// production-library default in the teacher's tradition of explicit,
// named constants rather than inline magic numbers.
const (
	defaultDiscoveryTTL     = 5 * time.Minute
	defaultDiscoveryTimeout = 10 * time.Second
	defaultFieldManager     = "k8s-go-client"
	defaultListLimit        = 10
)
