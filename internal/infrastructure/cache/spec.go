package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Spec declares the bounds of a cache: a maximum entry count and expiry
// windows measured from last access and/or last write.
type Spec struct {
	MaximumSize       int
	ExpireAfterAccess time.Duration
	ExpireAfterWrite  time.Duration
}

// ParseSpec parses a declarative cache spec string of the form
// "maximumSize=10000,expireAfterAccess=10m". Supported keys are
// maximumSize, expireAfterAccess and expireAfterWrite; each may appear
// at most once.
func ParseSpec(s string) (Spec, error) {
	var spec Spec
	seen := make(map[string]bool)

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, found := strings.Cut(part, "=")
		if !found {
			return Spec{}, fmt.Errorf("invalid cache spec clause %q", part)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if seen[key] {
			return Spec{}, fmt.Errorf("duplicate cache spec key %q", key)
		}
		seen[key] = true

		switch key {
		case "maximumSize":
			size, err := strconv.Atoi(value)
			if err != nil || size <= 0 {
				return Spec{}, fmt.Errorf("invalid maximumSize %q", value)
			}
			spec.MaximumSize = size
		case "expireAfterAccess":
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return Spec{}, fmt.Errorf("invalid expireAfterAccess %q", value)
			}
			spec.ExpireAfterAccess = d
		case "expireAfterWrite":
			d, err := time.ParseDuration(value)
			if err != nil || d <= 0 {
				return Spec{}, fmt.Errorf("invalid expireAfterWrite %q", value)
			}
			spec.ExpireAfterWrite = d
		default:
			return Spec{}, fmt.Errorf("unknown cache spec key %q", key)
		}
	}

	return spec, nil
}
