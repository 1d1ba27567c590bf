package httpapi

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSensorIDRange parses D2's `<sensor-id-range>` syntax: a
// comma-separated list where each element is either a single
// non-negative integer or `<from>:<to>` (inclusive, both non-negative,
// from <= to). Returns the expanded, de-duplicated id list, each id in the
// position of its first appearance in s (the list is not sorted).
func ParseSensorIDRange(s string) ([]uint32, error) {
	if s == "" {
		return nil, fmt.Errorf("httpapi: empty sensor-id range")
	}
	seen := make(map[uint32]struct{})
	var ids []uint32
	add := func(id uint32) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("httpapi: empty element in sensor-id range %q", s)
		}
		if from, to, ok := strings.Cut(part, ":"); ok {
			fromN, err := strconv.ParseUint(from, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("httpapi: bad range start %q: %w", part, err)
			}
			toN, err := strconv.ParseUint(to, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("httpapi: bad range end %q: %w", part, err)
			}
			if fromN > toN {
				return nil, fmt.Errorf("httpapi: range %q has from > to", part)
			}
			for v := fromN; v <= toN; v++ {
				add(uint32(v))
			}
			continue
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("httpapi: bad sensor id %q: %w", part, err)
		}
		add(uint32(v))
	}
	return ids, nil
}
