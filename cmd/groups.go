package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/proxy-sskr/sskr/pkg/sskr"
)

// parseGroups parses a comma-separated "threshold:count" list, e.g.
// "2:3,3:5", into the Group slice GenerateShares expects.
func parseGroups(spec string) ([]sskr.Group, error) {
	parts := strings.Split(spec, ",")
	groups := make([]sskr.Group, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tc := strings.SplitN(p, ":", 2)
		if len(tc) != 2 {
			return nil, fmt.Errorf("invalid group %q, expected threshold:count", p)
		}
		threshold, err := strconv.Atoi(tc[0])
		if err != nil {
			return nil, fmt.Errorf("invalid group threshold in %q: %w", p, err)
		}
		count, err := strconv.Atoi(tc[1])
		if err != nil {
			return nil, fmt.Errorf("invalid group count in %q: %w", p, err)
		}
		groups = append(groups, sskr.Group{Threshold: threshold, Count: count})
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no groups specified")
	}
	return groups, nil
}
