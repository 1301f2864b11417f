package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	retentionPattern = regexp.MustCompile(`^(?:\d+[dhms])+$`)
	retentionTerm    = regexp.MustCompile(`(\d+)([dhms])`)
)

var retentionUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"h": time.Hour,
	"m": time.Minute,
	"s": time.Second,
}

// ParseRetentionInterval converts strings like "30d" or "12h" into a
// time.Duration. Terms may be combined ("1d12h"); the whole input must be
// well-formed, trailing garbage is rejected.
func ParseRetentionInterval(input string) (time.Duration, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if !retentionPattern.MatchString(normalized) {
		return 0, fmt.Errorf("invalid retention interval %q (use forms like 30d, 12h, 1d12h)", input)
	}

	var total time.Duration
	for _, term := range retentionTerm.FindAllStringSubmatch(normalized, -1) {
		value, err := strconv.Atoi(term[1])
		if err != nil {
			return 0, fmt.Errorf("invalid retention interval %q: %w", input, err)
		}
		total += time.Duration(value) * retentionUnits[term[2]]
	}
	return total, nil
}
