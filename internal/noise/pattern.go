// Package noise filters deterministic What-If noise before the reasoner
// sees it, and demotes known-noisy resource types after it has answered.
//
// Property-level patterns (keyword, regex, fuzzy) run pre-reasoner against
// raw What-If text: property names there are deterministic, so matching is
// reliable and the reasoner never sees the noise. Resource-level patterns
// (resource:) run post-reasoner, demoting matching findings to low
// confidence so they stay visible instead of vanishing.
package noise

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// PatternKind selects the matching strategy for a pattern.
type PatternKind string

const (
	KindKeyword  PatternKind = "keyword"
	KindRegex    PatternKind = "regex"
	KindFuzzy    PatternKind = "fuzzy"
	KindResource PatternKind = "resource"
)

// DefaultFuzzyThreshold is the similarity ratio fuzzy patterns must reach.
const DefaultFuzzyThreshold = 0.80

// Pattern is one parsed line from a pattern source.
type Pattern struct {
	Raw   string
	Kind  PatternKind
	Value string

	re *regexp.Regexp
}

// parsePatternLine detects the optional kind prefix and compiles regex
// patterns. An invalid regular expression is a load-time error, never a
// per-line one.
func parsePatternLine(line string) (Pattern, error) {
	switch {
	case strings.HasPrefix(line, "regex:"):
		value := strings.TrimSpace(strings.TrimPrefix(line, "regex:"))
		re, err := regexp.Compile("(?i)" + value)
		if err != nil {
			return Pattern{}, fmt.Errorf("invalid regex pattern %q: %w", value, err)
		}
		return Pattern{Raw: line, Kind: KindRegex, Value: value, re: re}, nil
	case strings.HasPrefix(line, "fuzzy:"):
		return Pattern{Raw: line, Kind: KindFuzzy, Value: strings.TrimSpace(strings.TrimPrefix(line, "fuzzy:"))}, nil
	case strings.HasPrefix(line, "resource:"):
		return Pattern{Raw: line, Kind: KindResource, Value: strings.TrimSpace(strings.TrimPrefix(line, "resource:"))}, nil
	default:
		return Pattern{Raw: line, Kind: KindKeyword, Value: line}, nil
	}
}

// ParsePatterns reads one pattern per line, skipping blanks and #-comments.
// Order is preserved and duplicates are kept.
func ParsePatterns(r io.Reader) ([]Pattern, error) {
	var patterns []Pattern
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePatternLine(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// ErrPatternSource marks an unreadable pattern file, as opposed to an
// unparsable one. Callers may continue without the file on this error.
var ErrPatternSource = errors.New("noise patterns file unreadable")

// LoadPatternsFile loads a user pattern source from disk.
func LoadPatternsFile(path string) ([]Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPatternSource, path, err)
	}
	defer f.Close()
	return ParsePatterns(f)
}

// Matches tests a single line against the pattern. Pure function of the
// two strings and the fuzzy threshold; resource patterns never match here,
// they apply to reasoner output instead.
func (p Pattern) Matches(line string, fuzzyThreshold float64) bool {
	switch p.Kind {
	case KindKeyword:
		return strings.Contains(strings.ToLower(line), strings.ToLower(p.Value))
	case KindRegex:
		return p.re != nil && p.re.MatchString(line)
	case KindFuzzy:
		return similarityRatio(p.Value, line) >= fuzzyThreshold
	default:
		return false
	}
}

// Split partitions patterns into resource-level and property-level lists,
// preserving order within each.
func Split(patterns []Pattern) (resource, property []Pattern) {
	for _, p := range patterns {
		if p.Kind == KindResource {
			resource = append(resource, p)
		} else {
			property = append(property, p)
		}
	}
	return resource, property
}
