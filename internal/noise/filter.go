package noise

import (
	"regexp"
	"strings"
)

// Property change lines are indented at least this deep. Resource headers
// sit at 2 spaces; property diffs at 4 or more.
const propertyIndentMin = 4

// resourceHeaderRe matches a resource block header: 2-space indent, change
// symbol, and an ARM type containing '/'. The '/' requirement keeps the
// legend lines at the top of What-If output (e.g. "  - Delete") out.
var resourceHeaderRe = regexp.MustCompile(`^  ([~+\-=*x!])\s+(\S+/\S+)`)

// symbolOperation maps What-If change symbols to operation names.
var symbolOperation = map[byte]string{
	'~': "Modify",
	'+': "Create",
	'-': "Delete",
	'=': "Deploy",
	'*': "NoChange",
	'x': "Ignore",
}

// resourceBlock is one parsed resource section of What-If output.
type resourceBlock struct {
	operation    string
	resourceType string
	lines        []string
	// indices into lines of property-change lines
	propertyIdx []int
}

// isPropertyChangeLine reports whether a line is eligible for property
// pattern matching: indented propertyIndentMin+ spaces and starting with a
// change symbol. Headers and plain attribute lines (id:, name:, ...) carry
// no change symbol and are never candidates.
func isPropertyChangeLine(line string) bool {
	stripped := strings.TrimLeft(line, " ")
	indent := len(line) - len(stripped)
	if indent < propertyIndentMin || stripped == "" {
		return false
	}
	switch stripped[0] {
	case '~', '+', '-':
		return true
	}
	return false
}

func isResourceHeader(line string) bool {
	return resourceHeaderRe.MatchString(line)
}

// parseBlocks splits raw What-If lines into preamble (everything before
// the first resource header), resource blocks, and epilogue (trailing
// summary lines such as "Resource changes: 1 to create").
func parseBlocks(lines []string) (preamble []string, blocks []*resourceBlock, epilogue []string) {
	var current *resourceBlock
	for _, line := range lines {
		if isResourceHeader(line) {
			if current != nil {
				blocks = append(blocks, current)
			}
			m := resourceHeaderRe.FindStringSubmatch(line)
			op, ok := symbolOperation[m[1][0]]
			if !ok {
				op = "Modify"
			}
			current = &resourceBlock{
				operation:    op,
				resourceType: m[2],
				lines:        []string{line},
			}
			continue
		}
		if current == nil {
			preamble = append(preamble, line)
			continue
		}
		if isPropertyChangeLine(line) {
			current.propertyIdx = append(current.propertyIdx, len(current.lines))
		}
		current.lines = append(current.lines, line)
	}
	if current != nil {
		blocks = append(blocks, current)
	}

	// The last block swallows any trailing summary lines; anything at
	// column zero after its content is epilogue.
	if len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		epilogueStart := -1
		for i := len(last.lines) - 1; i >= 1; i-- {
			stripped := strings.TrimSpace(last.lines[i])
			if stripped == "" {
				continue
			}
			if !strings.HasPrefix(last.lines[i], " ") {
				epilogueStart = i
			} else {
				break
			}
		}
		if epilogueStart >= 0 {
			epilogue = last.lines[epilogueStart:]
			last.lines = last.lines[:epilogueStart]
			var kept []int
			for _, idx := range last.propertyIdx {
				if idx < epilogueStart {
					kept = append(kept, idx)
				}
			}
			last.propertyIdx = kept
		}
	}

	return preamble, blocks, epilogue
}

// FilterDocument removes noisy property-change lines from raw What-If
// text, returning the cleaned document and the number of lines removed.
//
// Matching is a boolean OR across the whole property pattern set, so
// pattern order never affects the outcome. Non-candidate lines (headers,
// attributes, blanks) always pass through. Resource-level patterns are
// ignored here; Reclassify handles them after the reasoner has run.
// An orphaned header whose property lines were all suppressed is kept.
func FilterDocument(content string, patterns []Pattern, fuzzyThreshold float64) (string, int) {
	_, property := Split(patterns)
	if len(property) == 0 {
		return content, 0
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}

	lines := splitKeepEnds(content)
	preamble, blocks, epilogue := parseBlocks(lines)

	matchesAny := func(line string) bool {
		for _, p := range property {
			if p.Matches(line, fuzzyThreshold) {
				return true
			}
		}
		return false
	}

	// No resource headers at all: plain line-by-line filtering.
	if len(blocks) == 0 {
		var kept []string
		removed := 0
		for _, line := range lines {
			if isPropertyChangeLine(line) && matchesAny(line) {
				removed++
				continue
			}
			kept = append(kept, line)
		}
		return strings.Join(kept, ""), removed
	}

	result := append([]string(nil), preamble...)
	removed := 0
	for _, block := range blocks {
		suppress := map[int]bool{}
		for _, idx := range block.propertyIdx {
			if matchesAny(block.lines[idx]) {
				suppress[idx] = true
			}
		}
		for i, line := range block.lines {
			if suppress[i] {
				removed++
				continue
			}
			result = append(result, line)
		}
	}
	result = append(result, epilogue...)
	return strings.Join(result, ""), removed
}

// splitKeepEnds splits content into lines that retain their trailing
// newline, so the document reconstructs byte-for-byte minus suppressions.
func splitKeepEnds(content string) []string {
	if content == "" {
		return nil
	}
	parts := strings.SplitAfter(content, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
