// Package agents loads user-defined risk buckets from a directory of
// markdown files with YAML frontmatter. Parsing and validation happen
// here; registration (and the collision invariant) stays in the buckets
// registry, so the rules hold regardless of definition source.
package agents

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/whatif-advisor/internal/buckets"
	"github.com/doeshing/whatif-advisor/internal/domain"
)

var validIDRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// frontmatter is the YAML header of an agent definition file.
type frontmatter struct {
	ID               string       `yaml:"id"`
	DisplayName      string       `yaml:"display_name"`
	Enabled          *bool        `yaml:"enabled"`
	Optional         bool         `yaml:"optional"`
	DefaultThreshold string       `yaml:"default_threshold"`
	Display          string       `yaml:"display"`
	Icon             string       `yaml:"icon"`
	Columns          []columnSpec `yaml:"columns"`
}

type columnSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// splitFrontmatter separates the YAML header from the markdown body. The
// body becomes the bucket's opaque prompt instructions.
func splitFrontmatter(content string) (meta frontmatter, body string, err error) {
	if !strings.HasPrefix(content, "---") {
		return meta, "", fmt.Errorf("missing opening frontmatter delimiter (---)")
	}
	end := strings.Index(content[3:], "\n---")
	if end == -1 {
		return meta, "", fmt.Errorf("missing closing frontmatter delimiter (---)")
	}
	yamlBlock := ""
	if 3+end > 4 {
		yamlBlock = content[4 : 3+end]
	}
	body = content[3+end+4:]
	body = strings.TrimPrefix(body, "\n")

	if err = yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return meta, "", fmt.Errorf("invalid YAML in frontmatter: %w", err)
	}
	return meta, body, nil
}

// slugify converts a column display name to a JSON-safe key:
// "SFI ID and Name" becomes "sfi_id_and_name".
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	key := b.String()
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}
	return strings.Trim(key, "_")
}

// ParseFile parses one agent definition. ok is false when the agent is
// explicitly disabled (enabled: false); that is not an error.
func ParseFile(path string) (bucket domain.RiskBucket, ok bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bucket, false, fmt.Errorf("agent file %s: %w", filepath.Base(path), err)
	}

	name := filepath.Base(path)
	meta, body, err := splitFrontmatter(string(data))
	if err != nil {
		return bucket, false, fmt.Errorf("agent file %s: %w", name, err)
	}

	if meta.ID == "" {
		return bucket, false, fmt.Errorf("agent file %s: missing required 'id' field in frontmatter", name)
	}
	if meta.Enabled != nil && !*meta.Enabled {
		return bucket, false, nil
	}
	if !validIDRe.MatchString(meta.ID) {
		return bucket, false, fmt.Errorf("agent file %s: id %q contains invalid characters (use alphanumeric, hyphens, underscores only)", name, meta.ID)
	}
	if buckets.IsBuiltinID(meta.ID) {
		return bucket, false, fmt.Errorf("agent file %s: id %q collides with a built-in bucket", name, meta.ID)
	}
	if meta.DisplayName == "" {
		return bucket, false, fmt.Errorf("agent file %s: missing required 'display_name' field in frontmatter", name)
	}

	threshold := strings.ToLower(meta.DefaultThreshold)
	if threshold == "" {
		threshold = string(domain.RiskHigh)
	}
	if !domain.ValidRiskLevel(threshold) {
		return bucket, false, fmt.Errorf("agent file %s: invalid default_threshold %q (must be low, medium, or high)", name, meta.DefaultThreshold)
	}

	display := strings.ToLower(meta.Display)
	if display == "" {
		display = string(domain.DisplaySummary)
	}
	if !domain.ValidDisplayMode(display) {
		return bucket, false, fmt.Errorf("agent file %s: invalid display %q (must be summary, table, or list)", name, meta.Display)
	}

	columns, err := parseColumns(name, meta.Columns)
	if err != nil {
		return bucket, false, err
	}

	return domain.RiskBucket{
		ID:               meta.ID,
		DisplayName:      meta.DisplayName,
		Description:      "Custom agent: " + meta.DisplayName,
		Instructions:     body,
		DefaultThreshold: domain.RiskLevel(threshold),
		Optional:         meta.Optional,
		Custom:           true,
		Display:          domain.DisplayMode(display),
		Icon:             meta.Icon,
		Columns:          columns,
	}, true, nil
}

func parseColumns(fileName string, specs []columnSpec) ([]domain.FindingsColumn, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(specs))
	columns := make([]domain.FindingsColumn, 0, len(specs))
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("agent file %s: columns[%d] missing required 'name' field", fileName, i)
		}
		key := slugify(spec.Name)
		if seen[key] {
			return nil, fmt.Errorf("agent file %s: duplicate column key %q (from %q)", fileName, key, spec.Name)
		}
		seen[key] = true
		desc := spec.Description
		if desc == "" {
			desc = spec.Name
		}
		columns = append(columns, domain.FindingsColumn{Name: spec.Name, Key: key, Description: desc})
	}
	return columns, nil
}

// LoadDirectory parses every .md file in dir, sorted by name for
// deterministic ordering. Per-file failures become warnings and never
// abort the remaining files; a missing directory is itself only a warning.
func LoadDirectory(dir string) (loaded []domain.RiskBucket, warnings []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []string{fmt.Sprintf("agents directory %s: %v", dir, err)}
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		bucket, ok, err := ParseFile(filepath.Join(dir, name))
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if ok {
			loaded = append(loaded, bucket)
		}
	}
	return loaded, warnings
}
