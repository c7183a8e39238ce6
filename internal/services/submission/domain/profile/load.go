package profile

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed defaults/*.toml
var defaultsFS embed.FS

// profileFile mirrors the TOML layout of a profile definition.
type profileFile struct {
	Region            string         `toml:"region"`
	Name              string         `toml:"name"`
	MandatorySections []string       `toml:"mandatory_sections"`
	BlockingFloor     int            `toml:"blocking_floor"`
	Weights           map[string]int `toml:"weights"`
	Rules             []ruleFile     `toml:"rules"`
}

type ruleFile struct {
	ID          string        `toml:"id"`
	Description string        `toml:"description"`
	Severity    string        `toml:"severity"`
	Predicate   predicateFile `toml:"predicate"`
}

type predicateFile struct {
	Kind         string `toml:"kind"`
	Section      string `toml:"section"`
	Field        string `toml:"field"`
	Pattern      string `toml:"pattern"`
	OtherSection string `toml:"other_section"`
}

// Decode parses a single TOML profile definition.
func Decode(data []byte) (Profile, error) {
	var file profileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}

	p := Profile{
		Region:            file.Region,
		Name:              file.Name,
		MandatorySections: file.MandatorySections,
		BlockingFloor:     file.BlockingFloor,
	}
	if len(file.Weights) > 0 {
		p.Weights = make(map[Severity]int, len(file.Weights))
		for label, weight := range file.Weights {
			severity, ok := ParseSeverity(label)
			if !ok {
				return Profile{}, fmt.Errorf("decode profile %s: unknown severity %q", file.Region, label)
			}
			p.Weights[severity] = weight
		}
	}
	for _, rule := range file.Rules {
		severity, ok := ParseSeverity(rule.Severity)
		if !ok {
			return Profile{}, fmt.Errorf("decode profile %s: rule %s: unknown severity %q", file.Region, rule.ID, rule.Severity)
		}
		p.Rules = append(p.Rules, Rule{
			ID:          rule.ID,
			Description: rule.Description,
			Severity:    severity,
			Predicate: Predicate{
				Kind:         PredicateKind(rule.Predicate.Kind),
				Section:      rule.Predicate.Section,
				Field:        rule.Predicate.Field,
				Pattern:      rule.Predicate.Pattern,
				OtherSection: rule.Predicate.OtherSection,
			},
		})
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// loadFS decodes every .toml profile under root in lexical order.
func loadFS(fsys fs.FS, root string) ([]Profile, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read profiles dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".toml") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", name, err)
		}
		p, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// LoadRegistry builds the profile registry from the embedded regional
// defaults, optionally overlaid with .toml files from an external
// directory. Directory profiles replace embedded ones for the same region.
func LoadRegistry(profileDir string) (*Registry, error) {
	profiles, err := loadFS(defaultsFS, "defaults")
	if err != nil {
		return nil, err
	}

	if dir := strings.TrimSpace(profileDir); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("profile dir: %w", err)
		}
		external, err := loadFS(os.DirFS(filepath.Clean(dir)), ".")
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, external...)
	}

	return NewRegistry(profiles...)
}
