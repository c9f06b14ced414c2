// Package patterns holds the versioned, read-only table of bank signatures,
// field patterns and transaction patterns used by the extraction engine.
//
// A Registry is built once with Load, LoadFile or Default and passed to the
// components that need it. Nothing in a Registry can be changed after loading.
package patterns

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"fjacquet/fatura-extractor/internal/bank"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var embeddedRegistry []byte

// ErrNoPatternSet is returned when a registry has no generic pattern set to fall back on.
var ErrNoPatternSet = errors.New("no generic pattern set registered")

// Signature is the compiled detection data for one issuer.
type Signature struct {
	Bank     bank.ID
	Name     string
	Patterns []*regexp.Regexp
}

// Override is one literal description replacement.
type Override struct {
	Match   string `yaml:"match" json:"match"`
	Replace string `yaml:"replace" json:"replace"`
	Note    string `yaml:"note" json:"note"`
}

// Category is one entry of the category taxonomy.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Registry is the immutable pattern table.
type Registry struct {
	version    string
	signatures []Signature
	rawBanks   []rawBank
	sets       map[bank.ID]*PatternSet
	overrides  []Override
	countries  []string
	cities     []string
	categories []Category
}

type rawBank struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Signatures []string `yaml:"signatures"`
}

type rawSet struct {
	Strategy     Strategy          `yaml:"strategy"`
	Fields       map[string]string `yaml:"fields"`
	Transaction  string            `yaml:"transaction"`
	SkipKeywords []string          `yaml:"skip_keywords"`
}

type document struct {
	Version     string            `yaml:"version"`
	Banks       []rawBank         `yaml:"banks"`
	PatternSets map[string]rawSet `yaml:"pattern_sets"`
	Overrides   []Override        `yaml:"overrides"`
	Countries   []string          `yaml:"countries"`
	Cities      []string          `yaml:"cities"`
	Categories  []Category        `yaml:"categories"`
}

// Default loads the registry compiled into the binary.
func Default() (*Registry, error) {
	return Load(embeddedRegistry)
}

// LoadFile loads a registry from a YAML file on disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern registry %s: %w", path, err)
	}
	reg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("pattern registry %s: %w", path, err)
	}
	return reg, nil
}

// Load parses and validates a YAML registry document.
func Load(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pattern registry: %w", err)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return nil, errors.New("pattern registry has no version")
	}

	reg := &Registry{
		version:   doc.Version,
		sets:      make(map[bank.ID]*PatternSet, len(doc.PatternSets)),
		overrides: append([]Override(nil), doc.Overrides...),
		countries: upperAll(doc.Countries),
		cities:    upperAll(doc.Cities),
	}

	seen := make(map[bank.ID]bool, len(doc.Banks))
	for _, rb := range doc.Banks {
		id, ok := bank.Parse(rb.ID)
		if !ok || id.IsGeneric() {
			return nil, fmt.Errorf("unknown bank id %q in signatures", rb.ID)
		}
		if seen[id] {
			return nil, fmt.Errorf("bank %s listed twice", id)
		}
		seen[id] = true

		sig := Signature{Bank: id, Name: rb.Name}
		if sig.Name == "" {
			sig.Name = id.DisplayName()
		}
		for _, expr := range rb.Signatures {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("bank %s: invalid signature %q: %w", id, expr, err)
			}
			sig.Patterns = append(sig.Patterns, re)
		}
		if len(sig.Patterns) == 0 {
			return nil, fmt.Errorf("bank %s has no signatures", id)
		}
		reg.signatures = append(reg.signatures, sig)
		reg.rawBanks = append(reg.rawBanks, rawBank{ID: string(id), Name: sig.Name, Signatures: append([]string(nil), rb.Signatures...)})
	}

	for key, rs := range doc.PatternSets {
		id, ok := bank.Parse(key)
		if !ok {
			return nil, fmt.Errorf("unknown bank id %q in pattern_sets", key)
		}
		set, err := compileSet(id, rs)
		if err != nil {
			return nil, err
		}
		reg.sets[id] = set
	}
	if _, ok := reg.sets[bank.Generic]; !ok {
		return nil, ErrNoPatternSet
	}

	for i, o := range doc.Overrides {
		if o.Match == "" {
			return nil, fmt.Errorf("override %d has an empty match", i)
		}
	}

	for _, c := range doc.Categories {
		if c.Name == "" || len(c.Keywords) == 0 {
			return nil, fmt.Errorf("category %q needs a name and at least one keyword", c.Name)
		}
		reg.categories = append(reg.categories, Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)})
	}

	return reg, nil
}

// Version returns the registry version string.
func (r *Registry) Version() string {
	return r.version
}

// For returns the pattern set for id. Unknown ids and ids without a dedicated
// set resolve to the generic set.
func (r *Registry) For(id bank.ID) *PatternSet {
	if set, ok := r.sets[id]; ok {
		return set
	}
	return r.sets[bank.Generic]
}

// HasDedicated reports whether id has its own pattern set.
func (r *Registry) HasDedicated(id bank.ID) bool {
	_, ok := r.sets[id]
	return ok && !id.IsGeneric()
}

// Raw returns the pattern sources that For(id) would use.
func (r *Registry) Raw(id bank.ID) RawPatternSet {
	set := r.For(id)
	raw := set.raw()
	raw.Requested = id
	raw.Fallback = set.bank != id
	return raw
}

// Signatures returns the compiled detection table in detection order.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, len(r.signatures))
	for i, s := range r.signatures {
		out[i] = Signature{Bank: s.Bank, Name: s.Name, Patterns: append([]*regexp.Regexp(nil), s.Patterns...)}
	}
	return out
}

// Banks returns the issuers with a detection signature, in detection order.
func (r *Registry) Banks() []bank.ID {
	out := make([]bank.ID, len(r.signatures))
	for i, s := range r.signatures {
		out[i] = s.Bank
	}
	return out
}

// SignatureSources returns the uncompiled signature expressions for id.
func (r *Registry) SignatureSources(id bank.ID) []string {
	for _, b := range r.rawBanks {
		if b.ID == string(id) {
			return append([]string(nil), b.Signatures...)
		}
	}
	return nil
}

// Overrides returns the description override table in application order.
func (r *Registry) Overrides() []Override {
	return append([]Override(nil), r.overrides...)
}

// Countries returns the trailing country tokens, upper-cased.
func (r *Registry) Countries() []string {
	return append([]string(nil), r.countries...)
}

// Cities returns the trailing city names, upper-cased.
func (r *Registry) Cities() []string {
	return append([]string(nil), r.cities...)
}

// Categories returns the category taxonomy in priority order.
func (r *Registry) Categories() []Category {
	out := make([]Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = Category{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

func upperAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
