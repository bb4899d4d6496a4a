// Package knowledge holds the static name-classification tables used by the
// analysis stages: alias normalisation, curated pathogenic mutations, healthy
// and disease keyword lists, and gene symbols. The tables are plain data; the
// matching rules live in Table and ContainsAny.
package knowledge

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"proteomorphic/src/internal/protein"
)

// MaxMutationsPerKey bounds each curated list to the hotspots a report carries.
const MaxMutationsPerKey = 3

//go:embed knowledge.yaml
var embeddedTables []byte

// Rule maps a lower-case substring to a value.
type Rule struct {
	Match string `yaml:"match"`
	Value string `yaml:"value"`
}

// Table is an ordered rule list. The first rule whose Match is a substring of
// the name wins, so order matters for ambiguous names.
type Table []Rule

// First returns the value of the first rule matching name.
func (t Table) First(name string) (string, bool) {
	for _, r := range t {
		if strings.Contains(name, r.Match) {
			return r.Value, true
		}
	}
	return "", false
}

// Base is the full set of tables. It is read-only once loaded.
type Base struct {
	Aliases   Table                        `yaml:"aliases"`
	Mutations map[string][]protein.Hotspot `yaml:"mutations"`
	Healthy   []string                     `yaml:"healthy"`
	Disease   []string                     `yaml:"disease"`
	Genes     Table                        `yaml:"genes"`
}

// KnownMutations returns a copy of the curated list for a canonical key.
func (b *Base) KnownMutations(key string) ([]protein.Hotspot, bool) {
	m, ok := b.Mutations[key]
	if !ok {
		return nil, false
	}
	return append([]protein.Hotspot(nil), m...), true
}

// ContainsAny reports whether name contains any of the keywords.
func ContainsAny(name string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func Load(r io.Reader) (*Base, error) {
	var b Base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode knowledge tables: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func LoadFile(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (b *Base) validate() error {
	for _, t := range []struct {
		name  string
		table Table
	}{{"aliases", b.Aliases}, {"genes", b.Genes}} {
		for i, r := range t.table {
			if r.Match == "" || r.Value == "" {
				return fmt.Errorf("%s[%d]: match and value are required", t.name, i)
			}
			if r.Match != strings.ToLower(r.Match) {
				return fmt.Errorf("%s[%d]: match %q must be lower-case", t.name, i, r.Match)
			}
		}
	}
	for key, hs := range b.Mutations {
		if len(hs) > MaxMutationsPerKey {
			return fmt.Errorf("mutations.%s: %d entries, at most %d allowed", key, len(hs), MaxMutationsPerKey)
		}
		for i, h := range hs {
			if h.Position < 1 {
				return fmt.Errorf("mutations.%s[%d]: position must be >= 1", key, i)
			}
			if h.Confidence < 0 || h.Confidence > 1 {
				return fmt.Errorf("mutations.%s[%d]: confidence %v outside [0,1]", key, i, h.Confidence)
			}
			switch h.Severity {
			case protein.SeverityLow, protein.SeverityMedium, protein.SeverityHigh:
			default:
				return fmt.Errorf("mutations.%s[%d]: unknown severity %q", key, i, h.Severity)
			}
		}
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultBase *Base
)

// Default returns the tables compiled into the binary.
func Default() *Base {
	defaultOnce.Do(func() {
		b, err := Load(bytes.NewReader(embeddedTables))
		if err != nil {
			panic(fmt.Sprintf("embedded knowledge tables: %v", err))
		}
		defaultBase = b
	})
	return defaultBase
}
