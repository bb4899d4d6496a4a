// Package hotspot flags misfolding-prone sites: curated pathogenic mutations
// for well-known proteins, otherwise hydrophobic windows found by a scan.
package hotspot

import (
	"fmt"
	"log/slog"
	"strings"

	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/logging"
	"proteomorphic/src/internal/protein"
)

const (
	WindowSize  = 7
	MaxHotspots = 3

	hydrophobic       = "AILMFWYV"
	hydrophobicCutoff = 0.7
	scanConfidence    = 0.75
	scanImpact        = "Hydrophobic region - potential aggregation site"
)

type Detector struct {
	kb  *knowledge.Base
	log *slog.Logger
}

func NewDetector(kb *knowledge.Base) *Detector {
	return &Detector{kb: kb, log: logging.New("hotspot")}
}

// CanonicalName lower-cases and trims name, then rewrites it to the canonical
// key of the first matching alias.
func (d *Detector) CanonicalName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if key, ok := d.kb.Aliases.First(n); ok {
		return key
	}
	return n
}

// Detect returns at most MaxHotspots entries in discovery order. It never
// panics; internal failures yield an empty list.
func (d *Detector) Detect(seq, name string) (hotspots []protein.Hotspot) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("hotspot prediction error", "panic", r)
			hotspots = []protein.Hotspot{}
		}
	}()

	key := d.CanonicalName(name)
	if known, ok := d.kb.KnownMutations(key); ok {
		if len(known) > MaxHotspots {
			known = known[:MaxHotspots]
		}
		d.log.Info("using known hotspots", "protein", key, "mutations", len(known))
		return known
	}
	return Scan(seq)
}

// Scan slides a WindowSize window over seq and emits windows with more than
// 70% hydrophobic residues. Windows start at positions 1..len-WindowSize, so
// the window ending on the last residue is not examined.
func Scan(seq string) []protein.Hotspot {
	found := []protein.Hotspot{}
	for i := 0; i < len(seq)-WindowSize; i++ {
		window := seq[i : i+WindowSize]
		n := 0
		for j := 0; j < WindowSize; j++ {
			if strings.IndexByte(hydrophobic, window[j]) >= 0 {
				n++
			}
		}
		if float64(n)/WindowSize <= hydrophobicCutoff {
			continue
		}
		found = append(found, protein.Hotspot{
			Residue:    fmt.Sprintf("%c%d%c", window[0], i+1, window[WindowSize-1]),
			Position:   i + 1,
			Severity:   protein.SeverityMedium,
			Confidence: scanConfidence,
			Impact:     scanImpact,
		})
		if len(found) == MaxHotspots {
			break
		}
	}
	return found
}
