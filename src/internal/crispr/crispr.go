// Package crispr proposes SpCas9 guide RNAs for the detected hotspots.
//
// Guides are synthetic: every draw comes from a generator seeded by the
// protein name and hotspot, so the same input always yields the same design.
package crispr

import (
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/logging"
	"proteomorphic/src/internal/profile"
	"proteomorphic/src/internal/protein"
)

const (
	MaxGuides = 3

	DeliveryBrain = "AAV9-PHP.eB (Blood-Brain Barrier Penetrant)"
	DeliveryLNP   = "LNP (Lipid Nanoparticle)"

	bases       = "ACGT"
	clampBases  = "GC"
	spacerLen   = 20
	minExon     = 2
	maxExon     = 18 // exclusive
	optimalGCLo = 40
	optimalGCHi = 60
)

var brainGenes = map[string]bool{"APP": true, "SNCA": true, "HTT": true}

type Designer struct {
	kb  *knowledge.Base
	log *slog.Logger
}

func NewDesigner(kb *knowledge.Base) *Designer {
	return &Designer{kb: kb, log: logging.New("crispr")}
}

// Gene resolves the gene symbol for a protein name. Unknown names get a
// placeholder built from their first four characters.
func (d *Designer) Gene(name string) string {
	if g, ok := d.kb.Genes.First(strings.ToLower(name)); ok {
		return g
	}
	r := []rune(name)
	if len(r) > 4 {
		r = r[:4]
	}
	return strings.ToUpper(string(r)) + "-1"
}

// Design returns nil when there are no hotspots or the design fails.
func (d *Designer) Design(hotspots []protein.Hotspot, name string) (design *protein.GuideDesign) {
	if len(hotspots) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("CRISPR design error", "panic", r)
			design = nil
		}
	}()

	if len(hotspots) > MaxGuides {
		hotspots = hotspots[:MaxGuides]
	}

	gene := d.Gene(name)
	guides := make([]protein.GuideRNA, 0, len(hotspots))
	targets := make([]string, 0, len(hotspots))
	var sum float64
	for _, h := range hotspots {
		g := NewGuide(Seed(name, h), h.Residue)
		guides = append(guides, g)
		targets = append(targets, h.Residue)
		sum += g.Efficiency
	}

	delivery := DeliveryLNP
	if strings.Contains(strings.ToLower(name), "neuro") || brainGenes[gene] {
		delivery = DeliveryBrain
	}

	return &protein.GuideDesign{
		Gene:               gene,
		GuideRNAs:          guides,
		DeliverySystem:     delivery,
		SuccessProbability: profile.Round(sum/float64(len(guides))*100, 1),
		TargetMutations:    targets,
	}
}

// Seed is the sum of the code points of name, residue label and position.
func Seed(name string, h protein.Hotspot) uint64 {
	var s uint64
	for _, r := range name + h.Residue + strconv.Itoa(h.Position) {
		s += uint64(r)
	}
	return s
}

// NewGuide draws one guide from a generator seeded with seed. The draw order
// is fixed: spacer, clamp base, PAM base, exon, efficiency, off-targets.
func NewGuide(seed uint64, target string) protein.GuideRNA {
	rng := rand.New(rand.NewPCG(seed, seed))

	spacer := make([]byte, spacerLen)
	for i := 0; i < spacerLen-1; i++ {
		spacer[i] = bases[rng.IntN(len(bases))]
	}
	spacer[spacerLen-1] = clampBases[rng.IntN(len(clampBases))]
	pam := string(bases[rng.IntN(len(bases))]) + "GG"

	gc := profile.Round(float64(profile.CountIn(string(spacer), clampBases))/spacerLen*100, 1)
	exon := minExon + rng.IntN(maxExon-minExon)

	var eff float64
	if gc >= optimalGCLo && gc <= optimalGCHi {
		eff = uniform(rng, 0.85, 0.98)
	} else {
		eff = uniform(rng, 0.70, 0.84)
	}

	off := 0
	if eff <= 0.9 {
		off = 1 + rng.IntN(3)
	}
	spec := protein.SpecificityModerate
	if off == 0 {
		spec = protein.SpecificityHigh
	}

	return protein.GuideRNA{
		Sequence:       string(spacer),
		PAM:            pam,
		FullSequence:   string(spacer) + pam,
		TargetSite:     "Exon " + strconv.Itoa(exon),
		TargetMutation: target,
		Efficiency:     profile.Round(eff, 2),
		OffTargets:     off,
		GCContent:      gc,
		Specificity:    spec,
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
