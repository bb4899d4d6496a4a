package crispr

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/profile"
	"proteomorphic/src/internal/protein"
)

func hotspots(n int) []protein.Hotspot {
	all := []protein.Hotspot{
		{Residue: "A53T", Position: 53, Severity: protein.SeverityHigh, Confidence: 0.94},
		{Residue: "A30P", Position: 30, Severity: protein.SeverityHigh, Confidence: 0.88},
		{Residue: "L5L", Position: 5, Severity: protein.SeverityMedium, Confidence: 0.75},
		{Residue: "V9F", Position: 9, Severity: protein.SeverityMedium, Confidence: 0.75},
	}
	return all[:n]
}

func TestDesignNilWithoutHotspots(t *testing.T) {
	d := NewDesigner(knowledge.Default())
	if got := d.Design(nil, "alpha-synuclein"); got != nil {
		t.Errorf("Design(nil) = %+v, want nil", got)
	}
	if got := d.Design([]protein.Hotspot{}, "alpha-synuclein"); got != nil {
		t.Errorf("Design(empty) = %+v, want nil", got)
	}
}

func TestDesignDeterministic(t *testing.T) {
	d := NewDesigner(knowledge.Default())
	a := d.Design(hotspots(2), "alpha-synuclein")
	b := d.Design(hotspots(2), "alpha-synuclein")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Design not deterministic (-first +second):\n%s", diff)
	}
}

func TestDesignShape(t *testing.T) {
	d := NewDesigner(knowledge.Default())
	design := d.Design(hotspots(4), "Alpha-Synuclein")
	if design == nil {
		t.Fatal("expected a design")
	}
	if design.Gene != "SNCA" {
		t.Errorf("Gene = %q, want SNCA", design.Gene)
	}
	if design.DeliverySystem != DeliveryBrain {
		t.Errorf("DeliverySystem = %q", design.DeliverySystem)
	}
	if len(design.GuideRNAs) != MaxGuides {
		t.Fatalf("got %d guides, want %d", len(design.GuideRNAs), MaxGuides)
	}
	if diff := cmp.Diff([]string{"A53T", "A30P", "L5L"}, design.TargetMutations); diff != "" {
		t.Errorf("TargetMutations mismatch (-want +got):\n%s", diff)
	}

	var sum float64
	for i, g := range design.GuideRNAs {
		if len(g.Sequence) != 20 || strings.Trim(g.Sequence, "ACGT") != "" {
			t.Errorf("guide %d: bad spacer %q", i, g.Sequence)
		}
		if last := g.Sequence[19]; last != 'G' && last != 'C' {
			t.Errorf("guide %d: spacer ends with %c", i, last)
		}
		if len(g.PAM) != 3 || !strings.HasSuffix(g.PAM, "GG") || !strings.ContainsRune("ACGT", rune(g.PAM[0])) {
			t.Errorf("guide %d: bad PAM %q", i, g.PAM)
		}
		if g.FullSequence != g.Sequence+g.PAM {
			t.Errorf("guide %d: FullSequence %q", i, g.FullSequence)
		}
		wantGC := profile.Round(float64(strings.Count(g.Sequence, "G")+strings.Count(g.Sequence, "C"))/20*100, 1)
		if g.GCContent != wantGC {
			t.Errorf("guide %d: GCContent = %v, want %v", i, g.GCContent, wantGC)
		}
		if g.GCContent >= 40 && g.GCContent <= 60 {
			if g.Efficiency < 0.85 || g.Efficiency > 0.98 {
				t.Errorf("guide %d: efficiency %v outside optimal range", i, g.Efficiency)
			}
		} else if g.Efficiency < 0.70 || g.Efficiency > 0.84 {
			t.Errorf("guide %d: efficiency %v outside sub-optimal range", i, g.Efficiency)
		}
		if g.OffTargets < 0 || g.OffTargets > 3 {
			t.Errorf("guide %d: OffTargets = %d", i, g.OffTargets)
		}
		if (g.OffTargets == 0) != (g.Specificity == protein.SpecificityHigh) {
			t.Errorf("guide %d: specificity %q with %d off-targets", i, g.Specificity, g.OffTargets)
		}
		if !strings.HasPrefix(g.TargetSite, "Exon ") {
			t.Errorf("guide %d: TargetSite = %q", i, g.TargetSite)
		}
		if g.TargetMutation != design.TargetMutations[i] {
			t.Errorf("guide %d: TargetMutation = %q", i, g.TargetMutation)
		}
		sum += g.Efficiency
	}
	if want := profile.Round(sum/3*100, 1); design.SuccessProbability != want {
		t.Errorf("SuccessProbability = %v, want %v", design.SuccessProbability, want)
	}
}

func TestNewGuideRanges(t *testing.T) {
	for seed := uint64(0); seed < 2000; seed++ {
		g := NewGuide(seed, "X1Y")
		var exon int
		if _, err := fmt.Sscanf(g.TargetSite, "Exon %d", &exon); err != nil || exon < 2 || exon >= 18 {
			t.Fatalf("seed %d: TargetSite = %q", seed, g.TargetSite)
		}
		if g.Efficiency > 0.9 && g.OffTargets != 0 {
			t.Fatalf("seed %d: efficiency %v with %d off-targets", seed, g.Efficiency, g.OffTargets)
		}
		if g.OffTargets == 0 && g.Efficiency < 0.9 {
			t.Fatalf("seed %d: no off-targets at efficiency %v", seed, g.Efficiency)
		}
	}
}

func TestGene(t *testing.T) {
	d := NewDesigner(knowledge.Default())
	tests := map[string]string{
		"Amyloid Precursor Protein": "APP",
		"tau":                       "MAPT",
		"Parkinson protein":         "SNCA",
		"Huntingtin":                "HTT",
		"SOD1":                      "SOD1",
		"TDP-43":                    "TARDBP",
		"FUS":                       "FUS",
		"CFTR":                      "CFTR",
		"Tumor protein p53":         "TP53",
		"BRCA1":                     "BRCA1",
		"Random Test Protein":       "RAND-1",
		"Ab":                        "AB-1",
	}
	for in, want := range tests {
		if got := d.Gene(in); got != want {
			t.Errorf("Gene(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeliverySystem(t *testing.T) {
	d := NewDesigner(knowledge.Default())
	if got := d.Design(hotspots(1), "Neuroserpin"); got.DeliverySystem != DeliveryBrain {
		t.Errorf("neuro name: %q", got.DeliverySystem)
	}
	if got := d.Design(hotspots(1), "CFTR"); got.DeliverySystem != DeliveryLNP {
		t.Errorf("CFTR: %q", got.DeliverySystem)
	}
}

func TestSeed(t *testing.T) {
	// "ab" + "X1" + "7" = 97+98+88+49+55
	if got := Seed("ab", protein.Hotspot{Residue: "X1", Position: 7}); got != 387 {
		t.Errorf("Seed = %d, want 387", got)
	}
}

func TestDesignRecoversFromPanics(t *testing.T) {
	d := &Designer{kb: nil, log: NewDesigner(knowledge.Default()).log}
	if got := d.Design(hotspots(1), "anything"); got != nil {
		t.Errorf("got %+v, want nil after internal failure", got)
	}
}

func TestNewGuideGolden(t *testing.T) {
	tests := []struct {
		hotspot protein.Hotspot
		seed    uint64
		want    protein.GuideRNA
	}{
		{
			hotspot: protein.Hotspot{Residue: "A53T", Position: 53},
			seed:    1906,
			want: protein.GuideRNA{
				Sequence:       "AACATGAAACTGCACAGACG",
				PAM:            "CGG",
				FullSequence:   "AACATGAAACTGCACAGACGCGG",
				TargetSite:     "Exon 3",
				TargetMutation: "A53T",
				Efficiency:     0.97,
				OffTargets:     0,
				GCContent:      45,
				Specificity:    protein.SpecificityHigh,
			},
		},
		{
			hotspot: protein.Hotspot{Residue: "A30P", Position: 30},
			seed:    1892,
			want: protein.GuideRNA{
				Sequence:       "GTATAGGCGGATCCTGTAAG",
				PAM:            "AGG",
				FullSequence:   "GTATAGGCGGATCCTGTAAGAGG",
				TargetSite:     "Exon 6",
				TargetMutation: "A30P",
				Efficiency:     0.96,
				OffTargets:     0,
				GCContent:      50,
				Specificity:    protein.SpecificityHigh,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.hotspot.Residue, func(t *testing.T) {
			seed := Seed("alpha-synuclein", tt.hotspot)
			if seed != tt.seed {
				t.Fatalf("Seed = %d, want %d", seed, tt.seed)
			}
			if diff := cmp.Diff(tt.want, NewGuide(seed, tt.hotspot.Residue)); diff != "" {
				t.Errorf("guide mismatch (-want +got):\n%s", diff)
			}
		})
	}

	design := NewDesigner(knowledge.Default()).Design(hotspots(2), "alpha-synuclein")
	if design.SuccessProbability != 96.5 {
		t.Errorf("SuccessProbability = %v, want 96.5", design.SuccessProbability)
	}
}
