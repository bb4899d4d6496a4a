package hotspot

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/profile"
	"proteomorphic/src/internal/protein"
)

func newDetector() *Detector {
	return NewDetector(knowledge.Default())
}

func TestCanonicalName(t *testing.T) {
	d := newDetector()
	tests := map[string]string{
		"  Parkinson's Disease ": "synuclein",
		"alpha-synuclein":        "synuclein",
		"SNCA":                   "synuclein",
		"Amyloid beta":           "app",
		"Alzheimer":              "app",
		"MAPT":                   "tau",
		"Huntingtin":             "htt",
		"Prion protein":          "prp",
		"SOD1":                   "sod",
		"Familial ALS":           "sod",
		"tau":                    "tau",
		"Random Test Protein":    "random test protein",
	}
	for in, want := range tests {
		if got := d.CanonicalName(in); got != want {
			t.Errorf("CanonicalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDetectKnownMutations(t *testing.T) {
	d := newDetector()

	got := d.Detect(profile.PlaceholderSequence, "alpha-synuclein")
	want := []string{"A53T", "A30P"}
	var residues []string
	for _, h := range got {
		residues = append(residues, h.Residue)
	}
	if diff := cmp.Diff(want, residues); diff != "" {
		t.Errorf("residues mismatch (-want +got):\n%s", diff)
	}
	if got[0].Position != 53 || got[0].Severity != protein.SeverityHigh {
		t.Errorf("first hotspot = %+v", got[0])
	}

	for _, name := range []string{"APP", "Amyloid precursor", "tau", "MAPT"} {
		if hs := d.Detect("", name); len(hs) != 2 {
			t.Errorf("%s: got %d hotspots, want 2", name, len(hs))
		}
	}
}

func TestDetectKeyMustMatchExactly(t *testing.T) {
	// "tau protein" has no alias and is not itself a table key, so it scans.
	hs := newDetector().Detect("DEDEDEDEDEDEDE", "tau protein")
	if len(hs) != 0 {
		t.Errorf("got %d hotspots, want scan result (0)", len(hs))
	}
}

func TestScan(t *testing.T) {
	seq := "DDDDLLLLLLLDDDDDDD"
	got := Scan(seq)
	want := []protein.Hotspot{
		{Residue: "D3L", Position: 3, Severity: protein.SeverityMedium, Confidence: 0.75, Impact: scanImpact},
		{Residue: "D4L", Position: 4, Severity: protein.SeverityMedium, Confidence: 0.75, Impact: scanImpact},
		{Residue: "L5L", Position: 5, Severity: protein.SeverityMedium, Confidence: 0.75, Impact: scanImpact},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScanThresholdIsStrict(t *testing.T) {
	// 5/7 hydrophobic = 71.4% passes, 4/7 does not.
	if hs := Scan("LLLLLDDD"); len(hs) != 1 {
		t.Errorf("5/7 window: got %d hotspots, want 1", len(hs))
	}
	if hs := Scan("LLLLDDDD"); len(hs) != 0 {
		t.Errorf("4/7 window: got %d hotspots, want 0", len(hs))
	}
}

func TestScanSkipsFinalWindow(t *testing.T) {
	// The only hydrophobic window ends on the last residue.
	if hs := Scan("DDDLLLLL"); len(hs) != 0 {
		t.Errorf("got %+v, want no hotspots", hs)
	}
	if hs := Scan("LLLLLLL"); len(hs) != 0 {
		t.Errorf("length-7 sequence: got %+v, want none", hs)
	}
}

func TestScanCapsAtThree(t *testing.T) {
	hs := Scan(strings.Repeat("L", 40))
	if len(hs) != MaxHotspots {
		t.Fatalf("got %d hotspots, want %d", len(hs), MaxHotspots)
	}
	for i, h := range hs {
		if h.Position != i+1 {
			t.Errorf("hotspot %d position = %d, want %d", i, h.Position, i+1)
		}
	}
}

func TestDetectHydrophilicIsEmpty(t *testing.T) {
	hs := newDetector().Detect("DEDEDEDEDEDEDEDEDEDEDEDEDEDEDE", "Random Test Protein")
	if hs == nil || len(hs) != 0 {
		t.Errorf("got %#v, want empty non-nil list", hs)
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := newDetector()
	seq := "MKLLVVAILLAGDEKKLLLFFWVVDDE"
	a := d.Detect(seq, "Some Novel Kinase")
	b := d.Detect(seq, "Some Novel Kinase")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Detect not deterministic (-first +second):\n%s", diff)
	}
	if len(a) == 0 {
		t.Error("expected hydrophobic hotspots in test sequence")
	}
}

func TestDetectRecoversFromPanics(t *testing.T) {
	d := &Detector{kb: nil, log: newDetector().log}
	hs := d.Detect("LLLLLLLLL", "anything")
	if hs == nil || len(hs) != 0 {
		t.Errorf("got %#v, want empty list after internal failure", hs)
	}
}

func TestScanNonASCIIInput(t *testing.T) {
	hs := Scan(profile.Normalize("Éllllllllll"))
	var got []string
	for _, h := range hs {
		got = append(got, h.Residue)
	}
	if diff := cmp.Diff([]string{"X1L", "L2L", "L3L"}, got); diff != "" {
		t.Errorf("residues mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectCapsKnownMutations(t *testing.T) {
	kb := &knowledge.Base{Mutations: map[string][]protein.Hotspot{
		"foo": {
			{Residue: "A1B", Position: 1, Severity: protein.SeverityLow, Confidence: 0.5},
			{Residue: "C2D", Position: 2, Severity: protein.SeverityLow, Confidence: 0.5},
			{Residue: "E3F", Position: 3, Severity: protein.SeverityLow, Confidence: 0.5},
			{Residue: "G4H", Position: 4, Severity: protein.SeverityLow, Confidence: 0.5},
		},
	}}
	d := &Detector{kb: kb, log: newDetector().log}
	hs := d.Detect("MKV", "foo")
	if len(hs) != MaxHotspots {
		t.Fatalf("got %d hotspots, want %d", len(hs), MaxHotspots)
	}
	if hs[2].Residue != "E3F" {
		t.Errorf("last kept hotspot = %q, want E3F", hs[2].Residue)
	}
}
