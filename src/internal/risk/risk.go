// Package risk turns sequence statistics, hotspot count and name
// classification into a bounded misfolding risk score.
package risk

import (
	"strings"

	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/profile"
	"proteomorphic/src/internal/protein"
)

const (
	MinScore = 5
	MaxScore = 99

	baseline       = 20
	healthyCeiling = 30
	diseaseFloor   = 75
	perHotspot     = 8

	aggregationProne = "VILMFW"
	positive         = "KRH"
	negative         = "DE"
)

var unstableDipeptides = map[string]struct{}{
	"AV": {}, "IE": {}, "KK": {}, "NL": {}, "RR": {}, "WW": {}, "YY": {},
}

type dipeptideClass int

const (
	neutral dipeptideClass = iota
	unstable
	prolineContaining
)

// classify evaluates the rules in priority order, so a window scores under
// at most one of them.
func classify(pair string) dipeptideClass {
	if _, ok := unstableDipeptides[pair]; ok {
		return unstable
	}
	if strings.IndexByte(pair, 'P') >= 0 {
		return prolineContaining
	}
	return neutral
}

// Stats are the raw sequence statistics the score is built from.
type Stats struct {
	Instability    float64
	Hydrophobicity float64
	NetCharge      int
	Length         int
}

func ComputeStats(seq string) (Stats, error) {
	if len(seq) == 0 {
		return Stats{}, profile.ErrEmptySequence
	}

	counter := 0
	for i := 0; i+1 < len(seq); i++ {
		switch classify(seq[i : i+2]) {
		case unstable:
			counter += 10
		case prolineContaining:
			counter += 5
		}
	}

	total := float64(len(seq))
	net := profile.CountIn(seq, positive) - profile.CountIn(seq, negative)
	if net < 0 {
		net = -net
	}
	return Stats{
		Instability:    float64(counter) / total * 100,
		Hydrophobicity: float64(profile.CountIn(seq, aggregationProne)) / total,
		NetCharge:      net,
		Length:         len(seq),
	}, nil
}

type Scorer struct {
	kb *knowledge.Base
}

func NewScorer(kb *knowledge.Base) *Scorer {
	return &Scorer{kb: kb}
}

// Score returns the clamped score and its level. seq must be non-empty.
func (s *Scorer) Score(seq, name string, hotspotCount int) (protein.RiskAssessment, error) {
	st, err := ComputeStats(seq)
	if err != nil {
		return protein.RiskAssessment{}, err
	}

	score := baseline

	switch {
	case st.Instability > 20:
		score += 30
	case st.Instability > 10:
		score += 15
	}

	switch {
	case st.Hydrophobicity > 0.45:
		score += 35
	case st.Hydrophobicity > 0.35:
		score += 20
	}

	if st.NetCharge < 2 && st.Length > 50 {
		score += 15
	}

	score += perHotspot * hotspotCount

	lower := strings.ToLower(name)
	if knowledge.ContainsAny(lower, s.kb.Healthy) {
		score = min(score, healthyCeiling)
	}
	if knowledge.ContainsAny(lower, s.kb.Disease) {
		score = max(score, diseaseFloor)
	}

	score = max(MinScore, min(MaxScore, score))
	return protein.RiskAssessment{Score: score, Level: LevelFor(score)}, nil
}

// LevelFor maps a score to its category, highest threshold first.
func LevelFor(score int) protein.RiskLevel {
	switch {
	case score >= 85:
		return protein.RiskCritical
	case score >= 70:
		return protein.RiskHigh
	case score >= 50:
		return protein.RiskElevated
	case score >= 30:
		return protein.RiskMedium
	default:
		return protein.RiskLow
	}
}
