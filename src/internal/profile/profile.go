// Package profile estimates secondary-structure composition and simple
// physico-chemical indices from a residue sequence.
package profile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"

	"proteomorphic/src/internal/embedding"
	"proteomorphic/src/internal/logging"
	"proteomorphic/src/internal/protein"
)

// ErrEmptySequence is returned by every ratio computation on an empty sequence.
var ErrEmptySequence = errors.New("empty sequence")

// PlaceholderSequence is analysed when a request carries no sequence.
const PlaceholderSequence = "MKVLWAALLVTFLAGCQAKVEQAVETEPEPELRQQTEWQSGQRWELALGRFWDYLRWVQTLSEQVQEELLSSQVTQELRALMDETMKELKAYKSELEEQLTPVAEETRARLSKELQAAQARLGADMEDVCGRLVQYRGEVQAMLGQSTEELRVRLASHLRKLRKRLLRDADDLQKRLAVYQAGAREGAERGLSAIRERLGPLVEQGRVRAATVGSLAGQPLQERAQAWGERLRARMEEMGSRTRDRLDEVKEQVAEVRAKLEEQAQQIRLQAEAFQARLKSWFEPLVEDMQRQWAGLVEKVQAAVGTSAAPVPSDNH"

const (
	helixFormers = "AELM"
	sheetFormers = "VIY"
	charged      = "DEKR"
	hydrophobic  = "AILMFWYV"
)

// Normalize strips FASTA header and comment lines, whitespace and position
// numbers, and upper-cases the remaining residue letters. ASCII letters outside
// the standard alphabet are kept; any non-ASCII rune becomes 'X' so the result
// is one byte per residue.
func Normalize(raw string) string {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), len(raw)+1)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, ">") || strings.HasPrefix(line, ";") {
			continue
		}
		for _, r := range line {
			if unicode.IsSpace(r) || unicode.IsDigit(r) {
				continue
			}
			if r > unicode.MaxASCII {
				b.WriteByte('X')
				continue
			}
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// CountIn counts residues of seq that belong to set.
func CountIn(seq, set string) int {
	n := 0
	for i := 0; i < len(seq); i++ {
		if strings.IndexByte(set, seq[i]) >= 0 {
			n++
		}
	}
	return n
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Compute is the pure profile computation.
func Compute(seq string) (protein.StructureProfile, error) {
	if len(seq) == 0 {
		return protein.StructureProfile{}, ErrEmptySequence
	}
	total := float64(len(seq))

	helix := Round(float64(CountIn(seq, helixFormers))/total*100, 1)
	sheet := Round(float64(CountIn(seq, sheetFormers))/total*100, 1)

	return protein.StructureProfile{
		AlphaHelix:       helix,
		BetaSheet:        sheet,
		RandomCoil:       Round(100-helix-sheet, 1),
		InstabilityIndex: Round(float64(CountIn(seq, charged))/total*100, 2),
		Gravy:            Round(float64(CountIn(seq, hydrophobic))/total-0.5, 3),
		Length:           len(seq),
	}, nil
}

// Fallback is the placeholder profile reported when Compute fails.
func Fallback(err error) protein.StructureProfile {
	return protein.StructureProfile{
		AlphaHelix: 35.0,
		BetaSheet:  25.0,
		RandomCoil: 40.0,
		Error:      err.Error(),
	}
}

// Profiler wraps Compute with the optional embedding-derived disorder score.
type Profiler struct {
	embedder  embedding.Embedder
	maxTokens int
	timeout   time.Duration
	log       *slog.Logger
}

// NewProfiler returns a profiler. A nil embedder disables the disorder score.
func NewProfiler(e embedding.Embedder, maxTokens int, timeout time.Duration) *Profiler {
	return &Profiler{
		embedder:  e,
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       logging.New("profile"),
	}
}

// Profile never fails: computation errors produce the fallback profile and
// enrichment errors leave DisorderScore nil.
func (p *Profiler) Profile(ctx context.Context, seq string) (prof protein.StructureProfile) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("structure analysis panic", "panic", r)
			prof = Fallback(fmt.Errorf("%v", r))
		}
	}()

	prof, err := Compute(seq)
	if err != nil {
		p.log.Error("structure analysis error", "error", err)
		return Fallback(err)
	}

	if score, err := p.disorderScore(ctx, seq); err != nil {
		if errors.Is(err, embedding.ErrUnavailable) {
			p.log.Debug("disorder score skipped", "reason", err)
		} else {
			p.log.Warn("embedding prediction failed", "error", err)
		}
	} else {
		prof.DisorderScore = &score
	}
	return prof
}

func (p *Profiler) disorderScore(ctx context.Context, seq string) (score float64, err error) {
	if p.embedder == nil {
		return 0, embedding.ErrUnavailable
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embedder panic: %v", r)
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tensor, err := p.embedder.Embed(ctx, embedding.Truncate(seq, p.maxTokens))
	if err != nil {
		return 0, err
	}
	v, err := embedding.Variance(tensor)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite embedding variance")
	}
	return Round(v, 4), nil
}
