// Package analysis runs the misfolding pipeline for one protein and assembles
// the report. Profiling runs alongside the detect, score and design chain.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"proteomorphic/src/internal/crispr"
	"proteomorphic/src/internal/embedding"
	"proteomorphic/src/internal/hotspot"
	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/logging"
	"proteomorphic/src/internal/profile"
	"proteomorphic/src/internal/protein"
	"proteomorphic/src/internal/risk"
)

// ErrProteinNameRequired is the only client input error.
var ErrProteinNameRequired = errors.New("protein name is required")

const (
	MethodModelAssisted = "model-assisted"
	MethodRuleBased     = "rule-based"
)

// Stage names reported to an Observer, in the order they can complete.
const (
	StageStructure = "structure"
	StageHotspots  = "hotspots"
	StageRisk      = "risk"
	StageCRISPR    = "crispr"
)

type Request struct {
	Name     string `json:"proteinName"`
	Sequence string `json:"proteinSequence"`
}

// Event carries one finished stage. Data is the stage output: a
// StructureProfile, []Hotspot, RiskAssessment or *GuideDesign.
type Event struct {
	Stage string
	Data  any
}

// Observer is called once per finished stage. Calls for one request never
// overlap.
type Observer func(Event)

type Analyzer struct {
	profiler *profile.Profiler
	detector *hotspot.Detector
	scorer   *risk.Scorer
	designer *crispr.Designer

	confidence func() int
	now        func() time.Time
	log        *slog.Logger
}

type Option func(*Analyzer)

// WithConfidence replaces the default confidence draw.
func WithConfidence(f func() int) Option {
	return func(a *Analyzer) { a.confidence = f }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithEmbedder enables the disorder score. A nil embedder leaves every
// analysis rule-based.
func WithEmbedder(e embedding.Embedder, maxTokens int, timeout time.Duration) Option {
	return func(a *Analyzer) { a.profiler = profile.NewProfiler(e, maxTokens, timeout) }
}

// New builds an analyzer over the given knowledge tables. kb may be nil to
// use the embedded defaults.
func New(kb *knowledge.Base, opts ...Option) *Analyzer {
	if kb == nil {
		kb = knowledge.Default()
	}
	a := &Analyzer{
		profiler:   profile.NewProfiler(nil, 0, 0),
		detector:   hotspot.NewDetector(kb),
		scorer:     risk.NewScorer(kb),
		designer:   crispr.NewDesigner(kb),
		confidence: func() int { return 80 + rand.IntN(18) },
		now:        time.Now,
		log:        logging.New("analysis"),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze runs every stage and returns the report. Stage failures degrade to
// their fallbacks; only a missing name or a failed assembly returns an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request, obs Observer) (*protein.Report, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrProteinNameRequired
	}
	seq := profile.Normalize(req.Sequence)
	if seq == "" {
		seq = profile.PlaceholderSequence
	}

	start := time.Now()
	emit := serialize(obs)

	var (
		structure protein.StructureProfile
		hotspots  []protein.Hotspot
		assess    protein.RiskAssessment
		design    *protein.GuideDesign
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		structure = a.profiler.Profile(gctx, seq)
		emit(StageStructure, structure)
		return nil
	})
	g.Go(func() error {
		hotspots = a.detector.Detect(seq, name)
		emit(StageHotspots, hotspots)

		var err error
		assess, err = a.scorer.Score(seq, name, len(hotspots))
		if err != nil {
			return fmt.Errorf("risk scoring: %w", err)
		}
		emit(StageRisk, assess)

		design = a.designer.Design(hotspots, name)
		emit(StageCRISPR, design)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := a.assemble(name, structure, hotspots, assess, design)
	if err != nil {
		return nil, err
	}

	a.log.Info("analysis complete",
		"protein", name,
		"length", len(seq),
		"risk", report.MisfoldingRisk,
		"hotspots", len(hotspots),
		"method", report.AnalysisMethod,
		"duration", time.Since(start),
	)
	return report, nil
}

func (a *Analyzer) assemble(name string, structure protein.StructureProfile, hotspots []protein.Hotspot,
	assess protein.RiskAssessment, design *protein.GuideDesign) (report *protein.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			report, err = nil, fmt.Errorf("assemble report: %v", r)
		}
	}()

	method := MethodRuleBased
	if structure.DisorderScore != nil {
		method = MethodModelAssisted
	}
	if hotspots == nil {
		hotspots = []protein.Hotspot{}
	}

	return &protein.Report{
		ProteinID:      name,
		ProteinName:    name,
		MisfoldingRisk: assess.Score,
		RiskLevel:      assess.Level,
		Confidence:     a.confidence(),
		Structure:      structure,
		Hotspots:       hotspots,
		CRISPRDesign:   design,
		AnalysisMethod: method,
		Timestamp:      a.now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func serialize(obs Observer) func(stage string, data any) {
	if obs == nil {
		return func(string, any) {}
	}
	var mu sync.Mutex
	return func(stage string, data any) {
		mu.Lock()
		defer mu.Unlock()
		obs(Event{Stage: stage, Data: data})
	}
}
