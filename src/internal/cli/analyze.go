package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"proteomorphic/src/internal/analysis"
	"proteomorphic/src/internal/protein"
)

type analyzeOptions struct {
	name     string
	sequence string
	fasta    string
	format   string
}

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse one protein and print the report",
		Long: `Run the full pipeline once and print the report.

The sequence may be given inline or read from a FASTA file. Without either,
a built-in placeholder sequence is analysed.`,
		Example: `  proteomorphic analyze --name alpha-synuclein
  proteomorphic analyze --name "My protein" --fasta seq.fasta --format text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.setup(cmd)
			if err != nil {
				return err
			}
			req, err := opts.request()
			if err != nil {
				return err
			}

			ctx := runContext(cmd)
			a, _, err := buildAnalyzer(ctx, cfg)
			if err != nil {
				return err
			}
			report, err := a.Analyze(ctx, req, nil)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, opts.format)
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "protein name (required)")
	cmd.Flags().StringVarP(&opts.sequence, "sequence", "s", "", "amino-acid sequence")
	cmd.Flags().StringVarP(&opts.fasta, "fasta", "f", "", "read the sequence from a FASTA file")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or text")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("sequence", "fasta")
	return cmd
}

func (o analyzeOptions) request() (analysis.Request, error) {
	switch o.format {
	case "json", "text":
	default:
		return analysis.Request{}, fmt.Errorf("unknown format %q (want json or text)", o.format)
	}
	req := analysis.Request{Name: o.name, Sequence: o.sequence}
	if o.fasta != "" {
		data, err := os.ReadFile(o.fasta)
		if err != nil {
			return analysis.Request{}, fmt.Errorf("read fasta: %w", err)
		}
		req.Sequence = string(data)
	}
	return req, nil
}

func writeReport(w io.Writer, r *protein.Report, format string) error {
	if format == "text" {
		_, err := io.WriteString(w, renderReport(r))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(20)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func riskStyle(level protein.RiskLevel) lipgloss.Style {
	color := "42"
	switch level {
	case protein.RiskCritical:
		color = "196"
	case protein.RiskHigh:
		color = "202"
	case protein.RiskElevated:
		color = "214"
	case protein.RiskMedium:
		color = "226"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func renderReport(r *protein.Report) string {
	s := r.Structure
	summary := []string{
		titleStyle.Render(r.ProteinName),
		row("Misfolding risk", riskStyle(r.RiskLevel).Render(fmt.Sprintf("%d (%s)", r.MisfoldingRisk, r.RiskLevel))),
		row("Confidence", fmt.Sprintf("%d%%", r.Confidence)),
		row("Method", r.AnalysisMethod),
		row("Length", fmt.Sprintf("%d", s.Length)),
		row("Helix/Sheet/Coil", fmt.Sprintf("%.1f / %.1f / %.1f", s.AlphaHelix, s.BetaSheet, s.RandomCoil)),
		row("Instability index", fmt.Sprintf("%.2f", s.InstabilityIndex)),
		row("GRAVY", fmt.Sprintf("%.3f", s.Gravy)),
	}
	if s.DisorderScore != nil {
		summary = append(summary, row("Disorder score", fmt.Sprintf("%.4f", *s.DisorderScore)))
	}
	if s.Error != "" {
		summary = append(summary, row("Structure error", s.Error))
	}

	blocks := []string{boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, summary...))}

	if len(r.Hotspots) > 0 {
		lines := []string{titleStyle.Render("Hotspots")}
		for _, h := range r.Hotspots {
			lines = append(lines, fmt.Sprintf("%-8s pos %-5d %-6s %.2f  %s", h.Residue, h.Position, h.Severity, h.Confidence, h.Impact))
		}
		blocks = append(blocks, boxStyle.Render(strings.Join(lines, "\n")))
	}

	if d := r.CRISPRDesign; d != nil {
		lines := []string{
			titleStyle.Render("CRISPR design"),
			row("Gene", d.Gene),
			row("Delivery", d.DeliverySystem),
			row("Success", fmt.Sprintf("%.1f%%", d.SuccessProbability)),
		}
		for _, g := range d.GuideRNAs {
			lines = append(lines, fmt.Sprintf("%s %s  %-7s %-6s eff %.2f  GC %.1f%%  off-targets %d",
				g.Sequence, g.PAM, g.TargetSite, g.TargetMutation, g.Efficiency, g.GCContent, g.OffTargets))
		}
		blocks = append(blocks, boxStyle.Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}
