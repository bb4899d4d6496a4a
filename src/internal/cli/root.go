/*
Package cli implements the proteomorphic commands.

	proteomorphic serve     run the HTTP and websocket API
	proteomorphic analyze   analyse one protein and print the report
	proteomorphic version   show build and runtime information
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"proteomorphic/src/internal/analysis"
	"proteomorphic/src/internal/config"
	"proteomorphic/src/internal/embedding"
	"proteomorphic/src/internal/knowledge"
	"proteomorphic/src/internal/logging"
)

// BuildInfo is set via ldflags in main.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd(info BuildInfo) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "proteomorphic",
		Short: "Protein misfolding risk analysis service",
		Long: `proteomorphic estimates secondary structure, flags aggregation hotspots,
scores misfolding risk and proposes CRISPR guide RNAs for a protein.

Run "proteomorphic serve" for the HTTP API or "proteomorphic analyze" for a
one-off report.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newServeCmd(&g))
	root.AddCommand(newAnalyzeCmd(&g))
	root.AddCommand(newVersionCmd(info))
	return root
}

// setup loads configuration, initialises logging and returns the config.
// Flags win over the config file.
func (g *globalFlags) setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logging.Init(level, cfg.Logging.Format, cmd.ErrOrStderr())
	return cfg, nil
}

// buildAnalyzer loads the knowledge tables and the embedding backend. A
// backend that fails to load leaves analyses rule-based.
func buildAnalyzer(ctx context.Context, cfg *config.Config) (*analysis.Analyzer, *embedding.Service, error) {
	kb := knowledge.Default()
	if cfg.Analysis.KnowledgeFile != "" {
		var err error
		kb, err = knowledge.LoadFile(cfg.Analysis.KnowledgeFile)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("knowledge tables loaded", "path", cfg.Analysis.KnowledgeFile)
	}

	svc := embedding.NewService(cfg.Embedding)
	// Load logs its own failure; the analyzer then stays rule-based.
	_ = svc.Load(ctx)

	a := analysis.New(kb, analysis.WithEmbedder(svc, cfg.Embedding.MaxTokens, cfg.Embedding.Timeout))
	return a, svc, nil
}
