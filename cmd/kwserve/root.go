package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/kwserve/internal/cli"
	"github.com/bastiangx/kwserve/internal/logger"
	"github.com/bastiangx/kwserve/internal/utils"
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/config"
)

// newPrompter is swapped out in tests.
var newPrompter = func() cli.Prompter { return cli.HuhPrompter{} }

// app carries the global flags and the loaded config to every command.
type app struct {
	cfgFile       string
	debug         bool
	logLevel      string
	prefix        string
	detectPrefix  bool
	requireParens bool
	trimParens    bool
	limit         int
	format        string

	cfg     *config.Config
	cfgPath string
	paths   *utils.PathResolver
}

// Execute runs the command tree with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   AppName + " [TRAIN [DOC]]",
		Short: "Recommend keyword arguments for prefix.function(...) calls",
		Long: `kwserve learns which keyword arguments go with which functions from a
training document, then compares other documents against it.

Without a subcommand it trains from TRAIN, analyzes DOC and keeps asking
for more documents to analyze, prompting for anything not given.`,
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/kwserve/config.toml)")
	pf.BoolVarP(&a.debug, "debug", "d", false, "Toggle debug mode")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.prefix, "prefix", "", "call prefix (default from config, \"plt\")")
	pf.BoolVar(&a.detectPrefix, "detect-prefix", false, "detect the prefix from each document's imports")
	pf.BoolVar(&a.requireParens, "require-parens", false, "ignore prefix.name occurrences without '('")
	pf.BoolVar(&a.trimParens, "trim-parens", false, "drop '(' and ')' around the argument text")
	pf.IntVar(&a.limit, "limit", 0, "max keywords per list, 0 for all")
	pf.StringVar(&a.format, "format", "", "output format: text, json or msgpack")

	root.AddCommand(
		newInteractiveCmd(a),
		newAnalyzeCmd(a),
		newTrainCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup configures logging, loads the config and applies flag overrides.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger.Setup(a.debug, a.logLevel)
	if cmd.Annotations["config"] == "skip" {
		return nil
	}

	cfg, path, err := config.LoadConfigWithPriority(a.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("prefix") {
		cfg.Extract.Prefix = a.prefix
	}
	if flags.Changed("detect-prefix") {
		cfg.Extract.DetectPrefix = a.detectPrefix
	}
	if flags.Changed("require-parens") {
		cfg.Extract.RequireParens = a.requireParens
	}
	if flags.Changed("trim-parens") {
		cfg.Extract.TrimParens = a.trimParens
	}
	if flags.Changed("limit") {
		cfg.Report.Limit = a.limit
	}
	if flags.Changed("format") {
		cfg.Report.Format = a.format
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.cfg, a.cfgPath = cfg, path
	log.Debug("Config loaded", "path", config.GetActiveConfigPath(path), "prefix", cfg.Extract.Prefix, "format", cfg.Report.Format)

	if a.paths, err = utils.NewPathResolver(); err != nil {
		log.Debugf("Path resolver unavailable: %v", err)
	}
	return nil
}

func (a *app) resolve(path string) string {
	if a.paths == nil {
		return path
	}
	return a.paths.ResolveInput(path)
}

func (a *app) resolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = a.resolve(p)
	}
	return out
}

func (a *app) orchestrator() *analysis.Orchestrator {
	return analysis.New(a.cfg.AnalysisOptions(), nil)
}

func (a *app) sink(w io.Writer) (analysis.Sink, error) {
	if a.cfg.Report.Format == "text" {
		return cli.NewTextSink(w, a.cfg.Report.Precision), nil
	}
	return analysis.NewSink(a.cfg.Report.Format, w)
}

// train builds the model every command starts from. Failure is fatal.
func (a *app) train(orch *analysis.Orchestrator, path string) error {
	if _, err := orch.TrainFile(a.resolve(path)); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	return nil
}

func (a *app) runInteractive(cmd *cobra.Command, args []string) error {
	var trainPath, docPath string
	if len(args) > 0 {
		trainPath = a.resolve(args[0])
	}
	if len(args) > 1 {
		docPath = a.resolve(args[1])
	}
	sink, err := a.sink(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	h := cli.NewInputHandler(a.orchestrator(), sink, newPrompter(), cmd.OutOrStdout())
	return h.Start(trainPath, docPath)
}
