package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/kwserve/internal/cli"
	"github.com/bastiangx/kwserve/internal/utils"
	"github.com/bastiangx/kwserve/internal/watcher"
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/config"
	"github.com/bastiangx/kwserve/pkg/server"
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive [TRAIN [DOC]]",
		Short: "Train, then analyze documents named at the prompt",
		Args:  cobra.MaximumNArgs(2),
		RunE:  a.runInteractive,
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze TRAIN DOC...",
		Short: "Analyze documents against a training document",
		Long: `Analyze trains once from TRAIN and analyzes every DOC in parallel.
Reports are written in argument order; a document that cannot be read is
reported and does not stop the others.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := a.orchestrator()
			if err := a.train(orch, args[0]); err != nil {
				return err
			}
			sink, err := a.sink(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			docs := a.resolveAll(args[1:])
			failed, err := orch.Run(cmd.Context(), docs, sink)
			if err != nil {
				return err
			}
			if failed > 0 {
				log.Warnf("%d of %d documents could not be analyzed", failed, len(docs))
			}
			return nil
		},
	}
}

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train TRAIN",
		Short: "Print the functions, keywords and frequency table learned from TRAIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := a.orchestrator()
			if err := a.train(orch, args[0]); err != nil {
				return err
			}
			m := orch.Model()
			out := cmd.OutOrStdout()
			switch a.cfg.Report.Format {
			case "json":
				return json.NewEncoder(out).Encode(m.Snapshot())
			case "msgpack":
				return msgpack.NewEncoder(out).Encode(m.Snapshot())
			default:
				return cli.NewTextSink(out, a.cfg.Report.Precision).WriteModel(m)
			}
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var (
		httpAddr string
		ipc      bool
	)

	cmd := &cobra.Command{
		Use:   "serve TRAIN",
		Short: "Serve recommendations over msgpack IPC and/or HTTP",
		Long: `Serve trains from TRAIN and answers msgpack requests on stdin/stdout.
With --http the same service is exposed as a JSON API; a bare --http uses
server.http_addr from the config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("http") && httpAddr == "config" {
				httpAddr = a.cfg.Server.HTTPAddr
			}
			if httpAddr == "" && !ipc {
				return fmt.Errorf("nothing to serve: enable --ipc or --http")
			}

			orch := a.orchestrator()
			trainPath := a.resolve(args[0])
			if err := a.train(orch, trainPath); err != nil {
				return err
			}
			svc, err := server.NewService(orch, a.cfg.Server.CacheSize, a.cfg.Report.Limit)
			if err != nil {
				return err
			}
			svc.Remember(trainPath, orch.Model())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, gctx := errgroup.WithContext(ctx)

			if httpAddr != "" {
				g.Go(func() error { return server.ListenAndServe(gctx, httpAddr, svc) })
			}
			if ipc {
				g.Go(func() error {
					defer cancel()
					return server.NewServerWithIO(svc, cmd.InOrStdin(), cmd.OutOrStdout()).Start()
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "serve the HTTP API on this address (--http=ADDR)")
	cmd.Flags().Lookup("http").NoOptDefVal = "config"
	cmd.Flags().BoolVar(&ipc, "ipc", true, "serve msgpack IPC on stdin/stdout")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch TRAIN DOC...",
		Short: "Re-analyze documents whenever they change",
		Long: `Watch analyzes every DOC once, then again each time it is saved.
Saving TRAIN retrains the model and re-analyzes all documents.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := a.orchestrator()
			trainPath := a.resolve(args[0])
			if err := a.train(orch, trainPath); err != nil {
				return err
			}
			sink, err := a.sink(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			docs := a.resolveAll(args[1:])

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if _, err := orch.Run(ctx, docs, sink); err != nil {
				return err
			}

			w, err := watcher.New(append([]string{trainPath}, docs...), 0)
			if err != nil {
				return err
			}
			defer w.Close()
			events, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
			log.Infof("Watching %d documents (Ctrl+C to stop)", len(docs))

			for evt := range events {
				if evt.Op == watcher.Remove || evt.Op == watcher.Rename {
					log.Warnf("%s: %s, waiting for it to come back", evt.Path, evt.Op)
					continue
				}
				if evt.Path == trainPath {
					if _, err := orch.TrainFile(trainPath); err != nil {
						log.Errorf("Retraining failed, keeping previous model: %v", err)
						continue
					}
					log.Info("Retrained", "path", trainPath)
					if _, err := orch.Run(ctx, docs, sink); err != nil {
						return err
					}
					continue
				}
				report, err := orch.AnalyzeFile(evt.Path)
				if err := sink.Write(analysis.DocumentResult{Path: evt.Path, Report: report, Err: err}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Show current version",
		Annotations: map[string]string{"config": "skip"},
		Run: func(cmd *cobra.Command, args []string) {
			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{
				ReportCaller:    false,
				ReportTimestamp: false,
				Prefix:          "",
			})

			styles := log.DefaultStyles()
			styles.Values["version"] = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
				Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
			styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
			logger.SetStyles(styles)

			logger.Print("")
			logger.Print("[ kwserve ] Keyword recommendations for your calls")
			logger.Print("", "version", Version, "go", runtime.Version())
			logger.Print("")
			logger.Print("use -h or --help to see available options")
			logger.Print("Github Repo", "gh", gh)

			if !verbose {
				return
			}
			pr, err := utils.NewPathResolver()
			if err != nil {
				logger.Print("runtime info unavailable", "err", err)
				return
			}
			info := pr.GetRuntimeInfo()
			keys := make([]string, 0, len(info))
			for k := range info {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				logger.Print(k, "value", filepath.ToSlash(info[k]))
			}
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print runtime paths")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Config prints the configuration after file, environment and flag
overrides as TOML. With --reset the default config file is rewritten with
built-in defaults first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if reset {
				if err := config.RebuildConfigFile(); err != nil {
					return fmt.Errorf("reset config: %w", err)
				}
				fmt.Fprintln(out, "# config reset to defaults")
				a.cfg = config.DefaultConfig()
				a.cfgPath = ""
			}
			fmt.Fprintf(out, "# %s\n", config.GetActiveConfigPath(a.cfgPath))
			return toml.NewEncoder(out).Encode(a.cfg)
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "rewrite the default config file with defaults")
	return cmd
}
