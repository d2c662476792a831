package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nmsmc/internal/build"
	"nmsmc/internal/config"
	"nmsmc/internal/definition"
	"nmsmc/internal/deps"
	"nmsmc/internal/history"
	"nmsmc/internal/logging"
	"nmsmc/internal/services"
	"nmsmc/internal/services/mbincompiler"
	"nmsmc/internal/services/psar"
	"nmsmc/internal/staging"
)

type buildOptions struct {
	keepWork  bool
	diff      bool
	noHistory bool
}

func (o *buildOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.keepWork, "keep-work", false, "Keep the work directory after the build")
	cmd.Flags().BoolVar(&o.diff, "diff", false, "Print a line diff of every patched document")
	cmd.Flags().BoolVar(&o.noHistory, "no-history", false, "Do not record this build in the history ledger")
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build <definition...>",
		Short: "Parse definitions and build the mod archives they describe",
		Long: `Parse every definition file in order into one plan, then for each output
pak: extract the named documents, decompile them, apply the assignments,
recompile, and pack the result together with any extra files.

Use "-" to read a definition from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, args, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runBuild(cmd *cobra.Command, ctx *commandContext, args []string, opts buildOptions) (err error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runCtx := services.WithRunID(cmd.Context(), runID)
	logger = logging.WithContext(runCtx, logging.NewComponentLogger(logger, "cli"))
	started := time.Now()

	ledger := openLedger(runCtx, cfg, opts, runID, args, logger)
	var summary build.Summary
	defer func() {
		ledger.finish(summary, err)
	}()

	plan, err := definition.ParseFiles(args)
	if err != nil {
		return services.Wrap(services.ErrValidation, "parse", "", "definition rejected", err)
	}
	if len(plan.Containers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Definitions declare no output archives; nothing to build")
		return nil
	}

	if missing := deps.Missing(deps.CheckBinaries(deps.BuildRequirements(cfg))); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, m := range missing {
			names = append(names, m.Name+" ("+m.Detail+")")
		}
		return services.Wrap(services.ErrConfiguration, "preflight", "", "missing tools: "+strings.Join(names, ", "), nil)
	}

	staging.CleanStale(runCtx, cfg.Paths.StagingDir, cfg.StaleAfter(), logger)
	ws, err := staging.Create(cfg.Paths.StagingDir, runID)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "staging", "", "create work directory", err)
	}
	keep := opts.keepWork || cfg.Build.KeepWorkDir
	defer func() {
		if releaseErr := ws.Release(keep); releaseErr != nil {
			logging.WarnWithContext(logger, "work directory release failed", "staging_release_failed",
				logging.String("path", ws.Dir),
				logging.Error(releaseErr),
				logging.String(logging.FieldErrorHint, "remove it manually or run nmsmc clean"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
		if keep {
			fmt.Fprintf(cmd.ErrOrStderr(), "Work directory kept at %s\n", ws.Dir)
		}
	}()

	runner, err := newRunner(cmd, cfg, logger, opts)
	if err != nil {
		return err
	}

	logger.Info("build started",
		logging.Int("containers", len(plan.Containers)),
		logging.String("work_dir", ws.Dir),
	)
	summary, err = runner.Run(runCtx, plan, ws.Dir)
	if err != nil {
		return err
	}
	logger.Info("build finished", logging.Duration("elapsed", time.Since(started)))

	writeBuildSummary(cmd.OutOrStdout(), summary)
	return nil
}

func newRunner(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts buildOptions) (*build.Runner, error) {
	psarClient, err := psar.New(cfg.Tools.Psar, cfg.Tools.ExtractTimeout, cfg.Tools.PackTimeout, psar.WithLogger(logger))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "preflight", "psar", "", err)
	}
	compiler, err := mbincompiler.New(cfg.Tools.MBINCompiler, cfg.Tools.CompileTimeout, mbincompiler.WithLogger(logger))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "preflight", "mbincompiler", "", err)
	}
	runnerOpts := []build.Option{
		build.WithLogger(logger),
		build.WithIndent(cfg.Build.Indent),
	}
	if opts.diff {
		out := cmd.OutOrStdout()
		runnerOpts = append(runnerOpts, build.WithDiff(out, shouldColorize(out)))
	}
	return build.NewRunner(psarClient, compiler, psarClient, runnerOpts...), nil
}

func writeBuildSummary(out io.Writer, summary build.Summary) {
	rows := make([][]string, 0, len(summary.Containers))
	for _, c := range summary.Containers {
		rows = append(rows, []string{
			c.Output,
			strconv.Itoa(c.Documents),
			strconv.Itoa(c.Edits),
			strconv.Itoa(c.Created),
			strconv.Itoa(c.Updated),
			strconv.Itoa(c.Misses),
			strconv.Itoa(c.ExtraFiles),
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Output", "Documents", "Edits", "Created", "Updated", "Misses", "Extras"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	if misses := summary.Misses(); misses > 0 {
		fmt.Fprintf(out, "%d assignment(s) matched nothing; rerun with --log-level debug or --diff to inspect\n", misses)
	}
}

// ledger records one build in the history store. A nil store makes every
// method a no-op so history problems never fail a build.
type ledger struct {
	ctx    context.Context
	store  *history.Store
	runID  string
	logger *slog.Logger
}

func openLedger(ctx context.Context, cfg *config.Config, opts buildOptions, runID string, definitions []string, logger *slog.Logger) *ledger {
	l := &ledger{ctx: context.WithoutCancel(ctx), runID: runID, logger: logger}
	if opts.noHistory || !cfg.History.Enabled {
		return l
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		l.warn("history unavailable", err)
		return l
	}
	if err := store.Begin(l.ctx, runID, definitions); err != nil {
		_ = store.Close()
		l.warn("history begin failed", err)
		return l
	}
	l.store = store
	return l
}

func (l *ledger) finish(summary build.Summary, runErr error) {
	if l.store == nil {
		return
	}
	defer l.store.Close()
	outcome := history.Outcome{
		Status:   services.FailureStatus(runErr),
		Counters: summary.Counters(),
		Outputs:  summary.Outputs(),
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		outcome.Error = runErr.Error()
	}
	if err := l.store.Finish(l.ctx, l.runID, outcome); err != nil {
		l.warn("history finish failed", err)
	}
}

func (l *ledger) warn(msg string, err error) {
	logging.WarnWithContext(l.logger, msg, "history_unavailable",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check paths.state_dir or pass --no-history"),
		logging.String(logging.FieldImpact, "this build is not recorded"),
	)
}
