package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/msto63/bayan/foundation/bayan"
	"github.com/msto63/bayan/foundation/bayan/runtime"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/internal/server"
	"github.com/msto63/bayan/internal/store"
	"github.com/msto63/bayan/pkg/core/cache"
	coreGrpc "github.com/msto63/bayan/pkg/core/grpc"
)

type runOptions struct {
	watch     bool
	factsDB   string
	restore   bool
	snapshot  string
	save      bool
	remote    string
	timeout   time.Duration
	showValue bool
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	c := &cobra.Command{
		Use:   "run <file|->",
		Short: "Run a program",
		Long: `Runs a Bayan program. Use - to read the program from standard input.

With --facts-db the fact database can be restored before the run
(--restore, --snapshot) and stored after it (--save). --watch re-runs the
program whenever a source file in its directory changes. --remote sends
the program to a running bayan server instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if opts.remote != "" {
				return a.runRemote(ctx, cmd, args[0], opts)
			}
			return a.runLocal(ctx, cmd, args[0], opts)
		},
	}

	c.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run when source files change")
	c.Flags().StringVar(&opts.factsDB, "facts-db", "", "fact snapshot database (default: [store] path)")
	c.Flags().BoolVar(&opts.restore, "restore", false, "restore the latest fact snapshot before running")
	c.Flags().StringVar(&opts.snapshot, "snapshot", "", "restore this snapshot ID before running")
	c.Flags().BoolVar(&opts.save, "save", false, "save the fact database after a successful run")
	c.Flags().StringVar(&opts.remote, "remote", "", "run on the bayan server at this gRPC address")
	c.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort the run after this duration (default: [engine] run_timeout)")
	c.Flags().BoolVar(&opts.showValue, "value", false, "print the value of the last statement")
	return c
}

func (o *runOptions) usesStore() bool {
	return o.restore || o.snapshot != "" || o.save
}

// readSource reads path, or standard input for "-"
func readSource(cmd *cobra.Command, path string) (name, src string, err error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", mdwerror.Wrap(err, "cannot read standard input").WithCode(mdwerror.CodeInvalidInput)
		}
		return "stdin", string(data), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", mdwerror.Wrap(err, "cannot resolve program path").WithCode(mdwerror.CodeInvalidInput)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", mdwerror.Wrap(err, "cannot read program").
			WithCode(mdwerror.CodeNotFound).
			WithDetail("path", path)
	}
	return abs, string(data), nil
}

func (a *app) newEngine(out io.Writer, modules *cache.Cache) (*bayan.Engine, error) {
	cfg := a.config.Engine
	return bayan.New(bayan.Options{
		Logger:          a.logger,
		Out:             out,
		ModulePaths:     cfg.ModulePaths,
		ModuleCache:     modules,
		ModuleCacheTTL:  cfg.ModuleCacheTTL.Duration,
		MaxSourceLength: cfg.MaxSourceLength,
		MaxCallDepth:    cfg.MaxCallDepth,
	})
}

func (a *app) openStore(path string) (*store.SQLiteFactStore, error) {
	if path == "" {
		path = a.config.Store.Path
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, mdwerror.Wrap(err, "cannot create store directory").WithCode(mdwerror.CodeDatabaseError)
		}
	}
	return store.NewSQLiteFactStore(store.SQLiteConfig{Path: path, Logger: a.logger})
}

func (a *app) runLocal(ctx context.Context, cmd *cobra.Command, path string, opts *runOptions) error {
	if opts.watch && path == "-" {
		return mdwerror.New("--watch needs a program file").WithCode(mdwerror.CodeInvalidInput)
	}

	var facts store.FactStore
	if opts.usesStore() || opts.factsDB != "" {
		s, err := a.openStore(opts.factsDB)
		if err != nil {
			return err
		}
		defer s.Close()
		facts = s
	}

	modules := cache.New(cache.Config{MaxItems: 256, TTL: a.config.Engine.ModuleCacheTTL.Duration})
	once := func() error {
		return a.runOnce(ctx, cmd, path, opts, facts, modules)
	}

	err := once()
	if !opts.watch {
		return err
	}
	return a.watch(ctx, cmd, path, once)
}

// runOnce executes the program in a fresh session
func (a *app) runOnce(ctx context.Context, cmd *cobra.Command, path string, opts *runOptions, facts store.FactStore, modules *cache.Cache) error {
	name, src, err := readSource(cmd, path)
	if err != nil {
		return err
	}
	e, err := a.newEngine(cmd.OutOrStdout(), modules)
	if err != nil {
		return err
	}

	if facts != nil && (opts.restore || opts.snapshot != "") {
		snap, err := facts.Restore(ctx, opts.snapshot, e.Database())
		if err != nil {
			return err
		}
		if snap != nil {
			a.logger.Info("facts restored", mdwlog.Fields{"snapshot": snap.ID, "facts": snap.Facts})
		}
	}

	timeout := opts.timeout
	if timeout == 0 {
		timeout = a.config.Engine.RunTimeout.Duration
	}
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := e.Run(runCtx, name, src)
	if err != nil {
		renderDiagnostics(cmd.ErrOrStderr(), displayPath(name), src, diagnosticsFromError(err))
		return errReported
	}
	if opts.showValue {
		fmt.Fprintln(cmd.OutOrStdout(), runtime.Inspect(res.Value))
	}

	if facts != nil && opts.save {
		snap, err := facts.Save(ctx, res.RunID, name, e.Database())
		if err != nil {
			return err
		}
		a.logger.Info("facts saved", mdwlog.Fields{"snapshot": snap.ID, "facts": snap.Facts, "skipped": snap.Skipped})
	}
	return nil
}

// watch re-runs the program when a source file next to it changes
func (a *app) watch(ctx context.Context, cmd *cobra.Command, path string, run func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create watcher").WithCode(mdwerror.CodeInternal)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return mdwerror.Wrap(err, "failed to watch directory").WithCode(mdwerror.CodeInternal)
	}
	a.logger.Info("watching for changes", mdwlog.Fields{"dir": dir})

	// Debounce: editors emit several events per save
	const debounceDelay = 200 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != bayan.SourceExtension {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			a.logger.Debug("source changed", mdwlog.Fields{"file": event.Name, "op": event.Op.String()})
			pending = time.After(debounceDelay)

		case <-pending:
			pending = nil
			cmd.PrintErrln(mutedStyle(cmd.ErrOrStderr()).Render("--- " + time.Now().Format("15:04:05") + " re-running " + filepath.Base(path)))
			if err := run(); err != nil && !errors.Is(err, errReported) {
				printError(cmd.ErrOrStderr(), err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.WarnWithErr("watcher error", err)
		}
	}
}

func (a *app) runRemote(ctx context.Context, cmd *cobra.Command, path string, opts *runOptions) error {
	if opts.watch {
		return mdwerror.New("--watch is not supported with --remote").WithCode(mdwerror.CodeInvalidInput)
	}
	name, src, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	clientCfg := coreGrpc.DefaultClientConfig(opts.remote)
	clientCfg.Logger = a.logger
	conn, err := coreGrpc.Dial(clientCfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := server.NewRunnerClient(conn).Run(ctx, &server.RunRequest{
		Name:       filepath.Base(name),
		Source:     src,
		Restore:    opts.restore,
		SnapshotID: opts.snapshot,
		Save:       opts.save,
	})
	if err != nil {
		return mdwerror.Wrap(err, "remote run failed").WithCode(mdwerror.CodeServiceUnavailable)
	}

	io.WriteString(cmd.OutOrStdout(), resp.Output)
	if resp.Error != nil {
		renderDiagnostics(cmd.ErrOrStderr(), displayPath(name), src, diagnosticsFromResponse(resp))
		return errReported
	}
	if opts.showValue {
		fmt.Fprintln(cmd.OutOrStdout(), resp.Value)
	}
	if resp.Snapshot != "" {
		a.logger.Info("facts saved remotely", mdwlog.Fields{"snapshot": resp.Snapshot, "facts": resp.Facts})
	}
	return nil
}

// displayPath shortens absolute paths below the working directory
func displayPath(name string) string {
	if !filepath.IsAbs(name) {
		return name
	}
	wd, err := os.Getwd()
	if err != nil {
		return name
	}
	if rel, err := filepath.Rel(wd, name); err == nil && !filepath.IsAbs(rel) && len(rel) < len(name) {
		return rel
	}
	return name
}
