package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/bayan/foundation/core/log"
	"github.com/msto63/bayan/pkg/core/config"
	"github.com/msto63/bayan/pkg/core/logging"
)

// errReported marks failures whose diagnostics were already printed
var errReported = errors.New("errors reported")

// app holds the state shared by all commands of one invocation
type app struct {
	cfgFile  string
	verbose  bool
	logLevel string

	config *config.Config
	logger *mdwlog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "bayan",
		Short: "Bayan - bilingual language with embedded logic programming",
		Long: `Bayan runs programs written with English or Arabic keywords. Programs
mix functions, classes and closures with facts, rules and queries.

Examples:
  bayan run family.bayan
  bayan run --watch --facts-db facts.db family.bayan
  bayan ast --format yaml family.bayan
  bayan serve`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./bayan.toml, $"+config.EnvVar+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newRunCmd(a),
		newTokensCmd(a),
		newASTCmd(a),
		newCheckCmd(a),
		newFactsCmd(a),
		newServeCmd(a),
		newKeywordsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(a.cfgFile)
	if err != nil {
		return err
	}
	a.config = cfg

	logCfg := logging.FromConfig(cfg, "bayan")
	logCfg.Output = cmd.ErrOrStderr()
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	if a.verbose {
		logCfg.Level = "debug"
	}
	a.logger = logging.NewLogger(logCfg)
	a.logger.Debug("configuration loaded", mdwlog.Fields{"source": cfg.Source})
	return nil
}

// Execute runs the command line
func Execute() error {
	return execute(newRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(root *cobra.Command, args []string, stdout, stderr io.Writer) error {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer logging.CloseFiles()

	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(stderr, err)
	}
	return err
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorStyle(w).Render("error:"), err)
}
