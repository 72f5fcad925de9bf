// Package commands provides the CLI commands for the casec tool.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/mth/yeti-sub001/internal/config"
	"github.com/mth/yeti-sub001/internal/driver"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	dump       bool

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "casec",
		Short: "Yeti case expression compiler",
		Long: `casec elaborates case expressions, checks that they are exhaustive,
seals the variants they enumerate and prints the emitted code.

Usage:
  casec compile fixture.yaml    Print the instruction listing
  casec check a.yaml b.yaml     Print case types and sealed variants
  casec version                 Print version`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the configuration file (default $"+config.EnvConfig+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log compiler events")
	root.PersistentFlags().BoolVar(&opts.dump, "dump", false, "Dump the elaborated patterns")

	root.AddCommand(newCompileCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if o.verbose {
		level = slog.LevelDebug
	}
	o.cfg = cfg
	o.log = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:   level,
		NoColor: os.Getenv("NO_COLOR") != "",
	}))
	return nil
}

func (o *options) driver() *driver.Driver {
	return driver.NewDefault(o.cfg.Runtime, o.log)
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
