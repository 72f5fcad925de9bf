package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/mth/yeti-sub001/internal/driver"
	"github.com/mth/yeti-sub001/internal/fixture"
)

func newCompileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <fixture.yaml>",
		Short: "Compile a case expression and print its code",
		Long: `Compile the case expression of a fixture and print the emitted
instruction listing. With "listing: full" in the configuration the case type
and sealed variants are printed first.

Examples:
  casec compile testdata/cases/maybe.yaml
  casec compile --dump testdata/cases/lists.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fixture.Load(args[0])
			if err != nil {
				return err
			}
			res, err := opts.driver().Compile(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.dump {
				dumpPatterns(out, res)
			}
			if opts.cfg.Listing == "full" {
				printSummary(out, res)
			}
			fmt.Fprintln(out, strings.Join(res.Listing, "\n"))
			return nil
		},
	}
}

func printSummary(out io.Writer, res *driver.Result) {
	fmt.Fprintf(out, "%s: %s\n", res.Name, res.Type)
	for _, s := range res.Sealed {
		fmt.Fprintf(out, "  sealed %s\n", s)
	}
}

func dumpPatterns(out io.Writer, res *driver.Result) {
	for i, p := range res.Case.Patterns() {
		fmt.Fprintf(out, "choice %d: %# v\n", i, pretty.Formatter(p))
	}
}
