package commands

import (
	"github.com/spf13/cobra"

	"github.com/mth/yeti-sub001/internal/fixture"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <fixture.yaml>...",
		Short: "Type-check case expressions",
		Long: `Elaborate and check the case expression of every fixture, printing
its result type and the variants it sealed. All fixtures are checked even when
some fail.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fs []*fixture.Fixture
			for _, path := range args {
				f, err := fixture.Load(path)
				if err != nil {
					return err
				}
				fs = append(fs, f)
			}
			results, err := opts.driver().CheckAll(fs)
			out := cmd.OutOrStdout()
			for _, res := range results {
				if opts.dump {
					dumpPatterns(out, res)
				}
				printSummary(out, res)
			}
			return err
		},
	}
}
