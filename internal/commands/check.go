package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openstat-dev/snatree/internal/validate"
)

func newCheckCommand(opts *globalOptions) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a report and check the document invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(".")
			if err != nil {
				return err
			}
			res, err := parseFile(cmd, args[0], cfg, &src, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			errs := validate.Document(res.Document, validate.LabelsFrom(cfg.Markers.ParserOptions()))
			for _, e := range errs {
				fmt.Fprintln(cmd.OutOrStdout(), e.Error())
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d invariant violations", len(errs))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d accounts, %d records, years %v\n",
				len(res.Document.Accounts), res.Document.RecordCount(), res.Document.Years)
			return nil
		},
	}
	src.register(cmd)

	return cmd
}
