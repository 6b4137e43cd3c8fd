package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyfactory/pkg/codegen"
	"github.com/arthur-debert/keyfactory/pkg/core"
	"github.com/arthur-debert/keyfactory/pkg/errors"
	"github.com/arthur-debert/keyfactory/pkg/styles"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "check [patterns...]",
		Short:   MsgCheckShort,
		Long:    MsgCheckLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result, err := core.Check(cmd.Context(), core.Options{
				Config:   cfg,
				Dir:      opts.workDir(),
				Patterns: patternsArg(args),
			})
			if result != nil {
				printDiagnostics(out, result.Diagnostics)
			}
			if errors.IsErrorCode(err, errors.ErrOutOfDate) {
				fmt.Fprintln(out, styles.Render("Warning", MsgCheckOutdated))
				printFiles(out, opts.workDir(), result, false)
			}
			if err != nil {
				return fmt.Errorf(MsgErrCheck, err)
			}

			fmt.Fprintf(out, MsgCheckOK, result.Count(codegen.StatusUnchanged))
			return nil
		},
	}
}
