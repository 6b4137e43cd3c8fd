package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyfactory/pkg/core"
	"github.com/arthur-debert/keyfactory/pkg/styles"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		dryRun    bool
		onInvalid string
		noPrune   bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:     "generate [patterns...]",
		Aliases: []string{"gen"},
		Short:   MsgGenerateShort,
		Long:    MsgGenerateLong,
		Example: MsgGenerateExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("on-invalid") {
				overrides["discovery.on_invalid"] = onInvalid
			}
			if cmd.Flags().Changed("no-prune") {
				overrides["output.prune"] = !noPrune
			}
			if cmd.Flags().Changed("workers") {
				overrides["output.workers"] = workers
			}

			cfg, err := opts.loadConfig(overrides)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, styles.Render("DryRunBanner", MsgDryRunNotice))
			}

			result, err := core.Generate(cmd.Context(), core.Options{
				Config:   cfg,
				Dir:      opts.workDir(),
				Patterns: patternsArg(args),
				DryRun:   dryRun,
			})
			if result != nil {
				printDiagnostics(out, result.Diagnostics)
			}
			if err != nil {
				return fmt.Errorf(MsgErrGenerate, err)
			}

			printFiles(out, opts.workDir(), result, opts.verbosity > 0)
			printSummary(out, result)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	cmd.Flags().StringVar(&onInvalid, "on-invalid", "", MsgFlagOnInvalid)
	cmd.Flags().BoolVar(&noPrune, "no-prune", false, MsgFlagNoPrune)
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, MsgFlagWorkers)

	return cmd
}
