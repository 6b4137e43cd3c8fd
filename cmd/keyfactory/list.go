package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/keyfactory/pkg/codegen"
	"github.com/arthur-debert/keyfactory/pkg/core"
	"github.com/arthur-debert/keyfactory/pkg/errors"
)

// listEntry is one binding as printed by list --format yaml.
type listEntry struct {
	Package string `yaml:"package"`
	Type    string `yaml:"type"`
	Base    string `yaml:"base"`
	KeyType string `yaml:"key_type"`
	Key     string `yaml:"key"`
	KeyKind string `yaml:"key_kind"`
	File    string `yaml:"file"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list [patterns...]",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		Long:    MsgListLong,
		Example: MsgListExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "yaml" {
				return errors.Newf(errors.ErrInvalidInput, MsgErrFormat, format)
			}

			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}

			result, err := core.List(cmd.Context(), core.Options{
				Config:   cfg,
				Dir:      opts.workDir(),
				Patterns: patternsArg(args),
			})
			if err != nil {
				return fmt.Errorf(MsgErrList, err)
			}

			gen := codegen.New(codegen.Options{Suffix: cfg.Output.Suffix})
			var entries []listEntry
			for _, u := range result.Units {
				file := relPath(opts.workDir(), gen.Path(u))
				for _, b := range u.Bindings {
					entries = append(entries, listEntry{
						Package: u.PkgPath,
						Type:    u.TypeName,
						Base:    b.Base,
						KeyType: b.KeyType,
						Key:     b.Key.Expr,
						KeyKind: b.Key.Kind.String(),
						File:    file,
					})
				}
			}

			out := cmd.OutOrStdout()
			if format == "yaml" {
				data, err := yaml.Marshal(entries)
				if err != nil {
					return errors.Wrap(err, errors.ErrInternal, "failed to encode registrations")
				}
				_, err = out.Write(data)
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, MsgNoBindings)
				return nil
			}
			data := pterm.TableData{{"Package", "Type", "Base", "Key", "File"}}
			for _, e := range entries {
				data = append(data, []string{e.Package, e.Type, e.Base, e.Key, e.File})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render table")
			}
			fmt.Fprintln(out, table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", MsgFlagFormat)
	return cmd
}
