package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/keyfactory/internal/version"
	"github.com/arthur-debert/keyfactory/pkg/config"
	"github.com/arthur-debert/keyfactory/pkg/logging"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	verbosity  int
	configPath string
	envFiles   []string
	dir        string
}

// loadConfig resolves the effective configuration for the working directory,
// applying overrides last.
func (o *rootOptions) loadConfig(overrides map[string]interface{}) (*config.Config, error) {
	return config.Load(config.LoadOptions{
		Path:      o.configPath,
		Dir:       o.workDir(),
		Overrides: overrides,
	})
}

func (o *rootOptions) workDir() string {
	if o.dir == "" {
		return "."
	}
	return o.dir
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:   "keyfactory",
		Short: MsgRootShort,
		Long:  MsgRootLong,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)

			if len(opts.envFiles) > 0 {
				if err := godotenv.Load(opts.envFiles...); err != nil {
					return fmt.Errorf(MsgErrEnvFile, err)
				}
			}
			return nil
		},
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, MsgFlagEnvFile)
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", "", MsgFlagDir)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "config", Title: "CONFIGURATION:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}

// patternsArg returns command-line patterns, or nil so the configured
// discovery.patterns apply.
func patternsArg(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args
}

// relPath shortens a generated file path for display.
func relPath(dir, path string) string {
	base, err := filepath.Abs(dir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
