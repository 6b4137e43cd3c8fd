package main

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Generate keyed factory registrations for marked Go types"
	MsgGenerateShort   = "Write registration files for marked types"
	MsgCheckShort      = "Verify generated registration files are up to date"
	MsgListShort       = "List discovered registrations"
	MsgListLong        = "List shows every binding discovery would generate, without writing anything."
	MsgConfigShort     = "Print the effective configuration"
	MsgConfigLong      = "Config prints the configuration after defaults, config file, environment and flags are applied."
	MsgGenConfigShort  = "Print or write a default configuration file"
	MsgGenConfigLong   = "Output the default configuration with every value commented out. With -w, write it to .keyfactory.toml in the working directory."
	MsgManShort        = "Generate man pages"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgDryRunNotice      = "DRY RUN MODE - No changes were made"
	MsgGenerateSummary   = "%d binding(s) in %d type(s) across %d package(s): %d changed, %d unchanged, %d pruned\n"
	MsgFileLine          = "  %s %-12s %s\n"
	MsgDiagnosticsHeader = "Invalid markers:"
	MsgDiagnosticLine    = "  %s %s.%s: %s\n"
	MsgDiagnosticPos     = "      at %s\n"
	MsgCheckOK           = "All %d generated file(s) are up to date.\n"
	MsgCheckOutdated     = "Out of date:"
	MsgNoBindings        = "No registrations found."
	MsgConfigWritten     = "Wrote %s\n"
	MsgVersionFormat     = "keyfactory version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrGenerate     = "failed to generate: %w"
	MsgErrCheck        = "check failed: %w"
	MsgErrList         = "failed to list registrations: %w"
	MsgErrEnvFile      = "failed to load env file: %w"
	MsgErrFormat       = "unknown format %q (want table or yaml)"
	MsgErrConfigExists = "%s already exists"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig    = "Config file (default: .keyfactory.toml or keyfactory.toml in the working directory)"
	MsgFlagEnvFile   = "Load environment variables from dotenv file(s) before reading configuration"
	MsgFlagDir       = "Run as if keyfactory was started in this directory"
	MsgFlagDryRun    = "Preview changes without writing files"
	MsgFlagOnInvalid = "What to do with invalid markers: skip, warn or error"
	MsgFlagNoPrune   = "Keep generated files whose type no longer has a marker"
	MsgFlagWorkers   = "Number of files rendered and written concurrently"
	MsgFlagFormat    = "Output format: table or yaml"
	MsgFlagWrite     = "Write the config to .keyfactory.toml instead of stdout"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/generate-long.txt
	msgGenerateLongRaw string
	MsgGenerateLong    = strings.TrimSpace(msgGenerateLongRaw)

	//go:embed msgs/generate-example.txt
	msgGenerateExampleRaw string
	MsgGenerateExample    = strings.TrimRight(msgGenerateExampleRaw, "\n")

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/gen-config-example.txt
	msgGenConfigExampleRaw string
	MsgGenConfigExample    = strings.TrimRight(msgGenConfigExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
