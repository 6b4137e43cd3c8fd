package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/arthur-debert/keyfactory/pkg/errors"
	"github.com/arthur-debert/keyfactory/pkg/styles"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logFailure(err)
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}

// logFailure records the code and details of a failed command.
func logFailure(err error) {
	log.Debug().
		Str("code", string(errors.GetErrorCode(err))).
		Fields(errors.GetErrorDetails(err)).
		Err(err).
		Msg("Command failed")
}
