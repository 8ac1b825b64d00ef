// Package main implements the bee CLI tool.
package main

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "bee",
	Short:        "BeeSmart - a to-do list with smart entry and reminders",
	SilenceUsage: true,
}

var rootQuiet bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Suppress diagnostic logging")
}

// newLogger returns a component logger writing to stderr, or discarding
// everything when --quiet is set.
func newLogger(cmd *cobra.Command, prefix string) *log.Logger {
	var w io.Writer = cmd.ErrOrStderr()
	if rootQuiet {
		w = io.Discard
	}
	return log.New(w, prefix, log.LstdFlags)
}
