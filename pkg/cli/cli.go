// Package cli provides the command-line interface for journey-runner.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to journey.yaml (default: ./journey.yaml if present)",
		EnvVars: []string{"JOURNEY_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Browser driver (webdriver, chromedp, mock)",
	},
	&cli.StringFlag{
		Name:  "base-url",
		Usage: "Base URL of the application under test",
	},
	&cli.StringFlag{
		Name:  "driver-path",
		Usage: "chromedriver binary (webdriver) or browser binary (chromedp)",
	},
	&cli.StringFlag{
		Name:  "remote-url",
		Usage: "Attach to a running WebDriver server or DevTools endpoint",
	},
	&cli.BoolFlag{
		Name:  "headless",
		Usage: "Run the browser without a window",
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging",
		EnvVars: []string{"JOURNEY_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-format",
		Usage: "Diagnostic log format (text, json)",
		Value: "text",
	},
	&cli.BoolFlag{
		Name:    "no-ansi",
		Usage:   "Disable ANSI colors",
		EnvVars: []string{"NO_COLOR"},
	},
}

// NewApp builds the application writing to stdout.
func NewApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:    "journey-runner",
		Usage:   "Browser end-to-end journeys for the complaint portal",
		Version: Version,
		Description: `journey-runner drives a real browser through user journeys (login,
registration, complaint submission, admin triage) and reports every
checkpoint.

Examples:
  journey-runner list
  journey-runner run
  journey-runner run student-login raise-complaint
  journey-runner --driver chromedp --headless run scenarios/
  journey-runner validate scenarios/`,
		Flags:  GlobalFlags,
		Writer: stdout,
		Commands: []*cli.Command{
			runCommand,
			listCommand,
			validateCommand,
		},
		// Exit codes are handled by Execute.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// Execute runs the CLI.
func Execute() {
	err := NewApp(os.Stdout).Run(os.Args)
	if err == nil {
		return
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(exit.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
