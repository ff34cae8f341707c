package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/automationqa/journey-runner/pkg/scenarios"
	"github.com/automationqa/journey-runner/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check scenarios without starting a browser",
	ArgsUsage: "[scenario-name | file | folder]...",
	Description: `Parses scenario files, resolves flow references and checks that every
credential role a scenario uses is configured. Targets are resolved the
same way as for "run".

Examples:
  journey-runner validate
  journey-runner validate scenarios/
  journey-runner validate raise-complaint scenarios/admin.yaml`,
	Flags:  selectionFlags,
	Action: validateScenarios,
}

func validateScenarios(c *cli.Context) error {
	out := c.App.Writer

	cfg, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	builtins, paths := resolveTargets(c.Args().Slice(), cfg.Scenarios)
	v := validator.New(validator.Options{
		IncludeTags: cfg.IncludeTags,
		ExcludeTags: cfg.ExcludeTags,
		Roles:       cfg.Roles(),
		Library:     scenarios.Library(),
	})
	result := v.ValidateAll(builtins, paths)

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  ⚠ %v\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  ✗ %v\n", e)
	}

	if !result.IsValid() {
		return cli.Exit(fmt.Sprintf("validation failed: %d error(s)", len(result.Errors)), 1)
	}

	for _, s := range result.Scenarios {
		fmt.Fprintf(out, "  ✓ %s (%d units)\n", s.Name, len(s.Units()))
	}
	fmt.Fprintf(out, "%d scenario(s) valid\n", len(result.Scenarios))
	return nil
}
