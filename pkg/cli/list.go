package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/automationqa/journey-runner/pkg/flow"
	"github.com/automationqa/journey-runner/pkg/scenarios"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List built-in scenarios and reusable flows",
	Description: `Shows the built-in scenarios that "run" accepts by name, and the flows
scenario files can reference with "use:".

Examples:
  journey-runner list
  journey-runner list --include-tags smoke`,
	Flags:  selectionFlags,
	Action: listScenarios,
}

func listScenarios(c *cli.Context) error {
	out := c.App.Writer
	include := c.StringSlice("include-tags")
	exclude := c.StringSlice("exclude-tags")

	fmt.Fprintln(out, "Scenarios:")
	shown := 0
	for _, s := range scenarios.Catalog() {
		if !flow.ShouldInclude(s, include, exclude) {
			continue
		}
		shown++
		fmt.Fprintf(out, "  %-22s %s\n", s.Name, s.Description)
		if len(s.Tags) > 0 {
			fmt.Fprintf(out, "  %-22s tags: %s\n", "", strings.Join(s.Tags, ", "))
		}
		if roles := s.Credentials(); len(roles) > 0 {
			fmt.Fprintf(out, "  %-22s credentials: %s\n", "", strings.Join(roles, ", "))
		}
	}
	if shown == 0 {
		fmt.Fprintln(out, "  (none match the tag filter)")
	}

	lib := scenarios.Library()
	names := make([]string, 0, len(lib))
	for name := range lib {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flows:")
	for _, name := range names {
		f := lib[name]
		fmt.Fprintf(out, "  %-22s %s (%d steps)\n", name, f.Description, len(f.Steps))
	}
	return nil
}
