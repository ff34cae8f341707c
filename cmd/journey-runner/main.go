// Command journey-runner runs browser end-to-end journeys against the
// complaint portal.
package main

import "github.com/automationqa/journey-runner/pkg/cli"

func main() {
	cli.Execute()
}
