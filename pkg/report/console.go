package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/automationqa/journey-runner/pkg/core"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Steps that waited longer than this are highlighted.
const slowThreshold = 5 * time.Second

// Console prints the PASS/INFO/FAIL stream as scenarios run.
// Its methods match the runner's callbacks.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	colors bool
}

// NewConsole creates a console reporter writing to w. Colors are used
// only when noANSI is false, NO_COLOR is unset and w is a terminal.
func NewConsole(w io.Writer, noANSI bool) *Console {
	return &Console{w: w, colors: !noANSI && os.Getenv("NO_COLOR") == "" && isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// color returns the color code if colors are enabled, empty string otherwise
func (c *Console) color(code string) string {
	if c.colors {
		return code
	}
	return ""
}

// ScenarioStart prints the scenario header.
func (c *Console) ScenarioStart(idx, total int, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "\n%s[%d/%d] %s%s\n", c.color(colorBold), idx+1, total, name, c.color(colorReset))
}

// Log prints one log stream entry.
func (c *Console) Log(_ string, e core.LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var symbol, code string
	switch e.Level {
	case core.LevelPass:
		symbol, code = "✓", colorGreen
	case core.LevelFail:
		symbol, code = "✗", colorRed
	default:
		symbol, code = "•", colorCyan
	}

	step := ""
	if e.Step != "" {
		step = fmt.Sprintf("%s%s%s ", c.color(colorGray), e.Step, c.color(colorReset))
	}
	fmt.Fprintf(c.w, "  %s%s %-4s%s %s%s\n",
		c.color(code), symbol, e.Level, c.color(colorReset), step, e.Message)
}

// ScenarioEnd prints the scenario outcome and, for a failure, the details
// needed to diagnose it without a re-run.
func (c *Console) ScenarioEnd(res *core.RunResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := res.Counts()
	if res.Passed() {
		fmt.Fprintf(c.w, "  %sPASSED%s %s %s(%d steps, %d skipped, %s)%s\n",
			c.color(colorGreen), c.color(colorReset), res.ScenarioName,
			c.color(colorGray), counts.Total, counts.Skipped, formatDuration(res.Duration), c.color(colorReset))
	} else {
		fmt.Fprintf(c.w, "  %sFAILED%s %s %s(%s)%s\n",
			c.color(colorRed), c.color(colorReset), res.ScenarioName,
			c.color(colorGray), formatDuration(res.Duration), c.color(colorReset))
		if res.FailingStep != "" {
			fmt.Fprintf(c.w, "    step:     %s\n", res.FailingStep)
		}
		if res.Elapsed > 0 {
			fmt.Fprintf(c.w, "    waited:   %s\n", formatDuration(res.Elapsed))
		}
		if res.LastCompletedStep != "" {
			fmt.Fprintf(c.w, "    last ok:  %s\n", res.LastCompletedStep)
		}
		if res.LastAddress != "" {
			fmt.Fprintf(c.w, "    address:  %s\n", res.LastAddress)
		}
	}

	for _, s := range res.Steps {
		if s.Waited >= slowThreshold {
			fmt.Fprintf(c.w, "    %s⚠ slow: %s waited %s%s\n",
				c.color(colorYellow), s.Name, formatDuration(s.Waited), c.color(colorReset))
		}
	}
}

// Summary prints the suite table.
func (c *Console) Summary(suite *core.SuiteResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const tableWidth = 64
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, strings.Repeat("─", tableWidth))
	fmt.Fprintf(c.w, "  %s%-34s %-8s %6s %10s%s\n", c.color(colorBold), "SCENARIO", "STATUS", "STEPS", "DURATION", c.color(colorReset))
	fmt.Fprintln(c.w, strings.Repeat("─", tableWidth))

	for i := range suite.Scenarios {
		res := &suite.Scenarios[i]
		status, code := "✓ PASS", colorGreen
		if !res.Passed() {
			status, code = "✗ FAIL", colorRed
		}
		name := res.ScenarioName
		if len(name) > 34 {
			name = name[:31] + "..."
		}
		fmt.Fprintf(c.w, "  %-34s %s%-8s%s %6d %10s\n",
			name, c.color(code), status, c.color(colorReset), len(res.Steps), formatDuration(res.Duration))
	}

	fmt.Fprintln(c.w, strings.Repeat("─", tableWidth))
	code := colorGreen
	if suite.Failed > 0 {
		code = colorRed
	}
	fmt.Fprintf(c.w, "  %s%-34s%s %s%d/%d passed%s %s\n",
		c.color(colorBold), "TOTAL", c.color(colorReset),
		c.color(code), suite.Passed, suite.Total, c.color(colorReset), formatDuration(suite.Duration))
	fmt.Fprintln(c.w)
}

func formatDuration(d time.Duration) string {
	return formatMillis(d.Milliseconds())
}

func formatMillis(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
