package gate

import (
	"fmt"
	"strings"
)

// Analysis renders the console report printed in the CI job log.
func (r *Report) Analysis(d Decision) string {
	var b strings.Builder

	line := strings.Repeat("=", 70)
	fmt.Fprintf(&b, "%s\nQUALITY GATE ANALYSIS\n%s\n\n", line, line)
	fmt.Fprintf(&b, "Test Summary:\n")
	fmt.Fprintf(&b, "  Total Tests: %d\n", r.Stats.Total)
	fmt.Fprintf(&b, "  Passed: %d\n", r.Stats.Passed)
	fmt.Fprintf(&b, "  Failed: %d\n", r.Stats.Failed)

	if r.Stats.Failed == 0 {
		b.WriteString("\nALL TESTS PASSED - Quality Gate: PASS\n")
		return b.String()
	}

	fmt.Fprintf(&b, "\nFailure Breakdown by Severity:\n")
	fmt.Fprintf(&b, "  Critical: %d\n", r.Stats.CriticalFailed)
	fmt.Fprintf(&b, "  High: %d\n", r.Stats.HighFailed)
	fmt.Fprintf(&b, "  Low: %d\n", r.Stats.LowFailed)

	switch d {
	case Blocked:
		b.WriteString("\nQUALITY GATE: FAILED\n")
		b.WriteString("Merge blocked due to Critical/High severity test failures\n")
		b.WriteString("\nFailed Tests (blocking):\n")
		for _, test := range r.Failed {
			if test.Severity == SeverityLow {
				continue
			}
			fmt.Fprintf(&b, "  - [%s] %s\n", test.Severity, test.Name)
			fmt.Fprintf(&b, "    Message: %s\n", truncate(test.Message, 100))
		}
	case PassWithWarnings:
		b.WriteString("\nQUALITY GATE: PASSED WITH WARNINGS\n")
		b.WriteString("Merge allowed (only low-severity failures)\n")
		b.WriteString("Manual review recommended for:\n")
		for _, test := range r.Failed {
			fmt.Fprintf(&b, "  - [%s] %s\n", test.Severity, test.Name)
		}
	}
	return b.String()
}

// MarkdownSummary renders the markdown block posted as a PR comment.
func (r *Report) MarkdownSummary(d Decision) string {
	var b strings.Builder

	status := "All tests passed"
	switch d {
	case Blocked:
		status = "Quality Gate FAILED - merge blocked"
	case PassWithWarnings:
		status = "Quality Gate PASSED with warnings"
	}

	fmt.Fprintf(&b, "## Test Results Summary\n\n**Status:** %s\n\n", status)
	fmt.Fprintf(&b, "### Statistics\n")
	fmt.Fprintf(&b, "- **Total Tests:** %d\n", r.Stats.Total)
	fmt.Fprintf(&b, "- **Passed:** %d\n", r.Stats.Passed)
	fmt.Fprintf(&b, "- **Failed:** %d\n\n", r.Stats.Failed)
	fmt.Fprintf(&b, "### Failure Severity Breakdown\n")
	fmt.Fprintf(&b, "- **Critical:** %d\n", r.Stats.CriticalFailed)
	fmt.Fprintf(&b, "- **High:** %d\n", r.Stats.HighFailed)
	fmt.Fprintf(&b, "- **Low:** %d\n", r.Stats.LowFailed)

	if len(r.Failed) == 0 {
		b.WriteString("\n### All Tests Passed!\n")
		return b.String()
	}

	b.WriteString("\n### Failed Tests\n\n")
	for _, test := range r.Failed {
		fmt.Fprintf(&b, "- **[%s]** `%s`\n", test.Severity, test.Name)
	}

	b.WriteString("\n### Quality Gate Decision\n")
	if d == Blocked {
		b.WriteString("**MERGE BLOCKED** - Critical or High severity test failures detected.\n")
		b.WriteString("Please fix these issues before merging.\n")
	} else {
		b.WriteString("**MERGE ALLOWED** - Only low-severity failures detected.\n")
		b.WriteString("Manual review recommended before merging.\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
