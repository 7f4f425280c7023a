// qualitygate parses a JUnit XML test report and exits non-zero when
// Critical or High severity tests failed, blocking the merge.
package main

import (
	"flag"
	"fmt"
	"os"

	"quotefetch/internal/gate"
)

func main() {
	summaryPath := flag.String("summary", "", "write a markdown summary to this file (for PR comments)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: qualitygate [-summary file] <junit-xml-file>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading test results: %v\n", err)
		os.Exit(1)
	}

	g := gate.New(nil)
	report, err := g.Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing test results: %v\n", err)
		os.Exit(1)
	}

	decision := g.Evaluate(report)
	fmt.Print(report.Analysis(decision))

	if *summaryPath != "" {
		if err := os.WriteFile(*summaryPath, []byte(report.MarkdownSummary(decision)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing summary: %v\n", err)
			os.Exit(1)
		}
	}

	os.Exit(decision.ExitCode())
}
