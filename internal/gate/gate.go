// Package gate parses JUnit XML test reports and decides whether a build
// may proceed based on the severity of the failing tests.
package gate

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Severity of a failed test for gating purposes.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityLow      Severity = "Low"
)

// DefaultMapping assigns severities to tests by name substring.
// Critical and High failures block the build; Low failures only warn.
var DefaultMapping = map[string]Severity{
	"TestFetch_ServerErrorExhaustsRetries": SeverityCritical,
	"TestFetch_BadDataCases":               SeverityCritical,

	"TestFetch_RateLimitWithRetryAfter":    SeverityHigh,
	"TestFetch_RateLimitWithoutRetryAfter": SeverityHigh,

	"TestFetch_SuccessFirstAttempt":            SeverityLow,
	"TestFetch_RetriesServerErrorThenSucceeds": SeverityLow,
}

// Decision is the gate's verdict on a report.
type Decision int

const (
	// Pass means every test passed.
	Pass Decision = iota
	// PassWithWarnings means only Low severity tests failed.
	PassWithWarnings
	// Blocked means at least one Critical or High severity test failed.
	Blocked
)

// ExitCode maps the decision to a CI job exit code.
func (d Decision) ExitCode() int {
	if d == Blocked {
		return 1
	}
	return 0
}

// FailedTest is one failing testcase with its gate severity.
type FailedTest struct {
	Name      string
	ClassName string
	Severity  Severity
	Message   string
}

// Stats summarizes a parsed report.
type Stats struct {
	Total          int
	Passed         int
	Failed         int
	CriticalFailed int
	HighFailed     int
	LowFailed      int
}

// Report is the gate's view of one JUnit XML file.
type Report struct {
	Failed []FailedTest
	Stats  Stats
}

// Gate evaluates JUnit reports against a severity mapping.
type Gate struct {
	mapping map[string]Severity
}

// New creates a Gate. A nil mapping uses DefaultMapping.
func New(mapping map[string]Severity) *Gate {
	if mapping == nil {
		mapping = DefaultMapping
	}
	return &Gate{mapping: mapping}
}

// SeverityOf returns the severity for a test name. Unmapped names
// default to High so an unknown failure can never slip through the gate.
func (g *Gate) SeverityOf(name string) Severity {
	for pattern, severity := range g.mapping {
		if strings.Contains(name, pattern) {
			return severity
		}
	}
	return SeverityHigh
}

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	XMLName xml.Name    `xml:"testsuite"`
	Name    string      `xml:"name,attr"`
	Cases   []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string       `xml:"name,attr"`
	ClassName string       `xml:"classname,attr"`
	Failure   *junitResult `xml:"failure"`
	Error     *junitResult `xml:"error"`
}

type junitResult struct {
	Message string `xml:"message,attr"`
}

// Parse reads a JUnit XML document. The root element may be either
// <testsuites> or a bare <testsuite>.
func (g *Gate) Parse(data []byte) (*Report, error) {
	var suites []junitSuite

	var multi junitSuites
	if err := xml.Unmarshal(data, &multi); err == nil {
		suites = multi.Suites
	} else {
		var single junitSuite
		if err := xml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parsing junit xml: %w", err)
		}
		suites = []junitSuite{single}
	}

	report := &Report{}
	for _, suite := range suites {
		for _, tc := range suite.Cases {
			report.Stats.Total++

			result := tc.Failure
			if result == nil {
				result = tc.Error
			}
			if result == nil {
				report.Stats.Passed++
				continue
			}

			severity := g.SeverityOf(tc.Name)
			report.Failed = append(report.Failed, FailedTest{
				Name:      tc.Name,
				ClassName: tc.ClassName,
				Severity:  severity,
				Message:   result.Message,
			})
			report.Stats.Failed++
			switch severity {
			case SeverityCritical:
				report.Stats.CriticalFailed++
			case SeverityHigh:
				report.Stats.HighFailed++
			case SeverityLow:
				report.Stats.LowFailed++
			}
		}
	}
	return report, nil
}

// Evaluate applies the gate rule: any Critical or High failure blocks
// the build; Low-only failures pass with warnings.
func (g *Gate) Evaluate(r *Report) Decision {
	switch {
	case r.Stats.Failed == 0:
		return Pass
	case r.Stats.CriticalFailed > 0 || r.Stats.HighFailed > 0:
		return Blocked
	default:
		return PassWithWarnings
	}
}
