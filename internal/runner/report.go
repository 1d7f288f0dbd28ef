package runner

import (
	"regexp"
	"strconv"
	"strings"
)

// DocTestReport summarizes the doc-test tool's own accounting of how many
// embedded examples ran. It is parsed from the tool's human-readable
// output; the exit status remains the authority on pass/fail.
type DocTestReport struct {
	Passed  int
	Failed  int
	Ignored int
	// Parsed is false when no summary line was found in the output, e.g.
	// when the tool crashed before running any example.
	Parsed bool
}

// summaryRegex matches the libtest-style summary line emitted after a run:
//
//	test result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out
var summaryRegex = regexp.MustCompile(`test result: \w+\. (\d+) passed; (\d+) failed(?:; (\d+) ignored)?`)

// ParseDocTestOutput extracts the pass/fail summary from doc-test tool
// output. When the output contains several summary lines (one per target),
// the counts are accumulated across all of them.
func ParseDocTestOutput(output string) DocTestReport {
	var report DocTestReport

	for _, line := range strings.Split(output, "\n") {
		matches := summaryRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		passed, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}
		failed, err := strconv.Atoi(matches[2])
		if err != nil {
			continue
		}

		report.Passed += passed
		report.Failed += failed
		if matches[3] != "" {
			if ignored, err := strconv.Atoi(matches[3]); err == nil {
				report.Ignored += ignored
			}
		}
		report.Parsed = true
	}

	return report
}

// Total returns the number of examples the tool attempted to run.
func (r DocTestReport) Total() int {
	return r.Passed + r.Failed
}
