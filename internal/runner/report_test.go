package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDocTestOutputPassing(t *testing.T) {
	output := `running 3 tests
test lib.rs - add (line 12) ... ok
test lib.rs - sub (line 25) ... ok
test lib.rs - mul (line 40) ... ok

test result: ok. 3 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out; finished in 0.31s
`
	report := ParseDocTestOutput(output)
	assert.True(t, report.Parsed)
	assert.Equal(t, 3, report.Passed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, report.Total())
}

func TestParseDocTestOutputFailing(t *testing.T) {
	output := `running 2 tests
test lib.rs - add (line 12) ... ok
test lib.rs - sub (line 25) ... FAILED

failures:
    lib.rs - sub (line 25)

test result: FAILED. 1 passed; 1 failed; 0 ignored; 0 measured; 0 filtered out
`
	report := ParseDocTestOutput(output)
	assert.True(t, report.Parsed)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)
}

func TestParseDocTestOutputZeroTests(t *testing.T) {
	output := `running 0 tests

test result: ok. 0 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out
`
	report := ParseDocTestOutput(output)
	assert.True(t, report.Parsed)
	assert.Equal(t, 0, report.Total())
}

func TestParseDocTestOutputIgnored(t *testing.T) {
	output := "test result: ok. 2 passed; 0 failed; 1 ignored; 0 measured; 0 filtered out\n"
	report := ParseDocTestOutput(output)
	assert.Equal(t, 1, report.Ignored)
}

func TestParseDocTestOutputNoSummary(t *testing.T) {
	report := ParseDocTestOutput("error: internal tool crash\n")
	assert.False(t, report.Parsed)
	assert.Equal(t, 0, report.Total())
}

func TestParseDocTestOutputMultipleSummaries(t *testing.T) {
	output := `test result: ok. 2 passed; 0 failed; 0 ignored
test result: FAILED. 1 passed; 1 failed; 0 ignored
`
	report := ParseDocTestOutput(output)
	assert.Equal(t, 3, report.Passed)
	assert.Equal(t, 1, report.Failed)
}
