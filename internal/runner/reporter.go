package runner

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/alexisbeaulieu97/citrine/internal/model"
	"github.com/alexisbeaulieu97/citrine/internal/testcontext"
)

// Reporter prints test outcomes and the suite summary.
type Reporter struct {
	out     io.Writer
	verbose bool

	pass *color.Color
	fail *color.Color
	skip *color.Color
	dim  *color.Color
}

// NewReporter writes to out. Colour is disabled when noColor is set. In verbose mode the
// action trace of every test is printed, otherwise only the traces of failed tests.
func NewReporter(out io.Writer, noColor, verbose bool) *Reporter {
	r := &Reporter{
		out:     out,
		verbose: verbose,
		pass:    color.New(color.FgGreen),
		fail:    color.New(color.FgRed, color.Bold),
		skip:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{r.pass, r.fail, r.skip, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

// TestStarted implements Observer.
func (r *Reporter) TestStarted(string) {}

// TestFinished implements Observer.
func (r *Reporter) TestFinished(result model.TestResult) {
	switch result.Status {
	case model.StatusSuccess:
		r.pass.Fprint(r.out, "PASS")
	case model.StatusSkipped:
		r.skip.Fprint(r.out, "SKIP")
		fmt.Fprintf(r.out, " %s\n", result.Name)
		return
	default:
		r.fail.Fprint(r.out, "FAIL")
	}
	fmt.Fprintf(r.out, " %s ", result.Name)
	r.dim.Fprintf(r.out, "(%s)\n", result.Duration.Round(timeUnit(result)))

	if result.Error != nil {
		for _, line := range strings.Split(result.Error.Error(), "\n") {
			fmt.Fprintf(r.out, "    %s\n", line)
		}
	}
	if r.verbose || result.Failed() {
		r.printTrace(result.Trace)
	}
}

func (r *Reporter) printTrace(trace []testcontext.ActionRecord) {
	for _, record := range trace {
		indent := strings.Repeat("  ", record.Depth+2)
		marker := r.markerFor(record.Status)
		fmt.Fprintf(r.out, "%s%s %s", indent, marker, record.Name)
		if record.Status != testcontext.ActionSkipped {
			r.dim.Fprintf(r.out, " (%s)", record.Duration.Round(time.Microsecond))
		}
		fmt.Fprintln(r.out)
	}
}

func (r *Reporter) markerFor(status testcontext.ActionStatus) string {
	switch status {
	case testcontext.ActionSuccess:
		return r.pass.Sprint("+")
	case testcontext.ActionFailed:
		return r.fail.Sprint("x")
	case testcontext.ActionSkipped:
		return r.skip.Sprint("-")
	default:
		return r.dim.Sprint("?")
	}
}

// Summary prints the totals of a suite run.
func (r *Reporter) Summary(result model.SuiteResult) {
	fmt.Fprintln(r.out)
	if result.Error != nil {
		r.fail.Fprint(r.out, "suite hook failed: ")
		fmt.Fprintln(r.out, result.Error)
	}

	passed := result.Count(model.StatusSuccess)
	failed := result.Count(model.StatusFailed)
	skipped := result.Count(model.StatusSkipped)

	status := r.pass.Sprint("SUCCESS")
	if !result.Success() {
		status = r.fail.Sprint("FAILED")
	}
	fmt.Fprintf(r.out, "%s %s: %d tests, %d passed, %d failed, %d skipped (%s)\n",
		status, result.Name, len(result.Tests), passed, failed, skipped, result.Duration.Round(time.Millisecond))
}

func timeUnit(result model.TestResult) time.Duration {
	if result.Duration < time.Second {
		return time.Microsecond
	}
	return time.Millisecond
}
