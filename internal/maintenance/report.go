package maintenance

import (
	"fmt"
	"strings"
)

type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
	OutcomeSkip Outcome = "SKIP"
)

type Line struct {
	Step    Step
	Outcome Outcome
	Detail  string
}

func (l Line) String() string {
	return fmt.Sprintf("[%s] %-9s %s", l.Outcome, l.Step, l.Detail)
}

// Report collects one line per executed step.
type Report struct {
	Engine Engine
	Lines  []Line
}

func (r *Report) pass(step Step, detail string) {
	r.Lines = append(r.Lines, Line{Step: step, Outcome: OutcomePass, Detail: detail})
}

func (r *Report) fail(step Step, detail string) {
	r.Lines = append(r.Lines, Line{Step: step, Outcome: OutcomeFail, Detail: detail})
}

func (r *Report) skip(step Step, detail string) {
	r.Lines = append(r.Lines, Line{Step: step, Outcome: OutcomeSkip, Detail: detail})
}

func (r *Report) Failed() bool {
	for _, l := range r.Lines {
		if l.Outcome == OutcomeFail {
			return true
		}
	}
	return false
}

func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "database optimization report (%s)\n", r.Engine)
	for _, l := range r.Lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
