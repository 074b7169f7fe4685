package scanner

import "sort"

// Report aggregates every outcome of one scan invocation.
//
// Open is sorted ascending by port for display; Outcomes preserves
// completion order so exports reflect what actually happened. For a scan
// that ran to completion, len(Open)+ClosedCount+ErrorCount equals
// TotalRequested; a cancelled scan may have fewer outcomes than requested.
type Report struct {
	TotalRequested int       `json:"total_requested"`
	Open           []Outcome `json:"open"`
	ClosedCount    int       `json:"closed"`
	ErrorCount     int       `json:"errors"`
	Outcomes       []Outcome `json:"outcomes"`
}

// Complete reports whether every requested port produced an outcome.
func (r *Report) Complete() bool {
	return len(r.Outcomes) == r.TotalRequested
}

// Collector accumulates outcomes as they stream out of a scan. It is not
// safe for concurrent use; the scan delivers outcomes on one channel, so
// a single consumer feeds the collector.
type Collector struct {
	report Report
}

// NewCollector creates a collector expecting totalRequested outcomes.
func NewCollector(totalRequested int) *Collector {
	return &Collector{report: Report{TotalRequested: totalRequested}}
}

// Add records one completed outcome.
func (c *Collector) Add(o Outcome) {
	c.report.Outcomes = append(c.report.Outcomes, o)
	switch o.State {
	case StateOpen:
		c.report.Open = append(c.report.Open, o)
	case StateClosed:
		c.report.ClosedCount++
	default:
		c.report.ErrorCount++
	}
}

// Report freezes and returns the aggregate. Open is sorted by port.
func (c *Collector) Report() *Report {
	r := c.report
	sort.Slice(r.Open, func(i, j int) bool { return r.Open[i].Port < r.Open[j].Port })
	return &r
}

// Aggregate builds a Report from an already-collected outcome sequence.
func Aggregate(outcomes []Outcome, totalRequested int) *Report {
	c := NewCollector(totalRequested)
	for _, o := range outcomes {
		c.Add(o)
	}
	return c.Report()
}
