package dashboard

import (
	"errors"

	"povdash/internal/chart"
	"povdash/internal/cluster"
	"povdash/internal/engine"
)

// Tag tells the caller what to do with an Outcome.
type Tag string

const (
	// TagSkip leaves the widget's previous output in place.
	TagSkip    Tag = "skip"
	TagResult  Tag = "result"
	TagFailure Tag = "failure"
)

// Report is the text output of the report widget.
type Report struct {
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

// Outcome is what a widget handler returns.
type Outcome struct {
	Tag     Tag             `json:"tag"`
	Chart   *chart.Spec     `json:"chart,omitempty"`
	Report  *Report         `json:"report,omitempty"`
	Details string          `json:"details,omitempty"`
	Cluster *cluster.Result `json:"cluster,omitempty"`
	Err     error           `json:"-"`
}

func Skip() Outcome { return Outcome{Tag: TagSkip} }

func ChartResult(spec *chart.Spec) Outcome { return Outcome{Tag: TagResult, Chart: spec} }

func ReportResult(r Report) Outcome { return Outcome{Tag: TagResult, Report: &r} }

func Failure(err error) Outcome { return Outcome{Tag: TagFailure, Err: err} }

// fromError folds the error taxonomy into an Outcome: missing inputs skip,
// empty slices become a placeholder chart, anything else fails.
func fromError(err error, emptyTitle string) Outcome {
	switch {
	case errors.Is(err, engine.ErrNoSelection), errors.Is(err, engine.ErrNoIndicatorsSelected):
		return Skip()
	case errors.Is(err, engine.ErrNotFound), errors.Is(err, engine.ErrNoDataForCombination):
		if emptyTitle == "" {
			emptyTitle = chart.NoDataTitle
		}
		return ChartResult(chart.Placeholder(emptyTitle))
	default:
		return Failure(err)
	}
}
