// Package report writes a YAML summary of a resolution run.
package report

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mapgrind/addresser/internal/pipeline"
)

// Record is one resolved or failed address in the report.
type Record struct {
	Index    int    `yaml:"index"`
	Address  string `yaml:"address,omitempty"`
	Building int64  `yaml:"building_id,omitempty"`
	Error    string `yaml:"error,omitempty"`
	Kind     string `yaml:"failure_kind,omitempty"`
}

// Report is the YAML document written for a run.
type Report struct {
	RunID       string         `yaml:"run_id"`
	Total       int            `yaml:"total"`
	Resolved    int            `yaml:"resolved"`
	TilesLoaded int            `yaml:"tiles_loaded"`
	Failures    map[string]int `yaml:"failures,omitempty"`
	Records     []Record       `yaml:"records"`
}

// Build assembles a Report from a run's summary and outcomes.
func Build(summary pipeline.Summary, outcomes []pipeline.Outcome) Report {
	r := Report{
		RunID:       summary.RunID.String(),
		Total:       summary.Total,
		Resolved:    summary.Resolved,
		TilesLoaded: summary.TilesLoaded,
		Failures:    summary.Failures,
	}
	for _, out := range outcomes {
		rec := Record{Index: out.Index}
		if out.Err != nil {
			rec.Error = out.Err.Error()
			rec.Kind = pipeline.FailureKind(out.Err)
		} else {
			rec.Address = out.Resolved.Format()
			if out.Building != nil {
				rec.Building = out.Building.ID
			}
		}
		r.Records = append(r.Records, rec)
	}
	return r
}

// Write marshals the report to path.
func Write(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "report: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}
