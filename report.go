package main

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const reportFilename = "analysis_report.json"

type Resources struct {
	Layouts []string          `json:"layouts"`
	Images  []string          `json:"images"`
	Strings map[string]string `json:"strings"`
}

// Report is the summary written to analysis_report.json. Field order is the
// key order of the file. Manifest-derived fields stay empty because the
// binary manifest is never decoded.
type Report struct {
	PackageName string    `json:"package_name"`
	AppName     string    `json:"app_name"`
	Version     string    `json:"version"`
	Activities  []string  `json:"activities"`
	Resources   Resources `json:"resources"`
	Assets      []string  `json:"assets"`
}

// NewReport returns a report whose collections encode as [] and {} rather
// than null.
func NewReport() *Report {
	return &Report{
		Activities: []string{},
		Resources: Resources{
			Layouts: []string{},
			Images:  []string{},
			Strings: map[string]string{},
		},
		Assets: []string{},
	}
}

func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func writeReport(fs afero.Fs, filename string, r *Report) error {
	data, err := r.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal-report")
	}
	return errors.Wrap(afero.WriteFile(fs, filename, data, 0644), "write-report")
}

func readReport(fs afero.Fs, filename string) (*Report, error) {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.Wrap(err, "read-report")
	}
	r := new(Report)
	if err := json.Unmarshal(data, r); err != nil {
		return nil, errors.Wrap(err, "parse-report")
	}
	return r, nil
}
