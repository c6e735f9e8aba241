// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/enggenv/envrun/internal/provision"
)

const (
	reportText reportFormat = "text"
	reportYAML reportFormat = "yaml"
	reportJSON reportFormat = "json"
)

type (
	// reportFormat selects how `envrun check` prints the prepared environment.
	reportFormat string

	// report is the machine-readable form of a prepared environment.
	report struct {
		Key          string        `json:"key" yaml:"key"`
		Path         []string      `json:"path" yaml:"path"`
		Dependencies []reportEntry `json:"dependencies" yaml:"dependencies"`
	}

	reportEntry struct {
		ID       string `json:"id" yaml:"id"`
		Kind     string `json:"kind" yaml:"kind"`
		Location string `json:"location" yaml:"location"`
		Cached   bool   `json:"cached" yaml:"cached"`
	}
)

func parseReportFormat(s string) (reportFormat, error) {
	switch f := reportFormat(s); f {
	case reportText, reportYAML, reportJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: text, yaml, json)", s)
	}
}

func newReport(env *provision.Environment) report {
	r := report{Key: env.Key(), Path: env.PathDirs(), Dependencies: []reportEntry{}}
	for _, res := range env.Resolutions() {
		r.Dependencies = append(r.Dependencies, reportEntry{
			ID:       res.ID,
			Kind:     string(res.Dependency.Kind),
			Location: res.Location,
			Cached:   res.Cached,
		})
	}
	return r
}

// writeReport prints env in format. The text form is styled for people;
// verbose adds the prepared PATH to it.
func writeReport(w io.Writer, format reportFormat, env *provision.Environment, verbose bool) error {
	switch format {
	case reportYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newReport(env)); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	case reportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newReport(env))
	}

	if len(env.Resolutions()) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No dependencies declared."))
	}
	for _, r := range env.Resolutions() {
		location := r.Location
		if location == "" {
			location = "(built-in)"
		}
		suffix := ""
		if r.Cached {
			suffix = SubtitleStyle.Render(" (cached)")
		}
		fmt.Fprintf(w, "%s %s %s%s\n", SuccessStyle.Render("✓"), CmdStyle.Render(r.ID), location, suffix)
	}
	if verbose {
		fmt.Fprintf(w, "\n%s %s\n", SubtitleStyle.Render("PATH:"), env.PATH())
	}
	return nil
}
