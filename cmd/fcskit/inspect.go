package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/scu-obit/fcskit/pkg/fcs"
)

type inspectReport struct {
	File          string            `json:"file"`
	Version       string            `json:"version"`
	Events        int               `json:"events"`
	DecodedEvents *int              `json:"decoded_events,omitempty"`
	Acquisition   fcs.Acquisition   `json:"acquisition"`
	Parameters    []parameterReport `json:"parameters"`
	Warnings      []warningReport   `json:"warnings,omitempty"`
	Keywords      []keywordReport   `json:"keywords,omitempty"`
}

type parameterReport struct {
	Index         int      `json:"index"`
	Name          string   `json:"name"`
	Label         string   `json:"label,omitempty"`
	Bits          int      `json:"bits"`
	Range         int64    `json:"range"`
	Amplification string   `json:"amplification"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
}

type warningReport struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type keywordReport struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func inspectCmd() *cli.Command {
	var (
		showKeywords bool
		showDump     bool
		asJSON       bool
		noData       bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize an FCS file: header, parameters and acquisition",
		ArgsUsage: "<file.fcs>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "keywords", Usage: "list every TEXT keyword", Destination: &showKeywords},
			&cli.BoolFlag{Name: "dump", Usage: "print the full diagnostic dump", Destination: &showDump},
			&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "no-data", Usage: "skip decoding the DATA segment", Destination: &noData},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := fileArg(cmd)
			if err != nil {
				return err
			}
			f, err := openFCS(ctx, path, !noData)
			if err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}

			w := outWriter(cmd)
			if showDump {
				_, err := io.WriteString(w, f.Dump())
				return err
			}
			report := buildReport(path, f, showKeywords)
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return writeReport(w, report)
		},
	}
}

func buildReport(path string, f *fcs.File, withKeywords bool) inspectReport {
	r := inspectReport{
		File:        path,
		Version:     f.Header.Version,
		Events:      f.NumEvents(),
		Acquisition: f.Acquisition(),
		Parameters:  make([]parameterReport, len(f.Parameters)),
	}
	if f.Events != nil {
		n := f.Events.Rows()
		r.DecodedEvents = &n
	}
	for i, p := range f.Parameters {
		pr := parameterReport{
			Index:         p.Index,
			Name:          p.ShortName,
			Label:         p.Label,
			Bits:          p.Bits,
			Range:         p.Range,
			Amplification: p.Amplification.String(),
		}
		if f.Events != nil && f.Events.Rows() > 0 {
			lo, hi := f.Events.ColumnBounds(i)
			if !math.IsNaN(lo) {
				pr.Min, pr.Max = &lo, &hi
			}
		}
		r.Parameters[i] = pr
	}
	for _, w := range f.Warnings {
		r.Warnings = append(r.Warnings, warningReport{Code: string(w.Code), Message: w.Message})
	}
	if withKeywords {
		for _, kw := range f.Keywords.Entries() {
			r.Keywords = append(r.Keywords, keywordReport{Key: kw.Key, Value: kw.Value})
		}
	}
	return r
}

func writeReport(w io.Writer, r inspectReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	a := r.Acquisition

	_, _ = fmt.Fprintf(tw, "File:\t%s\n", r.File)
	_, _ = fmt.Fprintf(tw, "Version:\t%s\n", r.Version)
	_, _ = fmt.Fprintf(tw, "Cytometer:\t%s\n", orDash(a.Hardware))
	_, _ = fmt.Fprintf(tw, "Software:\t%s\n", orDash(a.Software))
	_, _ = fmt.Fprintf(tw, "Experiment:\t%s\n", a.Experiment)
	if a.Container == fcs.ContainerTray {
		_, _ = fmt.Fprintf(tw, "Plate:\t%s well %s\n", a.Tray, orDash(a.Tube))
	} else {
		_, _ = fmt.Fprintf(tw, "Tube:\t%s\n", orDash(a.Tube))
	}
	if a.Date != "" {
		_, _ = fmt.Fprintf(tw, "Date:\t%s\n", a.Date)
	}
	events := strconv.Itoa(r.Events)
	if r.DecodedEvents != nil && *r.DecodedEvents != r.Events {
		events += fmt.Sprintf(" (decoded %d)", *r.DecodedEvents)
	}
	_, _ = fmt.Fprintf(tw, "Events:\t%s\n", events)
	_, _ = fmt.Fprintf(tw, "Parameters:\t%d\n", len(r.Parameters))
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tNAME\tLABEL\tBITS\tRANGE\tAMP\tMIN\tMAX")
	for _, p := range r.Parameters {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			p.Index, p.Name, orDash(p.Label), p.Bits, p.Range, p.Amplification, formatBound(p.Min), formatBound(p.Max))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range r.Warnings {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", warn.Code, warn.Message)
		}
	}
	if len(r.Keywords) > 0 {
		_, _ = fmt.Fprintln(w, "\nKeywords:")
		for _, kw := range r.Keywords {
			_, _ = fmt.Fprintf(w, "  %s = %s\n", kw.Key, kw.Value)
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}
