package protocol

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/datazip-inc/slicer/constraint"
	"github.com/datazip-inc/slicer/dataset"
	"github.com/datazip-inc/slicer/engine"
	"github.com/datazip-inc/slicer/predicate"
	"github.com/datazip-inc/slicer/schema"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// filesystem used by every command; swapped for an in-memory one in tests
var fs = afero.NewOsFs()

type rejection struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Error    string `json:"error"`
}

// Report is what count and filter print once a request has been evaluated.
type Report struct {
	RequestID    string          `json:"request_id"`
	Dataset      string          `json:"dataset"`
	Fingerprint  string          `json:"fingerprint"`
	Constraints  []string        `json:"constraints"`
	Rejected     []rejection     `json:"rejected,omitempty"`
	Count        int64           `json:"count"`
	Cap          int             `json:"cap"`
	Materialized bool            `json:"materialized"`
	Artifact     *types.Artifact `json:"artifact,omitempty"`
}

func loadRegistry() (*schema.Registry, error) {
	return schema.LoadFile(config.SchemaPath)
}

// buildConstraints validates the request; rejected constraints are reported, never fatal.
func buildConstraints(registry *schema.Registry, request *types.Request) (types.ConstraintSet, []rejection, error) {
	set, err := constraint.Build(request.Constraints, registry)
	rejected := constraint.Rejected(err)
	if err != nil && len(rejected) == 0 {
		return nil, nil, err
	}

	out := make([]rejection, 0, len(rejected))
	for _, verr := range rejected {
		out = append(out, rejection{Field: verr.Field, Operator: verr.Operator, Value: verr.Value, Error: verr.Error()})
	}
	return set, out, nil
}

// evaluation is everything a request produced before emission.
type evaluation struct {
	report   *Report
	result   *types.Result
	registry *schema.Registry
}

// evaluate runs one request end to end up to, but excluding, emission.
func evaluate(ctx context.Context, request *types.Request, countOnly bool) (*evaluation, error) {
	registry, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	set, rejected, err := buildConstraints(registry, request)
	if err != nil {
		return nil, err
	}

	fingerprint, err := set.Fingerprint()
	if err != nil {
		return nil, err
	}

	report := &Report{
		RequestID:   utils.ULID(),
		Dataset:     dataset.Redact(request.Dataset),
		Fingerprint: fingerprint,
		Constraints: strings.Split(strings.TrimSuffix(set.Describe(), "\n"), "\n"),
		Rejected:    rejected,
		Cap:         config.MaxExportRows,
	}
	if len(set) == 0 {
		report.Constraints = []string{}
	}
	logger.Infof("request[%s]: dataset=%s constraints=%d rejected=%d fingerprint=%s",
		report.RequestID, report.Dataset, len(set), len(rejected), fingerprint)

	ds, err := dataset.Open(ctx, fs, request.Dataset, config.BatchSize)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	progress := &engine.Progress{}
	stop := reportProgress(ctx, report.RequestID, progress)
	result, err := engine.Evaluate(ctx, ds, predicate.Compile(set), engine.Options{
		Cap:       int64(config.MaxExportRows),
		Workers:   config.Workers,
		CountOnly: countOnly,
		Progress:  progress,
	})
	stop()
	if err != nil {
		return nil, err
	}

	report.Count = result.Count
	report.Materialized = result.Materialized()
	logger.Infof("request[%s]: %s of %s rows matched", report.RequestID,
		humanize.Comma(result.Count), humanize.Comma(progress.Scanned()))
	return &evaluation{report: report, result: result, registry: registry}, nil
}

func printReport(w io.Writer, report *Report) error {
	if jsonOutput {
		return writeJSON(w, report)
	}

	for _, r := range report.Rejected {
		fmt.Fprintf(w, "rejected: %s\n", r.Error)
	}
	fmt.Fprintf(w, "matches: %s\n", humanize.Comma(report.Count))
	if report.Artifact != nil {
		fmt.Fprintf(w, "data: %s\n", report.Artifact.DataPath)
		fmt.Fprintf(w, "criteria: %s\n", report.Artifact.DescriptionPath)
		if report.Artifact.ArchivePath != "" {
			fmt.Fprintf(w, "archive: %s\n", report.Artifact.ArchivePath)
		}
		if report.Artifact.RemoteURI != "" {
			fmt.Fprintf(w, "uploaded: %s\n", report.Artifact.RemoteURI)
		}
	}
	return nil
}
