package destination

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/spf13/afero"
)

// FieldLookup supplies declared column types to typed writers.
type FieldLookup interface {
	Lookup(name string) (types.FieldDescriptor, bool)
}

// Emitter writes materialized results into an output directory.
type Emitter struct {
	fs        afero.Fs
	outputDir string
	writer    Writer
	archive   bool
	uploader  Uploader
	fields    FieldLookup
	now       func() time.Time
}

type EmitterOption func(*Emitter)

func WithFields(fields FieldLookup) EmitterOption {
	return func(e *Emitter) {
		e.fields = fields
	}
}

func WithUploader(uploader Uploader) EmitterOption {
	return func(e *Emitter) {
		e.uploader = uploader
	}
}

func WithClock(now func() time.Time) EmitterOption {
	return func(e *Emitter) {
		e.now = now
	}
}

// NewEmitter prepares the output directory and the configured writer. A nil config writes CSV.
func NewEmitter(ctx context.Context, fs afero.Fs, outputDir string, config *types.WriterConfig, opts ...EmitterOption) (*Emitter, error) {
	if config == nil {
		config = &types.WriterConfig{Type: types.LocalCSV}
	}

	writer, err := NewWriter(ctx, config)
	if err != nil {
		return nil, err
	}

	e := &Emitter{
		fs:        fs,
		outputDir: outputDir,
		writer:    writer,
		archive:   config.Archive,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.uploader == nil && config.Upload != nil {
		s3Uploader, err := NewS3Uploader(config.Upload)
		if err != nil {
			return nil, err
		}
		if err := s3Uploader.Check(ctx); err != nil {
			return nil, err
		}
		e.uploader = s3Uploader
	}

	if err := e.checkOutputDir(); err != nil {
		return nil, err
	}
	return e, nil
}

// Emit is NewEmitter followed by a single Emit.
func Emit(ctx context.Context, fs afero.Fs, outputDir string, config *types.WriterConfig, result *types.Result, opts ...EmitterOption) (*types.Artifact, error) {
	if !result.Materialized() {
		return nil, ErrNotMaterialized
	}
	emitter, err := NewEmitter(ctx, fs, outputDir, config, opts...)
	if err != nil {
		return nil, err
	}
	return emitter.Emit(ctx, result)
}

// Emit writes the data file and the criteria description for a materialized result, then the
// archive and upload when configured. Nothing is written for a count-only result. On failure the
// files this call created are removed again, except after a failed upload, where the local
// artifact is returned alongside the error.
func (e *Emitter) Emit(ctx context.Context, result *types.Result) (*types.Artifact, error) {
	if !result.Materialized() {
		return nil, ErrNotMaterialized
	}

	now := e.now()
	names, err := e.reserveNames(now)
	if err != nil {
		return nil, err
	}

	table := e.table(result)
	err = writeFileAtomic(e.fs, names.data, func(w io.Writer) error {
		return e.writer.Write(ctx, w, table)
	})
	if err != nil {
		return nil, err
	}

	err = writeFileAtomic(e.fs, names.description, func(w io.Writer) error {
		_, err := io.WriteString(w, result.Constraints.Describe())
		return err
	})
	if err != nil {
		discard(e.fs, names.data)
		return nil, err
	}

	artifact := &types.Artifact{DataPath: names.data, DescriptionPath: names.description}
	if e.archive {
		if err := Archive(e.fs, names.archive, now, names.data, names.description); err != nil {
			discard(e.fs, names.data, names.description)
			return nil, err
		}
		artifact.ArchivePath = names.archive
	}

	logger.Infof("wrote %d rows to %s", len(result.Rows), artifact.DataPath)

	if e.uploader != nil {
		uri, err := e.upload(ctx, artifact)
		if err != nil {
			logger.Warnf("local artifacts kept at %s", e.outputDir)
			return artifact, err
		}
		artifact.RemoteURI = uri
	}

	return artifact, nil
}

// checkOutputDir creates the output directory when missing and probes that it is writable.
func (e *Emitter) checkOutputDir() error {
	if err := e.fs.MkdirAll(e.outputDir, os.ModePerm); err != nil {
		return &EmissionError{Op: "create output directory", Path: e.outputDir, Err: err}
	}

	probe, err := afero.TempFile(e.fs, e.outputDir, ".slicer-check-*")
	if err != nil {
		return &EmissionError{Op: "write to output directory", Path: e.outputDir, Err: err}
	}
	name := probe.Name()
	if err := probe.Close(); err != nil {
		return &EmissionError{Op: "write to output directory", Path: e.outputDir, Err: err}
	}
	return e.fs.Remove(name)
}

func (e *Emitter) upload(ctx context.Context, artifact *types.Artifact) (string, error) {
	files := []string{artifact.DataPath, artifact.DescriptionPath}
	if artifact.ArchivePath != "" {
		files = []string{artifact.ArchivePath}
	}

	var primary string
	for _, file := range files {
		uri, err := e.uploader.Upload(ctx, e.fs, file)
		if err != nil {
			return "", &EmissionError{Op: "upload", Path: file, Err: err}
		}
		if primary == "" {
			primary = uri
		}
	}
	logger.Infof("uploaded result to %s", primary)
	return primary, nil
}

func (e *Emitter) table(result *types.Result) *Table {
	columnTypes := make([]types.DataType, len(result.Columns))
	for i, column := range result.Columns {
		columnTypes[i] = types.Unknown
		if e.fields == nil {
			continue
		}
		if field, ok := e.fields.Lookup(column); ok {
			columnTypes[i] = field.Type
		}
	}
	return &Table{Columns: result.Columns, Types: columnTypes, Rows: result.Rows}
}

type outputNames struct {
	data, description, archive string
}

// reserveNames picks "<timestamp>_filtered" names that collide with no existing artifact; a second
// emission within the same second gets a numeric suffix.
func (e *Emitter) reserveNames(now time.Time) (outputNames, error) {
	for n := 1; n < 1000; n++ {
		dataSuffix, criteriaSuffix := constants.FilteredSuffix, constants.CriteriaSuffix
		if n > 1 {
			dataSuffix = fmt.Sprintf("%s_%d", dataSuffix, n)
			criteriaSuffix = fmt.Sprintf("%s_%d", criteriaSuffix, n)
		}

		names := outputNames{
			data:        filepath.Join(e.outputDir, utils.TimestampedFileName(now, dataSuffix, e.writer.Extension())),
			description: filepath.Join(e.outputDir, utils.TimestampedFileName(now, criteriaSuffix, constants.DescriptionFileExt)),
			archive:     filepath.Join(e.outputDir, utils.TimestampedFileName(now, dataSuffix, constants.ArchiveFileExt)),
		}

		taken := false
		for _, path := range []string{names.data, names.description, names.archive} {
			exists, err := afero.Exists(e.fs, path)
			if err != nil {
				return outputNames{}, &EmissionError{Op: "stat", Path: path, Err: err}
			}
			taken = taken || exists
		}
		if !taken {
			return names, nil
		}
	}
	return outputNames{}, &EmissionError{Op: "name", Path: e.outputDir, Err: fmt.Errorf("too many artifacts for %s", now.Format(time.RFC3339))}
}
