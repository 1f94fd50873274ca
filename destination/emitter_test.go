package destination_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/datazip-inc/slicer/destination"
	_ "github.com/datazip-inc/slicer/destination/local"
	_ "github.com/datazip-inc/slicer/destination/parquet"
	"github.com/datazip-inc/slicer/types"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helper functions
// ─────────────────────────────────────────────────────────────────────────────

const outputDir = "/out"

var fixedNow = time.Date(2024, 3, 9, 14, 5, 30, 0, time.UTC)

func clock() time.Time { return fixedNow }

func sampleConstraints() types.ConstraintSet {
	return types.ConstraintSet{
		{Field: types.FieldDescriptor{Name: "AF", Type: types.Float}, Operator: types.LessThan, Value: 0.01, Raw: "0.01"},
		{Field: types.FieldDescriptor{Name: "Gene", Type: types.String}, Operator: types.Contains, Value: "BRCA", Raw: "BRCA"},
	}
}

func sampleResult() *types.Result {
	rows := []types.Row{{"chr1", "BRCA1", "0.001"}, {"chr2", "BRCA2", "0.0001"}}
	return types.NewMaterializedResult(2, []string{"CHROM", "Gene", "AF"}, rows, sampleConstraints())
}

func listDir(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	names := []string{}
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

type fakeUploader struct {
	uploaded []string
	err      error
}

func (f *fakeUploader) Upload(_ context.Context, fs afero.Fs, localPath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := fs.Stat(localPath); err != nil {
		return "", err
	}
	f.uploaded = append(f.uploaded, filepath.Base(localPath))
	return "s3://bucket/" + filepath.Base(localPath), nil
}

// brokenWriter writes part of a file and then fails.
type brokenWriter struct{}

func (brokenWriter) GetConfigRef() destination.Config { return nil }
func (brokenWriter) Spec() any { return nil }
func (brokenWriter) Type() string { return "broken" }
func (brokenWriter) Extension() string { return "csv" }
func (brokenWriter) Check(context.Context) error { return nil }
func (brokenWriter) Write(_ context.Context, w io.Writer, _ *destination.Table) error {
	_, _ = io.WriteString(w, "CHROM,Gene\nchr1,")
	return errors.New("disk full")
}

func init() {
	destination.RegisteredWriters["broken"] = func() destination.Writer { return brokenWriter{} }
}

// ─────────────────────────────────────────────────────────────────────────────
// Test: Emission
// ─────────────────────────────────────────────────────────────────────────────

func TestEmit_CSV(t *testing.T) {
	fs := afero.NewMemMapFs()

	artifact, err := destination.Emit(context.Background(), fs, outputDir, nil, sampleResult(), destination.WithClock(clock))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "20240309_140530_filtered.csv"), artifact.DataPath)
	assert.Equal(t, filepath.Join(outputDir, "20240309_140530_filtered_criteria.txt"), artifact.DescriptionPath)
	assert.Empty(t, artifact.ArchivePath)
	assert.Empty(t, artifact.RemoteURI)

	assert.Equal(t, "CHROM,Gene,AF\nchr1,BRCA1,0.001\nchr2,BRCA2,0.0001\n", readFile(t, fs, artifact.DataPath))
	assert.Equal(t, "AF less_than 0.01\nGene contains BRCA\n", readFile(t, fs, artifact.DescriptionPath))
	assert.Equal(t, []string{"20240309_140530_filtered.csv", "20240309_140530_filtered_criteria.txt"}, listDir(t, fs, outputDir),
		"no temporary or probe files are left behind")
}

func TestEmit_ZeroMatches(t *testing.T) {
	fs := afero.NewMemMapFs()
	result := types.NewMaterializedResult(0, []string{"CHROM"}, nil, sampleConstraints())

	artifact, err := destination.Emit(context.Background(), fs, outputDir, nil, result, destination.WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, "CHROM\n", readFile(t, fs, artifact.DataPath))
}

func TestEmit_NotMaterializedHasNoSideEffects(t *testing.T) {
	fs := afero.NewMemMapFs()
	result := types.NewCountResult(20001, []string{"CHROM"}, sampleConstraints())

	artifact, err := destination.Emit(context.Background(), fs, outputDir, nil, result)
	assert.Nil(t, artifact)
	assert.ErrorIs(t, err, destination.ErrNotMaterialized)

	exists, err := afero.Exists(fs, outputDir)
	require.NoError(t, err)
	assert.False(t, exists, "output directory must not even be created")

	emitter, err := destination.NewEmitter(context.Background(), fs, outputDir, nil)
	require.NoError(t, err)
	_, err = emitter.Emit(context.Background(), result)
	assert.ErrorIs(t, err, destination.ErrNotMaterialized)
	assert.Empty(t, listDir(t, fs, outputDir))
}

func TestEmit_Parquet(t *testing.T) {
	fs := afero.NewMemMapFs()
	config := &types.WriterConfig{Type: types.Parquet, WriterConfig: map[string]any{"compression": "gzip"}}

	artifact, err := destination.Emit(context.Background(), fs, outputDir, config, sampleResult(), destination.WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, ".parquet", filepath.Ext(artifact.DataPath))

	data := readFile(t, fs, artifact.DataPath)
	assert.True(t, strings.HasPrefix(data, "PAR1"))
}

func TestEmit_NameCollision(t *testing.T) {
	fs := afero.NewMemMapFs()
	emitter, err := destination.NewEmitter(context.Background(), fs, outputDir, nil, destination.WithClock(clock))
	require.NoError(t, err)

	first, err := emitter.Emit(context.Background(), sampleResult())
	require.NoError(t, err)
	second, err := emitter.Emit(context.Background(), sampleResult())
	require.NoError(t, err)

	assert.NotEqual(t, first.DataPath, second.DataPath)
	assert.Equal(t, filepath.Join(outputDir, "20240309_140530_filtered_2.csv"), second.DataPath)
	assert.Equal(t, filepath.Join(outputDir, "20240309_140530_filtered_criteria_2.txt"), second.DescriptionPath)
}

func TestEmit_WriteFailureLeavesPriorArtifacts(t *testing.T) {
	fs := afero.NewMemMapFs()
	prior, err := destination.Emit(context.Background(), fs, outputDir, nil, sampleResult(), destination.WithClock(clock))
	require.NoError(t, err)
	before := listDir(t, fs, outputDir)
	priorData := readFile(t, fs, prior.DataPath)

	_, err = destination.Emit(context.Background(), fs, outputDir, &types.WriterConfig{Type: "broken"}, sampleResult(), destination.WithClock(clock))
	require.Error(t, err)

	var emitErr *destination.EmissionError
	require.True(t, errors.As(err, &emitErr))
	assert.Equal(t, "write", emitErr.Op)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, before, listDir(t, fs, outputDir), "no partial or temporary file remains")
	assert.Equal(t, priorData, readFile(t, fs, prior.DataPath))
}

func TestEmit_UnknownWriter(t *testing.T) {
	_, err := destination.Emit(context.Background(), afero.NewMemMapFs(), outputDir, &types.WriterConfig{Type: "bigquery"}, sampleResult())
	assert.ErrorContains(t, err, "invalid destination type")
}

func TestEmit_ReadOnlyOutput(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll(outputDir, 0o755))

	_, err := destination.Emit(context.Background(), afero.NewReadOnlyFs(base), outputDir, nil, sampleResult())
	var emitErr *destination.EmissionError
	require.True(t, errors.As(err, &emitErr))
	assert.Empty(t, listDir(t, base, outputDir))
}

// ─────────────────────────────────────────────────────────────────────────────
// Test: Archive and upload
// ─────────────────────────────────────────────────────────────────────────────

func TestEmit_ArchiveAndUpload(t *testing.T) {
	fs := afero.NewMemMapFs()
	uploader := &fakeUploader{}
	config := &types.WriterConfig{Type: types.LocalCSV, Archive: true}

	artifact, err := destination.Emit(context.Background(), fs, outputDir, config, sampleResult(),
		destination.WithClock(clock), destination.WithUploader(uploader))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "20240309_140530_filtered.zip"), artifact.ArchivePath)
	assert.Equal(t, "s3://bucket/20240309_140530_filtered.zip", artifact.RemoteURI)
	assert.Equal(t, []string{"20240309_140530_filtered.zip"}, uploader.uploaded)

	data := []byte(readFile(t, fs, artifact.ArchivePath))
	reader, err := zip.NewReader(strings.NewReader(string(data)), int64(len(data)))
	require.NoError(t, err)

	entries := map[string]string{}
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[file.Name] = string(content)
	}
	assert.Equal(t, map[string]string{
		"20240309_140530_filtered.csv":          readFile(t, fs, artifact.DataPath),
		"20240309_140530_filtered_criteria.txt": "AF less_than 0.01\nGene contains BRCA\n",
	}, entries)
}

func TestEmit_UploadWithoutArchive(t *testing.T) {
	fs := afero.NewMemMapFs()
	uploader := &fakeUploader{}

	artifact, err := destination.Emit(context.Background(), fs, outputDir, nil, sampleResult(),
		destination.WithClock(clock), destination.WithUploader(uploader))
	require.NoError(t, err)
	assert.Equal(t, []string{"20240309_140530_filtered.csv", "20240309_140530_filtered_criteria.txt"}, uploader.uploaded)
	assert.Equal(t, "s3://bucket/20240309_140530_filtered.csv", artifact.RemoteURI)
}

func TestEmit_UploadFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	uploader := &fakeUploader{err: errors.New("access denied")}

	artifact, err := destination.Emit(context.Background(), fs, outputDir, nil, sampleResult(),
		destination.WithClock(clock), destination.WithUploader(uploader))

	require.NotNil(t, artifact)
	assert.Empty(t, artifact.RemoteURI)
	var emitErr *destination.EmissionError
	require.True(t, errors.As(err, &emitErr))
	assert.Equal(t, "upload", emitErr.Op)
	assert.Len(t, listDir(t, fs, outputDir), 2, "complete local artifacts are kept")
}

func TestEmit_TypedParquetUsesFields(t *testing.T) {
	fs := afero.NewMemMapFs()
	config := &types.WriterConfig{Type: types.Parquet}

	artifact, err := destination.Emit(context.Background(), fs, outputDir, config, sampleResult(),
		destination.WithClock(clock), destination.WithFields(lookup{"AF": types.Float}))
	require.NoError(t, err)
	exists, err := afero.Exists(fs, artifact.DataPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

type lookup map[string]types.DataType

func (l lookup) Lookup(name string) (types.FieldDescriptor, bool) {
	dataType, ok := l[name]
	return types.FieldDescriptor{Name: name, Type: dataType}, ok
}

func TestTypes(t *testing.T) {
	registered := destination.Types()
	assert.Contains(t, registered, types.LocalCSV)
	assert.Contains(t, registered, types.Parquet)
}
