package constants

const (
	CSVFileExt         = "csv"
	TSVFileExt         = "tsv"
	ParquetFileExt     = "parquet"
	DescriptionFileExt = "txt"
	ArchiveFileExt     = "zip"

	// MaxExportRows is the largest match count that is still materialized and emitted.
	MaxExportRows = 20000

	DefaultBatchSize        = 4096
	DefaultProgressInterval = 2 // seconds

	FilteredSuffix = "filtered"
	CriteriaSuffix = "filtered_criteria"
)

// viper keys
const (
	ConfigFolder  = "CONFIG_FOLDER"
	LogLevel      = "LOG_LEVEL"
	LogFile       = "LOG_FILE"
	SchemaPath    = "SCHEMA_PATH"
	DataDir       = "DATA_DIR"
	OutputDir     = "OUTPUT_DIR"
	MaxRows       = "MAX_EXPORT_ROWS"
	Workers       = "WORKERS"
	BatchSize     = "BATCH_SIZE"
	EnvPrefix     = "SLICER"
	DefaultSchema = "annotatedcsvheaders.csv"
)
