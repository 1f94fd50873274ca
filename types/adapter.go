package types

type DestinationType string

const (
	LocalCSV DestinationType = "local"
	Parquet  DestinationType = "parquet"
)

type WriterConfig struct {
	Type         DestinationType `json:"type" mapstructure:"type" validate:"required"`
	WriterConfig any             `json:"writer" mapstructure:"writer"`
	// Archive bundles the data and description files into one zip.
	Archive bool      `json:"archive,omitempty" mapstructure:"archive"`
	Upload  *S3Config `json:"upload,omitempty" mapstructure:"upload" validate:"omitempty"`
}

type S3Config struct {
	Bucket       string `json:"s3_bucket" mapstructure:"s3_bucket" validate:"required"`
	Region       string `json:"s3_region,omitempty" mapstructure:"s3_region"`
	Prefix       string `json:"s3_path,omitempty" mapstructure:"s3_path"`
	AccessKey    string `json:"s3_access_key,omitempty" mapstructure:"s3_access_key"`
	SecretKey    string `json:"s3_secret_key,omitempty" mapstructure:"s3_secret_key"`
	SessionToken string `json:"s3_session_token,omitempty" mapstructure:"s3_session_token"`
	Endpoint     string `json:"s3_endpoint,omitempty" mapstructure:"s3_endpoint"`
	PathStyle    bool   `json:"s3_path_style,omitempty" mapstructure:"s3_path_style"`
}

// Config is the process level configuration, read once at startup.
type Config struct {
	SchemaPath    string        `json:"schema_path" mapstructure:"schema_path" validate:"required"`
	DataDir       string        `json:"data_dir,omitempty" mapstructure:"data_dir"`
	OutputDir     string        `json:"output_dir" mapstructure:"output_dir" validate:"required"`
	MaxExportRows int           `json:"max_export_rows" mapstructure:"max_export_rows" validate:"gt=0"`
	Workers       int           `json:"workers" mapstructure:"workers" validate:"gte=0"`
	BatchSize     int           `json:"batch_size" mapstructure:"batch_size" validate:"gt=0"`
	Destination   *WriterConfig `json:"destination,omitempty" mapstructure:"destination" validate:"omitempty"`
}

// Request is one evaluation request: a dataset selector plus the constraints gathered from the analyst.
type Request struct {
	Dataset     string            `json:"dataset" validate:"required"`
	Constraints []ConstraintInput `json:"constraints"`
}
