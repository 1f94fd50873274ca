package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/destination"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath      string
	requestPath     string
	datasetSelector string
	whereClauses    []string
	destinationType string
	archive         bool
	jsonOutput      bool

	config   *types.Config
	commands = []*cobra.Command{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "slicer",
	Short: "Filter variant tables by typed field constraints",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initViper(cmd); err != nil {
			return err
		}

		// logger uses CONFIG_FOLDER
		logger.Init()

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		config = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'slicer --help' to display usage guide", args[0])
		}

		return nil
	},
}

func CreateRootCommand() *cobra.Command {
	RootCmd.AddCommand(commands...)
	return RootCmd
}

// initViper wires flags, SLICER_* environment variables and the optional config file into viper.
// Precedence: flag, environment, config file, default.
func initViper(cmd *cobra.Command) error {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault(constants.SchemaPath, constants.DefaultSchema)
	viper.SetDefault(constants.OutputDir, ".")
	viper.SetDefault(constants.MaxRows, constants.MaxExportRows)
	viper.SetDefault(constants.Workers, runtime.NumCPU())
	viper.SetDefault(constants.BatchSize, constants.DefaultBatchSize)

	flags := map[string]string{
		constants.SchemaPath: "schema",
		constants.DataDir:    "data-dir",
		constants.OutputDir:  "output-dir",
		constants.MaxRows:    "max-export-rows",
		constants.Workers:    "workers",
		constants.BatchSize:  "batch-size",
		constants.LogLevel:   "log-level",
		constants.LogFile:    "log-file",
	}
	for key, flag := range flags {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %s", flag, err)
		}
	}

	if configPath == "" {
		return nil
	}

	viper.SetConfigFile(configPath)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %s", configPath, err)
	}
	viper.SetDefault(constants.ConfigFolder, filepath.Dir(configPath))
	return nil
}

func loadConfig(cmd *cobra.Command) (*types.Config, error) {
	cfg := &types.Config{
		SchemaPath:    viper.GetString(constants.SchemaPath),
		DataDir:       viper.GetString(constants.DataDir),
		OutputDir:     viper.GetString(constants.OutputDir),
		MaxExportRows: viper.GetInt(constants.MaxRows),
		Workers:       viper.GetInt(constants.Workers),
		BatchSize:     viper.GetInt(constants.BatchSize),
	}

	if viper.IsSet("destination") {
		cfg.Destination = &types.WriterConfig{}
		if err := viper.UnmarshalKey("destination", cfg.Destination); err != nil {
			return nil, fmt.Errorf("failed to read destination config: %s", err)
		}
	}
	if cmd.Flags().Changed("destination-type") || cmd.Flags().Changed("archive") {
		if cfg.Destination == nil {
			cfg.Destination = &types.WriterConfig{Type: types.LocalCSV}
		}
		if cmd.Flags().Changed("destination-type") {
			cfg.Destination.Type = types.DestinationType(destinationType)
		}
		if cmd.Flags().Changed("archive") {
			cfg.Destination.Archive = archive
		}
	}

	if err := utils.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	if cfg.Destination != nil && !registeredDestination(cfg.Destination.Type) {
		return nil, fmt.Errorf("invalid config: unknown destination type %q, expected one of %s",
			cfg.Destination.Type, destinationTypes())
	}

	logger.Debugf("config: schema=%s data_dir=%s output_dir=%s cap=%d workers=%d batch=%d",
		cfg.SchemaPath, cfg.DataDir, cfg.OutputDir, cfg.MaxExportRows, cfg.Workers, cfg.BatchSize)
	return cfg, nil
}

func init() {
	commands = append(commands, fieldsCmd, datasetsCmd, validateCmd, countCmd, filterCmd)

	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "", "", "(Optional) YAML or JSON config file")
	flags.StringP("schema", "", constants.DefaultSchema, "Schema file declaring field names, types and descriptions")
	flags.StringP("data-dir", "", "", "(Optional) Directory holding dataset files; relative dataset selectors resolve against it")
	flags.StringP("output-dir", "", ".", "Directory receiving filtered results")
	flags.IntP("max-export-rows", "", constants.MaxExportRows, "Largest match count that is still exported")
	flags.IntP("workers", "", runtime.NumCPU(), "Parallel workers evaluating row batches; 1 scans sequentially")
	flags.IntP("batch-size", "", constants.DefaultBatchSize, "Rows per batch handed to workers")
	flags.StringP("log-level", "", "info", "Log level: debug, info, warn, error")
	flags.StringP("log-file", "", "", "(Optional) Log file; defaults to <config folder>/logs when --config is set")
	flags.StringVarP(&destinationType, "destination-type", "", string(types.LocalCSV), fmt.Sprintf("Output format of filtered rows: %s", destinationTypes()))
	flags.BoolVarP(&archive, "archive", "", false, "(Optional) Bundle the filtered rows and criteria into a zip")
	flags.BoolVarP(&jsonOutput, "json", "", false, "Print command output as JSON")

	for _, cmd := range []*cobra.Command{validateCmd, countCmd, filterCmd} {
		cmd.Flags().StringVarP(&requestPath, "request", "", "", "(Optional) JSON or YAML request file with dataset and constraints")
		cmd.Flags().StringArrayVarP(&whereClauses, "where", "w", nil, `Constraint "<field> <operator> <value>", repeatable`)
	}
	for _, cmd := range []*cobra.Command{countCmd, filterCmd} {
		cmd.Flags().StringVarP(&datasetSelector, "dataset", "d", "", "Dataset file name, path or postgres://...#table selector")
	}

	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
	_ = os.Setenv("COBRA_ENABLE_COMMAND_SORTING", "false")
}

func registeredDestination(t types.DestinationType) bool {
	for _, registered := range destination.Types() {
		if registered == t {
			return true
		}
	}
	return false
}

func destinationTypes() string {
	registered := destination.Types()
	names := make([]string, 0, len(registered))
	for _, t := range registered {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
