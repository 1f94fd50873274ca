package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/datazip-inc/slicer/constants"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

// Init configures the global logger from viper. Console output goes to stderr so stdout stays
// reserved for command output; a rotating log file is added when CONFIG_FOLDER or LOG_FILE is set.
func Init() {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(constants.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if path := logFilePath(); path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func logFilePath() string {
	if file := viper.GetString(constants.LogFile); file != "" {
		return file
	}
	folder := viper.GetString(constants.ConfigFolder)
	if folder == "" {
		return ""
	}
	return filepath.Join(folder, "logs", fmt.Sprintf("slicer_%s.log", time.Now().Format("2006-01-02")))
}

func Debug(v ...interface{}) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

func Info(v ...interface{}) {
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

func Warn(v ...interface{}) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...interface{}) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...interface{}) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...interface{}) {
	logger.Fatal().Msgf(format, v...)
}
