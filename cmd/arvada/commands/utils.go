/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Arvada commands. Provides common configuration
loading, logging setup, and example-directory reading used across all command
implementations.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rifatarefin/arvada/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("ARVADA")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the logging system. With a log directory
// configured, the full file-backed logging stack is used: timestamped
// files, rotation, and the miner formatter. Without one, logs go to
// stderr only.
func SetupLogging() (*logrus.Logger, error) {
	if dir := viper.GetString("log_dir"); dir != "" {
		format := logging.LogFormat(viper.GetString("log_format"))
		if format == "" {
			format = logging.LogFormatCustom
		}
		if viper.GetBool("json_logs") {
			format = logging.LogFormatJSON
		}
		config := &logging.LoggerConfig{
			Level:     logging.LogLevel(viper.GetString("log_level")),
			Format:    format,
			OutputDir: dir,
			MaxFiles:  viper.GetInt("log_max_files"),
			MaxSize:   viper.GetInt64("log_max_size"),
			Timestamp: true,
			Colors:    format != logging.LogFormatJSON,
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid logging configuration: %w", err)
		}
		fileLogger, err := logging.NewLogger(config)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file logging: %w", err)
		}
		return fileLogger.GetLogger(), nil
	}

	logger := logrus.New()

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if viper.GetBool("json_logs") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger, nil
}

// ReadExamples reads one example per file from a directory, in sorted
// filename order so runs are reproducible.
func ReadExamples(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read example directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	examples := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read example %s: %w", name, err)
		}
		examples = append(examples, string(data))
	}

	if len(examples) == 0 {
		return nil, fmt.Errorf("no examples found in %s", dir)
	}

	return examples, nil
}
