package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"econ-predictor/internal/common"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	SourceKind        string
	SourcePath        string
	SourceDSN         string
	SourceTable       string
	SourceURL         string
	SinkKind          string
	SinkDSN           string
	SinkTable         string
	DataPath          string
	ModelID           string
	PersistRetries    int
	PersistRetryDelay time.Duration
	HTTPTimeout       time.Duration
	ServerPort        int
	MetricsPort       int
	LogLevel          string
}

type ConfigFile struct {
	Source struct {
		Kind  string `yaml:"kind"`
		Path  string `yaml:"path"`
		DSN   string `yaml:"dsn"`
		Table string `yaml:"table"`
		URL   string `yaml:"url"`
	} `yaml:"source"`

	Sink struct {
		Kind  string `yaml:"kind"`
		DSN   string `yaml:"dsn"`
		Table string `yaml:"table"`
	} `yaml:"sink"`

	Model struct {
		ID string `yaml:"id"`
	} `yaml:"model"`

	Persistence struct {
		Retries    *int   `yaml:"retries"`
		RetryDelay string `yaml:"retryDelay"`
	} `yaml:"persistence"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		HTTPTimeout string `yaml:"httpTimeout"`
		ServerPort  int    `yaml:"serverPort"`
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
	} `yaml:"system"`
}

// Load reads settings from the YAML file named by CONFIG_FILE, or from the
// environment alone. A .env file in the working directory is loaded first
// when present; variables already set in the process win over it.
func Load() (Settings, error) {
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	retryDelay, err := time.ParseDuration(orDefault(config.Persistence.RetryDelay, common.DefaultPersistRetryDelay))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid persistence.retryDelay: %w", err)
	}
	httpTimeout, err := time.ParseDuration(orDefault(config.System.HTTPTimeout, common.DefaultHTTPTimeout))
	if err != nil {
		return Settings{}, fmt.Errorf("invalid system.httpTimeout: %w", err)
	}

	// retries may legitimately be set to 0
	retries := common.DefaultPersistRetries
	if config.Persistence.Retries != nil {
		retries = *config.Persistence.Retries
	}

	settings := Settings{
		SourceKind:        getEnvOrDefault(common.EnvSourceKind, orDefault(config.Source.Kind, common.DefaultSourceKind)),
		SourcePath:        getEnvOrDefault(common.EnvSourcePath, orDefault(config.Source.Path, common.DefaultSourcePath)),
		SourceDSN:         getEnvOrDefault(common.EnvSourceDSN, config.Source.DSN),
		SourceTable:       getEnvOrDefault(common.EnvSourceTable, orDefault(config.Source.Table, common.DefaultSourceTable)),
		SourceURL:         getEnvOrDefault(common.EnvSourceURL, config.Source.URL),
		SinkKind:          getEnvOrDefault(common.EnvSinkKind, orDefault(config.Sink.Kind, common.DefaultSinkKind)),
		SinkDSN:           getEnvOrDefault(common.EnvSinkDSN, config.Sink.DSN),
		SinkTable:         getEnvOrDefault(common.EnvSinkTable, orDefault(config.Sink.Table, common.DefaultSinkTable)),
		DataPath:          getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		ModelID:           getEnvOrDefault(common.EnvModelID, orDefault(config.Model.ID, common.DefaultModelID)),
		PersistRetries:    getIntOrDefault(common.EnvPersistRetries, retries),
		PersistRetryDelay: getDurationOrDefault(common.EnvPersistRetryDelay, retryDelay),
		HTTPTimeout:       getDurationOrDefault(common.EnvHTTPTimeout, httpTimeout),
		ServerPort:        getIntFromEnvOrConfig(common.EnvServerPort, config.System.ServerPort, 0),
		MetricsPort:       getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort, 0),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, orDefault(config.System.LogLevel, common.DefaultLogLevel)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	retryDelay, _ := time.ParseDuration(common.DefaultPersistRetryDelay)
	httpTimeout, _ := time.ParseDuration(common.DefaultHTTPTimeout)

	settings := Settings{
		SourceKind:        getEnvOrDefault(common.EnvSourceKind, common.DefaultSourceKind),
		SourcePath:        getEnvOrDefault(common.EnvSourcePath, common.DefaultSourcePath),
		SourceDSN:         os.Getenv(common.EnvSourceDSN),
		SourceTable:       getEnvOrDefault(common.EnvSourceTable, common.DefaultSourceTable),
		SourceURL:         os.Getenv(common.EnvSourceURL),
		SinkKind:          getEnvOrDefault(common.EnvSinkKind, common.DefaultSinkKind),
		SinkDSN:           os.Getenv(common.EnvSinkDSN),
		SinkTable:         getEnvOrDefault(common.EnvSinkTable, common.DefaultSinkTable),
		DataPath:          os.Getenv(common.EnvDataPath),
		ModelID:           getEnvOrDefault(common.EnvModelID, common.DefaultModelID),
		PersistRetries:    getIntOrDefault(common.EnvPersistRetries, common.DefaultPersistRetries),
		PersistRetryDelay: getDurationOrDefault(common.EnvPersistRetryDelay, retryDelay),
		HTTPTimeout:       getDurationOrDefault(common.EnvHTTPTimeout, httpTimeout),
		ServerPort:        getIntOrDefault(common.EnvServerPort, 0),
		MetricsPort:       getIntOrDefault(common.EnvMetricsPort, 0),
		LogLevel:          getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func validPort(p int) bool {
	return p == 0 || (p >= common.MinPort && p <= common.MaxPort)
}

// validateSettings checks ranges and the fields each source and sink kind requires
func validateSettings(settings *Settings) error {
	switch settings.SourceKind {
	case common.KindCSV:
		if settings.SourcePath == "" {
			return fmt.Errorf("csv source requires a path")
		}
	case common.KindMySQL, common.KindSQLite:
		if settings.SourceDSN == "" {
			return fmt.Errorf("%s source requires a DSN", settings.SourceKind)
		}
		if settings.SourceTable == "" {
			return fmt.Errorf("%s source requires a table", settings.SourceKind)
		}
	case common.KindHTTP:
		if !strings.HasPrefix(settings.SourceURL, "http://") && !strings.HasPrefix(settings.SourceURL, "https://") {
			return fmt.Errorf("http source requires an http(s) URL, got %q", settings.SourceURL)
		}
	default:
		return fmt.Errorf("unknown source kind %q", settings.SourceKind)
	}

	switch settings.SinkKind {
	case common.KindNone:
	case common.KindBolt:
		if settings.DataPath == "" {
			return fmt.Errorf("bolt sink requires a data path")
		}
	case common.KindMySQL, common.KindSQLite:
		if settings.SinkDSN == "" {
			return fmt.Errorf("%s sink requires a DSN", settings.SinkKind)
		}
		if settings.SinkTable == "" {
			return fmt.Errorf("%s sink requires a table", settings.SinkKind)
		}
	default:
		return fmt.Errorf("unknown sink kind %q", settings.SinkKind)
	}

	if settings.ModelID == "" {
		return fmt.Errorf("model id cannot be empty")
	}
	if settings.PersistRetries < 0 || settings.PersistRetries > common.MaxPersistRetries {
		return fmt.Errorf("persist retries must be between 0 and %d, got %d", common.MaxPersistRetries, settings.PersistRetries)
	}
	if settings.PersistRetryDelay < 0 || settings.PersistRetryDelay > 30*time.Second {
		return fmt.Errorf("persist retry delay must be between 0 and 30s, got %v", settings.PersistRetryDelay)
	}
	if settings.HTTPTimeout < time.Second || settings.HTTPTimeout > 5*time.Minute {
		return fmt.Errorf("HTTP timeout must be between 1s and 5m, got %v", settings.HTTPTimeout)
	}
	if !validPort(settings.ServerPort) {
		return fmt.Errorf("server port must be 0 or between %d and %d, got %d", common.MinPort, common.MaxPort, settings.ServerPort)
	}
	if !validPort(settings.MetricsPort) {
		return fmt.Errorf("metrics port must be 0 or between %d and %d, got %d", common.MinPort, common.MaxPort, settings.MetricsPort)
	}
	if settings.ServerPort != 0 && settings.ServerPort == settings.MetricsPort {
		return fmt.Errorf("server and metrics ports must differ, both are %d", settings.ServerPort)
	}

	return nil
}
